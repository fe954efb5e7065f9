package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"minishop/cache"
	"minishop/models"
	"minishop/store"
)

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryService struct {
	store store.Store
	log   *slog.Logger
}

func NewCategoryService(s store.Store, log *slog.Logger) *CategoryService {
	return &CategoryService{store: s, log: log}
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	c := &models.Category{PublicID: uuid.NewString(), Name: name, Description: in.Description}
	if err := s.store.Categories().Create(ctx, c); err != nil {
		return nil, fromStore(err, "category")
	}
	s.log.Info("category created", "category_id", c.PublicID, "name", c.Name)
	return c, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	c, err := s.store.Categories().GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(err, "category")
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, p ListParams) (*Page[models.Category], error) {
	q, err := p.query()
	if err != nil {
		return nil, err
	}
	items, total, err := s.store.Categories().List(ctx, q)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, q), nil
}

// Update applies the non-empty fields of in.
func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	c, err := s.store.Categories().GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(err, "category")
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
	}
	if in.Description != "" {
		c.Description = in.Description
	}
	if err := s.store.Categories().Update(ctx, c); err != nil {
		return nil, fromStore(err, "category")
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return fromStore(s.store.Categories().Delete(ctx, id), "category")
}

type ProductInput struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	Price             int64  `json:"price"`
	AvailableQuantity int    `json:"available_quantity"`
	CategoryID        string `json:"category_id"`
}

// ProductPatch holds the fields a partial update may change.
type ProductPatch struct {
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	Price             *int64  `json:"price"`
	AvailableQuantity *int    `json:"available_quantity"`
	CategoryID        *string `json:"category_id"`
}

// ProductService manages the catalog. Reads that only render a product go
// through the cache when one is configured; anything that checks stock reads
// the store.
type ProductService struct {
	store store.Store
	cache *cache.ProductCache
	log   *slog.Logger
}

func NewProductService(s store.Store, c *cache.ProductCache, log *slog.Logger) *ProductService {
	return &ProductService{store: s, cache: c, log: log}
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := &models.Product{
		PublicID:          uuid.NewString(),
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		Price:             in.Price,
		AvailableQuantity: in.AvailableQuantity,
		CategoryID:        in.CategoryID,
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if _, err := s.store.Categories().GetByID(ctx, p.CategoryID); err != nil {
		return nil, fromStore(err, "category")
	}
	if err := s.store.Products().Create(ctx, p); err != nil {
		return nil, fromStore(err, "product")
	}
	s.log.Info("product created", "product_id", p.PublicID, "name", p.Name)
	return p, nil
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	case p.Price < 0:
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	case p.AvailableQuantity < 0:
		return fmt.Errorf("%w: available quantity cannot be negative", ErrInvalidInput)
	case p.CategoryID == "":
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	return nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	var (
		p   *models.Product
		err error
	)
	if s.cache != nil {
		p, err = s.cache.Get(ctx, id, s.store.Products().GetByID)
	} else {
		p, err = s.store.Products().GetByID(ctx, id)
	}
	if err != nil {
		return nil, fromStore(err, "product")
	}
	return p, nil
}

// List filters by p.Filter as a category name. An unknown category yields an
// empty page.
func (s *ProductService) List(ctx context.Context, p ListParams) (*Page[models.Product], error) {
	q, err := p.query()
	if err != nil {
		return nil, err
	}
	if filter := strings.TrimSpace(p.Filter); filter != "" {
		c, err := s.store.Categories().GetByName(ctx, filter)
		if errors.Is(err, store.ErrNotFound) {
			return newPage([]models.Product{}, 0, q), nil
		}
		if err != nil {
			return nil, err
		}
		q.CategoryID = c.PublicID
	}
	items, total, err := s.store.Products().List(ctx, q)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, q), nil
}

func (s *ProductService) Update(ctx context.Context, id string, patch ProductPatch) (*models.Product, error) {
	p, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(err, "product")
	}
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.AvailableQuantity != nil {
		p.AvailableQuantity = *patch.AvailableQuantity
	}
	if patch.CategoryID != nil && *patch.CategoryID != p.CategoryID {
		if _, err := s.store.Categories().GetByID(ctx, *patch.CategoryID); err != nil {
			return nil, fromStore(err, "category")
		}
		p.CategoryID = *patch.CategoryID
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.store.Products().Update(ctx, p); err != nil {
		return nil, fromStore(err, "product")
	}
	s.Invalidate(ctx, p.PublicID)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.store.Products().Delete(ctx, id); err != nil {
		return fromStore(err, "product")
	}
	s.Invalidate(ctx, id)
	return nil
}

// Invalidate drops cached copies after a write.
func (s *ProductService) Invalidate(ctx context.Context, ids ...string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, ids...)
	}
}

// Lookup loads the given products concurrently for display. Products that no
// longer exist are left out of the result.
func (s *ProductService) Lookup(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	var mu sync.Mutex
	out := make(map[string]*models.Product, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, id := range ids {
		g.Go(func() error {
			p, err := s.Get(gctx, id)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ProductService) attachToCart(ctx context.Context, cart *models.Cart) error {
	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.Lookup(ctx, ids)
	if err != nil {
		return err
	}
	for i := range cart.Items {
		cart.Items[i].Product = products[cart.Items[i].ProductID]
	}
	return nil
}

func (s *ProductService) attachToOrders(ctx context.Context, orders ...*models.Order) error {
	var ids []string
	for _, o := range orders {
		for _, line := range o.Lines {
			ids = append(ids, line.ProductID)
		}
	}
	products, err := s.Lookup(ctx, ids)
	if err != nil {
		return err
	}
	for _, o := range orders {
		for i := range o.Lines {
			o.Lines[i].Product = products[o.Lines[i].ProductID]
		}
	}
	return nil
}
