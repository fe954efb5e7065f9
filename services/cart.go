package services

import (
	"context"
	"fmt"
	"log/slog"

	"minishop/models"
	"minishop/store"
)

type CartService struct {
	store    store.Store
	products *ProductService
	log      *slog.Logger
}

func NewCartService(s store.Store, products *ProductService, log *slog.Logger) *CartService {
	return &CartService{store: s, products: products, log: log}
}

// AddToCart puts quantity units of a product in the user's cart, creating the
// cart on first use. A repeat add increments the existing line; the combined
// quantity is only checked against stock at checkout.
func (s *CartService) AddToCart(ctx context.Context, userID, productID string, quantity int) (*models.CartView, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	product, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, fromStore(err, "product")
	}
	if product.AvailableQuantity < quantity {
		return nil, fmt.Errorf("%w: only %d of %s in stock", ErrInvalidState, product.AvailableQuantity, product.Name)
	}

	cart, err := s.store.Carts().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Carts().AddItem(ctx, cart.PublicID, productID, quantity); err != nil {
		return nil, fromStore(err, "cart item")
	}
	s.log.Info("item added to cart", "user_id", userID, "cart_id", cart.PublicID, "product_id", productID, "quantity", quantity)
	return s.GetUserCart(ctx, userID)
}

// RemoveFromCart deletes one cart item and returns the refreshed cart.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, itemID string) (*models.CartView, error) {
	if _, err := s.store.Carts().GetItem(ctx, itemID); err != nil {
		return nil, fromStore(err, "cart item")
	}
	// TODO: reject items that belong to another user's cart.
	if err := s.store.Carts().RemoveItem(ctx, itemID); err != nil {
		return nil, fromStore(err, "cart item")
	}
	s.log.Info("item removed from cart", "user_id", userID, "item_id", itemID)
	return s.GetUserCart(ctx, userID)
}

// GetUserCart returns the cart with current product prices and its subtotal.
func (s *CartService) GetUserCart(ctx context.Context, userID string) (*models.CartView, error) {
	cart, err := s.store.Carts().GetByUser(ctx, userID)
	if err != nil {
		return nil, fromStore(err, "cart")
	}
	if err := s.products.attachToCart(ctx, cart); err != nil {
		return nil, err
	}
	return &models.CartView{Cart: *cart, SubTotal: cart.SubTotal()}, nil
}
