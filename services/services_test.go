package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"minishop/events"
	"minishop/logger"
	"minishop/metrics"
	"minishop/models"
	"minishop/payment/paymenttest"
	"minishop/store/sqlstore"
	"minishop/utils"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingSender struct {
	mu   sync.Mutex
	sent []utils.Message
}

func (r *recordingSender) Send(_ context.Context, msg utils.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) last(t *testing.T) utils.Message {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.sent)
	return r.sent[len(r.sent)-1]
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type fixture struct {
	store     *sqlstore.Store
	gateway   *paymenttest.Gateway
	publisher *recordingPublisher
	mail      *recordingSender
	metrics   *metrics.Metrics
	tokens    *utils.TokenIssuer
	category  *models.Category

	categories *CategoryService
	products   *ProductService
	carts      *CartService
	orders     *OrderService
	auth       *AuthService
	users      *UserService
	roles      *RoleService
}

func newFixture(t *testing.T, opts ...func(*OrderConfig)) *fixture {
	t.Helper()
	s, err := sqlstore.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	log := logger.Discard()
	f := &fixture{
		store:     s,
		gateway:   paymenttest.New(),
		publisher: &recordingPublisher{},
		mail:      &recordingSender{},
		metrics:   metrics.New("minishop_test"),
		tokens:    utils.NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour),
	}
	mailer := utils.NewEmailService(f.mail, "http://shop.test/api/v1/auth/verify", "ngn", log)

	cfg := OrderConfig{AppURL: "http://shop.test", Currency: "ngn"}
	for _, opt := range opts {
		opt(&cfg)
	}

	f.categories = NewCategoryService(s, log)
	f.products = NewProductService(s, nil, log)
	f.carts = NewCartService(s, f.products, log)
	f.orders = NewOrderService(s, f.gateway, f.products, f.publisher, mailer, f.metrics, cfg, log)
	f.auth = NewAuthService(s, f.tokens, mailer, AuthConfig{BcryptCost: bcrypt.MinCost}, log)
	f.users = NewUserService(s, bcrypt.MinCost, log)
	f.roles = NewRoleService(s, log)

	require.NoError(t, NewSeeder(s, bcrypt.MinCost, log).Run(context.Background(), DefaultSeed()))
	f.category, err = f.categories.Create(context.Background(), CategoryInput{Name: "General"})
	require.NoError(t, err)
	return f
}

func (f *fixture) shopper(t *testing.T) *models.User {
	t.Helper()
	ctx := context.Background()
	u := &models.User{
		PublicID:  uuid.NewString(),
		Email:     "shopper-" + uuid.NewString()[:8] + "@minishop.io",
		IsEnabled: true,
	}
	require.NoError(t, f.store.Users().Create(ctx, u))
	role, err := f.store.Roles().GetByName(ctx, models.RoleUser)
	require.NoError(t, err)
	require.NoError(t, f.store.Roles().Assign(ctx, u.PublicID, role.PublicID))
	return u
}

func (f *fixture) product(t *testing.T, price int64, qty int) *models.Product {
	t.Helper()
	p := &models.Product{
		PublicID:          uuid.NewString(),
		Name:              "product-" + uuid.NewString()[:8],
		Price:             price,
		AvailableQuantity: qty,
		CategoryID:        f.category.PublicID,
	}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.AvailableQuantity
}

func (f *fixture) setStock(t *testing.T, productID string, qty int) {
	t.Helper()
	ctx := context.Background()
	p, err := f.store.Products().GetByID(ctx, productID)
	require.NoError(t, err)
	p.AvailableQuantity = qty
	require.NoError(t, f.store.Products().Update(ctx, p))
}

// codeFrom pulls the one-time code out of a rendered email.
func codeFrom(t *testing.T, html, prefix, terminator string) string {
	t.Helper()
	_, rest, ok := strings.Cut(html, prefix)
	require.True(t, ok, "prefix %q not found in %q", prefix, html)
	code, _, ok := strings.Cut(rest, terminator)
	require.True(t, ok)
	return code
}
