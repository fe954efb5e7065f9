package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"minishop/controllers"
	"minishop/logger"
	"minishop/metrics"
	"minishop/models"
	"minishop/payment/paymenttest"
	"minishop/services"
	"minishop/store/sqlstore"
	"minishop/utils"
)

const (
	adminEmail    = "admin@minishop.io"
	adminPassword = "admin-password"
)

type response struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

type app struct {
	router  http.Handler
	store   *sqlstore.Store
	gateway *paymenttest.Gateway
	tokens  *utils.TokenIssuer
}

func newApp(t *testing.T) *app {
	t.Helper()
	ctx := context.Background()
	s, err := sqlstore.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })

	log := logger.Discard()
	seed := services.DefaultSeed()
	seed.Admin = services.AdminSeed{Email: adminEmail, Password: adminPassword}
	require.NoError(t, services.NewSeeder(s, bcrypt.MinCost, log).Run(ctx, seed))

	sender, err := utils.NewSender("log", "", "", "no-reply@minishop.io", log)
	require.NoError(t, err)
	mailer := utils.NewEmailService(sender, "http://shop.test/api/v1/auth/verify", "ngn", log)

	a := &app{
		store:   s,
		gateway: paymenttest.New(),
		tokens:  utils.NewTokenIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour),
	}
	m := metrics.New("minishop_routes_test")
	products := services.NewProductService(s, nil, log)
	auth := services.NewAuthService(s, a.tokens, mailer, services.AuthConfig{BcryptCost: bcrypt.MinCost}, log)
	orders := services.NewOrderService(s, a.gateway, products, nil, mailer, m,
		services.OrderConfig{AppURL: "http://shop.test", Currency: "ngn"}, log)

	c := Controllers{
		Auth:     controllers.NewAuthController(auth, log),
		User:     controllers.NewUserController(services.NewUserService(s, bcrypt.MinCost, log), log),
		Role:     controllers.NewRoleController(services.NewRoleService(s, log), log),
		Category: controllers.NewCategoryController(services.NewCategoryService(s, log), log),
		Product:  controllers.NewProductController(products, log),
		Cart:     controllers.NewCartController(services.NewCartService(s, products, log), log),
		Order:    controllers.NewOrderController(orders, log),
		Health:   controllers.NewHealthController(s, log),
	}
	a.router = NewRouter(c, auth, m, log, 5*time.Second)
	return a
}

func (a *app) do(t *testing.T, method, path, token string, body any) (int, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var out response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func (a *app) adminToken(t *testing.T) string {
	t.Helper()
	code, res := a.do(t, http.MethodPost, "/api/v1/auth/login", "",
		services.LoginInput{Email: adminEmail, Password: adminPassword})
	require.Equal(t, http.StatusOK, code, res.Message)
	var tokens utils.TokenPair
	require.NoError(t, json.Unmarshal(res.Data, &tokens))
	return tokens.AccessToken
}

func (a *app) shopperToken(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	u := &models.User{
		PublicID:  uuid.NewString(),
		Email:     "shopper-" + uuid.NewString()[:8] + "@minishop.io",
		IsEnabled: true,
	}
	require.NoError(t, a.store.Users().Create(ctx, u))
	role, err := a.store.Roles().GetByName(ctx, models.RoleUser)
	require.NoError(t, err)
	require.NoError(t, a.store.Roles().Assign(ctx, u.PublicID, role.PublicID))

	tokens, err := a.tokens.Issue(u.PublicID, u.Email, []string{models.RoleUser})
	require.NoError(t, err)
	return tokens.AccessToken
}

func TestHealthAndMetrics(t *testing.T) {
	a := newApp(t)

	code, res := a.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", res.Status)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "minishop_routes_test_http_requests_total")
}

func TestRoleEnforcement(t *testing.T) {
	a := newApp(t)
	admin := a.adminToken(t)
	shopper := a.shopperToken(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"no token", http.MethodGet, "/api/v1/carts", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/carts", "not-a-jwt", nil, http.StatusUnauthorized},
		{"shopper without a cart", http.MethodGet, "/api/v1/carts", shopper, nil, http.StatusNotFound},
		{"admin has no cart", http.MethodGet, "/api/v1/carts", admin, nil, http.StatusForbidden},
		{"shopper lists users", http.MethodGet, "/api/v1/users", shopper, nil, http.StatusForbidden},
		{"admin lists users", http.MethodGet, "/api/v1/users", admin, nil, http.StatusOK},
		{"shopper browses products", http.MethodGet, "/api/v1/products", shopper, nil, http.StatusOK},
		{"shopper creates category", http.MethodPost, "/api/v1/categories", shopper, services.CategoryInput{Name: "Shoes"}, http.StatusForbidden},
		{"admin creates category", http.MethodPost, "/api/v1/categories", admin, services.CategoryInput{Name: "Shoes"}, http.StatusCreated},
		{"shopper confirms payment", http.MethodPatch, "/api/v1/orders/cs_test_1", shopper, nil, http.StatusForbidden},
		{"shopper reads profile", http.MethodGet, "/api/v1/users/me", shopper, nil, http.StatusOK},
		{"public order lookup", http.MethodGet, "/api/v1/orders/ORD-missing", "", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, res := a.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, code, res.Message)
			if code >= 400 {
				assert.Equal(t, "error", res.Status)
				assert.NotEmpty(t, res.Message)
			}
		})
	}
}

func TestListUsersExcludesAdmins(t *testing.T) {
	a := newApp(t)
	admin := a.adminToken(t)
	a.shopperToken(t)

	code, res := a.do(t, http.MethodGet, "/api/v1/users?page=1&limit=10", admin, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, res.Pagination)
	assert.Equal(t, int64(1), res.Pagination.Total)

	var users []models.User
	require.NoError(t, json.Unmarshal(res.Data, &users))
	require.Len(t, users, 1)
	assert.NotEqual(t, adminEmail, users[0].Email)
}

func TestCheckoutOverHTTP(t *testing.T) {
	a := newApp(t)
	admin := a.adminToken(t)
	shopper := a.shopperToken(t)

	code, res := a.do(t, http.MethodPost, "/api/v1/categories", admin, services.CategoryInput{Name: "Books"})
	require.Equal(t, http.StatusCreated, code, res.Message)
	var category models.Category
	require.NoError(t, json.Unmarshal(res.Data, &category))

	code, res = a.do(t, http.MethodPost, "/api/v1/products", admin, services.ProductInput{
		Name:              "Go in Practice",
		Price:             1250,
		AvailableQuantity: 4,
		CategoryID:        category.PublicID,
	})
	require.Equal(t, http.StatusCreated, code, res.Message)
	var product models.Product
	require.NoError(t, json.Unmarshal(res.Data, &product))

	code, res = a.do(t, http.MethodPost, "/api/v1/carts/add", shopper, map[string]any{
		"productId": product.PublicID,
		"quantity":  2,
	})
	require.Equal(t, http.StatusCreated, code, res.Message)

	code, res = a.do(t, http.MethodGet, "/api/v1/carts", shopper, nil)
	require.Equal(t, http.StatusOK, code)
	var cart models.CartView
	require.NoError(t, json.Unmarshal(res.Data, &cart))
	assert.Equal(t, int64(2500), cart.SubTotal)

	code, res = a.do(t, http.MethodPost, "/api/v1/orders/purchase/"+cart.PublicID, shopper, nil)
	require.Equal(t, http.StatusCreated, code, res.Message)
	var checkout services.CheckoutResult
	require.NoError(t, json.Unmarshal(res.Data, &checkout))
	require.NotNil(t, checkout.Order)
	require.NotNil(t, checkout.Order.Payment)
	assert.NotEmpty(t, checkout.CheckoutURL)
	assert.Equal(t, models.PaymentPending, checkout.Order.Payment.Status)

	sessionID := checkout.Order.Payment.Reference
	a.gateway.SetPaymentStatus(sessionID, "paid")

	code, res = a.do(t, http.MethodPatch, "/api/v1/orders/"+sessionID, admin, nil)
	require.Equal(t, http.StatusOK, code, res.Message)
	var conf services.PaymentConfirmation
	require.NoError(t, json.Unmarshal(res.Data, &conf))
	assert.Equal(t, "paid", conf.SessionStatus)
	assert.Equal(t, models.PaymentPaid, conf.Payment.Status)

	// the payment page redirects here without credentials
	code, res = a.do(t, http.MethodGet, "/api/v1/orders/"+checkout.Order.Reference, "", nil)
	require.Equal(t, http.StatusOK, code, res.Message)
	var order models.Order
	require.NoError(t, json.Unmarshal(res.Data, &order))
	require.NotNil(t, order.Payment)
	assert.Equal(t, models.PaymentPaid, order.Payment.Status)

	code, res = a.do(t, http.MethodGet, "/api/v1/orders", shopper, nil)
	require.Equal(t, http.StatusOK, code)
	var mine []models.Order
	require.NoError(t, json.Unmarshal(res.Data, &mine))
	assert.Len(t, mine, 1)

	code, res = a.do(t, http.MethodGet, "/api/v1/products/"+product.PublicID, shopper, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(res.Data, &product))
	assert.Equal(t, 2, product.AvailableQuantity)
}

func TestCartAndCheckoutWireFormat(t *testing.T) {
	a := newApp(t)
	admin := a.adminToken(t)
	shopper := a.shopperToken(t)

	code, res := a.do(t, http.MethodPost, "/api/v1/categories", admin, services.CategoryInput{Name: "Kitchen"})
	require.Equal(t, http.StatusCreated, code, res.Message)
	var category models.Category
	require.NoError(t, json.Unmarshal(res.Data, &category))

	code, res = a.do(t, http.MethodPost, "/api/v1/products", admin, services.ProductInput{
		Name:              "Mug",
		Price:             900,
		AvailableQuantity: 2,
		CategoryID:        category.PublicID,
	})
	require.Equal(t, http.StatusCreated, code, res.Message)
	var product models.Product
	require.NoError(t, json.Unmarshal(res.Data, &product))

	body := json.RawMessage(`{"productId":"` + product.PublicID + `","quantity":1}`)
	code, res = a.do(t, http.MethodPost, "/api/v1/carts/add", shopper, body)
	require.Equal(t, http.StatusCreated, code, res.Message)
	var cart models.CartView
	require.NoError(t, json.Unmarshal(res.Data, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, product.PublicID, cart.Items[0].ProductID)

	code, res = a.do(t, http.MethodPost, "/api/v1/orders/purchase/"+cart.PublicID, shopper, nil)
	require.Equal(t, http.StatusCreated, code, res.Message)
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(res.Data, &keys))
	assert.Contains(t, keys, "checkoutUrl")
	assert.Contains(t, keys, "order")
	assert.NotContains(t, keys, "checkout_url")
}
