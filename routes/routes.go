// routes/routes.go
package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"minishop/controllers"
	"minishop/metrics"
	"minishop/middleware"
	"minishop/services"
)

// Controllers bundles every handler the router serves.
type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Role     *controllers.RoleController
	Category *controllers.CategoryController
	Product  *controllers.ProductController
	Cart     *controllers.CartController
	Order    *controllers.OrderController
	Health   *controllers.HealthController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, auth middleware.Authenticator, m *metrics.Metrics, log *slog.Logger) {
	router.HandleFunc("/health", c.Health.Health).Methods(http.MethodGet)
	if m != nil {
		router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/signup", c.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", c.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify", c.Auth.VerifyEmail).Methods(http.MethodPatch)
	api.HandleFunc("/auth/resend-token/{email}", c.Auth.ResendToken).Methods(http.MethodPost)
	api.HandleFunc("/auth/reset-password/{email}", c.Auth.ResetPassword).Methods(http.MethodPost)
	api.HandleFunc("/auth/confirm-password-reset", c.Auth.ConfirmPasswordReset).Methods(http.MethodPatch)
	api.HandleFunc("/auth/refresh-token", c.Auth.RefreshToken).Methods(http.MethodPost)
	api.HandleFunc("/orders/{orderRef}", c.Order.GetOrder).Methods(http.MethodGet)

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(auth, log))
	withRoles := func(policy services.Policy) *mux.Router {
		sr := protected.NewRoute().Subrouter()
		sr.Use(middleware.RequireRoles(policy))
		return sr
	}

	protected.HandleFunc("/users/me", c.User.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/users/update-profile", c.User.UpdateProfile).Methods(http.MethodPatch)
	protected.HandleFunc("/users/change-password", c.User.ChangePassword).Methods(http.MethodPatch)
	protected.HandleFunc("/users/me/deactivate", c.User.Deactivate).Methods(http.MethodPost)
	protected.HandleFunc("/users/address", c.User.AddAddress).Methods(http.MethodPost)
	protected.HandleFunc("/users/address", c.User.UpdateAddress).Methods(http.MethodPatch)
	protected.HandleFunc("/users/address/{id}", c.User.DeleteAddress).Methods(http.MethodDelete)
	protected.HandleFunc("/products", c.Product.GetProducts).Methods(http.MethodGet)
	protected.HandleFunc("/products/{productId}", c.Product.GetProductByID).Methods(http.MethodGet)
	protected.HandleFunc("/orders", c.Order.GetOrders).Methods(http.MethodGet)

	// Admin routes
	admin := withRoles(services.AdminOnly)
	admin.HandleFunc("/users", c.User.GetUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/delete/{userId}", c.User.DeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/roles", c.Role.GetRoles).Methods(http.MethodGet)
	admin.HandleFunc("/roles/create", c.Role.CreateRole).Methods(http.MethodPost)
	admin.HandleFunc("/roles/assign-role", c.Role.AssignRole).Methods(http.MethodPost)
	admin.HandleFunc("/roles/remove-user-role", c.Role.RemoveUserRole).Methods(http.MethodPost)
	admin.HandleFunc("/roles/edit/{publicId}", c.Role.EditRole).Methods(http.MethodPatch)
	admin.HandleFunc("/roles/delete/{publicId}", c.Role.DeleteRole).Methods(http.MethodDelete)
	admin.HandleFunc("/roles/{publicId}", c.Role.GetRole).Methods(http.MethodGet)

	officers := withRoles(services.AccountOfficers)
	officers.HandleFunc("/users/redeactivate/{userId}", c.User.Reactivate).Methods(http.MethodPost)

	// Catalog management
	catalog := withRoles(services.CatalogManagers)
	catalog.HandleFunc("/categories", c.Category.GetCategories).Methods(http.MethodGet)
	catalog.HandleFunc("/categories", c.Category.CreateCategory).Methods(http.MethodPost)
	catalog.HandleFunc("/categories/{id}", c.Category.GetCategory).Methods(http.MethodGet)
	catalog.HandleFunc("/categories/{id}", c.Category.UpdateCategory).Methods(http.MethodPatch)
	catalog.HandleFunc("/categories/{id}", c.Category.DeleteCategory).Methods(http.MethodDelete)
	catalog.HandleFunc("/products", c.Product.CreateProduct).Methods(http.MethodPost)
	catalog.HandleFunc("/products/{productId}", c.Product.UpdateProduct).Methods(http.MethodPatch)
	catalog.HandleFunc("/products/{productId}", c.Product.DeleteProduct).Methods(http.MethodDelete)

	// Cart and checkout
	shopper := withRoles(services.ShopperOnly)
	shopper.HandleFunc("/carts/add", c.Cart.AddToCart).Methods(http.MethodPost)
	shopper.HandleFunc("/carts/remove/{cartItemId}", c.Cart.RemoveFromCart).Methods(http.MethodPost)
	shopper.HandleFunc("/carts", c.Cart.GetCart).Methods(http.MethodGet)
	shopper.HandleFunc("/orders/purchase/{cartId}", c.Order.CreateOrder).Methods(http.MethodPost)

	payments := withRoles(services.PaymentManagers)
	payments.HandleFunc("/orders/{sessionId}", c.Order.UpdateOrderPaymentStatus).Methods(http.MethodPatch)
}

// NewRouter builds the application router with request logging and a
// per-request timeout.
func NewRouter(c Controllers, auth middleware.Authenticator, m *metrics.Metrics, log *slog.Logger, timeout time.Duration) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(log, m), middleware.Timeout(timeout))
	RegisterRoutes(router, c, auth, m, log)
	return router
}
