// controllers/order.go
package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"minishop/services"
)

// OrderController handles order-related requests
type OrderController struct {
	orders *services.OrderService
	log    *slog.Logger
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *services.OrderService, log *slog.Logger) *OrderController {
	return &OrderController{orders: orders, log: log}
}

// CreateOrder checks out the given cart and returns the payment page URL
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, oc.log, err)
		return
	}

	res, err := oc.orders.Checkout(r.Context(), p.UserID, mux.Vars(r)["cartId"])
	if err != nil {
		respondError(w, oc.log, err)
		return
	}
	respondData(w, http.StatusCreated, res)
}

// GetOrders retrieves the caller's orders
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, oc.log, err)
		return
	}

	orders, err := oc.orders.ListForUser(r.Context(), p.UserID)
	if err != nil {
		respondError(w, oc.log, err)
		return
	}
	respondData(w, http.StatusOK, orders)
}

// GetOrder looks an order up by its reference. The payment page redirects
// here, so it needs no credentials.
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := oc.orders.GetByReference(r.Context(), mux.Vars(r)["orderRef"])
	if err != nil {
		respondError(w, oc.log, err)
		return
	}
	respondData(w, http.StatusOK, order)
}

// UpdateOrderPaymentStatus confirms payment for a checkout session
func (oc *OrderController) UpdateOrderPaymentStatus(w http.ResponseWriter, r *http.Request) {
	conf, err := oc.orders.ConfirmPayment(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		respondError(w, oc.log, err)
		return
	}
	respondData(w, http.StatusOK, conf)
}
