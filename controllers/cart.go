package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"minishop/services"
)

// CartController handles cart-related requests
type CartController struct {
	carts *services.CartService
	log   *slog.Logger
}

// NewCartController creates a new CartController
func NewCartController(carts *services.CartService, log *slog.Logger) *CartController {
	return &CartController{carts: carts, log: log}
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// AddToCart adds a product to the user's cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, cc.log, err)
		return
	}
	var req addToCartRequest
	if err := decode(r, &req); err != nil {
		respondError(w, cc.log, err)
		return
	}

	cart, err := cc.carts.AddToCart(r.Context(), p.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, cc.log, err)
		return
	}
	respondData(w, http.StatusCreated, cart)
}

// RemoveFromCart deletes one item from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, cc.log, err)
		return
	}

	cart, err := cc.carts.RemoveFromCart(r.Context(), p.UserID, mux.Vars(r)["cartItemId"])
	if err != nil {
		respondError(w, cc.log, err)
		return
	}
	respondData(w, http.StatusOK, cart)
}

// GetCart retrieves the user's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, cc.log, err)
		return
	}

	cart, err := cc.carts.GetUserCart(r.Context(), p.UserID)
	if err != nil {
		respondError(w, cc.log, err)
		return
	}
	respondData(w, http.StatusOK, cart)
}
