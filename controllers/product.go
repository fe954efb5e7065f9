package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"minishop/services"
)

// ProductController handles product-related requests
type ProductController struct {
	products *services.ProductService
	log      *slog.Logger
}

// NewProductController creates a new ProductController
func NewProductController(products *services.ProductService, log *slog.Logger) *ProductController {
	return &ProductController{products: products, log: log}
}

// CreateProduct adds a product to the catalog
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := decode(r, &in); err != nil {
		respondError(w, pc.log, err)
		return
	}
	product, err := pc.products.Create(r.Context(), in)
	if err != nil {
		respondError(w, pc.log, err)
		return
	}
	respondData(w, http.StatusCreated, product)
}

// GetProducts lists products, optionally filtered by category name
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		respondError(w, pc.log, err)
		return
	}
	page, err := pc.products.List(r.Context(), params)
	if err != nil {
		respondError(w, pc.log, err)
		return
	}
	respondPage(w, page)
}

// GetProductByID retrieves a single product
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	product, err := pc.products.Get(r.Context(), mux.Vars(r)["productId"])
	if err != nil {
		respondError(w, pc.log, err)
		return
	}
	respondData(w, http.StatusOK, product)
}

// UpdateProduct applies a partial update
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch services.ProductPatch
	if err := decode(r, &patch); err != nil {
		respondError(w, pc.log, err)
		return
	}
	product, err := pc.products.Update(r.Context(), mux.Vars(r)["productId"], patch)
	if err != nil {
		respondError(w, pc.log, err)
		return
	}
	respondData(w, http.StatusOK, product)
}

// DeleteProduct removes a product
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := pc.products.Delete(r.Context(), mux.Vars(r)["productId"]); err != nil {
		respondError(w, pc.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Product deleted successfully")
}
