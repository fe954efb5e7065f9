package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"minishop/services"
)

type CategoryController struct {
	categories *services.CategoryService
	log        *slog.Logger
}

func NewCategoryController(categories *services.CategoryService, log *slog.Logger) *CategoryController {
	return &CategoryController{categories: categories, log: log}
}

func (cc *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if err := decode(r, &in); err != nil {
		respondError(w, cc.log, err)
		return
	}
	c, err := cc.categories.Create(r.Context(), in)
	if err != nil {
		respondError(w, cc.log, err)
		return
	}
	respondData(w, http.StatusCreated, c)
}

func (cc *CategoryController) GetCategories(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		respondError(w, cc.log, err)
		return
	}
	page, err := cc.categories.List(r.Context(), params)
	if err != nil {
		respondError(w, cc.log, err)
		return
	}
	respondPage(w, page)
}

func (cc *CategoryController) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := cc.categories.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, cc.log, err)
		return
	}
	respondData(w, http.StatusOK, c)
}

func (cc *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if err := decode(r, &in); err != nil {
		respondError(w, cc.log, err)
		return
	}
	c, err := cc.categories.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		respondError(w, cc.log, err)
		return
	}
	respondData(w, http.StatusOK, c)
}

func (cc *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := cc.categories.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, cc.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Category deleted successfully")
}
