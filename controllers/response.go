package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"minishop/middleware"
	"minishop/services"
)

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type envelope struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, envelope{Status: "success", Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Status: "success", Message: message})
}

func respondPage[T any](w http.ResponseWriter, page *services.Page[T]) {
	respondJSON(w, http.StatusOK, envelope{
		Status: "success",
		Data:   page.Items,
		Pagination: &pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages(),
		},
	})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := statusFor(err)
	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		log.Error("request failed", "error", err)
		message = "Internal server error"
	case http.StatusBadGateway:
		log.Error("payment provider call failed", "error", err)
		message = "Payment provider unavailable, please try again later"
	}
	respondJSON(w, status, envelope{Status: "error", Message: message})
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrInvalidInput)
	}
	return nil
}

// listParams reads page, limit, search and filter from the query string.
func listParams(r *http.Request) (services.ListParams, error) {
	q := r.URL.Query()
	p := services.ListParams{
		Page:   services.DefaultPage,
		Limit:  services.DefaultLimit,
		Search: q.Get("search"),
		Filter: q.Get("filter"),
	}
	for key, dst := range map[string]*int{"page": &p.Page, "limit": &p.Limit} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, fmt.Errorf("%w: %s must be a number", services.ErrInvalidInput, key)
		}
		*dst = n
	}
	return p, nil
}

func principal(r *http.Request) (*services.Principal, error) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return nil, fmt.Errorf("%w: missing credentials", services.ErrUnauthorized)
	}
	return p, nil
}
