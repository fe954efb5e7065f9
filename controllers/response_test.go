package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minishop/logger"
	"minishop/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: cart not found", services.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: cart is empty", services.ErrInvalidState), http.StatusBadRequest},
		{services.ErrInvalidInput, http.StatusBadRequest},
		{services.ErrConflict, http.StatusConflict},
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("%w: stripe down", services.ErrUpstream), http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, logger.Discard(), errors.New("dial tcp 10.0.0.3:27017: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "Internal server error", body.Message)

	rec = httptest.NewRecorder()
	respondError(rec, logger.Discard(), fmt.Errorf("%w: product not found", services.ErrNotFound))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not found: product not found", body.Message)
}

func TestRespondErrorHidesUpstreamDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("%w: create checkout session: %v", services.ErrUpstream,
		errors.New(`{"status":401,"message":"Invalid API Key provided: sk_test_****1234"}`))
	respondError(rec, logger.Discard(), err)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.NotContains(t, body.Message, "sk_test")
	assert.NotContains(t, body.Message, "checkout session")
}

func TestListParams(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := listParams(httptest.NewRequest(http.MethodGet, "/products", nil))
		require.NoError(t, err)
		assert.Equal(t, services.DefaultPage, p.Page)
		assert.Equal(t, services.DefaultLimit, p.Limit)
	})

	t.Run("query values", func(t *testing.T) {
		p, err := listParams(httptest.NewRequest(http.MethodGet, "/products?page=3&limit=25&search=mug&filter=Kitchen", nil))
		require.NoError(t, err)
		assert.Equal(t, services.ListParams{Page: 3, Limit: 25, Search: "mug", Filter: "Kitchen"}, p)
	})

	t.Run("not a number", func(t *testing.T) {
		_, err := listParams(httptest.NewRequest(http.MethodGet, "/products?limit=ten", nil))
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	})
}

func TestPrincipalRequiresAuthentication(t *testing.T) {
	_, err := principal(httptest.NewRequest(http.MethodGet, "/users/me", nil))
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}
