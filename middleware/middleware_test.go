package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minishop/logger"
	"minishop/metrics"
	"minishop/models"
	"minishop/services"
)

type stubAuth map[string]*services.Principal

func (s stubAuth) Authenticate(_ context.Context, token string) (*services.Principal, error) {
	if token == "boom" {
		return nil, errors.New("store down")
	}
	p, ok := s[token]
	if !ok {
		return nil, services.ErrUnauthorized
	}
	return p, nil
}

func newRouter() *mux.Router {
	auth := stubAuth{
		"admin-token":   {UserID: "u1", Roles: []string{models.RoleAdmin}},
		"shopper-token": {UserID: "u2", Roles: []string{models.RoleUser}},
	}
	r := mux.NewRouter()
	r.Use(AuthMiddleware(auth, logger.Discard()))
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(RequireRoles(services.AdminOnly))
	admin.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		if p, ok := PrincipalFrom(r.Context()); ok {
			_, _ = w.Write([]byte(p.UserID))
		}
	})
	return r
}

func TestAuthAndRoles(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, ""},
		{"backend failure", "Bearer boom", http.StatusInternalServerError, ""},
		{"role denied", "Bearer shopper-token", http.StatusForbidden, ""},
		{"admin allowed", "Bearer admin-token", http.StatusOK, "u1"},
	}
	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"status":"error"`)
			}
		})
	}
}

func TestRequireRolesWithoutPrincipal(t *testing.T) {
	h := RequireRoles(services.AdminOnly)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestLoggerRecordsRouteTemplate(t *testing.T) {
	m := metrics.New("minishop_test")
	r := mux.NewRouter()
	r.Use(RequestLogger(logger.Discard(), m))
	r.HandleFunc("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/"+id, nil))
	}
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Requests.WithLabelValues("/products/{id}", "GET", "404")))
}

func TestTimeout(t *testing.T) {
	var deadline time.Time
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		deadline, ok = r.Context().Deadline()
		require.True(t, ok)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}
