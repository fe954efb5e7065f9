package controllers

import (
	"context"
	"log/slog"
	"net/http"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	store Pinger
	log   *slog.Logger
}

func NewHealthController(store Pinger, log *slog.Logger) *HealthController {
	return &HealthController{store: store, log: log}
}

// Health reports whether the store is reachable.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if err := hc.store.Ping(r.Context()); err != nil {
		hc.log.Error("health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, envelope{Status: "error", Message: "store unavailable"})
		return
	}
	respondMessage(w, http.StatusOK, "ok")
}
