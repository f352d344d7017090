// Package server wires the migration worker's HTTP routes.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sitepulse-io/sitepulse/internal/handlers"
	"github.com/sitepulse-io/sitepulse/internal/middleware"
)

// NewRouter constructs a ServeMux with the migration worker routes.
func NewRouter(h *handlers.MigrationHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/migrate-site", h.MigrateSite)
	mux.HandleFunc("/verify-site/", h.VerifySite)
	mux.HandleFunc("/health", h.Health)
	mux.Handle("/metrics", promhttp.Handler())
	return middleware.RequestID(mux)
}
