// Package handlers implements the migration worker's HTTP surface.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sitepulse-io/sitepulse/internal/httputil"
	"github.com/sitepulse-io/sitepulse/internal/migration"
	"github.com/sitepulse-io/sitepulse/internal/models"
	"github.com/sitepulse-io/sitepulse/internal/sites"
	"github.com/sitepulse-io/sitepulse/internal/validation"
)

// SiteLookup resolves site metadata for migration requests.
type SiteLookup interface {
	GetSite(ctx context.Context, siteID int64) (*models.Site, error)
}

// MigrationHandler serves the migration worker endpoints.
type MigrationHandler struct {
	orchestrator *migration.Orchestrator
	sites        SiteLookup
	cfg          validation.Config
}

// NewMigrationHandler creates a handler.
func NewMigrationHandler(orchestrator *migration.Orchestrator, lookup SiteLookup, cfg validation.Config) *MigrationHandler {
	return &MigrationHandler{orchestrator: orchestrator, sites: lookup, cfg: cfg}
}

type migrateSiteRequest struct {
	SiteID    int64 `json:"siteId"`
	BatchSize int   `json:"batchSize,omitempty"`
	DryRun    bool  `json:"dryRun,omitempty"`
	Verify    bool  `json:"verify,omitempty"`
}

type migrateSiteResponse struct {
	Migration    *models.MigrationResponse `json:"migration"`
	Verification *models.ValidationResult  `json:"verification,omitempty"`
}

// MigrateSite handles POST /migrate-site.
func (h *MigrationHandler) MigrateSite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req migrateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SiteID <= 0 {
		httputil.WriteError(w, http.StatusBadRequest, "siteId is required")
		return
	}

	site, err := h.sites.GetSite(r.Context(), req.SiteID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sites.ErrNotFound) {
			status = http.StatusNotFound
		}
		httputil.WriteError(w, status, err.Error())
		return
	}

	resp := h.orchestrator.MigrateSite(r.Context(), site, models.MigrationRequest{
		SiteID:    req.SiteID,
		BatchSize: req.BatchSize,
		DryRun:    req.DryRun,
		Verify:    req.Verify,
	})

	out := migrateSiteResponse{Migration: resp}
	if req.Verify && !req.DryRun {
		out.Verification = validation.ValidateRecordCounts(resp.TotalEvents, resp.MigratedEvents, h.cfg)
	}

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusUnprocessableEntity
	}
	httputil.WriteJSON(w, status, out)
}

type verifySiteResponse struct {
	Success       bool  `json:"success"`
	ActualCount   int   `json:"actualCount"`
	ExpectedCount int   `json:"expectedCount"`
	SiteID        int64 `json:"siteId"`
}

// VerifySite handles GET /verify-site/{siteId}?expectedCount=N.
func (h *MigrationHandler) VerifySite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/verify-site/")
	siteID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || siteID <= 0 {
		httputil.WriteError(w, http.StatusBadRequest, "invalid site id")
		return
	}

	expected, err := strconv.Atoi(r.URL.Query().Get("expectedCount"))
	if err != nil || expected < 0 {
		httputil.WriteError(w, http.StatusBadRequest, "expectedCount query parameter is required")
		return
	}

	site, err := h.sites.GetSite(r.Context(), siteID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sites.ErrNotFound) {
			status = http.StatusNotFound
		}
		httputil.WriteError(w, status, err.Error())
		return
	}

	actual, verifyErr := h.orchestrator.VerifySite(r.Context(), site.UUID, expected)
	httputil.WriteJSON(w, http.StatusOK, verifySiteResponse{
		Success:       verifyErr == nil,
		ActualCount:   actual,
		ExpectedCount: expected,
		SiteID:        siteID,
	})
}

// Health handles GET /health.
func (h *MigrationHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"service":   "migrator",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
