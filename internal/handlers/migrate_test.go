package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitepulse-io/sitepulse/internal/actor"
	"github.com/sitepulse-io/sitepulse/internal/adapter"
	"github.com/sitepulse-io/sitepulse/internal/migration"
	"github.com/sitepulse-io/sitepulse/internal/models"
	"github.com/sitepulse-io/sitepulse/internal/sites"
	"github.com/sitepulse-io/sitepulse/internal/validation"
)

type stubLookup struct {
	site *models.Site
}

func (s *stubLookup) GetSite(ctx context.Context, siteID int64) (*models.Site, error) {
	if s.site == nil || s.site.ID != siteID {
		return nil, fmt.Errorf("site %d: %w", siteID, sites.ErrNotFound)
	}
	return s.site, nil
}

type stubSource struct {
	events []models.EventRecord
}

func (s *stubSource) ReadSiteEvents(ctx context.Context, siteID int64) ([]models.EventRecord, error) {
	return s.events, nil
}

func (s *stubSource) DeleteSiteEvents(ctx context.Context, siteID int64) (int64, error) {
	return int64(len(s.events)), nil
}

type stubActor struct {
	inserted int
	total    int
}

func (s *stubActor) InsertEvents(ctx context.Context, events []models.EventRecord) (*actor.InsertResponse, error) {
	s.inserted += len(events)
	s.total += len(events)
	return &actor.InsertResponse{Success: true, Inserted: len(events)}, nil
}

func (s *stubActor) HealthCheck(ctx context.Context) (*actor.HealthResponse, error) {
	return &actor.HealthResponse{Status: "ok", TotalEvents: s.total}, nil
}

type stubResolver struct {
	client migration.ActorClient
}

func (s stubResolver) Resolve(siteUUID string) migration.ActorClient { return s.client }

func newTestHandler(events int) (*MigrationHandler, *stubActor) {
	src := &stubSource{events: make([]models.EventRecord, events)}
	for i := range src.events {
		src.events[i] = models.EventRecord{Event: "page_view", TagID: "tag-9"}
	}
	act := &stubActor{}
	orch := migration.New(src, stubResolver{act}, nil)
	lookup := &stubLookup{site: &models.Site{
		ID: 9, UUID: "uuid-9", TagID: "tag-9", TeamID: 1, Adapter: adapter.Postgres,
	}}
	return NewMigrationHandler(orch, lookup, validation.DefaultConfig()), act
}

func TestMigrateSiteEndpoint(t *testing.T) {
	h, act := newTestHandler(120)

	body := `{"siteId": 9, "batchSize": 50, "verify": true}`
	req := httptest.NewRequest(http.MethodPost, "/migrate-site", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.MigrateSite(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Migration    models.MigrationResponse `json:"migration"`
		Verification *models.ValidationResult `json:"verification"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Migration.Success)
	assert.Equal(t, 120, resp.Migration.MigratedEvents)
	assert.Equal(t, 3, resp.Migration.Batches)
	require.NotNil(t, resp.Verification)
	assert.True(t, resp.Verification.IsValid)
	assert.Equal(t, 120, act.inserted)
}

func TestMigrateSiteEndpoint_DryRun(t *testing.T) {
	h, act := newTestHandler(10)

	body := `{"siteId": 9, "dryRun": true, "verify": true}`
	req := httptest.NewRequest(http.MethodPost, "/migrate-site", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.MigrateSite(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, act.inserted, "dry run performs no writes")

	var resp migrateSiteResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Nil(t, resp.Verification, "dry runs skip reconciliation")
	assert.True(t, resp.Migration.DryRun)
}

func TestMigrateSiteEndpoint_BadRequests(t *testing.T) {
	h, _ := newTestHandler(0)

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"malformed body", http.MethodPost, "{", http.StatusBadRequest},
		{"missing siteId", http.MethodPost, "{}", http.StatusBadRequest},
		{"unknown site", http.MethodPost, `{"siteId": 404}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/migrate-site", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.MigrateSite(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestVerifySiteEndpoint(t *testing.T) {
	h, act := newTestHandler(0)
	act.total = 25

	req := httptest.NewRequest(http.MethodGet, "/verify-site/9?expectedCount=25", nil)
	rec := httptest.NewRecorder()
	h.VerifySite(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp verifySiteResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 25, resp.ActualCount)
}

func TestVerifySiteEndpoint_Mismatch(t *testing.T) {
	h, act := newTestHandler(0)
	act.total = 20

	req := httptest.NewRequest(http.MethodGet, "/verify-site/9?expectedCount=25", nil)
	rec := httptest.NewRecorder()
	h.VerifySite(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp verifySiteResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, 20, resp.ActualCount)
	assert.Equal(t, 25, resp.ExpectedCount)
}

func TestVerifySiteEndpoint_BadInput(t *testing.T) {
	h, _ := newTestHandler(0)

	for _, path := range []string{"/verify-site/abc?expectedCount=1", "/verify-site/9"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.VerifySite(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := newTestHandler(0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "migrator", body["service"])
}
