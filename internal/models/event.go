// Package models defines the shared data shapes for the analytics storage core.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventRecord is one analytics event as stored and shipped between stores.
// Event and TagID are required; everything else is optional enrichment
// captured from the tracking pixel.
type EventRecord struct {
	ID              int64           `json:"id,omitempty"`
	Event           string          `json:"event"`
	TagID           string          `json:"tag_id"`
	Browser         string          `json:"browser,omitempty"`
	OperatingSystem string          `json:"operating_system,omitempty"`
	DeviceType      string          `json:"device_type,omitempty"`
	Country         string          `json:"country,omitempty"`
	Region          string          `json:"region,omitempty"`
	City            string          `json:"city,omitempty"`
	PostalCode      string          `json:"postal,omitempty"`
	Referer         string          `json:"referer,omitempty"`
	PageURL         string          `json:"page_url,omitempty"`
	ClientPageURL   string          `json:"client_page_url,omitempty"`
	ScreenWidth     int             `json:"screen_width,omitempty"`
	ScreenHeight    int             `json:"screen_height,omitempty"`
	RID             string          `json:"rid,omitempty"`
	CustomData      json.RawMessage `json:"custom_data,omitempty"`
	BotData         json.RawMessage `json:"bot_data,omitempty"`
	QueryParams     json.RawMessage `json:"query_params,omitempty"`
	CreatedAt       time.Time       `json:"created_at,omitempty"`
}

// Normalize fills defaults the ingest path guarantees: a pseudonymous
// visitor id and an ingest timestamp.
func (e *EventRecord) Normalize(now time.Time) {
	if e.RID == "" {
		e.RID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
}

// DateRange bounds a query. A zero Start or End means unbounded on that
// side, not "today".
type DateRange struct {
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Pagination carries limit/offset for paged reads.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// DashboardOptions is the filter envelope shared by dashboard reads and
// migration selection.
type DashboardOptions struct {
	SiteID     int64      `json:"site_id"`
	SiteUUID   string     `json:"site_uuid,omitempty"`
	TeamID     int64      `json:"team_id,omitempty"`
	DateRange  DateRange  `json:"date_range,omitempty"`
	DeviceType string     `json:"device_type,omitempty"`
	Country    string     `json:"country,omitempty"`
	Source     string     `json:"source,omitempty"`
	Page       string     `json:"page,omitempty"`
	Event      string     `json:"event,omitempty"`
	Pagination Pagination `json:"pagination,omitempty"`
}

// ValidationResult reports the outcome of one validation pass. It is
// produced per call and consumed immediately; nothing persists it.
type ValidationResult struct {
	IsValid        bool     `json:"is_valid"`
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings"`
	RecordCount    int      `json:"record_count"`
	ValidRecords   int      `json:"valid_records"`
	InvalidRecords int      `json:"invalid_records"`
}

// NewValidationResult returns a result that is valid until an error is added.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
	}
}

// AddError records an error and marks the result invalid.
func (r *ValidationResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.IsValid = false
}

// AddWarning records a warning without affecting validity.
func (r *ValidationResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Merge folds another result into this one. Errors propagate invalidity.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.RecordCount += other.RecordCount
	r.ValidRecords += other.ValidRecords
	r.InvalidRecords += other.InvalidRecords
	if !other.IsValid {
		r.IsValid = false
	}
}

// MigrationRequest selects a site and controls batching and verification.
type MigrationRequest struct {
	SiteID    int64 `json:"site_id"`
	BatchSize int   `json:"batch_size,omitempty"`
	DryRun    bool  `json:"dry_run,omitempty"`
	Verify    bool  `json:"verify,omitempty"`
	Cleanup   bool  `json:"cleanup,omitempty"`
	Force     bool  `json:"force,omitempty"`
}

// BatchError records a single failed migration batch by index.
type BatchError struct {
	Batch int    `json:"batch"`
	Error string `json:"error"`
}

// MigrationResponse is the per-site outcome of one migration invocation.
// MigratedEvents becomes the baseline for count reconciliation.
type MigrationResponse struct {
	Success        bool         `json:"success"`
	SiteID         int64        `json:"site_id"`
	TotalEvents    int          `json:"total_events"`
	MigratedEvents int          `json:"migrated_events"`
	Batches        int          `json:"batches"`
	DryRun         bool         `json:"dry_run,omitempty"`
	Sample         *EventRecord `json:"sample,omitempty"`
	Errors         []BatchError `json:"errors"`
}
