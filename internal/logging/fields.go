package logging

import "log/slog"

// Common field names so log output stays queryable across services.
const (
	FieldService  = "service"
	FieldSiteID   = "site_id"
	FieldSiteUUID = "site_uuid"
	FieldTagID    = "tag_id"
	FieldAdapter  = "adapter"
	FieldBatch    = "batch"
	FieldTeamID   = "team_id"
	FieldError    = "error"
	FieldDuration = "duration_ms"
	FieldCount    = "count"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// SiteID returns a slog attribute for the numeric site ID.
func SiteID(id int64) slog.Attr {
	return slog.Int64(FieldSiteID, id)
}

// SiteUUID returns a slog attribute for the site UUID.
func SiteUUID(id string) slog.Attr {
	return slog.String(FieldSiteUUID, id)
}

// TagID returns a slog attribute for the public tracking tag.
func TagID(id string) slog.Attr {
	return slog.String(FieldTagID, id)
}

// Adapter returns a slog attribute for the site's storage adapter.
func Adapter(name string) slog.Attr {
	return slog.String(FieldAdapter, name)
}

// Batch returns a slog attribute for a migration batch index.
func Batch(n int) slog.Attr {
	return slog.Int(FieldBatch, n)
}

// TeamID returns a slog attribute for the owning team.
func TeamID(id int64) slog.Attr {
	return slog.Int64(FieldTeamID, id)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Count returns a slog attribute for an event count.
func Count(n int) slog.Attr {
	return slog.Int(FieldCount, n)
}
