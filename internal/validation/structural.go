package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sitepulse-io/sitepulse/internal/metrics"
	"github.com/sitepulse-io/sitepulse/internal/models"
)

// ValidateSiteEvent checks one record's structure: required fields, string
// bounds, non-negative numerics, parseable JSON payloads, and a plausible
// created_at. Date violations are warnings unless cfg.Strict is set.
func ValidateSiteEvent(event *models.EventRecord, cfg Config) *models.ValidationResult {
	result := models.NewValidationResult()
	result.RecordCount = 1

	if strings.TrimSpace(event.Event) == "" {
		result.AddError("event name is required and must be non-empty")
	}
	if strings.TrimSpace(event.TagID) == "" {
		result.AddError("tag_id is required and must be non-empty")
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"event", event.Event},
		{"tag_id", event.TagID},
		{"browser", event.Browser},
		{"operating_system", event.OperatingSystem},
		{"device_type", event.DeviceType},
		{"country", event.Country},
		{"region", event.Region},
		{"city", event.City},
		{"postal", event.PostalCode},
		{"referer", event.Referer},
		{"page_url", event.PageURL},
		{"client_page_url", event.ClientPageURL},
		{"rid", event.RID},
	} {
		if len(field.value) > cfg.MaxStringLength {
			result.AddError(fmt.Sprintf("%s exceeds max length %d (got %d)", field.name, cfg.MaxStringLength, len(field.value)))
		}
	}

	if event.ScreenWidth < 0 {
		result.AddError(fmt.Sprintf("screen_width must be non-negative (got %d)", event.ScreenWidth))
	}
	if event.ScreenHeight < 0 {
		result.AddError(fmt.Sprintf("screen_height must be non-negative (got %d)", event.ScreenHeight))
	}

	for _, field := range []struct {
		name  string
		value json.RawMessage
	}{
		{"custom_data", event.CustomData},
		{"bot_data", event.BotData},
		{"query_params", event.QueryParams},
	} {
		if len(field.value) == 0 {
			continue
		}
		if !isJSONObject(field.value) {
			result.AddError(fmt.Sprintf("%s must be a valid JSON object", field.name))
		}
	}

	if !event.CreatedAt.IsZero() {
		if !cfg.MinDate.IsZero() && event.CreatedAt.Before(cfg.MinDate) {
			cfg.report(result, fmt.Sprintf("created_at %s is before minimum date %s",
				event.CreatedAt.Format("2006-01-02"), cfg.MinDate.Format("2006-01-02")))
		}
		if !cfg.MaxDate.IsZero() && event.CreatedAt.After(cfg.MaxDate) {
			cfg.report(result, fmt.Sprintf("created_at %s is after maximum date %s",
				event.CreatedAt.Format("2006-01-02"), cfg.MaxDate.Format("2006-01-02")))
		}
	}

	if result.IsValid {
		result.ValidRecords = 1
	} else {
		result.InvalidRecords = 1
	}

	metrics.ValidationErrorsTotal.Add(float64(len(result.Errors)))
	metrics.ValidationWarningsTotal.Add(float64(len(result.Warnings)))

	return result
}

// ValidateSiteEvents validates a batch. Invalid records never stop the
// batch; each is counted and the caller decides what to drop.
func ValidateSiteEvents(events []models.EventRecord, cfg Config) *models.ValidationResult {
	result := models.NewValidationResult()
	for i := range events {
		one := ValidateSiteEvent(&events[i], cfg)
		for _, e := range one.Errors {
			result.AddError(fmt.Sprintf("record %d: %s", i, e))
		}
		for _, w := range one.Warnings {
			result.AddWarning(fmt.Sprintf("record %d: %s", i, w))
		}
		result.RecordCount++
		result.ValidRecords += one.ValidRecords
		result.InvalidRecords += one.InvalidRecords
	}
	return result
}

// isJSONObject reports whether raw parses as a JSON object. Strings holding
// serialized objects are accepted too, since some legacy rows stored JSON
// double-encoded.
func isJSONObject(raw json.RawMessage) bool {
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return json.Unmarshal([]byte(s), &obj) == nil
	}
	return false
}
