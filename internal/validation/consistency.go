package validation

import (
	"fmt"
	"sort"

	"github.com/sitepulse-io/sitepulse/internal/models"
)

// keyFields are the columns the sampled consistency check compares.
var keyFields = []string{"event", "tag_id", "country", "device_type", "browser"}

// ValidateDataConsistency compares the first cfg.SampleSize records of the
// source and destination positionally on a fixed key-field set.
//
// This is a heuristic, not a correctness proof: neither store guarantees a
// stable order when queried independently. Both samples are sorted by
// (created_at, event, rid) first to cut down false positives, and every
// mismatch is reported as a warning, never an error.
func ValidateDataConsistency(source, destination []models.EventRecord, cfg Config) *models.ValidationResult {
	result := models.NewValidationResult()

	n := cfg.SampleSize
	if n <= 0 {
		n = 100
	}
	if len(source) < n {
		n = len(source)
	}
	if len(destination) < n {
		n = len(destination)
	}
	result.RecordCount = n

	if n == 0 {
		return result
	}

	src := sortedSample(source, n)
	dst := sortedSample(destination, n)

	mismatches := 0
	for i := 0; i < n; i++ {
		if diff := compareKeyFields(&src[i], &dst[i]); diff != "" {
			mismatches++
			if mismatches <= 10 {
				result.AddWarning(fmt.Sprintf("sample record %d differs: %s", i, diff))
			}
		} else {
			result.ValidRecords++
		}
	}
	if mismatches > 10 {
		result.AddWarning(fmt.Sprintf("%d further sample mismatches suppressed", mismatches-10))
	}
	result.InvalidRecords = mismatches

	return result
}

// sortedSample copies the first n records and sorts them by a stable
// natural key so positional comparison lines up across stores.
func sortedSample(events []models.EventRecord, n int) []models.EventRecord {
	sample := make([]models.EventRecord, n)
	copy(sample, events[:n])
	sort.Slice(sample, func(i, j int) bool {
		a, b := &sample[i], &sample[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.Event != b.Event {
			return a.Event < b.Event
		}
		return a.RID < b.RID
	})
	return sample
}

func compareKeyFields(a, b *models.EventRecord) string {
	for _, field := range keyFields {
		av, bv := keyFieldValue(a, field), keyFieldValue(b, field)
		if av != bv {
			return fmt.Sprintf("%s %q != %q", field, av, bv)
		}
	}
	return ""
}

func keyFieldValue(e *models.EventRecord, field string) string {
	switch field {
	case "event":
		return e.Event
	case "tag_id":
		return e.TagID
	case "country":
		return e.Country
	case "device_type":
		return e.DeviceType
	case "browser":
		return e.Browser
	default:
		return ""
	}
}
