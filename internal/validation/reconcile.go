package validation

import (
	"fmt"

	"github.com/sitepulse-io/sitepulse/internal/models"
)

// ValidateRecordCounts compares the legacy count against the actor-reported
// count. A difference at or below the tolerance is a warning; above it, an
// error. An original count of zero with any actor events counts as a 100%
// difference; zero on both sides is trivially valid.
func ValidateRecordCounts(original, actual int, cfg Config) *models.ValidationResult {
	result := models.NewValidationResult()
	result.RecordCount = original

	if original == actual {
		result.ValidRecords = actual
		return result
	}

	var diffPct float64
	if original == 0 {
		if actual == 0 {
			return result
		}
		diffPct = 100
	} else {
		diff := original - actual
		if diff < 0 {
			diff = -diff
		}
		diffPct = float64(diff) / float64(original) * 100
	}

	msg := fmt.Sprintf("record count mismatch: original=%d actual=%d (%.2f%% difference)",
		original, actual, diffPct)

	if diffPct > cfg.CountTolerancePct {
		result.AddError(msg)
	} else {
		result.AddWarning(msg)
	}
	return result
}
