package validation

import (
	"github.com/sitepulse-io/sitepulse/internal/models"
)

// ValidateSiteMigration runs structural validation over the destination
// sample, count reconciliation and the sampled consistency check, and
// unions their errors and warnings. A site passes only if zero errors
// accumulate across all three phases.
func ValidateSiteMigration(source, destination []models.EventRecord, originalCount, actualCount int, cfg Config) *models.ValidationResult {
	result := models.NewValidationResult()

	structural := ValidateSiteEvents(destination, cfg)
	counts := ValidateRecordCounts(originalCount, actualCount, cfg)
	consistency := ValidateDataConsistency(source, destination, cfg)

	result.Merge(structural)
	result.Merge(counts)
	result.Merge(consistency)

	// Merge sums phase record counts; report the site's real total instead.
	result.RecordCount = originalCount

	return result
}
