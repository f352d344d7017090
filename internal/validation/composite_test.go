package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSiteMigration_Clean(t *testing.T) {
	src := sampleEvents(10)
	dst := sampleEvents(10)

	result := ValidateSiteMigration(src, dst, 10, 10, DefaultConfig())

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 10, result.RecordCount)
}

func TestValidateSiteMigration_UnionsPhaseFailures(t *testing.T) {
	src := sampleEvents(10)
	dst := sampleEvents(10)
	dst[0].Event = ""       // structural error
	dst[4].Country = "BR"   // consistency warning

	result := ValidateSiteMigration(src, dst, 10, 8, DefaultConfig())

	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.Errors, "structural failure must surface")
	assert.NotEmpty(t, result.Warnings, "count drift and consistency drift surface as warnings")
	assert.Equal(t, 10, result.RecordCount, "reports the site total, not phase sums")
}
