package validation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sitepulse-io/sitepulse/internal/models"
)

func sampleEvents(n int) []models.EventRecord {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	events := make([]models.EventRecord, n)
	for i := range events {
		events[i] = models.EventRecord{
			Event:      "page_view",
			TagID:      "tag-abc",
			Country:    "NL",
			DeviceType: "desktop",
			Browser:    "Chrome",
			RID:        fmt.Sprintf("rid-%03d", i),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
	}
	return events
}

func TestValidateDataConsistency_Identical(t *testing.T) {
	src := sampleEvents(20)
	dst := sampleEvents(20)

	result := ValidateDataConsistency(src, dst, DefaultConfig())

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 20, result.ValidRecords)
}

func TestValidateDataConsistency_ReorderedDestination(t *testing.T) {
	src := sampleEvents(20)
	dst := sampleEvents(20)
	// Reverse the destination; the natural-key sort must realign it.
	for i, j := 0, len(dst)-1; i < j; i, j = i+1, j-1 {
		dst[i], dst[j] = dst[j], dst[i]
	}

	result := ValidateDataConsistency(src, dst, DefaultConfig())

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Warnings)
}

func TestValidateDataConsistency_MismatchIsWarningOnly(t *testing.T) {
	src := sampleEvents(10)
	dst := sampleEvents(10)
	dst[3].Country = "US"

	result := ValidateDataConsistency(src, dst, DefaultConfig())

	assert.True(t, result.IsValid, "consistency drift never fails a site")
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "country")
	assert.Equal(t, 1, result.InvalidRecords)
	assert.Equal(t, 9, result.ValidRecords)
}

func TestValidateDataConsistency_SampleSizeCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleSize = 5

	src := sampleEvents(50)
	dst := sampleEvents(50)
	dst[40].Browser = "Safari" // beyond the sample window

	result := ValidateDataConsistency(src, dst, cfg)

	assert.Equal(t, 5, result.RecordCount)
	assert.Empty(t, result.Warnings)
}

func TestValidateDataConsistency_ShortSides(t *testing.T) {
	src := sampleEvents(8)
	dst := sampleEvents(3)

	result := ValidateDataConsistency(src, dst, DefaultConfig())
	assert.Equal(t, 3, result.RecordCount, "sample shrinks to the shorter side")

	empty := ValidateDataConsistency(nil, dst, DefaultConfig())
	assert.True(t, empty.IsValid)
	assert.Equal(t, 0, empty.RecordCount)
}

func TestValidateDataConsistency_SuppressesNoise(t *testing.T) {
	src := sampleEvents(30)
	dst := sampleEvents(30)
	for i := range dst {
		dst[i].Browser = "Edge"
	}

	result := ValidateDataConsistency(src, dst, DefaultConfig())

	assert.Equal(t, 30, result.InvalidRecords)
	// 10 detailed warnings plus one suppression note.
	assert.Len(t, result.Warnings, 11)
	assert.Contains(t, result.Warnings[10], "suppressed")
}
