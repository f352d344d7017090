// Package validation checks event records structurally and reconciles
// migrated data between the legacy store and a site's storage actor.
package validation

import "time"

// Config controls validation behavior. It is passed explicitly through
// every call; there is no process-wide mutable default, so concurrent
// callers (and tests) can each run with their own settings.
type Config struct {
	// MaxStringLength bounds every free-text field.
	MaxStringLength int

	// MinDate and MaxDate bound created_at. Violations are warnings
	// unless Strict is set.
	MinDate time.Time
	MaxDate time.Time

	// Strict promotes warnings to errors.
	Strict bool

	// SampleSize is how many records the consistency check compares.
	SampleSize int

	// CountTolerancePct is the reconciliation threshold: differences at or
	// below it are warnings, above it errors.
	CountTolerancePct float64
}

// DefaultConfig returns the production defaults. MaxDate allows a small
// amount of clock skew past now.
func DefaultConfig() Config {
	return Config{
		MaxStringLength:   2000,
		MinDate:           time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		MaxDate:           time.Now().UTC().Add(time.Hour),
		Strict:            false,
		SampleSize:        100,
		CountTolerancePct: 5.0,
	}
}

// report routes a message to warnings or, in strict mode, errors.
func (c Config) report(r interface {
	AddError(string)
	AddWarning(string)
}, msg string) {
	if c.Strict {
		r.AddError(msg)
	} else {
		r.AddWarning(msg)
	}
}
