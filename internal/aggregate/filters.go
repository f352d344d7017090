// Package aggregate builds grouped-metric queries against the legacy
// relational event table. The dashboard uses it for sites still on
// relational adapters, and migration tooling uses it to cross-check the
// storage actor's query semantics locally.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/sitepulse-io/sitepulse/internal/models"
)

// Filters is the composable filter set shared by every aggregate query.
type Filters struct {
	SiteID      int64
	DateRange   models.DateRange
	EventTypes  []string
	Countries   []string
	DeviceTypes []string
	TagIDs      []string
}

// predicate renders the WHERE clause and its arguments. Single-value
// filters use equality and multi-value filters use ANY; the planner picks
// different indexes for the two forms, so the distinction is deliberate.
func (f Filters) predicate() (string, []interface{}) {
	clauses := []string{"site_id = $1"}
	args := []interface{}{f.SiteID}

	if !f.DateRange.Start.IsZero() {
		args = append(args, f.DateRange.Start)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !f.DateRange.End.IsZero() {
		args = append(args, f.DateRange.End)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	for _, set := range []struct {
		column string
		values []string
	}{
		{"event", f.EventTypes},
		{"country", f.Countries},
		{"device_type", f.DeviceTypes},
		{"tag_id", f.TagIDs},
	} {
		switch len(set.values) {
		case 0:
		case 1:
			args = append(args, set.values[0])
			clauses = append(clauses, fmt.Sprintf("%s = $%d", set.column, len(args)))
		default:
			args = append(args, set.values)
			clauses = append(clauses, fmt.Sprintf("%s = ANY($%d)", set.column, len(args)))
		}
	}

	return strings.Join(clauses, " AND "), args
}
