// Package adapter defines the closed set of per-site storage adapters.
//
// The adapter is resolved once per site at write time and routed on with an
// exhaustive switch, so adding an adapter is a compile-visible change rather
// than a silent runtime miss.
package adapter

import "fmt"

// Adapter identifies which backing store holds a site's events.
type Adapter int

const (
	// Unknown is the zero value; it never routes.
	Unknown Adapter = iota
	// SQLite routes writes directly to the site's storage actor.
	SQLite
	// Postgres keeps the shared relational store authoritative and
	// dual-writes through the queue.
	Postgres
	// SingleStore behaves like Postgres with a different legacy backend.
	SingleStore
	// AnalyticsEngine is a write-only columnar sink consumed outside this
	// core; the router rejects it explicitly.
	AnalyticsEngine
)

const (
	nameSQLite          = "sqlite"
	namePostgres        = "postgres"
	nameSingleStore     = "singlestore"
	nameAnalyticsEngine = "analytics_engine"
)

// Parse converts a stored adapter string into an Adapter.
// Unknown strings are an error; callers must not default them.
func Parse(s string) (Adapter, error) {
	switch s {
	case nameSQLite:
		return SQLite, nil
	case namePostgres:
		return Postgres, nil
	case nameSingleStore:
		return SingleStore, nil
	case nameAnalyticsEngine:
		return AnalyticsEngine, nil
	default:
		return Unknown, fmt.Errorf("unsupported adapter %q", s)
	}
}

// String returns the canonical stored form.
func (a Adapter) String() string {
	switch a {
	case SQLite:
		return nameSQLite
	case Postgres:
		return namePostgres
	case SingleStore:
		return nameSingleStore
	case AnalyticsEngine:
		return nameAnalyticsEngine
	default:
		return "unknown"
	}
}

// UsesLegacyStore reports whether the shared relational store is still
// authoritative for a site on this adapter.
func (a Adapter) UsesLegacyStore() bool {
	return a == Postgres || a == SingleStore
}

// MarshalJSON encodes the adapter as its canonical string.
func (a Adapter) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON decodes the canonical string form.
func (a *Adapter) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("adapter must be a JSON string")
	}
	parsed, err := Parse(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
