package models

import "github.com/sitepulse-io/sitepulse/internal/adapter"

// Site holds identity and routing metadata for one customer site.
// Adapter is routing truth at write time; changing it requires a
// migration, never a live toggle.
type Site struct {
	ID      int64           `json:"id"`
	UUID    string          `json:"uuid"`
	TagID   string          `json:"tag_id"`
	TeamID  int64           `json:"team_id"`
	Adapter adapter.Adapter `json:"db_adapter"`
	Domain  string          `json:"domain,omitempty"`
	GDPR    bool            `json:"gdpr"`
}
