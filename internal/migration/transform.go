package migration

import (
	"github.com/sitepulse-io/sitepulse/internal/models"
)

// transformEvents converts legacy rows into the storage actor's input
// shape. The actor derives site and team identity from its own key, so row
// ids are stripped; timestamps are normalized to UTC; JSON payload fields
// pass through verbatim.
func transformEvents(events []models.EventRecord) []models.EventRecord {
	out := make([]models.EventRecord, len(events))
	for i, e := range events {
		e.ID = 0
		if !e.CreatedAt.IsZero() {
			e.CreatedAt = e.CreatedAt.UTC()
		}
		out[i] = e
	}
	return out
}

// batchCount returns ceil(n/size).
func batchCount(n, size int) int {
	if n == 0 {
		return 0
	}
	return (n + size - 1) / size
}

// splitBatches cuts events into fixed-size chunks, preserving order.
func splitBatches(events []models.EventRecord, size int) [][]models.EventRecord {
	var out [][]models.EventRecord
	for start := 0; start < len(events); start += size {
		end := start + size
		if end > len(events) {
			end = len(events)
		}
		out = append(out, events[start:end])
	}
	return out
}
