// Package store is the legacy relational event store.
//
// Sites on the postgres and singlestore adapters keep this table as their
// writer-of-record; migrated sites only touch it during the dual-write
// window and as the read source for migration.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitepulse-io/sitepulse/internal/models"
)

// EventStore reads and writes the shared events table.
type EventStore struct {
	pool *pgxpool.Pool
}

// New creates an EventStore on an existing pool.
func New(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Connect opens a pool and verifies connectivity.
func Connect(ctx context.Context, connString string) (*EventStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &EventStore{pool: pool}, nil
}

// Pool exposes the underlying pool for read-side query builders.
func (s *EventStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Close releases the pool.
func (s *EventStore) Close() {
	s.pool.Close()
}

const eventColumns = `id, event, tag_id, browser, operating_system, device_type,
       country, region, city, postal, referer, page_url, client_page_url,
       screen_width, screen_height, rid, custom_data, bot_data, query_params, created_at`

func scanEvent(row pgx.Row) (models.EventRecord, error) {
	var e models.EventRecord
	err := row.Scan(
		&e.ID, &e.Event, &e.TagID, &e.Browser, &e.OperatingSystem, &e.DeviceType,
		&e.Country, &e.Region, &e.City, &e.PostalCode, &e.Referer, &e.PageURL,
		&e.ClientPageURL, &e.ScreenWidth, &e.ScreenHeight, &e.RID,
		&e.CustomData, &e.BotData, &e.QueryParams, &e.CreatedAt,
	)
	return e, err
}

// ReadSiteEvents returns all events for a site ordered by creation time.
// Migration reads in one pass; chunking happens at write time.
func (s *EventStore) ReadSiteEvents(ctx context.Context, siteID int64) ([]models.EventRecord, error) {
	q := `SELECT ` + eventColumns + `
          FROM events
          WHERE site_id = $1
          ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, q, siteID)
	if err != nil {
		return nil, fmt.Errorf("read events for site %d: %w", siteID, err)
	}
	defer rows.Close()

	var out []models.EventRecord
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountSiteEvents returns the number of stored events for a site.
func (s *EventStore) CountSiteEvents(ctx context.Context, siteID int64) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE site_id = $1`, siteID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events for site %d: %w", siteID, err)
	}
	return count, nil
}

// InsertSiteEvents writes a batch of events for a site and team.
func (s *EventStore) InsertSiteEvents(ctx context.Context, siteID, teamID int64, events []models.EventRecord) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	q := `INSERT INTO events (
            team_id, site_id, event, tag_id, browser, operating_system, device_type,
            country, region, city, postal, referer, page_url, client_page_url,
            screen_width, screen_height, rid, custom_data, bot_data, query_params, created_at
          ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`

	now := time.Now().UTC()
	for i := range events {
		e := &events[i]
		e.Normalize(now)
		batch.Queue(q,
			teamID, siteID, e.Event, e.TagID, e.Browser, e.OperatingSystem, e.DeviceType,
			e.Country, e.Region, e.City, e.PostalCode, e.Referer, e.PageURL, e.ClientPageURL,
			e.ScreenWidth, e.ScreenHeight, e.RID, e.CustomData, e.BotData, e.QueryParams, e.CreatedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range events {
		if _, err := br.Exec(); err != nil {
			return inserted, fmt.Errorf("insert event batch for site %d: %w", siteID, err)
		}
		inserted++
	}
	return inserted, nil
}

// DeleteSiteEvents removes all of a site's rows. Only the migration cleanup
// path calls this, and only after verification.
func (s *EventStore) DeleteSiteEvents(ctx context.Context, siteID int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM events WHERE site_id = $1`, siteID)
	if err != nil {
		return 0, fmt.Errorf("delete events for site %d: %w", siteID, err)
	}
	return tag.RowsAffected(), nil
}
