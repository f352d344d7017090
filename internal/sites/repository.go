// Package sites provides site identity and routing-metadata lookups.
//
// Adapter resolution sits on the hot ingest path, so lookups are cached in
// Redis with a short TTL. The cache is advisory: a site's adapter only
// changes through a migration, never a live toggle, so a stale entry is at
// worst a few minutes behind an offline operation.
package sites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sitepulse-io/sitepulse/internal/adapter"
	"github.com/sitepulse-io/sitepulse/internal/models"
)

// ErrNotFound is returned when a site does not exist.
var ErrNotFound = errors.New("site not found")

// Repository reads site metadata from the shared relational store.
type Repository struct {
	pool  *pgxpool.Pool
	cache *redis.Client
	ttl   time.Duration
}

// NewRepository creates a repository. cache may be nil to disable caching.
func NewRepository(pool *pgxpool.Pool, cache *redis.Client, ttl time.Duration) *Repository {
	return &Repository{pool: pool, cache: cache, ttl: ttl}
}

func cacheKey(siteID int64) string {
	return fmt.Sprintf("sitepulse:site:%d", siteID)
}

// GetSite returns one site by numeric id, consulting the cache first.
func (r *Repository) GetSite(ctx context.Context, siteID int64) (*models.Site, error) {
	if r.cache != nil {
		data, err := r.cache.Get(ctx, cacheKey(siteID)).Result()
		if err == nil {
			var site models.Site
			if err := json.Unmarshal([]byte(data), &site); err == nil {
				return &site, nil
			}
			// Corrupt cache entry; fall through to the database.
		} else if !errors.Is(err, redis.Nil) {
			// Redis being down must not take out adapter resolution.
			_ = err
		}
	}

	site, err := r.getSiteFromDB(ctx, siteID)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if data, err := json.Marshal(site); err == nil {
			_ = r.cache.Set(ctx, cacheKey(siteID), data, r.ttl).Err()
		}
	}
	return site, nil
}

func (r *Repository) getSiteFromDB(ctx context.Context, siteID int64) (*models.Site, error) {
	q := `SELECT id, uuid, tag_id, team_id, db_adapter, domain, gdpr
          FROM sites
          WHERE id = $1`

	var site models.Site
	var adapterName string
	err := r.pool.QueryRow(ctx, q, siteID).Scan(
		&site.ID, &site.UUID, &site.TagID, &site.TeamID, &adapterName, &site.Domain, &site.GDPR,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("site %d: %w", siteID, ErrNotFound)
		}
		return nil, fmt.Errorf("get site %d: %w", siteID, err)
	}

	site.Adapter, err = adapter.Parse(adapterName)
	if err != nil {
		return nil, fmt.Errorf("site %d: %w", siteID, err)
	}
	return &site, nil
}

// GetSitesByTeam returns every site owned by a team, ordered by id.
func (r *Repository) GetSitesByTeam(ctx context.Context, teamID int64) ([]models.Site, error) {
	q := `SELECT id, uuid, tag_id, team_id, db_adapter, domain, gdpr
          FROM sites
          WHERE team_id = $1
          ORDER BY id`

	rows, err := r.pool.Query(ctx, q, teamID)
	if err != nil {
		return nil, fmt.Errorf("list sites for team %d: %w", teamID, err)
	}
	defer rows.Close()

	var out []models.Site
	for rows.Next() {
		var site models.Site
		var adapterName string
		if err := rows.Scan(
			&site.ID, &site.UUID, &site.TagID, &site.TeamID, &adapterName, &site.Domain, &site.GDPR,
		); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		site.Adapter, err = adapter.Parse(adapterName)
		if err != nil {
			return nil, fmt.Errorf("site %d: %w", site.ID, err)
		}
		out = append(out, site)
	}
	return out, rows.Err()
}

// Invalidate drops a site's cache entry. Called after a migration changes
// the site's adapter.
func (r *Repository) Invalidate(ctx context.Context, siteID int64) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(ctx, cacheKey(siteID)).Err()
}
