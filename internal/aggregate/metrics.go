package aggregate

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTopK is the row limit for dimension metrics when none is given.
const DefaultTopK = 10

// MetricRow is one grouped dimension value with its share of the filtered
// total (not the unfiltered grand total).
type MetricRow struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Builder executes aggregate queries on the legacy event table.
type Builder struct {
	pool *pgxpool.Pool
}

// NewBuilder creates a Builder on an existing pool.
func NewBuilder(pool *pgxpool.Pool) *Builder {
	return &Builder{pool: pool}
}

// dimension columns exposed as metrics. Keys double as the public
// metricType names.
var dimensionColumns = map[string]string{
	"event":       "event",
	"country":     "country",
	"device_type": "device_type",
	"referer":     "referer",
	"page":        "page_url",
}

// TotalEvents returns the count of events matching the filters.
func (b *Builder) TotalEvents(ctx context.Context, f Filters) (int, error) {
	pred, args := f.predicate()
	var count int
	err := b.pool.QueryRow(ctx, "SELECT COUNT(*) FROM events WHERE "+pred, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("total events: %w", err)
	}
	return count, nil
}

// UniqueVisitors returns the number of distinct pseudonymous visitor ids
// matching the filters.
func (b *Builder) UniqueVisitors(ctx context.Context, f Filters) (int, error) {
	pred, args := f.predicate()
	var count int
	err := b.pool.QueryRow(ctx, "SELECT COUNT(DISTINCT rid) FROM events WHERE "+pred, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("unique visitors: %w", err)
	}
	return count, nil
}

// DimensionMetrics groups the filtered events by one dimension, counts,
// sorts descending and takes the top K rows. Percentages are computed
// against the filtered total.
func (b *Builder) DimensionMetrics(ctx context.Context, f Filters, metricType string, limit int) ([]MetricRow, error) {
	column, ok := dimensionColumns[metricType]
	if !ok {
		return nil, fmt.Errorf("unknown metric type %q", metricType)
	}
	if limit <= 0 {
		limit = DefaultTopK
	}

	total, err := b.TotalEvents(ctx, f)
	if err != nil {
		return nil, err
	}

	pred, args := f.predicate()
	args = append(args, limit)
	q := fmt.Sprintf(
		`SELECT %[1]s, COUNT(*) AS cnt
         FROM events
         WHERE %[2]s AND %[1]s <> ''
         GROUP BY %[1]s
         ORDER BY cnt DESC, %[1]s
         LIMIT $%[3]d`,
		column, pred, len(args),
	)

	rows, err := b.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s metrics: %w", metricType, err)
	}
	defer rows.Close()

	out := []MetricRow{}
	for rows.Next() {
		var row MetricRow
		if err := rows.Scan(&row.Key, &row.Count); err != nil {
			return nil, fmt.Errorf("scan %s metric: %w", metricType, err)
		}
		row.Percentage = percentage(row.Count, total)
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetEventTypeMetrics returns the top event types.
func (b *Builder) GetEventTypeMetrics(ctx context.Context, f Filters, limit int) ([]MetricRow, error) {
	return b.DimensionMetrics(ctx, f, "event", limit)
}

// GetCountryMetrics returns the top countries.
func (b *Builder) GetCountryMetrics(ctx context.Context, f Filters, limit int) ([]MetricRow, error) {
	return b.DimensionMetrics(ctx, f, "country", limit)
}

// GetDeviceTypeMetrics returns the top device types.
func (b *Builder) GetDeviceTypeMetrics(ctx context.Context, f Filters, limit int) ([]MetricRow, error) {
	return b.DimensionMetrics(ctx, f, "device_type", limit)
}

// GetRefererMetrics returns the top referers.
func (b *Builder) GetRefererMetrics(ctx context.Context, f Filters, limit int) ([]MetricRow, error) {
	return b.DimensionMetrics(ctx, f, "referer", limit)
}

// GetPageMetrics returns the top pages.
func (b *Builder) GetPageMetrics(ctx context.Context, f Filters, limit int) ([]MetricRow, error) {
	return b.DimensionMetrics(ctx, f, "page", limit)
}

// percentage returns count as a share of total, rounded to two decimals.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*10000) / 100
}
