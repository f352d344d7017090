package aggregate

import (
	"context"
	"fmt"
	"time"
)

// Granularity is a supported time-series bucket width.
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// truncExpr returns the date_trunc expression for a granularity. A single
// truncation expression covers all four widths.
func truncExpr(g Granularity) (string, error) {
	switch g {
	case GranularityHour, GranularityDay, GranularityWeek, GranularityMonth:
		return fmt.Sprintf("date_trunc('%s', created_at)", g), nil
	default:
		return "", fmt.Errorf("unsupported granularity %q", g)
	}
}

// TimeSeriesPoint is one bucket of counts.
type TimeSeriesPoint struct {
	Bucket time.Time      `json:"bucket"`
	Count  int            `json:"count"`
	Series map[string]int `json:"series,omitempty"`
}

// GetTimeSeries buckets the filtered events by the given granularity.
func (b *Builder) GetTimeSeries(ctx context.Context, f Filters, g Granularity) ([]TimeSeriesPoint, error) {
	trunc, err := truncExpr(g)
	if err != nil {
		return nil, err
	}

	pred, args := f.predicate()
	q := fmt.Sprintf(
		`SELECT %[1]s AS bucket, COUNT(*)
         FROM events
         WHERE %[2]s
         GROUP BY bucket
         ORDER BY bucket`,
		trunc, pred,
	)

	rows, err := b.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("time series: %w", err)
	}
	defer rows.Close()

	out := []TimeSeriesPoint{}
	for rows.Next() {
		var p TimeSeriesPoint
		if err := rows.Scan(&p.Bucket, &p.Count); err != nil {
			return nil, fmt.Errorf("scan time series: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetEventTimeSeriesByType buckets by the top-K event types and time
// simultaneously. It reuses the same top-K selection as the event-type
// metric so chart legends stay consistent with the metric widget.
func (b *Builder) GetEventTimeSeriesByType(ctx context.Context, f Filters, g Granularity, topK int) ([]TimeSeriesPoint, error) {
	trunc, err := truncExpr(g)
	if err != nil {
		return nil, err
	}

	topRows, err := b.GetEventTypeMetrics(ctx, f, topK)
	if err != nil {
		return nil, err
	}
	if len(topRows) == 0 {
		return []TimeSeriesPoint{}, nil
	}

	topEvents := make([]string, len(topRows))
	for i, row := range topRows {
		topEvents[i] = row.Key
	}

	pred, args := f.predicate()
	args = append(args, topEvents)
	q := fmt.Sprintf(
		`SELECT %[1]s AS bucket, event, COUNT(*)
         FROM events
         WHERE %[2]s AND event = ANY($%[3]d)
         GROUP BY bucket, event
         ORDER BY bucket, event`,
		trunc, pred, len(args),
	)

	rows, err := b.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("time series by type: %w", err)
	}
	defer rows.Close()

	out := []TimeSeriesPoint{}
	var current *TimeSeriesPoint
	for rows.Next() {
		var bucket time.Time
		var event string
		var count int
		if err := rows.Scan(&bucket, &event, &count); err != nil {
			return nil, fmt.Errorf("scan time series by type: %w", err)
		}
		if current == nil || !current.Bucket.Equal(bucket) {
			out = append(out, TimeSeriesPoint{Bucket: bucket, Series: map[string]int{}})
			current = &out[len(out)-1]
		}
		current.Series[event] = count
		current.Count += count
	}
	return out, rows.Err()
}
