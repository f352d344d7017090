package aggregate

import (
	"context"
	"fmt"
	"sync"
)

// DashboardSummary assembles the read-side dashboard in one object.
type DashboardSummary struct {
	TotalEvents    int         `json:"total_events"`
	UniqueVisitors int         `json:"unique_visitors"`
	EventTypes     []MetricRow `json:"event_types"`
	Countries      []MetricRow `json:"countries"`
	DeviceTypes    []MetricRow `json:"device_types"`
	Referers       []MetricRow `json:"referers"`
}

// GetDashboardSummary runs the total count, the unique-visitor count and the
// four top-K metric queries in parallel. The queries are independent and
// read-only, so the read side fans out freely; only the write side is
// serialized per site.
func (b *Builder) GetDashboardSummary(ctx context.Context, f Filters, topK int) (*DashboardSummary, error) {
	summary := &DashboardSummary{
		EventTypes:  []MetricRow{},
		Countries:   []MetricRow{},
		DeviceTypes: []MetricRow{},
		Referers:    []MetricRow{},
	}

	var wg sync.WaitGroup
	errs := make([]error, 6)

	wg.Add(6)
	go func() {
		defer wg.Done()
		summary.TotalEvents, errs[0] = b.TotalEvents(ctx, f)
	}()
	go func() {
		defer wg.Done()
		summary.UniqueVisitors, errs[1] = b.UniqueVisitors(ctx, f)
	}()
	go func() {
		defer wg.Done()
		summary.EventTypes, errs[2] = b.GetEventTypeMetrics(ctx, f, topK)
	}()
	go func() {
		defer wg.Done()
		summary.Countries, errs[3] = b.GetCountryMetrics(ctx, f, topK)
	}()
	go func() {
		defer wg.Done()
		summary.DeviceTypes, errs[4] = b.GetDeviceTypeMetrics(ctx, f, topK)
	}()
	go func() {
		defer wg.Done()
		summary.Referers, errs[5] = b.GetRefererMetrics(ctx, f, topK)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("dashboard summary: %w", err)
		}
	}
	return summary, nil
}
