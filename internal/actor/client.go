// Package actor provides the typed client for per-site storage actors.
//
// Each site has exactly one actor, keyed by the site UUID (UUIDs survive
// adapter migrations; numeric ids do not). The actor serializes all
// operations for its site, so the client never has to coordinate writers;
// it treats the actor as the sole arbiter of per-site ordering. Errors are
// carried in response bodies rather than thrown across the boundary.
package actor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sitepulse-io/sitepulse/internal/metrics"
	"github.com/sitepulse-io/sitepulse/internal/models"
)

// Client talks to one site's storage actor over its RPC surface.
type Client struct {
	baseURL    string
	siteUUID   string
	httpClient *http.Client
}

// NewClient builds a client for the actor identified by siteUUID.
// Most callers should resolve clients through a Registry instead.
func NewClient(baseURL, siteUUID string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		siteUUID: siteUUID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SiteUUID returns the actor key this client is bound to.
func (c *Client) SiteUUID() string {
	return c.siteUUID
}

// call performs one RPC round trip. Non-2xx statuses and body-level error
// fields both surface as Go errors; out remains decodable regardless.
func (c *Client) call(ctx context.Context, operation string, in, out interface{}) error {
	start := time.Now()
	err := c.doCall(ctx, operation, in, out)
	metrics.ActorRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ActorErrors.WithLabelValues(operation).Inc()
	}
	return err
}

func (c *Client) doCall(ctx context.Context, operation string, in, out interface{}) error {
	url := fmt.Sprintf("%s/sites/%s/%s", c.baseURL, c.siteUUID, operation)

	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("actor %s status %d: %s", operation, resp.StatusCode, errBody["error"])
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// InsertEvents writes a batch through the single-writer actor and blocks
// until the actor acknowledges.
func (c *Client) InsertEvents(ctx context.Context, events []models.EventRecord) (*InsertResponse, error) {
	req := struct {
		Events []models.EventRecord `json:"events"`
	}{Events: events}

	var out InsertResponse
	if err := c.call(ctx, "insert-events", req, &out); err != nil {
		return &InsertResponse{Error: err.Error()}, err
	}
	if out.Error != "" {
		return &out, fmt.Errorf("insert events: %s", out.Error)
	}
	return &out, nil
}

// GetEventsData returns a paginated raw read.
func (c *Client) GetEventsData(ctx context.Context, req EventsDataRequest) (*EventsDataResponse, error) {
	var out EventsDataResponse
	if err := c.call(ctx, "events-data", req, &out); err != nil {
		return &EventsDataResponse{Events: []models.EventRecord{}, Error: err.Error()}, err
	}
	if out.Events == nil {
		out.Events = []models.EventRecord{}
	}
	if out.Error != "" {
		return &out, fmt.Errorf("get events data: %s", out.Error)
	}
	return &out, nil
}

// GetDashboardAggregates returns every dashboard widget in one round trip.
// On error the response is still fully shaped with empty containers.
func (c *Client) GetDashboardAggregates(ctx context.Context, req AggregatesRequest) (*AggregatesResponse, error) {
	var out AggregatesResponse
	if err := c.call(ctx, "dashboard-aggregates", req, &out); err != nil {
		empty := emptyAggregates(c.siteUUID)
		empty.Error = err.Error()
		return empty, err
	}
	fillAggregateDefaults(&out)
	if out.Error != "" {
		return &out, fmt.Errorf("get dashboard aggregates: %s", out.Error)
	}
	return &out, nil
}

// CountEventsSince returns the actor's event count for a range.
func (c *Client) CountEventsSince(ctx context.Context, req CountRequest) (*CountResponse, error) {
	var out CountResponse
	if err := c.call(ctx, "count-events", req, &out); err != nil {
		return &CountResponse{Error: err.Error()}, err
	}
	if out.Error != "" {
		return &out, fmt.Errorf("count events: %s", out.Error)
	}
	return &out, nil
}

// GetTimeSeries returns bucketed counts at the requested granularity.
func (c *Client) GetTimeSeries(ctx context.Context, req TimeSeriesRequest) (*TimeSeriesResponse, error) {
	var out TimeSeriesResponse
	if err := c.call(ctx, "time-series", req, &out); err != nil {
		return &TimeSeriesResponse{Data: []TimeSeriesPoint{}, Error: err.Error()}, err
	}
	if out.Data == nil {
		out.Data = []TimeSeriesPoint{}
	}
	if out.Error != "" {
		return &out, fmt.Errorf("get time series: %s", out.Error)
	}
	return &out, nil
}

// GetMetrics returns one dimension's top-K rows.
func (c *Client) GetMetrics(ctx context.Context, req MetricsRequest) (*MetricsResponse, error) {
	var out MetricsResponse
	if err := c.call(ctx, "metrics", req, &out); err != nil {
		return &MetricsResponse{MetricType: req.MetricType, Data: []MetricRow{}, Error: err.Error()}, err
	}
	if out.Data == nil {
		out.Data = []MetricRow{}
	}
	if out.Error != "" {
		return &out, fmt.Errorf("get metrics: %s", out.Error)
	}
	return &out, nil
}

// GetEventSummary returns a searchable, sortable event-type summary.
func (c *Client) GetEventSummary(ctx context.Context, req EventSummaryRequest) (*EventSummaryResponse, error) {
	var out EventSummaryResponse
	if err := c.call(ctx, "event-summary", req, &out); err != nil {
		return &EventSummaryResponse{Summary: []EventSummaryRow{}, Error: err.Error()}, err
	}
	if out.Summary == nil {
		out.Summary = []EventSummaryRow{}
	}
	if out.Error != "" {
		return &out, fmt.Errorf("get event summary: %s", out.Error)
	}
	return &out, nil
}

// HealthCheck reports actor liveness and its authoritative event count.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, "health", nil, &out); err != nil {
		return &HealthResponse{Status: "unreachable", Error: err.Error()}, err
	}
	if out.Error != "" {
		return &out, fmt.Errorf("health check: %s", out.Error)
	}
	return &out, nil
}

// DeleteEvents removes events older than the given cutoff.
func (c *Client) DeleteEvents(ctx context.Context, req DeleteRequest) (*DeleteResponse, error) {
	var out DeleteResponse
	if err := c.call(ctx, "delete-events", req, &out); err != nil {
		return &DeleteResponse{Error: err.Error()}, err
	}
	if out.Error != "" {
		return &out, fmt.Errorf("delete events: %s", out.Error)
	}
	return &out, nil
}

func fillAggregateDefaults(out *AggregatesResponse) {
	if out.PageViews == nil {
		out.PageViews = []MetricRow{}
	}
	if out.Events == nil {
		out.Events = []MetricRow{}
	}
	if out.Devices == nil {
		out.Devices = []MetricRow{}
	}
	if out.Cities == nil {
		out.Cities = []MetricRow{}
	}
	if out.Countries == nil {
		out.Countries = []MetricRow{}
	}
	if out.CountryUniques == nil {
		out.CountryUniques = []MetricRow{}
	}
	if out.Regions == nil {
		out.Regions = []MetricRow{}
	}
	if out.Referers == nil {
		out.Referers = []MetricRow{}
	}
	if out.TopPages == nil {
		out.TopPages = []MetricRow{}
	}
	if out.Browsers == nil {
		out.Browsers = []MetricRow{}
	}
	if out.OperatingSystems == nil {
		out.OperatingSystems = []MetricRow{}
	}
}
