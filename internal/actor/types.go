package actor

import (
	"github.com/sitepulse-io/sitepulse/internal/models"
)

// InsertResponse reports how many events the actor accepted.
type InsertResponse struct {
	Success  bool   `json:"success"`
	Inserted int    `json:"inserted"`
	Error    string `json:"error,omitempty"`
}

// EventsDataRequest selects a paginated raw read.
type EventsDataRequest struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// EventsDataResponse is a paginated raw read result.
type EventsDataResponse struct {
	Events       []models.EventRecord `json:"events"`
	Pagination   models.Pagination    `json:"pagination"`
	TotalAllTime int                  `json:"totalAllTime,omitempty"`
	Error        string               `json:"error,omitempty"`
}

// AggregatesRequest carries every dashboard filter in one round trip.
type AggregatesRequest struct {
	StartDate      string `json:"startDate,omitempty"`
	EndDate        string `json:"endDate,omitempty"`
	EndDateIsExact bool   `json:"endDateIsExact,omitempty"`
	Timezone       string `json:"timezone,omitempty"`
	Country        string `json:"country,omitempty"`
	DeviceType     string `json:"deviceType,omitempty"`
	Source         string `json:"source,omitempty"`
	PageURL        string `json:"pageUrl,omitempty"`
	City           string `json:"city,omitempty"`
	Region         string `json:"region,omitempty"`
	Event          string `json:"event,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}

// MetricRow is one grouped row in a dashboard widget.
type MetricRow struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage,omitempty"`
}

// ScoreCards holds the headline dashboard numbers.
type ScoreCards struct {
	PageViews      int `json:"pageViews"`
	UniqueVisitors int `json:"uniqueVisitors"`
	CustomEvents   int `json:"customEvents"`
	TotalEvents    int `json:"totalEvents"`
}

// AggregatesResponse returns every dashboard widget in one payload so the
// dashboard never issues N+1 actor calls.
type AggregatesResponse struct {
	ScoreCards       ScoreCards           `json:"scoreCards"`
	PageViews        []MetricRow          `json:"pageViews"`
	Events           []MetricRow          `json:"events"`
	Devices          []MetricRow          `json:"devices"`
	Cities           []MetricRow          `json:"cities"`
	Countries        []MetricRow          `json:"countries"`
	CountryUniques   []MetricRow          `json:"countryUniques"`
	Regions          []MetricRow          `json:"regions"`
	Referers         []MetricRow          `json:"referers"`
	TopPages         []MetricRow          `json:"topPages"`
	Browsers         []MetricRow          `json:"browsers"`
	OperatingSystems []MetricRow          `json:"operatingSystems"`
	Pagination       models.Pagination    `json:"pagination"`
	TotalEvents      int                  `json:"totalEvents"`
	TotalAllTime     int                  `json:"totalAllTime"`
	SiteID           string               `json:"siteId,omitempty"`
	DateRange        *models.DateRange    `json:"dateRange,omitempty"`
	Error            string               `json:"error,omitempty"`
}

// emptyAggregates returns a fully shaped response so downstream rendering
// never null-checks individual widgets after an actor error.
func emptyAggregates(siteID string) *AggregatesResponse {
	return &AggregatesResponse{
		PageViews:        []MetricRow{},
		Events:           []MetricRow{},
		Devices:          []MetricRow{},
		Cities:           []MetricRow{},
		Countries:        []MetricRow{},
		CountryUniques:   []MetricRow{},
		Regions:          []MetricRow{},
		Referers:         []MetricRow{},
		TopPages:         []MetricRow{},
		Browsers:         []MetricRow{},
		OperatingSystems: []MetricRow{},
		SiteID:           siteID,
	}
}

// CountRequest bounds a count query. StartDate is required.
type CountRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate,omitempty"`
}

// CountResponse carries an event count for a range.
type CountResponse struct {
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// TimeSeriesRequest selects bucketed counts.
type TimeSeriesRequest struct {
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Granularity string `json:"granularity,omitempty"`
	ByEvent     bool   `json:"byEvent,omitempty"`
}

// TimeSeriesPoint is one bucket in a time series.
type TimeSeriesPoint struct {
	Bucket string         `json:"bucket"`
	Count  int            `json:"count"`
	Series map[string]int `json:"series,omitempty"`
}

// TimeSeriesResponse carries bucketed counts, optionally split by event type.
type TimeSeriesResponse struct {
	Data        []TimeSeriesPoint `json:"data"`
	Granularity string            `json:"granularity"`
	ByEvent     bool              `json:"byEvent"`
	SiteID      string            `json:"siteId,omitempty"`
	DateRange   *models.DateRange `json:"dateRange,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// MetricsRequest selects one top-K dimension.
type MetricsRequest struct {
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
	MetricType string `json:"metricType"`
	Limit      int    `json:"limit,omitempty"`
}

// MetricsResponse carries one dimension's top-K rows.
type MetricsResponse struct {
	MetricType string            `json:"metricType"`
	Data       []MetricRow       `json:"data"`
	SiteID     string            `json:"siteId,omitempty"`
	DateRange  *models.DateRange `json:"dateRange,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// EventSummaryRequest selects a searchable, sortable event-type summary.
type EventSummaryRequest struct {
	StartDate     string `json:"startDate,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
	Search        string `json:"search,omitempty"`
	Type          string `json:"type,omitempty"`
	Action        string `json:"action,omitempty"`
	SortBy        string `json:"sortBy,omitempty"`
	SortDirection string `json:"sortDirection,omitempty"`
}

// EventSummaryRow summarizes one event type.
type EventSummaryRow struct {
	Event     string `json:"event"`
	Count     int    `json:"count"`
	FirstSeen string `json:"firstSeen,omitempty"`
	LastSeen  string `json:"lastSeen,omitempty"`
}

// EventSummaryResponse is a paged event-type summary.
type EventSummaryResponse struct {
	Summary         []EventSummaryRow `json:"summary"`
	Pagination      models.Pagination `json:"pagination"`
	TotalEvents     int               `json:"totalEvents"`
	TotalEventTypes int               `json:"totalEventTypes"`
	SiteID          string            `json:"siteId,omitempty"`
	DateRange       *models.DateRange `json:"dateRange,omitempty"`
	Error           string            `json:"error,omitempty"`
}

// HealthResponse reports actor liveness and its authoritative event count.
type HealthResponse struct {
	Status      string `json:"status"`
	SiteID      string `json:"siteId,omitempty"`
	TotalEvents int    `json:"totalEvents"`
	Timestamp   string `json:"timestamp"`
	Error       string `json:"error,omitempty"`
}

// DeleteRequest removes events older than the given RFC3339 timestamp.
type DeleteRequest struct {
	OlderThan string `json:"olderThan"`
}

// DeleteResponse reports how many events were removed.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Deleted int    `json:"deleted"`
	Error   string `json:"error,omitempty"`
}
