package actor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitepulse-io/sitepulse/internal/models"
)

const testUUID = "3f1c8a2e-6d2b-4c5a-9f0e-1b2c3d4e5f60"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, testUUID, 5*time.Second)
}

func TestInsertEvents(t *testing.T) {
	var gotPath string
	var gotBody struct {
		Events []models.EventRecord `json:"events"`
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(InsertResponse{Success: true, Inserted: len(gotBody.Events)})
	})

	resp, err := c.InsertEvents(context.Background(), []models.EventRecord{
		{Event: "page_view", TagID: "tag-1"},
		{Event: "click", TagID: "tag-1"},
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Inserted)
	assert.Equal(t, "/sites/"+testUUID+"/insert-events", gotPath)
	assert.Len(t, gotBody.Events, 2)
}

func TestInsertEvents_BodyError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(InsertResponse{Error: "disk full"})
	})

	resp, err := c.InsertEvents(context.Background(), []models.EventRecord{{Event: "e", TagID: "t"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NotNil(t, resp, "response stays decodable on body-level errors")
	assert.Equal(t, "disk full", resp.Error)
}

func TestInsertEvents_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "actor crashed"})
	})

	resp, err := c.InsertEvents(context.Background(), []models.EventRecord{{Event: "e", TagID: "t"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "actor crashed")
	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.Error)
}

func TestGetDashboardAggregates_FillsDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Only score cards; every widget slice omitted.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"scoreCards": ScoreCards{PageViews: 10, TotalEvents: 12},
		})
	})

	resp, err := c.GetDashboardAggregates(context.Background(), AggregatesRequest{})

	require.NoError(t, err)
	assert.Equal(t, 10, resp.ScoreCards.PageViews)
	assert.NotNil(t, resp.PageViews)
	assert.NotNil(t, resp.Events)
	assert.NotNil(t, resp.Countries)
	assert.NotNil(t, resp.Browsers)
	assert.NotNil(t, resp.OperatingSystems)
}

func TestGetDashboardAggregates_ErrorStaysShaped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	resp, err := c.GetDashboardAggregates(context.Background(), AggregatesRequest{})

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, testUUID, resp.SiteID)
	assert.NotNil(t, resp.Devices, "error responses keep empty containers, never nils")
	assert.NotEmpty(t, resp.Error)
}

func TestGetEventsData_NilEventsBecomeEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"pagination": models.Pagination{Limit: 50}})
	})

	resp, err := c.GetEventsData(context.Background(), EventsDataRequest{Limit: 50})

	require.NoError(t, err)
	assert.NotNil(t, resp.Events)
	assert.Empty(t, resp.Events)
}

func TestCountEventsSince(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req CountRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2024-01-01T00:00:00Z", req.StartDate)
		json.NewEncoder(w).Encode(CountResponse{Count: 321})
	})

	resp, err := c.CountEventsSince(context.Background(), CountRequest{StartDate: "2024-01-01T00:00:00Z"})

	require.NoError(t, err)
	assert.Equal(t, 321, resp.Count)
}

func TestHealthCheck(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sites/"+testUUID+"/health", r.URL.Path)
		json.NewEncoder(w).Encode(HealthResponse{Status: "ok", TotalEvents: 1234})
	})

	resp, err := c.HealthCheck(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1234, resp.TotalEvents)
}

func TestHealthCheck_Unreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close() // refuse connections
	c := NewClient(srv.URL, testUUID, time.Second)

	resp, err := c.HealthCheck(context.Background())

	require.Error(t, err)
	assert.Equal(t, "unreachable", resp.Status)
}

func TestDeleteEvents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req DeleteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2023-01-01T00:00:00Z", req.OlderThan)
		json.NewEncoder(w).Encode(DeleteResponse{Success: true, Deleted: 17})
	})

	resp, err := c.DeleteEvents(context.Background(), DeleteRequest{OlderThan: "2023-01-01T00:00:00Z"})

	require.NoError(t, err)
	assert.Equal(t, 17, resp.Deleted)
}
