package router

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitepulse-io/sitepulse/internal/actor"
	"github.com/sitepulse-io/sitepulse/internal/adapter"
	"github.com/sitepulse-io/sitepulse/internal/metrics"
	"github.com/sitepulse-io/sitepulse/internal/models"
	"github.com/sitepulse-io/sitepulse/internal/queue"
)

type mockSites struct {
	sites map[int64]*models.Site
}

func (m *mockSites) GetSite(ctx context.Context, siteID int64) (*models.Site, error) {
	site, ok := m.sites[siteID]
	if !ok {
		return nil, fmt.Errorf("site %d not found", siteID)
	}
	return site, nil
}

type mockActor struct {
	calls [][]models.EventRecord
	err   error
}

func (m *mockActor) InsertEvents(ctx context.Context, events []models.EventRecord) (*actor.InsertResponse, error) {
	m.calls = append(m.calls, events)
	if m.err != nil {
		return nil, m.err
	}
	return &actor.InsertResponse{Success: true, Inserted: len(events)}, nil
}

type mockResolver struct {
	clients map[string]*mockActor
	def     *mockActor
}

func (m *mockResolver) Resolve(siteUUID string) ActorClient {
	if c, ok := m.clients[siteUUID]; ok {
		return c
	}
	return m.def
}

type mockQueue struct {
	single  []queue.Batch
	batched [][]queue.Batch
	err     error
}

func (m *mockQueue) EnqueueDualWrite(ctx context.Context, batch queue.Batch) (*queue.Accepted, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.single = append(m.single, batch)
	return &queue.Accepted{Batches: 1, Events: len(batch.Events)}, nil
}

func (m *mockQueue) EnqueueDualWriteBatch(ctx context.Context, batches []queue.Batch) (*queue.Accepted, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.batched = append(m.batched, batches)
	events := 0
	for _, b := range batches {
		events += len(b.Events)
	}
	return &queue.Accepted{Batches: len(batches), Events: events}, nil
}

func site(id int64, a adapter.Adapter) *models.Site {
	return &models.Site{
		ID:      id,
		UUID:    fmt.Sprintf("uuid-%d", id),
		TagID:   fmt.Sprintf("tag-%d", id),
		TeamID:  1,
		Adapter: a,
	}
}

func events(n int) []models.EventRecord {
	out := make([]models.EventRecord, n)
	for i := range out {
		out[i] = models.EventRecord{Event: "page_view", TagID: "tag"}
	}
	return out
}

func TestRouteInsert_SQLiteGoesDirect(t *testing.T) {
	act := &mockActor{}
	q := &mockQueue{}
	r := New(&mockSites{}, &mockResolver{def: act}, q, nil)

	result := r.RouteInsert(context.Background(), site(1, adapter.SQLite), events(3))

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Inserted)
	assert.Nil(t, result.Accepted)
	require.Len(t, act.calls, 1)
	assert.Empty(t, q.single, "sqlite sites never touch the queue")
}

func TestRouteInsert_LegacyAdaptersEnqueue(t *testing.T) {
	for _, a := range []adapter.Adapter{adapter.Postgres, adapter.SingleStore} {
		act := &mockActor{}
		q := &mockQueue{}
		r := New(&mockSites{}, &mockResolver{def: act}, q, nil)

		result := r.RouteInsert(context.Background(), site(2, a), events(4))

		assert.True(t, result.Success, a.String())
		assert.Equal(t, 4, result.Inserted)
		require.NotNil(t, result.Accepted)
		assert.Equal(t, 4, result.Accepted.Events)
		assert.Empty(t, act.calls, "%s routes through the queue, not the actor", a)
		require.Len(t, q.single, 1)
		assert.Equal(t, "uuid-2", q.single[0].SiteUUID)
	}
}

func TestRouteInsert_UnsupportedAdapterNeverCallsActor(t *testing.T) {
	act := &mockActor{}
	q := &mockQueue{}
	r := New(&mockSites{}, &mockResolver{def: act}, q, nil)

	result := r.RouteInsert(context.Background(), site(3, adapter.AnalyticsEngine), events(2))

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unsupported adapter")
	assert.Empty(t, act.calls)
	assert.Empty(t, q.single)

	result = r.RouteInsert(context.Background(), site(3, adapter.Unknown), events(2))
	assert.False(t, result.Success)
	assert.Empty(t, act.calls)
}

func TestRouteInsert_EmptyBatch(t *testing.T) {
	act := &mockActor{}
	r := New(&mockSites{}, &mockResolver{def: act}, &mockQueue{}, nil)

	result := r.RouteInsert(context.Background(), site(1, adapter.SQLite), nil)

	assert.True(t, result.Success)
	assert.Empty(t, act.calls)
}

func TestRouteInsert_ActorFailure(t *testing.T) {
	act := &mockActor{err: errors.New("actor unavailable")}
	r := New(&mockSites{}, &mockResolver{def: act}, &mockQueue{}, nil)

	result := r.RouteInsert(context.Background(), site(1, adapter.SQLite), events(3))

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "actor unavailable")
	assert.Zero(t, result.Inserted)
}

func TestRouteInsert_QueueFailure(t *testing.T) {
	r := New(&mockSites{}, &mockResolver{def: &mockActor{}}, &mockQueue{err: errors.New("nats down")}, nil)

	result := r.RouteInsert(context.Background(), site(1, adapter.Postgres), events(3))

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "nats down")
}

func TestRouteBatchInsert_Partitions(t *testing.T) {
	direct := &mockActor{}
	sites := &mockSites{sites: map[int64]*models.Site{
		1: site(1, adapter.SQLite),
		2: site(2, adapter.Postgres),
		3: site(3, adapter.SingleStore),
	}}
	q := &mockQueue{}
	r := New(sites, &mockResolver{def: direct}, q, nil)

	results := r.RouteBatchInsert(context.Background(), map[int64][]models.EventRecord{
		1: events(2),
		2: events(3),
		3: events(4),
	})

	require.Len(t, results, 3)
	for id, res := range results {
		assert.True(t, res.Success, "site %d", id)
	}
	assert.Equal(t, 2, results[1].Inserted)
	assert.Equal(t, 3, results[2].Inserted)
	assert.Equal(t, 4, results[3].Inserted)

	require.Len(t, direct.calls, 1, "only the sqlite site hits an actor")
	require.Len(t, q.batched, 1, "queue sites collapse into one batch call")
	assert.Len(t, q.batched[0], 2)
	assert.Empty(t, q.single)
}

func TestRouteBatchInsert_LookupFailureIsolated(t *testing.T) {
	sites := &mockSites{sites: map[int64]*models.Site{
		1: site(1, adapter.SQLite),
	}}
	r := New(sites, &mockResolver{def: &mockActor{}}, &mockQueue{}, nil)

	results := r.RouteBatchInsert(context.Background(), map[int64][]models.EventRecord{
		1:  events(2),
		99: events(1),
	})

	assert.True(t, results[1].Success)
	assert.False(t, results[99].Success)
	assert.Contains(t, results[99].Error, "site lookup")
}

func TestRouteBatchInsert_DirectFailureIsolated(t *testing.T) {
	bad := &mockActor{err: errors.New("site 1 actor down")}
	good := &mockActor{}
	resolver := &mockResolver{
		clients: map[string]*mockActor{"uuid-1": bad},
		def:     good,
	}
	sites := &mockSites{sites: map[int64]*models.Site{
		1: site(1, adapter.SQLite),
		2: site(2, adapter.SQLite),
	}}
	r := New(sites, resolver, &mockQueue{}, nil)

	results := r.RouteBatchInsert(context.Background(), map[int64][]models.EventRecord{
		1: events(2),
		2: events(2),
	})

	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success, "one actor's failure must not fail its siblings")
}

func TestRouteBatchInsert_QueueFailureMarksAllQueueSites(t *testing.T) {
	sites := &mockSites{sites: map[int64]*models.Site{
		1: site(1, adapter.SQLite),
		2: site(2, adapter.Postgres),
		3: site(3, adapter.SingleStore),
	}}
	r := New(sites, &mockResolver{def: &mockActor{}}, &mockQueue{err: errors.New("nats down")}, nil)

	results := r.RouteBatchInsert(context.Background(), map[int64][]models.EventRecord{
		1: events(1),
		2: events(1),
		3: events(1),
	})

	assert.True(t, results[1].Success, "direct writes are unaffected by a queue outage")
	assert.False(t, results[2].Success)
	assert.False(t, results[3].Success)
}

func TestRouteBatchInsert_CountsQueuedEvents(t *testing.T) {
	sites := &mockSites{sites: map[int64]*models.Site{
		2: site(2, adapter.Postgres),
		3: site(3, adapter.SingleStore),
	}}
	r := New(sites, &mockResolver{def: &mockActor{}}, &mockQueue{}, nil)

	pgBefore := testutil.ToFloat64(metrics.EventsRoutedTotal.WithLabelValues("postgres", "ok"))
	ssBefore := testutil.ToFloat64(metrics.EventsRoutedTotal.WithLabelValues("singlestore", "ok"))

	r.RouteBatchInsert(context.Background(), map[int64][]models.EventRecord{
		2: events(3),
		3: events(5),
	})

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.EventsRoutedTotal.WithLabelValues("postgres", "ok"))-pgBefore,
		"batch-routed queue events must hit the routing counter")
	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.EventsRoutedTotal.WithLabelValues("singlestore", "ok"))-ssBefore)
}

func TestRouteBatchInsert_EmptySites(t *testing.T) {
	r := New(&mockSites{}, &mockResolver{def: &mockActor{}}, &mockQueue{}, nil)

	results := r.RouteBatchInsert(context.Background(), map[int64][]models.EventRecord{
		5: {},
	})

	assert.True(t, results[5].Success)
}
