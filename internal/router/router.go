// Package router decides where an event batch is written based on the
// site's configured storage adapter.
//
// Sites on the sqlite adapter write synchronously through their storage
// actor. Sites still on a shared relational adapter go through the durable
// dual-write queue instead; for those the router is fire-and-forget, and a
// successful result means "accepted for processing", not "persisted in
// both sinks".
package router

import (
	"context"
	"fmt"
	"sync"

	"github.com/sitepulse-io/sitepulse/internal/actor"
	"github.com/sitepulse-io/sitepulse/internal/adapter"
	"github.com/sitepulse-io/sitepulse/internal/logging"
	"github.com/sitepulse-io/sitepulse/internal/metrics"
	"github.com/sitepulse-io/sitepulse/internal/models"
	"github.com/sitepulse-io/sitepulse/internal/queue"
)

// SiteLookup resolves routing metadata for a site.
type SiteLookup interface {
	GetSite(ctx context.Context, siteID int64) (*models.Site, error)
}

// ActorClient is the slice of the storage-actor surface the router needs.
type ActorClient interface {
	InsertEvents(ctx context.Context, events []models.EventRecord) (*actor.InsertResponse, error)
}

// ClientResolver resolves the actor client for a site UUID.
type ClientResolver interface {
	Resolve(siteUUID string) ActorClient
}

// RegistryResolver adapts an actor.Registry to the ClientResolver interface.
type RegistryResolver struct {
	Registry *actor.Registry
}

// Resolve returns the registry's client for siteUUID.
func (r RegistryResolver) Resolve(siteUUID string) ActorClient {
	return r.Registry.Resolve(siteUUID)
}

// RouteResult is the per-site outcome of a routed insert.
type RouteResult struct {
	Success  bool            `json:"success"`
	Inserted int             `json:"inserted,omitempty"`
	Accepted *queue.Accepted `json:"accepted,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Router routes event batches to the correct backing store.
type Router struct {
	sites   SiteLookup
	resolve ClientResolver
	queue   queue.Enqueuer
	log     *logging.Logger
}

// New creates a Router.
func New(sites SiteLookup, resolve ClientResolver, q queue.Enqueuer, log *logging.Logger) *Router {
	if log == nil {
		log = logging.Default()
	}
	return &Router{sites: sites, resolve: resolve, queue: q, log: log}
}

// RouteInsert routes one site's events. The site's adapter is routing
// truth; an adapter this layer does not write for is rejected outright so
// events are never silently dropped.
func (r *Router) RouteInsert(ctx context.Context, site *models.Site, events []models.EventRecord) RouteResult {
	if len(events) == 0 {
		return RouteResult{Success: true}
	}

	switch site.Adapter {
	case adapter.SQLite:
		return r.directInsert(ctx, site, events)

	case adapter.Postgres, adapter.SingleStore:
		return r.enqueueInsert(ctx, site, events)

	case adapter.AnalyticsEngine:
		metrics.EventsRoutedTotal.WithLabelValues(site.Adapter.String(), "rejected").Add(float64(len(events)))
		return RouteResult{Error: fmt.Sprintf("unsupported adapter %q: analytics_engine sites are written outside this core", site.Adapter)}

	default:
		metrics.EventsRoutedTotal.WithLabelValues("unknown", "rejected").Add(float64(len(events)))
		return RouteResult{Error: fmt.Sprintf("unsupported adapter %q", site.Adapter)}
	}
}

// directInsert writes synchronously through the site's storage actor and
// blocks until the actor acknowledges.
func (r *Router) directInsert(ctx context.Context, site *models.Site, events []models.EventRecord) RouteResult {
	client := r.resolve.Resolve(site.UUID)
	resp, err := client.InsertEvents(ctx, events)
	if err != nil {
		metrics.EventsRoutedTotal.WithLabelValues(site.Adapter.String(), "error").Add(float64(len(events)))
		r.log.ErrorContext(ctx, "direct insert failed",
			logging.SiteID(site.ID), logging.SiteUUID(site.UUID), logging.Error(err))
		return RouteResult{Error: err.Error()}
	}

	metrics.EventsRoutedTotal.WithLabelValues(site.Adapter.String(), "ok").Add(float64(resp.Inserted))
	return RouteResult{Success: true, Inserted: resp.Inserted}
}

// enqueueInsert hands the batch to the dual-write queue. Success here means
// accepted, not durable; callers needing confirmation poll the actor.
func (r *Router) enqueueInsert(ctx context.Context, site *models.Site, events []models.EventRecord) RouteResult {
	accepted, err := r.queue.EnqueueDualWrite(ctx, queue.Batch{
		SiteUUID: site.UUID,
		TeamID:   site.TeamID,
		Adapter:  site.Adapter,
		Events:   events,
	})
	if err != nil {
		metrics.EventsRoutedTotal.WithLabelValues(site.Adapter.String(), "error").Add(float64(len(events)))
		r.log.ErrorContext(ctx, "dual-write enqueue failed",
			logging.SiteID(site.ID), logging.SiteUUID(site.UUID), logging.Error(err))
		return RouteResult{Error: err.Error()}
	}

	metrics.EventsRoutedTotal.WithLabelValues(site.Adapter.String(), "ok").Add(float64(len(events)))
	return RouteResult{Success: true, Inserted: len(events), Accepted: accepted}
}

// RouteBatchInsert routes events for many sites at once. Adapters are
// resolved first (one lookup per site), sites are partitioned into a
// direct-write set and a queue set, direct writes fan out concurrently
// with isolated failure, and the queue set goes out as one batch call.
// A lookup failure yields a per-site error entry; it never aborts the rest.
func (r *Router) RouteBatchInsert(ctx context.Context, eventsBySite map[int64][]models.EventRecord) map[int64]RouteResult {
	results := make(map[int64]RouteResult, len(eventsBySite))

	type directWrite struct {
		site   *models.Site
		events []models.EventRecord
	}
	type queuedSite struct {
		events  int
		adapter string
	}
	var directSet []directWrite
	var queueSet []queue.Batch
	queueSites := make(map[int64]queuedSite)

	for siteID, events := range eventsBySite {
		if len(events) == 0 {
			results[siteID] = RouteResult{Success: true}
			continue
		}

		site, err := r.sites.GetSite(ctx, siteID)
		if err != nil {
			results[siteID] = RouteResult{Error: fmt.Sprintf("site lookup: %s", err)}
			continue
		}

		switch site.Adapter {
		case adapter.SQLite:
			directSet = append(directSet, directWrite{site: site, events: events})
		case adapter.Postgres, adapter.SingleStore:
			queueSites[siteID] = queuedSite{events: len(events), adapter: site.Adapter.String()}
			queueSet = append(queueSet, queue.Batch{
				SiteUUID: site.UUID,
				TeamID:   site.TeamID,
				Adapter:  site.Adapter,
				Events:   events,
			})
		default:
			results[siteID] = RouteResult{Error: fmt.Sprintf("unsupported adapter %q", site.Adapter)}
		}
	}

	// Fan out direct writes, one goroutine per site. Each site's actor is
	// its own serialization point, so cross-site parallelism is safe; one
	// site's failure must not fail the others.
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, dw := range directSet {
		wg.Add(1)
		go func(dw directWrite) {
			defer wg.Done()
			res := r.directInsert(ctx, dw.site, dw.events)
			mu.Lock()
			results[dw.site.ID] = res
			mu.Unlock()
		}(dw)
	}
	wg.Wait()

	if len(queueSet) > 0 {
		accepted, err := r.queue.EnqueueDualWriteBatch(ctx, queueSet)
		for siteID, qs := range queueSites {
			if err != nil {
				metrics.EventsRoutedTotal.WithLabelValues(qs.adapter, "error").Add(float64(qs.events))
				results[siteID] = RouteResult{Error: err.Error()}
			} else {
				metrics.EventsRoutedTotal.WithLabelValues(qs.adapter, "ok").Add(float64(qs.events))
				results[siteID] = RouteResult{Success: true, Inserted: qs.events, Accepted: accepted}
			}
		}
		if err != nil {
			r.log.ErrorContext(ctx, "dual-write batch enqueue failed", logging.Error(err))
		}
	}

	return results
}
