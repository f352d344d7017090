// Package migration moves a site's historical events from the legacy
// relational store into its storage actor.
//
// Per site the flow is: read everything in one ordered pass, transform to
// the actor's input shape, write in fixed-size batches strictly one after
// another, optionally verify counts, optionally clean up the source. The
// sequential batch discipline is a correctness choice: the actor is a
// single writer and bounding its queue depth keeps memory predictable.
// Across sites the orchestrator is also sequential, trading throughput for
// simple confirmation and rollback. Re-running a partially completed
// migration is the supported resume path.
package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/sitepulse-io/sitepulse/internal/actor"
	"github.com/sitepulse-io/sitepulse/internal/logging"
	"github.com/sitepulse-io/sitepulse/internal/metrics"
	"github.com/sitepulse-io/sitepulse/internal/models"
)

// DefaultBatchSize is used when a request does not set one.
const DefaultBatchSize = 50

// Source is the legacy store surface the orchestrator reads and cleans up.
type Source interface {
	ReadSiteEvents(ctx context.Context, siteID int64) ([]models.EventRecord, error)
	DeleteSiteEvents(ctx context.Context, siteID int64) (int64, error)
}

// ActorClient is the slice of the storage-actor surface migration needs.
type ActorClient interface {
	InsertEvents(ctx context.Context, events []models.EventRecord) (*actor.InsertResponse, error)
	HealthCheck(ctx context.Context) (*actor.HealthResponse, error)
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

// Orchestrator runs site migrations.
type Orchestrator struct {
	source  Source
	resolve ClientResolver
	log     *logging.Logger
}

// New creates an Orchestrator.
func New(source Source, resolve ClientResolver, log *logging.Logger) *Orchestrator {
	if log == nil {
		log = logging.Default()
	}
	return &Orchestrator{source: source, resolve: resolve, log: log}
}

// MigrateSite migrates one site according to req. The returned response is
// never nil; partial failures are reported batch by batch, never swallowed.
func (o *Orchestrator) MigrateSite(ctx context.Context, site *models.Site, req models.MigrationRequest) *models.MigrationResponse {
	start := time.Now()
	resp := &models.MigrationResponse{
		SiteID: site.ID,
		DryRun: req.DryRun,
		Errors: []models.BatchError{},
	}

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	o.log.InfoContext(ctx, "starting site migration",
		logging.SiteID(site.ID), logging.SiteUUID(site.UUID),
		logging.Adapter(site.Adapter.String()), logging.Batch(batchSize))

	events, err := o.source.ReadSiteEvents(ctx, site.ID)
	if err != nil {
		resp.Errors = append(resp.Errors, models.BatchError{Batch: -1, Error: fmt.Sprintf("read source: %s", err)})
		return resp
	}
	resp.TotalEvents = len(events)

	transformed := transformEvents(events)
	resp.Batches = batchCount(len(transformed), batchSize)

	if req.DryRun {
		// Dry runs compute counts and emit a sample; they perform no
		// writes, so re-running one is always side-effect free.
		if len(transformed) > 0 {
			sample := transformed[0]
			resp.Sample = &sample
		}
		resp.Success = true
		return resp
	}

	client := o.resolve.Resolve(site.UUID)

	// Batches go out strictly in order: batch k+1 is not sent until batch
	// k's result is known. A failed batch is recorded with its index and
	// the remaining batches still run.
	migrated := 0
	for i, batch := range splitBatches(transformed, batchSize) {
		result, err := client.InsertEvents(ctx, batch)
		if err != nil {
			metrics.MigrationBatchesTotal.WithLabelValues("error").Inc()
			resp.Errors = append(resp.Errors, models.BatchError{Batch: i, Error: err.Error()})
			o.log.WarnContext(ctx, "migration batch failed",
				logging.SiteID(site.ID), logging.Batch(i), logging.Error(err))
			continue
		}
		metrics.MigrationBatchesTotal.WithLabelValues("ok").Inc()
		migrated += result.Inserted
	}
	resp.MigratedEvents = migrated
	metrics.MigrationEventsTotal.Add(float64(migrated))

	resp.Success = len(resp.Errors) == 0 && migrated == resp.TotalEvents

	if req.Verify && resp.Success {
		if err := o.verify(ctx, client, resp.TotalEvents); err != nil {
			resp.Success = false
			resp.Errors = append(resp.Errors, models.BatchError{Batch: -1, Error: err.Error()})
		}
	}

	// Cleanup deletes the source rows. It is opt-in, force-gated, and only
	// runs after a fully successful (and, if requested, verified)
	// migration; a reconciliation failure above blocks it.
	if req.Cleanup && resp.Success {
		if !req.Force {
			resp.Errors = append(resp.Errors, models.BatchError{Batch: -1, Error: "cleanup requires the force flag"})
			resp.Success = false
		} else {
			deleted, err := o.source.DeleteSiteEvents(ctx, site.ID)
			if err != nil {
				resp.Success = false
				resp.Errors = append(resp.Errors, models.BatchError{Batch: -1, Error: fmt.Sprintf("cleanup: %s", err)})
			} else {
				o.log.InfoContext(ctx, "cleaned up legacy rows",
					logging.SiteID(site.ID), logging.Count(int(deleted)))
			}
		}
	}

	metrics.MigrationDuration.Observe(time.Since(start).Seconds())
	o.log.InfoContext(ctx, "site migration finished",
		logging.SiteID(site.ID),
		logging.Count(resp.MigratedEvents),
		logging.Duration(time.Since(start).Milliseconds()),
	)
	return resp
}

// verify compares the actor's reported total event count against the
// originally-read count. Any mismatch fails the site's migration.
func (o *Orchestrator) verify(ctx context.Context, client ActorClient, expected int) error {
	health, err := client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if health.TotalEvents != expected {
		return fmt.Errorf("verify: actor reports %d events, expected %d", health.TotalEvents, expected)
	}
	return nil
}

// VerifySite checks a site's actor event count against an expected total.
// Used by the migration worker's verify endpoint.
func (o *Orchestrator) VerifySite(ctx context.Context, siteUUID string, expected int) (int, error) {
	client := o.resolve.Resolve(siteUUID)
	health, err := client.HealthCheck(ctx)
	if err != nil {
		return 0, fmt.Errorf("verify site: %w", err)
	}
	if health.TotalEvents != expected {
		return health.TotalEvents, fmt.Errorf("actor reports %d events, expected %d", health.TotalEvents, expected)
	}
	return health.TotalEvents, nil
}

// RunResult summarizes a multi-site migration run.
type RunResult struct {
	Sites     []models.MigrationResponse `json:"sites"`
	Succeeded int                        `json:"succeeded"`
	Failed    int                        `json:"failed"`
}

// AnyFailed reports whether any site in the run failed. CLI exit status
// reflects this, not just the last site's outcome.
func (r *RunResult) AnyFailed() bool {
	return r.Failed > 0
}

// MigrateSites migrates many sites one at a time. Per-site failures are
// caught and counted; one site's failure never stops the run.
func (o *Orchestrator) MigrateSites(ctx context.Context, sites []models.Site, req models.MigrationRequest) *RunResult {
	result := &RunResult{Sites: []models.MigrationResponse{}}
	for i := range sites {
		siteReq := req
		siteReq.SiteID = sites[i].ID
		resp := o.MigrateSite(ctx, &sites[i], siteReq)
		result.Sites = append(result.Sites, *resp)
		if resp.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	return result
}
