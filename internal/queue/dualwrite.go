// Package queue provides the enqueue side of the dual-write pipeline.
//
// Sites on legacy relational adapters get their events written twice: once
// to the shared store and once to the site's storage actor. The consumer
// doing those writes lives outside this core; here we only hand batches to
// the durable queue. Acceptance is not durability - a successful enqueue
// means "accepted for processing", and callers needing confirmation must
// check the actor afterwards.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/sitepulse-io/sitepulse/internal/adapter"
	"github.com/sitepulse-io/sitepulse/internal/metrics"
	"github.com/sitepulse-io/sitepulse/internal/models"
)

// Subject constants for the dual-write stream.
// Follow the pattern: {domain}.{action}.{resource}
const (
	SubjectDualWriteEvents = "dualwrite.events.batch"
)

// Batch is one site's events packaged for the dual-write consumer.
type Batch struct {
	SiteUUID string               `json:"site_uuid"`
	TeamID   int64                `json:"team_id"`
	Adapter  adapter.Adapter      `json:"adapter"`
	Events   []models.EventRecord `json:"events"`
}

// Accepted marks a batch as handed to the queue. It deliberately carries no
// success flag: acceptance says nothing about either sink having persisted.
type Accepted struct {
	Batches  int       `json:"batches"`
	Events   int       `json:"events"`
	QueuedAt time.Time `json:"queued_at"`
}

// Enqueuer is the contract the adapter router depends on.
type Enqueuer interface {
	// EnqueueDualWrite hands one site's batch to the queue.
	EnqueueDualWrite(ctx context.Context, batch Batch) (*Accepted, error)

	// EnqueueDualWriteBatch hands batches for many sites to the queue in a
	// single call.
	EnqueueDualWriteBatch(ctx context.Context, batches []Batch) (*Accepted, error)
}

// JetStreamQueue publishes dual-write batches to a durable NATS stream.
type JetStreamQueue struct {
	js     jetstream.JetStream
	conn   *nats.Conn
	stream string
}

// Config holds NATS connection settings for the queue.
type Config struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
	Stream        string
}

// DefaultConfig returns sensible defaults for a local NATS server.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          "sitepulse-dualwrite",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
		Stream:        "DUALWRITE",
	}
}

// NewJetStreamQueue connects to NATS and ensures the dual-write stream
// exists. The stream uses a work-queue retention policy so each batch is
// delivered to exactly one consumer.
func NewJetStreamQueue(ctx context.Context, cfg Config) (*JetStreamQueue, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{"dualwrite.events.>"},
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.Stream, err)
	}

	return &JetStreamQueue{js: js, conn: conn, stream: cfg.Stream}, nil
}

// EnqueueDualWrite hands one site's batch to the queue.
func (q *JetStreamQueue) EnqueueDualWrite(ctx context.Context, batch Batch) (*Accepted, error) {
	return q.EnqueueDualWriteBatch(ctx, []Batch{batch})
}

// EnqueueDualWriteBatch publishes batches for many sites in one call. Each
// site's batch is its own message so the consumer can retry per site.
func (q *JetStreamQueue) EnqueueDualWriteBatch(ctx context.Context, batches []Batch) (*Accepted, error) {
	events := 0
	for _, batch := range batches {
		if batch.SiteUUID == "" {
			return nil, fmt.Errorf("batch missing site uuid")
		}
		if len(batch.Events) == 0 {
			return nil, fmt.Errorf("empty batch for site %s", batch.SiteUUID)
		}

		data, err := json.Marshal(batch)
		if err != nil {
			return nil, fmt.Errorf("marshal batch for site %s: %w", batch.SiteUUID, err)
		}

		if _, err := q.js.Publish(ctx, SubjectDualWriteEvents, data); err != nil {
			return nil, fmt.Errorf("publish batch for site %s: %w", batch.SiteUUID, err)
		}
		events += len(batch.Events)
	}

	metrics.DualWriteEnqueuedTotal.Add(float64(len(batches)))

	return &Accepted{
		Batches:  len(batches),
		Events:   events,
		QueuedAt: time.Now().UTC(),
	}, nil
}

// Close drains the underlying connection.
func (q *JetStreamQueue) Close() error {
	return q.conn.Drain()
}
