package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sitepulse-io/sitepulse/internal/adapter"
	"github.com/sitepulse-io/sitepulse/internal/models"
)

// Publish-path coverage needs a live NATS server; these tests pin down the
// validation that runs before anything touches the stream.

func TestEnqueueDualWriteBatch_RejectsMissingSiteUUID(t *testing.T) {
	q := &JetStreamQueue{}

	_, err := q.EnqueueDualWriteBatch(context.Background(), []Batch{
		{Adapter: adapter.Postgres, Events: []models.EventRecord{{Event: "page_view"}}},
	})

	assert.ErrorContains(t, err, "site uuid")
}

func TestEnqueueDualWriteBatch_RejectsEmptyEvents(t *testing.T) {
	q := &JetStreamQueue{}

	_, err := q.EnqueueDualWriteBatch(context.Background(), []Batch{
		{SiteUUID: "uuid-1", Adapter: adapter.Postgres},
	})

	assert.ErrorContains(t, err, "empty batch")
	assert.ErrorContains(t, err, "uuid-1")
}

func TestEnqueueDualWriteBatch_NoBatches(t *testing.T) {
	q := &JetStreamQueue{}

	accepted, err := q.EnqueueDualWriteBatch(context.Background(), nil)

	assert.NoError(t, err)
	assert.Equal(t, 0, accepted.Batches)
	assert.Equal(t, 0, accepted.Events)
	assert.False(t, accepted.QueuedAt.IsZero())
}
