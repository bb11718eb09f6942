package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueIndexJobPayload(t *testing.T) {
	q := NewMemoryQueue()
	err := EnqueueIndexJob(context.Background(), q, "search.index", IndexJob{Action: ActionAdd, DocumentID: "p1"})
	require.NoError(t, err)

	msgs := q.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "search.index", msgs[0].Target)
	assert.JSONEq(t, `{"action":"add","documentId":"p1"}`, string(msgs[0].Payload))
	assert.Equal(t, []IndexJob{{Action: ActionAdd, DocumentID: "p1"}}, q.IndexJobs())
}

func TestEnqueueIndexJobRequiresID(t *testing.T) {
	q := NewMemoryQueue()
	assert.Error(t, EnqueueIndexJob(context.Background(), q, "s", IndexJob{Action: ActionRemove}))
	assert.Empty(t, q.Messages())
}

func TestMemoryQueueError(t *testing.T) {
	q := NewMemoryQueue()
	q.Err = errors.New("unavailable")
	err := EnqueueIndexJob(context.Background(), q, "s", IndexJob{Action: ActionRemove, DocumentID: "p1"})
	assert.ErrorContains(t, err, "unavailable")
}

func TestNewNATSQueueValidatesConfig(t *testing.T) {
	_, err := NewNATSQueue(context.Background(), NATSConfig{})
	assert.Error(t, err)
	_, err = NewNATSQueue(context.Background(), NATSConfig{URL: "nats://127.0.0.1:4222"})
	assert.Error(t, err)
}
