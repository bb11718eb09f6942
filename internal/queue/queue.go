// Package queue delivers search-index jobs to the message queue consumed by
// the external indexer.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
)

// Enqueuer publishes a JSON payload to a queue target (a subject).
type Enqueuer interface {
	Enqueue(ctx context.Context, target string, payload []byte) error
	Close() error
}

// Action tells the indexer what to do with a document.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// IndexJob is the wire payload of a search-index job.
type IndexJob struct {
	Action     Action `json:"action"`
	DocumentID string `json:"documentId"`
}

// EnqueueIndexJob marshals job and publishes it to target.
func EnqueueIndexJob(ctx context.Context, q Enqueuer, target string, job IndexJob) error {
	if job.DocumentID == "" {
		return fmt.Errorf("index job requires a document id")
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal index job: %w", err)
	}
	return q.Enqueue(ctx, target, data)
}
