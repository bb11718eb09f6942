package queue

import (
	"context"
	"encoding/json"
	"sync"
)

// Message is a payload captured by MemoryQueue.
type Message struct {
	Target  string
	Payload []byte
}

// MemoryQueue records messages in process. Used by tests and when search
// indexing is disabled.
type MemoryQueue struct {
	mu       sync.Mutex
	messages []Message

	// Err, when set, is returned from every Enqueue.
	Err error
}

var _ Enqueuer = (*MemoryQueue)(nil)

// NewMemoryQueue returns an empty queue.
func NewMemoryQueue() *MemoryQueue { return &MemoryQueue{} }

func (q *MemoryQueue) Enqueue(_ context.Context, target string, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return q.Err
	}
	q.messages = append(q.messages, Message{Target: target, Payload: append([]byte(nil), payload...)})
	return nil
}

func (q *MemoryQueue) Close() error { return nil }

// Messages returns a copy of everything enqueued so far.
func (q *MemoryQueue) Messages() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Message(nil), q.messages...)
}

// IndexJobs decodes the captured messages as index jobs, skipping any that
// don't decode.
func (q *MemoryQueue) IndexJobs() []IndexJob {
	var jobs []IndexJob
	for _, m := range q.Messages() {
		var j IndexJob
		if err := json.Unmarshal(m.Payload, &j); err == nil {
			jobs = append(jobs, j)
		}
	}
	return jobs
}
