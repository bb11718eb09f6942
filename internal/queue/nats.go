package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/pagepublisher/internal/logfields"
)

// NATSConfig configures the JetStream publisher.
type NATSConfig struct {
	URL     string
	Stream  string
	Subject string
	// PublishTimeout bounds a single publish; zero means 5s.
	PublishTimeout time.Duration
}

// NATSQueue publishes jobs to a JetStream stream.
type NATSQueue struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	timeout time.Duration
}

var _ Enqueuer = (*NATSQueue)(nil)

// NewNATSQueue connects to NATS and makes sure the stream capturing the
// configured subject exists.
func NewNATSQueue(ctx context.Context, cfg NATSConfig) (*NATSQueue, error) {
	if cfg.URL == "" {
		return nil, errors.New("nats url is required")
	}
	if cfg.Subject == "" {
		return nil, errors.New("nats subject is required")
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("pagepublisher"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if cfg.Stream != "" {
		initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		_, err = js.CreateOrUpdateStream(initCtx, jetstream.StreamConfig{
			Name:        cfg.Stream,
			Description: "Search index jobs",
			Subjects:    []string{cfg.Subject},
			Retention:   jetstream.WorkQueuePolicy,
		})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.Stream, err)
		}
	}

	q := &NATSQueue{conn: conn, js: js, timeout: cfg.PublishTimeout}
	if q.timeout <= 0 {
		q.timeout = 5 * time.Second
	}

	slog.Info("NATS queue initialized",
		slog.String("url", cfg.URL),
		slog.String("stream", cfg.Stream),
		logfields.Subject(cfg.Subject))
	return q, nil
}

// Enqueue publishes payload and waits for the stream acknowledgement.
func (q *NATSQueue) Enqueue(ctx context.Context, target string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	if _, err := q.js.Publish(ctx, target, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", target, err)
	}
	slog.Debug("Published queue message", logfields.Subject(target), slog.Int("bytes", len(payload)))
	return nil
}

// Close drains and closes the connection.
func (q *NATSQueue) Close() error {
	if q.conn == nil {
		return nil
	}
	if err := q.conn.Drain(); err != nil {
		q.conn.Close()
		return err
	}
	return nil
}
