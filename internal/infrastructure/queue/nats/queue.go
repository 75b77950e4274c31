// Package nats carries queued source URLs from the API to the ingestion
// worker. One subject, one durable consumer; a single subscription keeps
// index writes serialized.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

type Queue struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func Connect(url, subject string, logger *slog.Logger) (*Queue, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats_disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats_reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{conn: conn, subject: subject, logger: logger}, nil
}

type sourceQueuedEvent struct {
	URL      string    `json:"url"`
	QueuedAt time.Time `json:"queued_at"`
}

func (q *Queue) PublishSourceQueued(_ context.Context, url string) error {
	payload, err := json.Marshal(sourceQueuedEvent{URL: url, QueuedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal queued event: %w", err)
	}
	if err := q.conn.Publish(q.subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", q.subject, err)
	}
	return nil
}

// SubscribeSourceQueued processes queued sources one at a time until the
// context is cancelled. Handler errors are logged, never redelivered;
// the source row carries the failure state.
func (q *Queue) SubscribeSourceQueued(ctx context.Context, handler func(context.Context, string) error) error {
	ch := make(chan *nats.Msg, 64)
	sub, err := q.conn.ChanSubscribe(q.subject, ch)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", q.subject, err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-ch:
			var event sourceQueuedEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				q.logger.Error("queue_bad_message", slog.String("error", err.Error()))
				continue
			}
			if err := handler(ctx, event.URL); err != nil {
				q.logger.Warn("queue_handler_error",
					slog.String("url", event.URL),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

func (q *Queue) Close() {
	q.conn.Drain()
}
