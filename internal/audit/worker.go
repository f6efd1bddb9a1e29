package audit

import (
	"context"
	"log/slog"
	"time"
)

// Worker drains the recorder inbox and fans each event out to the configured
// sinks. Sink failures are logged, never retried: the postgres table is the
// durable record, Kafka is best-effort streaming.
type Worker struct {
	inbox     <-chan Event
	store     Store
	publisher Publisher
	logger    *slog.Logger
}

func NewWorker(inbox <-chan Event, store Store, publisher Publisher, logger *slog.Logger) *Worker {
	return &Worker{
		inbox:     inbox,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Run consumes events until ctx is cancelled, then drains whatever is already
// buffered so shutdown does not lose recorded events.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case event := <-w.inbox:
			w.dispatch(event)
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.dispatch(event)
		default:
			return
		}
	}
}

func (w *Worker) dispatch(event Event) {
	// Sinks get their own deadline; the request that produced the event has
	// long since returned.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if w.store != nil {
		if err := w.store.Append(ctx, event); err != nil {
			w.logger.Error("audit store append failed",
				"action", string(event.Action),
				"request_id", event.RequestID,
				"error", err,
			)
		}
	}
	if w.publisher != nil {
		if err := w.publisher.Publish(ctx, event); err != nil {
			w.logger.Error("audit publish failed",
				"action", string(event.Action),
				"request_id", event.RequestID,
				"error", err,
			)
		}
	}
}
