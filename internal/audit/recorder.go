package audit

import (
	"context"
	"log/slog"
	"time"

	id "garita/pkg/domain"
	"garita/pkg/requestcontext"
)

// Recorder is the producer side of the pipeline. Record never blocks the
// request path: if the inbox is full the event is dropped and logged, a
// deliberate trade of completeness for gate latency.
type Recorder struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewRecorder(buffer int, logger *slog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	return &Recorder{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Inbox exposes the consuming end for the worker.
func (r *Recorder) Inbox() <-chan Event { return r.inbox }

// Record enqueues an audit event, stamping id and time if absent.
func (r *Recorder) Record(event Event) {
	if event.ID.IsNil() {
		event.ID = id.NewEventID()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	select {
	case r.inbox <- event:
	default:
		r.logger.Warn("audit inbox full, dropping event",
			"action", string(event.Action),
			"request_id", event.RequestID,
		)
	}
}

// FromContext builds an event pre-filled with the request-scoped actor,
// device and correlation id.
func FromContext(ctx context.Context, action Action) Event {
	return Event{
		Action:     action,
		OccurredAt: requestcontext.Now(ctx),
		GuardID:    requestcontext.GuardID(ctx),
		Device:     requestcontext.Device(ctx),
		RequestID:  requestcontext.RequestID(ctx),
	}
}
