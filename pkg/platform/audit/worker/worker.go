package worker

import (
	"context"
	"log/slog"

	audit "civreg/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them, optionally
// fanning out to a broker publisher. Domain services stay fast: they enqueue
// and move on, and the worker absorbs sink latency.
type Worker struct {
	store     audit.Store
	publisher audit.Publisher
	inbox     <-chan audit.Event
	logger    *slog.Logger
}

func New(store audit.Store, publisher audit.Publisher, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, publisher: publisher, inbox: inbox, logger: logger}
}

// Run drains the inbox until the context is cancelled. Sink failures are
// logged, not fatal: losing one audit sink must not take the registry down.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit store append failed",
					"error", err, "action", event.Action)
			}
			if w.publisher != nil {
				if err := w.publisher.Emit(ctx, event); err != nil {
					w.logger.ErrorContext(ctx, "audit publish failed",
						"error", err, "action", event.Action)
				}
			}
		}
	}
}
