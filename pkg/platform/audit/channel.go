package audit

import (
	"context"

	dErrors "civreg/pkg/domain-errors"
)

// Channel is a buffered in-process Publisher that hands events to the audit
// worker. Emit never blocks the request path: when the buffer is full the
// event is dropped and an error returned so the caller can log the loss.
type Channel struct {
	ch chan Event
}

// NewChannel creates a channel publisher with the given buffer size.
func NewChannel(buffer int) *Channel {
	return &Channel{ch: make(chan Event, buffer)}
}

// Emit enqueues the event for the worker.
func (c *Channel) Emit(ctx context.Context, event Event) error {
	select {
	case c.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return dErrors.New(dErrors.CodeInternal, "audit buffer full, event dropped")
	}
}

// Events exposes the receive side for the worker.
func (c *Channel) Events() <-chan Event {
	return c.ch
}
