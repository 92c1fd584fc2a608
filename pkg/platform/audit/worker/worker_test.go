package worker

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "civreg/pkg/domain"
	audit "civreg/pkg/platform/audit"
	memorystore "civreg/pkg/platform/audit/store/memory"
)

func TestWorkerDrainsInbox(t *testing.T) {
	store := memorystore.NewInMemoryStore()
	channel := audit.NewChannel(8)
	w := New(store, nil, channel.Events(), slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	actorID := id.NewUserID()
	event := audit.Event{
		Timestamp: time.Now(),
		ActorID:   actorID,
		Action:    string(audit.EventTransferRequested),
		Subject:   "transfer",
	}
	require.NoError(t, channel.Emit(ctx, event))

	// Worker is asynchronous; poll until the event lands.
	require.Eventually(t, func() bool {
		events, err := store.ListByActor(ctx, actorID)
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestChannelEmitDropsWhenFull(t *testing.T) {
	channel := audit.NewChannel(1)
	ctx := context.Background()

	require.NoError(t, channel.Emit(ctx, audit.Event{Action: "a"}))
	err := channel.Emit(ctx, audit.Event{Action: "b"})
	assert.Error(t, err)
}

func TestEventCategories(t *testing.T) {
	assert.Equal(t, audit.CategoryCompliance, audit.EventTransferCompleted.Category())
	assert.Equal(t, audit.CategorySecurity, audit.EventLoginFailed.Category())
	assert.Equal(t, audit.CategoryOperations, audit.AuditEvent("unknown").Category())
}
