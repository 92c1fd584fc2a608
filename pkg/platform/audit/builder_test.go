package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	id "civreg/pkg/domain"
)

func TestNewEventDefaultsToAllowed(t *testing.T) {
	actorID := id.NewUserID()
	e := NewEvent(context.Background(), EventTransferRequested, actorID, "veo", "transfer", "r-1")

	assert.Equal(t, string(EventTransferRequested), e.Action)
	assert.Equal(t, CategoryCompliance, e.Category)
	assert.Equal(t, DecisionAllowed, e.Decision)
	assert.Equal(t, actorID, e.ActorID)
}

func TestDeniedKeepsAttemptedAction(t *testing.T) {
	e := NewEvent(context.Background(), EventTransferWeoApproved, id.NewUserID(), "veo", "transfer", "r-1").
		Denied("actor is not the origin ward's WEO")

	assert.Equal(t, string(EventTransferWeoApproved), e.Action)
	assert.Equal(t, CategorySecurity, e.Category)
	assert.Equal(t, DecisionDenied, e.Decision)
	assert.Equal(t, "actor is not the origin ward's WEO", e.Reason)
}

func TestWithReason(t *testing.T) {
	e := NewEvent(context.Background(), EventTransferRejected, id.NewUserID(), "weo", "transfer", "r-1").
		WithReason("duplicate request")
	assert.Equal(t, DecisionAllowed, e.Decision)
	assert.Equal(t, "duplicate request", e.Reason)
}
