package audit

import (
	"context"

	id "civreg/pkg/domain"
	"civreg/pkg/requestcontext"
)

const (
	DecisionAllowed = "allowed"
	DecisionDenied  = "denied"
)

// NewEvent builds an event for the given action, filling request-scoped
// metadata (request ID, client IP, user agent, time) from the context.
func NewEvent(ctx context.Context, action AuditEvent, actorID id.UserID, actorRole, subject, subjectID string) Event {
	return Event{
		Category:  action.Category(),
		Timestamp: requestcontext.Now(ctx),
		ActorID:   actorID,
		ActorRole: actorRole,
		Action:    string(action),
		Subject:   subject,
		SubjectID: subjectID,
		Decision:  DecisionAllowed,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	}
}

// Denied marks the event as a refused attempt with the given reason.
// The attempted action stays in Action so denied requests, approvals
// and rejections remain distinguishable in the trail.
func (e Event) Denied(reason string) Event {
	e.Category = CategorySecurity
	e.Decision = DecisionDenied
	e.Reason = reason
	return e
}

// WithReason attaches a free-form reason, used for rejections.
func (e Event) WithReason(reason string) Event {
	e.Reason = reason
	return e
}
