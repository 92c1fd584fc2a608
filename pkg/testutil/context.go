package testutil

import (
	"net/http"

	id "civreg/pkg/domain"
	"civreg/pkg/requestcontext"
)

// WithActor adds an actor ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// If the actorID is not a valid UUID, it will not be added to the context.
func WithActor(req *http.Request, actorID string) *http.Request {
	if parsed, err := id.ParseUserID(actorID); err == nil {
		return req.WithContext(requestcontext.WithActorID(req.Context(), parsed))
	}
	return req
}

// WithSession adds a session ID to the request context.
func WithSession(req *http.Request, sessionID string) *http.Request {
	if parsed, err := id.ParseSessionID(sessionID); err == nil {
		return req.WithContext(requestcontext.WithSessionID(req.Context(), parsed))
	}
	return req
}
