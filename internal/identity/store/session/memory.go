package session

import (
	"context"
	"sync"

	"civreg/internal/identity/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
)

// InMemory stores sessions in memory for unit tests and the demo environment.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// NewInMemory creates an in-memory session store.
func NewInMemory() *InMemory {
	return &InMemory{sessions: make(map[string]*models.Session)}
}

// Create persists a new session.
func (s *InMemory) Create(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sess
	s.sessions[sess.ID.String()] = &copied
	return nil
}

// FindByID retrieves a session.
func (s *InMemory) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[sessionID.String()]; ok {
		copied := *sess
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

// ListByUser returns every session for a user, including revoked ones.
func (s *InMemory) ListByUser(_ context.Context, userID id.UserID) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			copied := *sess
			out = append(out, &copied)
		}
	}
	return out, nil
}

// Update persists changes to an existing session.
func (s *InMemory) Update(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID.String()]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *sess
	s.sessions[sess.ID.String()] = &copied
	return nil
}
