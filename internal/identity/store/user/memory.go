package user

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"civreg/internal/identity/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
)

// InMemory stores users in memory for unit tests and the demo environment.
type InMemory struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	usernameIdx map[string]string
	nidaIdx     map[string]string
}

// NewInMemory creates an in-memory user store.
func NewInMemory() *InMemory {
	return &InMemory{
		users:       make(map[string]*models.User),
		usernameIdx: make(map[string]string),
		nidaIdx:     make(map[string]string),
	}
}

// CreateIfAvailable atomically creates the user if neither the username nor
// the NIDA number is taken.
func (s *InMemory) CreateIfAvailable(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	username := strings.ToLower(u.Username)
	if _, exists := s.usernameIdx[username]; exists {
		return fmt.Errorf("username must be unique: %w", sentinel.ErrAlreadyUsed)
	}
	if _, exists := s.nidaIdx[string(u.NIDANumber)]; exists {
		return fmt.Errorf("nida number must be unique: %w", sentinel.ErrAlreadyUsed)
	}
	key := u.ID.String()
	copied := *u
	s.users[key] = &copied
	s.usernameIdx[username] = key
	s.nidaIdx[string(u.NIDANumber)] = key
	return nil
}

// FindByID retrieves a user by UUID.
func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID.String()]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

// FindByUsername retrieves a user by their login name, case-insensitively.
func (s *InMemory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.usernameIdx[strings.ToLower(username)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.users[key]
	return &copied, nil
}

// List returns all users ordered by username.
func (s *InMemory) List(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		copied := *u
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Update persists changes to an existing user.
func (s *InMemory) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := u.ID.String()
	if _, ok := s.users[key]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *u
	s.users[key] = &copied
	return nil
}
