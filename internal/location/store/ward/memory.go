package ward

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"civreg/internal/location/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
)

// ErrNotFound is returned when a ward is not found.
var ErrNotFound = sentinel.ErrNotFound

// InMemory stores wards in memory for unit tests and the demo environment.
type InMemory struct {
	mu      sync.RWMutex
	wards   map[string]*models.Ward
	codeIdx map[string]string
}

// NewInMemory creates an in-memory ward store.
func NewInMemory() *InMemory {
	return &InMemory{
		wards:   make(map[string]*models.Ward),
		codeIdx: make(map[string]string),
	}
}

// CreateIfCodeAvailable atomically creates the ward if the code is not already taken.
func (s *InMemory) CreateIfCodeAvailable(_ context.Context, w *models.Ward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lower := strings.ToLower(w.Code)
	if _, exists := s.codeIdx[lower]; exists {
		return fmt.Errorf("ward code must be unique: %w", sentinel.ErrAlreadyUsed)
	}
	key := w.ID.String()
	copied := *w
	s.wards[key] = &copied
	s.codeIdx[lower] = key
	return nil
}

// FindByID retrieves a ward by its UUID.
func (s *InMemory) FindByID(_ context.Context, wardID id.WardID) (*models.Ward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if w, ok := s.wards[wardID.String()]; ok {
		copied := *w
		return &copied, nil
	}
	return nil, ErrNotFound
}

// List returns all wards ordered by code.
func (s *InMemory) List(_ context.Context) ([]*models.Ward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Ward, 0, len(s.wards))
	for _, w := range s.wards {
		copied := *w
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Update persists changes to an existing ward.
func (s *InMemory) Update(_ context.Context, w *models.Ward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := w.ID.String()
	existing, ok := s.wards[key]
	if !ok {
		return ErrNotFound
	}
	delete(s.codeIdx, strings.ToLower(existing.Code))
	copied := *w
	s.wards[key] = &copied
	s.codeIdx[strings.ToLower(w.Code)] = key
	return nil
}

// Delete removes a ward. The caller must first verify it has no villages.
func (s *InMemory) Delete(_ context.Context, wardID id.WardID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := wardID.String()
	existing, ok := s.wards[key]
	if !ok {
		return ErrNotFound
	}
	delete(s.codeIdx, strings.ToLower(existing.Code))
	delete(s.wards, key)
	return nil
}
