package village

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

// InMemory stores villages in memory for unit tests and the demo environment.
type InMemory struct {
	mu       sync.RWMutex
	villages map[string]*models.Village
	codeIdx  map[string]string
}

// NewInMemory creates an in-memory village store.
func NewInMemory() *InMemory {
	return &InMemory{
		villages: make(map[string]*models.Village),
		codeIdx:  make(map[string]string),
	}
}

// CreateIfCodeAvailable atomically creates the village if the code is not
// already taken. Codes are unique across all wards.
func (s *InMemory) CreateIfCodeAvailable(_ context.Context, v *models.Village) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lower := strings.ToLower(v.Code)
	if _, exists := s.codeIdx[lower]; exists {
		return fmt.Errorf("village code must be unique: %w", sentinel.ErrAlreadyUsed)
	}
	key := v.ID.String()
	copied := *v
	s.villages[key] = &copied
	s.codeIdx[lower] = key
	return nil
}

// FindByID retrieves a village by its UUID.
func (s *InMemory) FindByID(_ context.Context, villageID id.VillageID) (*models.Village, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.villages[villageID.String()]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

// ListByWard returns the villages of one ward ordered by code.
func (s *InMemory) ListByWard(_ context.Context, wardID id.WardID) ([]*models.Village, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Village
	for _, v := range s.villages {
		if v.WardID == wardID {
			copied := *v
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// CountByWard reports how many villages belong to a ward.
func (s *InMemory) CountByWard(_ context.Context, wardID id.WardID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.villages {
		if v.WardID == wardID {
			n++
		}
	}
	return n, nil
}

// Update persists changes to an existing village.
func (s *InMemory) Update(_ context.Context, v *models.Village) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := v.ID.String()
	existing, ok := s.villages[key]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.codeIdx, strings.ToLower(existing.Code))
	copied := *v
	s.villages[key] = &copied
	s.codeIdx[strings.ToLower(v.Code)] = key
	return nil
}
