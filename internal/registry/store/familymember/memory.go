package familymember

import (
	"context"
	"sort"
	"sync"

	"civreg/internal/registry/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
)

// InMemory stores family members in memory for unit tests and the demo
// environment.
type InMemory struct {
	mu      sync.RWMutex
	members map[string]*models.FamilyMember
}

// NewInMemory creates an in-memory family member store.
func NewInMemory() *InMemory {
	return &InMemory{members: make(map[string]*models.FamilyMember)}
}

// Create persists a family member record.
func (s *InMemory) Create(_ context.Context, m *models.FamilyMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *m
	s.members[m.ID.String()] = &copied
	return nil
}

// FindByID retrieves a family member.
func (s *InMemory) FindByID(_ context.Context, memberID id.FamilyMemberID) (*models.FamilyMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.members[memberID.String()]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

// ListByResidence returns a residence's family members ordered by creation.
func (s *InMemory) ListByResidence(_ context.Context, residenceID id.ResidenceID) ([]*models.FamilyMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.FamilyMember
	for _, m := range s.members {
		if m.ResidenceID == residenceID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes a family member record.
func (s *InMemory) Delete(_ context.Context, memberID id.FamilyMemberID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[memberID.String()]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.members, memberID.String())
	return nil
}
