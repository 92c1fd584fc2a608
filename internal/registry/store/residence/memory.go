package residence

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"civreg/internal/registry/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
)

// InMemory stores residences in memory for unit tests and the demo
// environment.
type InMemory struct {
	mu         sync.RWMutex
	residences map[string]*models.Residence
	nidaIdx    map[string]string
}

// NewInMemory creates an in-memory residence store.
func NewInMemory() *InMemory {
	return &InMemory{
		residences: make(map[string]*models.Residence),
		nidaIdx:    make(map[string]string),
	}
}

// CreateIfNIDAAvailable atomically creates the residence if the NIDA number
// is not already registered.
func (s *InMemory) CreateIfNIDAAvailable(_ context.Context, r *models.Residence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	nida := string(r.NIDANumber)
	if _, exists := s.nidaIdx[nida]; exists {
		return fmt.Errorf("nida number already registered: %w", sentinel.ErrAlreadyUsed)
	}
	key := r.ID.String()
	copied := *r
	s.residences[key] = &copied
	s.nidaIdx[nida] = key
	return nil
}

// FindByID retrieves a residence by UUID.
func (s *InMemory) FindByID(_ context.Context, residenceID id.ResidenceID) (*models.Residence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.residences[residenceID.String()]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

// ListByWard returns residences currently located in a ward, ordered by
// registration time.
func (s *InMemory) ListByWard(_ context.Context, wardID id.WardID) ([]*models.Residence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Residence
	for _, r := range s.residences {
		if r.WardID == wardID {
			copied := *r
			out = append(out, &copied)
		}
	}
	sortByRegisteredAt(out)
	return out, nil
}

// ListByVillage returns residences currently located in a village, ordered
// by registration time.
func (s *InMemory) ListByVillage(_ context.Context, villageID id.VillageID) ([]*models.Residence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Residence
	for _, r := range s.residences {
		if r.VillageID == villageID {
			copied := *r
			out = append(out, &copied)
		}
	}
	sortByRegisteredAt(out)
	return out, nil
}

// ListAll returns every residence, ordered by registration time.
func (s *InMemory) ListAll(_ context.Context) ([]*models.Residence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Residence, 0, len(s.residences))
	for _, r := range s.residences {
		copied := *r
		out = append(out, &copied)
	}
	sortByRegisteredAt(out)
	return out, nil
}

// Update persists changes to an existing residence.
func (s *InMemory) Update(_ context.Context, r *models.Residence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := r.ID.String()
	if _, ok := s.residences[key]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *r
	s.residences[key] = &copied
	return nil
}

// Execute runs validate and mutate against the residence while holding the
// store lock, so concurrent relocations cannot interleave. The postgres
// implementation uses SELECT FOR UPDATE for the same effect.
func (s *InMemory) Execute(_ context.Context, residenceID id.ResidenceID, validate func(*models.Residence) error, mutate func(*models.Residence)) (*models.Residence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.residences[residenceID.String()]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *r
	if err := validate(&copied); err != nil {
		return nil, err
	}
	mutate(&copied)
	s.residences[residenceID.String()] = &copied
	result := copied
	return &result, nil
}

func sortByRegisteredAt(out []*models.Residence) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
}
