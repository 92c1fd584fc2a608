package transfer

import (
	"context"
	"sort"
	"sync"

	"civreg/internal/transfer/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
)

// InMemory stores transfers in memory for unit tests and the demo
// environment.
type InMemory struct {
	mu        sync.RWMutex
	transfers map[string]*models.Transfer
}

// NewInMemory creates an in-memory transfer store.
func NewInMemory() *InMemory {
	return &InMemory{transfers: make(map[string]*models.Transfer)}
}

// Create appends a transfer row. Rows are never deleted.
func (s *InMemory) Create(_ context.Context, t *models.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *t
	s.transfers[t.ID.String()] = &copied
	return nil
}

// FindByID retrieves a transfer by UUID.
func (s *InMemory) FindByID(_ context.Context, transferID id.TransferID) (*models.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.transfers[transferID.String()]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

// FindActiveByResidence returns the residence's non-terminal transfers,
// oldest first. Callers enforcing the one-active-transfer invariant must
// run it and the subsequent Create inside the same transaction; the
// in-memory transaction runner serializes them under one lock.
func (s *InMemory) FindActiveByResidence(_ context.Context, residenceID id.ResidenceID) ([]*models.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Transfer
	for _, t := range s.transfers {
		if t.ResidenceID == residenceID && t.Active() {
			copied := *t
			out = append(out, &copied)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

// ListByResidence returns the residence's full transfer history, oldest
// first.
func (s *InMemory) ListByResidence(_ context.Context, residenceID id.ResidenceID) ([]*models.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Transfer
	for _, t := range s.transfers {
		if t.ResidenceID == residenceID {
			copied := *t
			out = append(out, &copied)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

// Update persists changes to an existing transfer.
func (s *InMemory) Update(_ context.Context, t *models.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := t.ID.String()
	if _, ok := s.transfers[key]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *t
	s.transfers[key] = &copied
	return nil
}

// Execute runs validate and mutate against the transfer while holding the
// store lock, so concurrent approvals cannot interleave. The postgres
// implementation uses SELECT FOR UPDATE for the same effect.
func (s *InMemory) Execute(_ context.Context, transferID id.TransferID, validate func(*models.Transfer) error, mutate func(*models.Transfer)) (*models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transfers[transferID.String()]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *t
	if err := validate(&copied); err != nil {
		return nil, err
	}
	mutate(&copied)
	s.transfers[transferID.String()] = &copied
	result := copied
	return &result, nil
}

func sortByCreatedAt(out []*models.Transfer) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}
