// Package hierarchy answers containment questions over the ward and village
// stores. It never mutates state.
package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"civreg/internal/location/models"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/sentinel"
)

type WardReader interface {
	FindByID(ctx context.Context, wardID id.WardID) (*models.Ward, error)
}

type VillageReader interface {
	FindByID(ctx context.Context, villageID id.VillageID) (*models.Village, error)
	ListByWard(ctx context.Context, wardID id.WardID) ([]*models.Village, error)
}

// Hierarchy is the read model shared by access checks, the residence
// registry and the transfer workflow.
type Hierarchy struct {
	wards    WardReader
	villages VillageReader
}

func New(wards WardReader, villages VillageReader) *Hierarchy {
	return &Hierarchy{wards: wards, villages: villages}
}

// VillagesOfWard lists the villages contained in a ward.
func (h *Hierarchy) VillagesOfWard(ctx context.Context, wardID id.WardID) ([]*models.Village, error) {
	if _, err := h.wards.FindByID(ctx, wardID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "ward not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ward")
	}
	villages, err := h.villages.ListByWard(ctx, wardID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list villages")
	}
	return villages, nil
}

// WardOf resolves the ward a village belongs to.
func (h *Hierarchy) WardOf(ctx context.Context, villageID id.VillageID) (id.WardID, error) {
	v, err := h.villages.FindByID(ctx, villageID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.WardID{}, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("village %s not found", villageID))
		}
		return id.WardID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load village")
	}
	return v.WardID, nil
}

// VillageBelongsToWard reports whether the village is inside the ward.
// An unknown village is simply not inside any ward.
func (h *Hierarchy) VillageBelongsToWard(ctx context.Context, villageID id.VillageID, wardID id.WardID) (bool, error) {
	v, err := h.villages.FindByID(ctx, villageID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load village")
	}
	return v.WardID == wardID, nil
}
