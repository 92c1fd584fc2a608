package models

import (
	"strings"
	"time"

	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

// LocationStatus is shared by wards and villages.
type LocationStatus string

const (
	StatusActive   LocationStatus = "active"
	StatusInactive LocationStatus = "inactive"
)

// Ward is the top-level administrative unit. Created and edited only by
// SuperAdmin; deleting a ward is forbidden while it still has villages.
type Ward struct {
	ID        id.WardID      `json:"id"`
	Name      string         `json:"name"`
	Code      string         `json:"code"`
	Status    LocationStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (w *Ward) IsActive() bool {
	return w.Status == StatusActive
}

// NewWard validates and constructs a ward aggregate.
func NewWard(wardID id.WardID, name, code string, now time.Time) (*Ward, error) {
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "ward name cannot be empty")
	}
	if code == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "ward code cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeValidation, "ward name must be 128 characters or less")
	}
	return &Ward{
		ID:        wardID,
		Name:      name,
		Code:      code,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Village is the smallest administrative unit tracked. It belongs to exactly
// one ward.
type Village struct {
	ID        id.VillageID   `json:"id"`
	Name      string         `json:"name"`
	Code      string         `json:"code"`
	WardID    id.WardID      `json:"ward_id"`
	Status    LocationStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (v *Village) IsActive() bool {
	return v.Status == StatusActive
}

// NewVillage validates and constructs a village aggregate.
func NewVillage(villageID id.VillageID, name, code string, wardID id.WardID, now time.Time) (*Village, error) {
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "village name cannot be empty")
	}
	if code == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "village code cannot be empty")
	}
	if wardID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "village must belong to a ward")
	}
	return &Village{
		ID:        villageID,
		Name:      name,
		Code:      code,
		WardID:    wardID,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
