package models

import (
	"strings"
	"time"

	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

// ResidenceStatus tracks a residence record's lifecycle.
type ResidenceStatus string

const (
	StatusActive   ResidenceStatus = "active"
	StatusInactive ResidenceStatus = "inactive"
	// StatusMoved is set only by the transfer workflow when a residence
	// leaves its registered location history behind.
	StatusMoved ResidenceStatus = "moved"
)

// ParseResidenceStatus validates a status string from external input.
// Moved is excluded: it is reserved for the transfer workflow.
func ParseResidenceStatus(raw string) (ResidenceStatus, error) {
	switch ResidenceStatus(raw) {
	case StatusActive, StatusInactive:
		return ResidenceStatus(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "status must be active or inactive")
	}
}

// Residence is a registered household. Location fields are mutated only
// through ApplyLocationChange so the transfer workflow stays the single
// relocation path.
type Residence struct {
	ID            id.ResidenceID  `json:"id"`
	HouseNo       string          `json:"house_no"`
	ResidentName  string          `json:"resident_name"`
	NIDANumber    id.NIDANumber   `json:"nida_number"`
	WardID        id.WardID       `json:"ward_id"`
	VillageID     id.VillageID    `json:"village_id"`
	FamilyMembers int             `json:"family_members"`
	Status        ResidenceStatus `json:"status"`
	RegisteredBy  id.UserID       `json:"registered_by"`
	RegisteredAt  time.Time       `json:"registered_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewResidence validates and constructs a residence aggregate.
func NewResidence(residenceID id.ResidenceID, houseNo, residentName string, nida id.NIDANumber, wardID id.WardID, villageID id.VillageID, familyMembers int, registeredBy id.UserID, now time.Time) (*Residence, error) {
	houseNo = strings.TrimSpace(houseNo)
	residentName = strings.TrimSpace(residentName)
	if houseNo == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "house number cannot be empty")
	}
	if residentName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "resident name cannot be empty")
	}
	if familyMembers < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "a residence must have at least one family member")
	}
	if wardID.IsNil() || villageID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "residence requires a ward and village")
	}
	if registeredBy.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "residence requires a registering actor")
	}
	return &Residence{
		ID:            residenceID,
		HouseNo:       houseNo,
		ResidentName:  residentName,
		NIDANumber:    nida,
		WardID:        wardID,
		VillageID:     villageID,
		FamilyMembers: familyMembers,
		Status:        StatusActive,
		RegisteredBy:  registeredBy,
		RegisteredAt:  now,
		UpdatedAt:     now,
	}, nil
}

// Relocate overwrites the residence's location in place, preserving
// identity and family members. Status becomes moved; the record can be
// set back to active at the new location through SetStatus.
func (r *Residence) Relocate(wardID id.WardID, villageID id.VillageID, now time.Time) {
	r.WardID = wardID
	r.VillageID = villageID
	r.Status = StatusMoved
	r.UpdatedAt = now
}
