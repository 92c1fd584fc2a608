// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "civreg/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a WardID where a VillageID is expected.
type (
	WardID         uuid.UUID
	VillageID      uuid.UUID
	UserID         uuid.UUID
	ResidenceID    uuid.UUID
	FamilyMemberID uuid.UUID
	TransferID     uuid.UUID
	SessionID      uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseWardID(s string) (WardID, error) {
	id, err := parseUUID(s, "ward ID")
	return WardID(id), err
}

func ParseVillageID(s string) (VillageID, error) {
	id, err := parseUUID(s, "village ID")
	return VillageID(id), err
}

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseResidenceID(s string) (ResidenceID, error) {
	id, err := parseUUID(s, "residence ID")
	return ResidenceID(id), err
}

func ParseFamilyMemberID(s string) (FamilyMemberID, error) {
	id, err := parseUUID(s, "family member ID")
	return FamilyMemberID(id), err
}

func ParseTransferID(s string) (TransferID, error) {
	id, err := parseUUID(s, "transfer ID")
	return TransferID(id), err
}

func ParseSessionID(s string) (SessionID, error) {
	id, err := parseUUID(s, "session ID")
	return SessionID(id), err
}

// String methods - for logging and debugging.

func (id WardID) String() string         { return uuid.UUID(id).String() }
func (id VillageID) String() string      { return uuid.UUID(id).String() }
func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id ResidenceID) String() string    { return uuid.UUID(id).String() }
func (id FamilyMemberID) String() string { return uuid.UUID(id).String() }
func (id TransferID) String() string     { return uuid.UUID(id).String() }
func (id SessionID) String() string      { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id WardID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id VillageID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id ResidenceID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id FamilyMemberID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TransferID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// New constructors for service-layer entity creation.

func NewWardID() WardID                 { return WardID(uuid.New()) }
func NewVillageID() VillageID           { return VillageID(uuid.New()) }
func NewUserID() UserID                 { return UserID(uuid.New()) }
func NewResidenceID() ResidenceID       { return ResidenceID(uuid.New()) }
func NewFamilyMemberID() FamilyMemberID { return FamilyMemberID(uuid.New()) }
func NewTransferID() TransferID         { return TransferID(uuid.New()) }
func NewSessionID() SessionID           { return SessionID(uuid.New()) }

// parseUUID is the shared validation logic.
// Note: Nil UUIDs are allowed here. Use IsNil() at the service layer for
// business validation, which allows store lookups to return proper
// "not found" errors for consistency.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
