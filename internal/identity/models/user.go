package models

import (
	"strings"
	"time"

	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

// Actor is the authenticated principal every core operation receives
// explicitly. No ambient session state.
type Actor struct {
	ID                id.UserID
	Role              Role
	AssignedWardID    id.WardID
	AssignedVillageID id.VillageID
}

// User is a registry staff account. The location assignment depends on the
// role: ward-scoped roles carry a ward, village-scoped roles carry both a
// village and its ward, SuperAdmin carries neither.
type User struct {
	ID                id.UserID     `json:"id"`
	Username          string        `json:"username"`
	FullName          string        `json:"full_name"`
	NIDANumber        id.NIDANumber `json:"nida_number"`
	PasswordHash      string        `json:"-"`
	Role              Role          `json:"role"`
	AssignedWardID    id.WardID     `json:"assigned_ward_id,omitempty"`
	AssignedVillageID id.VillageID  `json:"assigned_village_id,omitempty"`
	Locked            bool          `json:"locked"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// NewUser validates and constructs a user aggregate. The caller must have
// already verified that the assigned village belongs to the assigned ward.
func NewUser(userID id.UserID, username, fullName string, nida id.NIDANumber, passwordHash string, role Role, wardID id.WardID, villageID id.VillageID, now time.Time) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	fullName = strings.TrimSpace(fullName)
	if username == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "username cannot be empty")
	}
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "full name cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "password hash cannot be empty")
	}
	if err := validateAssignment(role, wardID, villageID); err != nil {
		return nil, err
	}
	return &User{
		ID:                userID,
		Username:          username,
		FullName:          fullName,
		NIDANumber:        nida,
		PasswordHash:      passwordHash,
		Role:              role,
		AssignedWardID:    wardID,
		AssignedVillageID: villageID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func validateAssignment(role Role, wardID id.WardID, villageID id.VillageID) error {
	switch {
	case role.VillageScoped():
		if wardID.IsNil() || villageID.IsNil() {
			return dErrors.New(dErrors.CodeValidation, string(role)+" requires a ward and village assignment")
		}
	case role.WardScoped():
		if wardID.IsNil() {
			return dErrors.New(dErrors.CodeValidation, string(role)+" requires a ward assignment")
		}
		if !villageID.IsNil() {
			return dErrors.New(dErrors.CodeValidation, string(role)+" cannot have a village assignment")
		}
	case role == RoleSuperAdmin:
		if !wardID.IsNil() || !villageID.IsNil() {
			return dErrors.New(dErrors.CodeValidation, "super_admin cannot have a location assignment")
		}
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "unknown role: "+string(role))
	}
	return nil
}

// Actor projects the user onto the principal the core operations consume.
func (u *User) Actor() Actor {
	return Actor{
		ID:                u.ID,
		Role:              u.Role,
		AssignedWardID:    u.AssignedWardID,
		AssignedVillageID: u.AssignedVillageID,
	}
}

// CanLogin reports whether the account may authenticate.
func (u *User) CanLogin() bool {
	return !u.Locked
}

// Lock bars the account from logging in.
func (u *User) Lock(now time.Time) {
	u.Locked = true
	u.UpdatedAt = now
}

// Unlock restores login access.
func (u *User) Unlock(now time.Time) {
	u.Locked = false
	u.UpdatedAt = now
}
