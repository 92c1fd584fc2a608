// Package access is the single source of truth for location-scoped
// authorization. It is pure: the only collaborator is a ward resolver for
// mapping a village to its containing ward.
package access

import (
	"context"

	identity "civreg/internal/identity/models"
	location "civreg/internal/location/models"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

// WardResolver maps villages to wards. Satisfied by the location hierarchy.
type WardResolver interface {
	WardOf(ctx context.Context, villageID id.VillageID) (id.WardID, error)
	VillagesOfWard(ctx context.Context, wardID id.WardID) ([]*location.Village, error)
}

// WardSet is the result of an accessible-wards query. All set means every
// ward, used instead of enumerating the table for SuperAdmin.
type WardSet struct {
	All bool
	IDs []id.WardID
}

func (s WardSet) Contains(wardID id.WardID) bool {
	if s.All {
		return true
	}
	for _, w := range s.IDs {
		if w == wardID {
			return true
		}
	}
	return false
}

// VillageSet mirrors WardSet for villages.
type VillageSet struct {
	All bool
	IDs []id.VillageID
}

func (s VillageSet) Contains(villageID id.VillageID) bool {
	if s.All {
		return true
	}
	for _, v := range s.IDs {
		if v == villageID {
			return true
		}
	}
	return false
}

// Checker answers "can actor A act on location or record L".
type Checker struct {
	resolver WardResolver
}

func NewChecker(resolver WardResolver) *Checker {
	return &Checker{resolver: resolver}
}

// AccessibleWards returns the wards the actor may operate in.
func (c *Checker) AccessibleWards(ctx context.Context, actor identity.Actor) (WardSet, error) {
	switch actor.Role {
	case identity.RoleSuperAdmin:
		return WardSet{All: true}, nil
	case identity.RoleAdmin, identity.RoleWeo:
		return WardSet{IDs: []id.WardID{actor.AssignedWardID}}, nil
	case identity.RoleVeo, identity.RoleDataCollector:
		wardID, err := c.resolver.WardOf(ctx, actor.AssignedVillageID)
		if err != nil {
			return WardSet{}, err
		}
		return WardSet{IDs: []id.WardID{wardID}}, nil
	default:
		return WardSet{}, dErrors.New(dErrors.CodeForbidden, "role has no location access")
	}
}

// AccessibleVillages returns the villages the actor may operate in.
func (c *Checker) AccessibleVillages(ctx context.Context, actor identity.Actor) (VillageSet, error) {
	switch actor.Role {
	case identity.RoleSuperAdmin:
		return VillageSet{All: true}, nil
	case identity.RoleAdmin, identity.RoleWeo:
		villages, err := c.resolver.VillagesOfWard(ctx, actor.AssignedWardID)
		if err != nil {
			return VillageSet{}, err
		}
		ids := make([]id.VillageID, 0, len(villages))
		for _, v := range villages {
			ids = append(ids, v.ID)
		}
		return VillageSet{IDs: ids}, nil
	case identity.RoleVeo, identity.RoleDataCollector:
		return VillageSet{IDs: []id.VillageID{actor.AssignedVillageID}}, nil
	default:
		return VillageSet{}, dErrors.New(dErrors.CodeForbidden, "role has no location access")
	}
}

// CanAccessWard reports whether the actor may act within the ward.
func (c *Checker) CanAccessWard(ctx context.Context, actor identity.Actor, wardID id.WardID) (bool, error) {
	set, err := c.AccessibleWards(ctx, actor)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeForbidden) {
			return false, nil
		}
		return false, err
	}
	return set.Contains(wardID), nil
}

// CanAccessVillage reports whether the actor may act within the village.
func (c *Checker) CanAccessVillage(ctx context.Context, actor identity.Actor, villageID id.VillageID) (bool, error) {
	set, err := c.AccessibleVillages(ctx, actor)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeForbidden) {
			return false, nil
		}
		return false, err
	}
	return set.Contains(villageID), nil
}

// CanViewResidence checks view access against the residence's current
// location. Pure role and location comparison, no lookups.
func (c *Checker) CanViewResidence(actor identity.Actor, wardID id.WardID, villageID id.VillageID) bool {
	switch actor.Role {
	case identity.RoleSuperAdmin:
		return true
	case identity.RoleVeo:
		return villageID == actor.AssignedVillageID
	case identity.RoleAdmin, identity.RoleWeo:
		return wardID == actor.AssignedWardID
	default:
		// DataCollector keeps location selectors for data entry but
		// never view access to registered residences.
		return false
	}
}

// CanManageActor checks user-management authority (edit, lock, unlock).
// SuperAdmin accounts are editable only by SuperAdmin.
func (c *Checker) CanManageActor(actor identity.Actor, target identity.Actor) bool {
	if target.Role == identity.RoleSuperAdmin {
		return actor.Role == identity.RoleSuperAdmin
	}
	switch actor.Role {
	case identity.RoleSuperAdmin:
		return true
	case identity.RoleVeo:
		return target.AssignedVillageID == actor.AssignedVillageID
	case identity.RoleAdmin, identity.RoleWeo:
		return target.AssignedWardID == actor.AssignedWardID
	default:
		return false
	}
}

// RequireWard is a convenience wrapper returning a forbidden error instead
// of a bool.
func (c *Checker) RequireWard(ctx context.Context, actor identity.Actor, wardID id.WardID) error {
	ok, err := c.CanAccessWard(ctx, actor, wardID)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeForbidden, "actor cannot act in this ward")
	}
	return nil
}
