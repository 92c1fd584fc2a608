package models

import dErrors "civreg/pkg/domain-errors"

// Role determines which locations an actor may act on. All role-dependent
// branching lives in the access checker and the transfer workflow.
type Role string

const (
	RoleSuperAdmin    Role = "super_admin"
	RoleAdmin         Role = "admin"
	RoleWeo           Role = "weo"
	RoleVeo           Role = "veo"
	RoleDataCollector Role = "data_collector"
)

// ParseRole validates a role string.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleSuperAdmin, RoleAdmin, RoleWeo, RoleVeo, RoleDataCollector:
		return Role(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role: "+raw)
	}
}

func (r Role) String() string {
	return string(r)
}

// WardScoped reports whether the role is assigned at ward level.
func (r Role) WardScoped() bool {
	return r == RoleAdmin || r == RoleWeo
}

// VillageScoped reports whether the role is assigned at village level.
func (r Role) VillageScoped() bool {
	return r == RoleVeo || r == RoleDataCollector
}
