package handler

import (
	"strings"

	"civreg/internal/identity/models"
	"civreg/internal/identity/service"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.Username = strings.TrimSpace(r.Username)
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

type CreateUserRequest struct {
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	NIDANumber string `json:"nida_number"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	WardID     string `json:"ward_id,omitempty"`
	VillageID  string `json:"village_id,omitempty"`
}

func (r *CreateUserRequest) Normalize() {
	if r == nil {
		return
	}
	r.Username = strings.TrimSpace(r.Username)
	r.FullName = strings.TrimSpace(r.FullName)
	r.NIDANumber = strings.TrimSpace(r.NIDANumber)
	r.Role = strings.TrimSpace(strings.ToLower(r.Role))
	r.WardID = strings.TrimSpace(r.WardID)
	r.VillageID = strings.TrimSpace(r.VillageID)
}

// ToCommand validates and converts the request into a service command.
func (r *CreateUserRequest) ToCommand() (service.CreateUserCommand, error) {
	var cmd service.CreateUserCommand
	if r == nil {
		return cmd, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Username == "" {
		return cmd, dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if r.FullName == "" {
		return cmd, dErrors.New(dErrors.CodeValidation, "full_name is required")
	}
	if len(r.Password) < 12 {
		return cmd, dErrors.New(dErrors.CodeValidation, "password must be at least 12 characters")
	}
	nida, err := id.ParseNIDANumber(r.NIDANumber)
	if err != nil {
		return cmd, err
	}
	role, err := models.ParseRole(r.Role)
	if err != nil {
		return cmd, dErrors.Wrap(err, dErrors.CodeValidation, "invalid role")
	}

	var wardID id.WardID
	if r.WardID != "" {
		if wardID, err = id.ParseWardID(r.WardID); err != nil {
			return cmd, dErrors.New(dErrors.CodeValidation, "invalid ward_id")
		}
	}
	var villageID id.VillageID
	if r.VillageID != "" {
		if villageID, err = id.ParseVillageID(r.VillageID); err != nil {
			return cmd, dErrors.New(dErrors.CodeValidation, "invalid village_id")
		}
	}

	return service.CreateUserCommand{
		Username:   r.Username,
		FullName:   r.FullName,
		NIDANumber: nida,
		Password:   r.Password,
		Role:       role,
		WardID:     wardID,
		VillageID:  villageID,
	}, nil
}
