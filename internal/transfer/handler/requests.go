package handler

import (
	"strings"

	"civreg/internal/transfer/service"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

type RequestTransferRequest struct {
	ResidenceID string `json:"residence_id"`
	ToWardID    string `json:"to_ward_id"`
	ToVillageID string `json:"to_village_id"`
	Reason      string `json:"reason"`

	// AllowOverride is only honored for Admin and SuperAdmin actors.
	AllowOverride bool `json:"allow_override,omitempty"`
}

func (r *RequestTransferRequest) Normalize() {
	if r == nil {
		return
	}
	r.ResidenceID = strings.TrimSpace(r.ResidenceID)
	r.ToWardID = strings.TrimSpace(r.ToWardID)
	r.ToVillageID = strings.TrimSpace(r.ToVillageID)
	r.Reason = strings.TrimSpace(r.Reason)
}

// ToCommand validates and converts the request into a service command.
func (r *RequestTransferRequest) ToCommand() (service.RequestCommand, error) {
	var cmd service.RequestCommand
	if r == nil {
		return cmd, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	residenceID, err := id.ParseResidenceID(r.ResidenceID)
	if err != nil {
		return cmd, dErrors.New(dErrors.CodeValidation, "invalid residence_id")
	}
	toWardID, err := id.ParseWardID(r.ToWardID)
	if err != nil {
		return cmd, dErrors.New(dErrors.CodeValidation, "invalid to_ward_id")
	}
	toVillageID, err := id.ParseVillageID(r.ToVillageID)
	if err != nil {
		return cmd, dErrors.New(dErrors.CodeValidation, "invalid to_village_id")
	}
	if r.Reason == "" {
		return cmd, dErrors.New(dErrors.CodeValidation, "reason is required")
	}

	return service.RequestCommand{
		ResidenceID:   residenceID,
		ToWardID:      toWardID,
		ToVillageID:   toVillageID,
		Reason:        r.Reason,
		AllowOverride: r.AllowOverride,
	}, nil
}

type RejectTransferRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectTransferRequest) Normalize() {
	if r == nil {
		return
	}
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *RejectTransferRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}
