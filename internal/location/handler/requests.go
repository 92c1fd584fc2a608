package handler

import (
	"strings"

	"civreg/internal/location/models"
	dErrors "civreg/pkg/domain-errors"
)

// HTTP request DTOs. Converted to service arguments before processing.

type CreateWardRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (r *CreateWardRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Code = strings.TrimSpace(r.Code)
}

func (r *CreateWardRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Code == "" {
		return dErrors.New(dErrors.CodeValidation, "code is required")
	}
	return nil
}

type CreateVillageRequest struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	WardID string `json:"ward_id"`
}

func (r *CreateVillageRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Code = strings.TrimSpace(r.Code)
	r.WardID = strings.TrimSpace(r.WardID)
}

func (r *CreateVillageRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Code == "" {
		return dErrors.New(dErrors.CodeValidation, "code is required")
	}
	if r.WardID == "" {
		return dErrors.New(dErrors.CodeValidation, "ward_id is required")
	}
	return nil
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

func (r SetStatusRequest) Validate() error {
	switch models.LocationStatus(r.Status) {
	case models.StatusActive, models.StatusInactive:
		return nil
	default:
		return dErrors.New(dErrors.CodeValidation, "status must be active or inactive")
	}
}
