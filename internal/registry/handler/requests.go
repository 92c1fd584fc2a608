package handler

import (
	"strings"
	"time"

	"civreg/internal/registry/service"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

type RegisterResidenceRequest struct {
	HouseNo       string `json:"house_no"`
	ResidentName  string `json:"resident_name"`
	NIDANumber    string `json:"nida_number"`
	WardID        string `json:"ward_id"`
	VillageID     string `json:"village_id"`
	FamilyMembers int    `json:"family_members"`
}

func (r *RegisterResidenceRequest) Normalize() {
	if r == nil {
		return
	}
	r.HouseNo = strings.TrimSpace(r.HouseNo)
	r.ResidentName = strings.TrimSpace(r.ResidentName)
	r.NIDANumber = strings.TrimSpace(r.NIDANumber)
	r.WardID = strings.TrimSpace(r.WardID)
	r.VillageID = strings.TrimSpace(r.VillageID)
}

// ToCommand validates and converts the request into a service command.
func (r *RegisterResidenceRequest) ToCommand() (service.RegisterCommand, error) {
	var cmd service.RegisterCommand
	if r == nil {
		return cmd, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	nida, err := id.ParseNIDANumber(r.NIDANumber)
	if err != nil {
		return cmd, err
	}
	wardID, err := id.ParseWardID(r.WardID)
	if err != nil {
		return cmd, dErrors.New(dErrors.CodeValidation, "invalid ward_id")
	}
	villageID, err := id.ParseVillageID(r.VillageID)
	if err != nil {
		return cmd, dErrors.New(dErrors.CodeValidation, "invalid village_id")
	}

	return service.RegisterCommand{
		HouseNo:       r.HouseNo,
		ResidentName:  r.ResidentName,
		NIDANumber:    nida,
		WardID:        wardID,
		VillageID:     villageID,
		FamilyMembers: r.FamilyMembers,
	}, nil
}

type SetResidenceStatusRequest struct {
	Status string `json:"status"`
}

type AddFamilyMemberRequest struct {
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"date_of_birth"`
	Relationship string `json:"relationship"`
	NIDANumber   string `json:"nida_number,omitempty"`
	Occupation   string `json:"occupation,omitempty"`
}

func (r *AddFamilyMemberRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Gender = strings.TrimSpace(r.Gender)
	r.Relationship = strings.TrimSpace(r.Relationship)
	r.NIDANumber = strings.TrimSpace(r.NIDANumber)
	r.Occupation = strings.TrimSpace(r.Occupation)
}

// ToCommand validates and converts the request into a service command.
// Dates arrive as YYYY-MM-DD; the NIDA number is optional.
func (r *AddFamilyMemberRequest) ToCommand() (service.FamilyMemberCommand, error) {
	var cmd service.FamilyMemberCommand
	if r == nil {
		return cmd, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	dob, err := time.Parse("2006-01-02", r.DateOfBirth)
	if err != nil {
		return cmd, dErrors.New(dErrors.CodeValidation, "date_of_birth must be YYYY-MM-DD")
	}
	var nida id.NIDANumber
	if r.NIDANumber != "" {
		if nida, err = id.ParseNIDANumber(r.NIDANumber); err != nil {
			return cmd, err
		}
	}

	return service.FamilyMemberCommand{
		Name:         r.Name,
		Gender:       r.Gender,
		DateOfBirth:  dob,
		Relationship: r.Relationship,
		NIDANumber:   nida,
		Occupation:   r.Occupation,
	}, nil
}
