package handler

import (
	"time"

	"civreg/internal/registry/models"
)

type ResidenceResponse struct {
	ID            string    `json:"id"`
	HouseNo       string    `json:"house_no"`
	ResidentName  string    `json:"resident_name"`
	NIDANumber    string    `json:"nida_number"`
	WardID        string    `json:"ward_id"`
	VillageID     string    `json:"village_id"`
	FamilyMembers int       `json:"family_members"`
	Status        string    `json:"status"`
	RegisteredBy  string    `json:"registered_by"`
	RegisteredAt  time.Time `json:"registered_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ResidenceListResponse struct {
	Residences []ResidenceResponse `json:"residences"`
}

type ResidenceDetailsResponse struct {
	Residence ResidenceResponse      `json:"residence"`
	Family    []FamilyMemberResponse `json:"family_members"`
}

type FamilyMemberResponse struct {
	ID           string `json:"id"`
	ResidenceID  string `json:"residence_id"`
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"date_of_birth"`
	Relationship string `json:"relationship"`
	NIDANumber   string `json:"nida_number,omitempty"`
	Occupation   string `json:"occupation,omitempty"`
}

func toResidenceResponse(r *models.Residence) ResidenceResponse {
	return ResidenceResponse{
		ID:            r.ID.String(),
		HouseNo:       r.HouseNo,
		ResidentName:  r.ResidentName,
		NIDANumber:    r.NIDANumber.String(),
		WardID:        r.WardID.String(),
		VillageID:     r.VillageID.String(),
		FamilyMembers: r.FamilyMembers,
		Status:        string(r.Status),
		RegisteredBy:  r.RegisteredBy.String(),
		RegisteredAt:  r.RegisteredAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toResidenceListResponse(residences []*models.Residence) ResidenceListResponse {
	out := ResidenceListResponse{Residences: make([]ResidenceResponse, 0, len(residences))}
	for _, r := range residences {
		out.Residences = append(out.Residences, toResidenceResponse(r))
	}
	return out
}

func toResidenceDetailsResponse(r *models.Residence, members []*models.FamilyMember) ResidenceDetailsResponse {
	out := ResidenceDetailsResponse{
		Residence: toResidenceResponse(r),
		Family:    make([]FamilyMemberResponse, 0, len(members)),
	}
	for _, m := range members {
		out.Family = append(out.Family, toFamilyMemberResponse(m))
	}
	return out
}

func toFamilyMemberResponse(m *models.FamilyMember) FamilyMemberResponse {
	return FamilyMemberResponse{
		ID:           m.ID.String(),
		ResidenceID:  m.ResidenceID.String(),
		Name:         m.Name,
		Gender:       m.Gender,
		DateOfBirth:  m.DateOfBirth.Format("2006-01-02"),
		Relationship: m.Relationship,
		NIDANumber:   m.NIDANumber.String(),
		Occupation:   m.Occupation,
	}
}
