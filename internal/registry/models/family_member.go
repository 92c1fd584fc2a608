package models

import (
	"strings"
	"time"

	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

// FamilyMember is a child record of a Residence with no independent
// lifecycle.
type FamilyMember struct {
	ID           id.FamilyMemberID `json:"id"`
	ResidenceID  id.ResidenceID    `json:"residence_id"`
	Name         string            `json:"name"`
	Gender       string            `json:"gender"`
	DateOfBirth  time.Time         `json:"date_of_birth"`
	Relationship string            `json:"relationship"`
	NIDANumber   id.NIDANumber     `json:"nida_number,omitempty"`
	Occupation   string            `json:"occupation,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// NewFamilyMember validates and constructs a family member record.
// The NIDA number is optional; minors may not have one yet.
func NewFamilyMember(memberID id.FamilyMemberID, residenceID id.ResidenceID, name, gender string, dateOfBirth time.Time, relationship string, nida id.NIDANumber, occupation string, now time.Time) (*FamilyMember, error) {
	name = strings.TrimSpace(name)
	relationship = strings.TrimSpace(relationship)
	if residenceID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "family member requires a residence")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "family member name cannot be empty")
	}
	if relationship == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "relationship cannot be empty")
	}
	if dateOfBirth.After(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "date of birth cannot be in the future")
	}
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "male", "female":
		gender = strings.ToLower(strings.TrimSpace(gender))
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "gender must be male or female")
	}
	return &FamilyMember{
		ID:           memberID,
		ResidenceID:  residenceID,
		Name:         name,
		Gender:       gender,
		DateOfBirth:  dateOfBirth,
		Relationship: relationship,
		NIDANumber:   nida,
		Occupation:   strings.TrimSpace(occupation),
		CreatedAt:    now,
	}, nil
}
