// Package service implements the residence registry: registration, status
// changes, family member upkeep and the workflow's relocation entry point.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"civreg/internal/access"
	identity "civreg/internal/identity/models"
	"civreg/internal/registry/metrics"
	"civreg/internal/registry/models"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/audit"
	"civreg/pkg/platform/sentinel"
	"civreg/pkg/requestcontext"
)

type ResidenceStore interface {
	CreateIfNIDAAvailable(ctx context.Context, r *models.Residence) error
	FindByID(ctx context.Context, residenceID id.ResidenceID) (*models.Residence, error)
	ListByWard(ctx context.Context, wardID id.WardID) ([]*models.Residence, error)
	ListByVillage(ctx context.Context, villageID id.VillageID) ([]*models.Residence, error)
	ListAll(ctx context.Context) ([]*models.Residence, error)
	Update(ctx context.Context, r *models.Residence) error
	Execute(ctx context.Context, residenceID id.ResidenceID, validate func(*models.Residence) error, mutate func(*models.Residence)) (*models.Residence, error)
}

type FamilyMemberStore interface {
	Create(ctx context.Context, m *models.FamilyMember) error
	FindByID(ctx context.Context, memberID id.FamilyMemberID) (*models.FamilyMember, error)
	ListByResidence(ctx context.Context, residenceID id.ResidenceID) ([]*models.FamilyMember, error)
	Delete(ctx context.Context, memberID id.FamilyMemberID) error
}

// LocationValidator verifies village/ward containment for registration.
type LocationValidator interface {
	VillageBelongsToWard(ctx context.Context, villageID id.VillageID, wardID id.WardID) (bool, error)
}

type Service struct {
	residences ResidenceStore
	members    FamilyMemberStore
	checker    *access.Checker
	hierarchy  LocationValidator
	audit      audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func New(residences ResidenceStore, members FamilyMemberStore, checker *access.Checker, hierarchy LocationValidator, publisher audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		residences: residences,
		members:    members,
		checker:    checker,
		hierarchy:  hierarchy,
		audit:      publisher,
		metrics:    m,
		logger:     logger,
	}
}

// RegisterCommand carries validated input for Register.
type RegisterCommand struct {
	HouseNo       string
	ResidentName  string
	NIDANumber    id.NIDANumber
	WardID        id.WardID
	VillageID     id.VillageID
	FamilyMembers int
}

// Register creates a residence record in the actor's accessible location.
func (s *Service) Register(ctx context.Context, actor identity.Actor, cmd RegisterCommand) (*models.Residence, error) {
	defer s.metrics.ObserveRegister(time.Now())

	r, err := models.NewResidence(id.NewResidenceID(), cmd.HouseNo, cmd.ResidentName, cmd.NIDANumber,
		cmd.WardID, cmd.VillageID, cmd.FamilyMembers, actor.ID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid residence")
	}

	ok, err := s.hierarchy.VillageBelongsToWard(ctx, cmd.VillageID, cmd.WardID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "village does not belong to the ward")
	}

	if err := s.requireLocation(ctx, actor, cmd.WardID, cmd.VillageID, audit.EventResidenceRegistered, ""); err != nil {
		return nil, err
	}

	if err := s.residences.CreateIfNIDAAvailable(ctx, r); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "nida number is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register residence")
	}

	s.metrics.ResidencesRegistered.Inc()
	s.emit(ctx, audit.NewEvent(ctx, audit.EventResidenceRegistered, actor.ID, actor.Role.String(), "residence", r.ID.String()))
	s.logger.Info("residence registered", "residence_id", r.ID, "ward_id", r.WardID, "village_id", r.VillageID)
	return r, nil
}

// SetStatus toggles a residence between active and inactive. Existence is
// the only guard; moved is reserved for the transfer workflow.
func (s *Service) SetStatus(ctx context.Context, actor identity.Actor, residenceID id.ResidenceID, status models.ResidenceStatus) (*models.Residence, error) {
	if status != models.StatusActive && status != models.StatusInactive {
		return nil, dErrors.New(dErrors.CodeValidation, "status must be active or inactive")
	}
	r, err := s.load(ctx, residenceID)
	if err != nil {
		return nil, err
	}
	if !s.checker.CanViewResidence(actor, r.WardID, r.VillageID) {
		s.emitDenied(ctx, actor, audit.EventResidenceStatusSet, residenceID.String())
		return nil, dErrors.New(dErrors.CodeForbidden, "actor cannot access this residence")
	}

	r.Status = status
	r.UpdatedAt = requestcontext.Now(ctx)
	if err := s.residences.Update(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update residence")
	}
	s.emit(ctx, audit.NewEvent(ctx, audit.EventResidenceStatusSet, actor.ID, actor.Role.String(), "residence", residenceID.String()).
		WithReason(string(status)))
	return r, nil
}

// ApplyLocationChange relocates a residence in place and marks it moved.
// It is the only relocation entry point and is called by the transfer
// workflow inside its transaction; it performs no authorization of its own.
func (s *Service) ApplyLocationChange(ctx context.Context, residenceID id.ResidenceID, wardID id.WardID, villageID id.VillageID) (*models.Residence, error) {
	now := requestcontext.Now(ctx)
	r, err := s.residences.Execute(ctx, residenceID,
		func(r *models.Residence) error {
			if wardID.IsNil() || villageID.IsNil() {
				return dErrors.New(dErrors.CodeValidation, "target ward and village are required")
			}
			return nil
		},
		func(r *models.Residence) {
			r.Relocate(wardID, villageID, now)
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "residence not found")
		}
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to relocate residence")
	}
	s.metrics.Relocations.Inc()
	return r, nil
}

// GetResidence returns a residence the actor may view, with its family
// members.
func (s *Service) GetResidence(ctx context.Context, actor identity.Actor, residenceID id.ResidenceID) (*models.Residence, []*models.FamilyMember, error) {
	r, err := s.load(ctx, residenceID)
	if err != nil {
		return nil, nil, err
	}
	if !s.checker.CanViewResidence(actor, r.WardID, r.VillageID) {
		s.emitDenied(ctx, actor, audit.EventResidenceStatusSet, residenceID.String())
		return nil, nil, dErrors.New(dErrors.CodeForbidden, "actor cannot access this residence")
	}
	members, err := s.members.ListByResidence(ctx, residenceID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list family members")
	}
	return r, members, nil
}

// ListAccessible returns the residences inside the actor's location scope.
func (s *Service) ListAccessible(ctx context.Context, actor identity.Actor) ([]*models.Residence, error) {
	switch actor.Role {
	case identity.RoleSuperAdmin:
		return s.fetch(s.residences.ListAll(ctx))
	case identity.RoleAdmin, identity.RoleWeo:
		return s.fetch(s.residences.ListByWard(ctx, actor.AssignedWardID))
	case identity.RoleVeo:
		return s.fetch(s.residences.ListByVillage(ctx, actor.AssignedVillageID))
	default:
		return nil, dErrors.New(dErrors.CodeForbidden, "role has no registry access")
	}
}

// FamilyMemberCommand carries validated input for AddFamilyMember.
type FamilyMemberCommand struct {
	Name         string
	Gender       string
	DateOfBirth  time.Time
	Relationship string
	NIDANumber   id.NIDANumber
	Occupation   string
}

// AddFamilyMember appends a member to a residence the actor can access and
// keeps the residence's member count in step.
func (s *Service) AddFamilyMember(ctx context.Context, actor identity.Actor, residenceID id.ResidenceID, cmd FamilyMemberCommand) (*models.FamilyMember, error) {
	r, err := s.load(ctx, residenceID)
	if err != nil {
		return nil, err
	}
	if !s.checker.CanViewResidence(actor, r.WardID, r.VillageID) {
		s.emitDenied(ctx, actor, audit.EventFamilyMemberAdded, residenceID.String())
		return nil, dErrors.New(dErrors.CodeForbidden, "actor cannot access this residence")
	}

	now := requestcontext.Now(ctx)
	m, err := models.NewFamilyMember(id.NewFamilyMemberID(), residenceID, cmd.Name, cmd.Gender,
		cmd.DateOfBirth, cmd.Relationship, cmd.NIDANumber, cmd.Occupation, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid family member")
	}
	if err := s.members.Create(ctx, m); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add family member")
	}

	r.FamilyMembers++
	r.UpdatedAt = now
	if err := s.residences.Update(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update residence")
	}
	s.emit(ctx, audit.NewEvent(ctx, audit.EventFamilyMemberAdded, actor.ID, actor.Role.String(), "residence", residenceID.String()))
	return m, nil
}

// RemoveFamilyMember deletes a member record. The last member cannot be
// removed; a residence always has at least one.
func (s *Service) RemoveFamilyMember(ctx context.Context, actor identity.Actor, memberID id.FamilyMemberID) error {
	m, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "family member not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load family member")
	}
	r, err := s.load(ctx, m.ResidenceID)
	if err != nil {
		return err
	}
	if !s.checker.CanViewResidence(actor, r.WardID, r.VillageID) {
		s.emitDenied(ctx, actor, audit.EventFamilyMemberRemoved, m.ResidenceID.String())
		return dErrors.New(dErrors.CodeForbidden, "actor cannot access this residence")
	}
	if r.FamilyMembers <= 1 {
		return dErrors.New(dErrors.CodeInvariantViolation, "a residence must keep at least one family member")
	}

	if err := s.members.Delete(ctx, memberID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove family member")
	}
	r.FamilyMembers--
	r.UpdatedAt = requestcontext.Now(ctx)
	if err := s.residences.Update(ctx, r); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update residence")
	}
	s.emit(ctx, audit.NewEvent(ctx, audit.EventFamilyMemberRemoved, actor.ID, actor.Role.String(), "residence", m.ResidenceID.String()))
	return nil
}

func (s *Service) load(ctx context.Context, residenceID id.ResidenceID) (*models.Residence, error) {
	r, err := s.residences.FindByID(ctx, residenceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "residence not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load residence")
	}
	return r, nil
}

func (s *Service) fetch(residences []*models.Residence, err error) ([]*models.Residence, error) {
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list residences")
	}
	return residences, nil
}

func (s *Service) requireLocation(ctx context.Context, actor identity.Actor, wardID id.WardID, villageID id.VillageID, action audit.AuditEvent, subjectID string) error {
	wardOK, err := s.checker.CanAccessWard(ctx, actor, wardID)
	if err != nil {
		return err
	}
	villageOK, err := s.checker.CanAccessVillage(ctx, actor, villageID)
	if err != nil {
		return err
	}
	if !wardOK || !villageOK {
		s.emitDenied(ctx, actor, action, subjectID)
		return dErrors.New(dErrors.CodeForbidden, "actor cannot act in this location")
	}
	return nil
}

func (s *Service) emitDenied(ctx context.Context, actor identity.Actor, action audit.AuditEvent, subjectID string) {
	s.emit(ctx, audit.NewEvent(ctx, action, actor.ID, actor.Role.String(), "residence", subjectID).
		Denied("location out of the actor's scope"))
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}
