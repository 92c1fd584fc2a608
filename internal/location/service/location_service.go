// Package service implements ward and village administration. Every
// operation takes the acting user explicitly and is reserved for SuperAdmin.
package service

import (
	"context"
	"errors"
	"log/slog"

	identity "civreg/internal/identity/models"
	"civreg/internal/location/hierarchy"
	"civreg/internal/location/models"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/audit"
	"civreg/pkg/platform/sentinel"
	"civreg/pkg/requestcontext"
)

type WardStore interface {
	CreateIfCodeAvailable(ctx context.Context, w *models.Ward) error
	FindByID(ctx context.Context, wardID id.WardID) (*models.Ward, error)
	List(ctx context.Context) ([]*models.Ward, error)
	Update(ctx context.Context, w *models.Ward) error
	Delete(ctx context.Context, wardID id.WardID) error
}

type VillageStore interface {
	CreateIfCodeAvailable(ctx context.Context, v *models.Village) error
	FindByID(ctx context.Context, villageID id.VillageID) (*models.Village, error)
	CountByWard(ctx context.Context, wardID id.WardID) (int, error)
	Update(ctx context.Context, v *models.Village) error
}

type Service struct {
	wards     WardStore
	villages  VillageStore
	hierarchy *hierarchy.Hierarchy
	audit     audit.Publisher
	logger    *slog.Logger
}

func New(wards WardStore, villages VillageStore, h *hierarchy.Hierarchy, publisher audit.Publisher, logger *slog.Logger) *Service {
	return &Service{
		wards:     wards,
		villages:  villages,
		hierarchy: h,
		audit:     publisher,
		logger:    logger,
	}
}

func (s *Service) requireSuperAdmin(ctx context.Context, actor identity.Actor, action audit.AuditEvent, subject string) error {
	if actor.Role == identity.RoleSuperAdmin {
		return nil
	}
	event := audit.NewEvent(ctx, action, actor.ID, actor.Role.String(), subject, "").
		Denied("location administration requires super_admin")
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.Warn("audit emit failed", "error", err)
	}
	return dErrors.New(dErrors.CodeForbidden, "location administration requires super_admin")
}

// CreateWard registers a new top-level administrative unit.
func (s *Service) CreateWard(ctx context.Context, actor identity.Actor, name, code string) (*models.Ward, error) {
	if err := s.requireSuperAdmin(ctx, actor, audit.EventWardCreated, "ward"); err != nil {
		return nil, err
	}
	w, err := models.NewWard(id.NewWardID(), name, code, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid ward")
	}
	if err := s.wards.CreateIfCodeAvailable(ctx, w); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "ward code is already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create ward")
	}
	s.emit(ctx, audit.NewEvent(ctx, audit.EventWardCreated, actor.ID, actor.Role.String(), "ward", w.ID.String()))
	s.logger.Info("ward created", "ward_id", w.ID, "code", w.Code)
	return w, nil
}

// CreateVillage registers a village inside an existing ward.
func (s *Service) CreateVillage(ctx context.Context, actor identity.Actor, name, code string, wardID id.WardID) (*models.Village, error) {
	if err := s.requireSuperAdmin(ctx, actor, audit.EventVillageCreated, "village"); err != nil {
		return nil, err
	}
	w, err := s.wards.FindByID(ctx, wardID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "ward not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ward")
	}
	if !w.IsActive() {
		return nil, dErrors.New(dErrors.CodeValidation, "cannot add a village to an inactive ward")
	}
	v, err := models.NewVillage(id.NewVillageID(), name, code, wardID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid village")
	}
	if err := s.villages.CreateIfCodeAvailable(ctx, v); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "village code is already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create village")
	}
	s.emit(ctx, audit.NewEvent(ctx, audit.EventVillageCreated, actor.ID, actor.Role.String(), "village", v.ID.String()))
	s.logger.Info("village created", "village_id", v.ID, "ward_id", wardID, "code", v.Code)
	return v, nil
}

// SetWardStatus activates or deactivates a ward.
func (s *Service) SetWardStatus(ctx context.Context, actor identity.Actor, wardID id.WardID, status models.LocationStatus) (*models.Ward, error) {
	if err := s.requireSuperAdmin(ctx, actor, audit.EventWardCreated, "ward"); err != nil {
		return nil, err
	}
	if status != models.StatusActive && status != models.StatusInactive {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown location status")
	}
	w, err := s.wards.FindByID(ctx, wardID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "ward not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load ward")
	}
	w.Status = status
	w.UpdatedAt = requestcontext.Now(ctx)
	if err := s.wards.Update(ctx, w); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update ward")
	}
	return w, nil
}

// SetVillageStatus activates or deactivates a village.
func (s *Service) SetVillageStatus(ctx context.Context, actor identity.Actor, villageID id.VillageID, status models.LocationStatus) (*models.Village, error) {
	if err := s.requireSuperAdmin(ctx, actor, audit.EventVillageCreated, "village"); err != nil {
		return nil, err
	}
	if status != models.StatusActive && status != models.StatusInactive {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown location status")
	}
	v, err := s.villages.FindByID(ctx, villageID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "village not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load village")
	}
	v.Status = status
	v.UpdatedAt = requestcontext.Now(ctx)
	if err := s.villages.Update(ctx, v); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update village")
	}
	return v, nil
}

// DeleteWard removes a ward. Forbidden while the ward still has villages.
func (s *Service) DeleteWard(ctx context.Context, actor identity.Actor, wardID id.WardID) error {
	if err := s.requireSuperAdmin(ctx, actor, audit.EventWardDeleted, "ward"); err != nil {
		return err
	}
	n, err := s.villages.CountByWard(ctx, wardID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count villages")
	}
	if n > 0 {
		return dErrors.New(dErrors.CodeConflict, "ward still has villages and cannot be deleted")
	}
	if err := s.wards.Delete(ctx, wardID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "ward not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete ward")
	}
	s.emit(ctx, audit.NewEvent(ctx, audit.EventWardDeleted, actor.ID, actor.Role.String(), "ward", wardID.String()))
	s.logger.Info("ward deleted", "ward_id", wardID)
	return nil
}

// ListWards returns all wards. Read access is open to every authenticated
// role; location selectors need the full list.
func (s *Service) ListWards(ctx context.Context) ([]*models.Ward, error) {
	wards, err := s.wards.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list wards")
	}
	return wards, nil
}

// ListVillages returns the villages of one ward.
func (s *Service) ListVillages(ctx context.Context, wardID id.WardID) ([]*models.Village, error) {
	return s.hierarchy.VillagesOfWard(ctx, wardID)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}
