// Package service implements the residence transfer workflow: a transfer
// walks an approval chain fixed by the requester's role, and the final
// approval relocates the residence and completes the transfer in one
// transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"civreg/internal/access"
	identity "civreg/internal/identity/models"
	regmodels "civreg/internal/registry/models"
	"civreg/internal/transfer/metrics"
	"civreg/internal/transfer/models"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/audit"
	"civreg/pkg/platform/sentinel"
	txcontext "civreg/pkg/platform/tx"
	"civreg/pkg/requestcontext"
)

type TransferStore interface {
	Create(ctx context.Context, t *models.Transfer) error
	FindByID(ctx context.Context, transferID id.TransferID) (*models.Transfer, error)
	FindActiveByResidence(ctx context.Context, residenceID id.ResidenceID) ([]*models.Transfer, error)
	ListByResidence(ctx context.Context, residenceID id.ResidenceID) ([]*models.Transfer, error)
	Execute(ctx context.Context, transferID id.TransferID, validate func(*models.Transfer) error, mutate func(*models.Transfer)) (*models.Transfer, error)
}

// ResidenceReader reads a residence's current location.
type ResidenceReader interface {
	FindByID(ctx context.Context, residenceID id.ResidenceID) (*regmodels.Residence, error)
}

// Relocator is the registry's single entry point for moving a residence.
type Relocator interface {
	ApplyLocationChange(ctx context.Context, residenceID id.ResidenceID, wardID id.WardID, villageID id.VillageID) (*regmodels.Residence, error)
}

// LocationValidator verifies village/ward containment for transfer targets.
type LocationValidator interface {
	VillageBelongsToWard(ctx context.Context, villageID id.VillageID, wardID id.WardID) (bool, error)
}

type Service struct {
	transfers  TransferStore
	residences ResidenceReader
	registry   Relocator
	checker    *access.Checker
	hierarchy  LocationValidator
	tx         txcontext.Runner
	audit      audit.Publisher
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

func New(transfers TransferStore, residences ResidenceReader, registry Relocator, checker *access.Checker, hierarchy LocationValidator, runner txcontext.Runner, publisher audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		transfers:  transfers,
		residences: residences,
		registry:   registry,
		checker:    checker,
		hierarchy:  hierarchy,
		tx:         runner,
		audit:      publisher,
		metrics:    m,
		tracer:     otel.Tracer("civreg/transfer"),
		logger:     logger,
	}
}

// RequestCommand carries validated input for RequestTransfer.
type RequestCommand struct {
	ResidenceID id.ResidenceID
	ToWardID    id.WardID
	ToVillageID id.VillageID
	Reason      string

	// AllowOverride lets Admin and SuperAdmin create a transfer even while
	// another is active for the residence. It must be set explicitly; the
	// override never happens implicitly.
	AllowOverride bool
}

// RequestTransfer opens a transfer for a residence. The approval chain is
// fixed by the requester's role: SuperAdmin relocates immediately, Admin
// needs the receiving ward's approval, VEO walks the full three-step chain.
func (s *Service) RequestTransfer(ctx context.Context, actor identity.Actor, cmd RequestCommand) (t *models.Transfer, err error) {
	ctx, span := s.tracer.Start(ctx, "transfer.Request")
	defer func() { finish(span, err) }()

	r, err := s.loadResidence(ctx, cmd.ResidenceID)
	if err != nil {
		return nil, err
	}
	if actor.Role != identity.RoleSuperAdmin && !s.checker.CanViewResidence(actor, r.WardID, r.VillageID) {
		s.emitDenied(ctx, actor, audit.EventTransferRequested, cmd.ResidenceID.String(), "residence out of the actor's scope")
		return nil, dErrors.New(dErrors.CodeForbidden, "actor cannot access this residence")
	}

	if cmd.ToWardID.IsNil() || cmd.ToVillageID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "target ward and village are required")
	}
	if cmd.ToWardID == r.WardID && cmd.ToVillageID == r.VillageID {
		return nil, dErrors.New(dErrors.CodeValidation, "residence is already in the target location")
	}
	belongs, err := s.hierarchy.VillageBelongsToWard(ctx, cmd.ToVillageID, cmd.ToWardID)
	if err != nil {
		return nil, err
	}
	if !belongs {
		return nil, dErrors.New(dErrors.CodeValidation, "target village does not belong to the target ward")
	}

	transferType, err := transferTypeForRole(actor.Role)
	if err != nil {
		s.emitDenied(ctx, actor, audit.EventTransferRequested, cmd.ResidenceID.String(), "role cannot request transfers")
		return nil, err
	}

	t, err = models.NewTransfer(id.NewTransferID(), r.ID, r.WardID, r.VillageID,
		cmd.ToWardID, cmd.ToVillageID, transferType, cmd.Reason, actor.ID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid transfer request")
	}

	// The active-transfer check and the insert share one transaction: the
	// store locks the residence row so two concurrent requests cannot both
	// pass the check.
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		actives, err := s.transfers.FindActiveByResidence(ctx, r.ID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "residence not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check active transfers")
		}
		if len(actives) > 0 && !s.overridePermitted(actor, cmd) {
			s.metrics.Conflicts.Inc()
			return dErrors.New(dErrors.CodeConflict, fmt.Sprintf(
				"residence has an active transfer %s in status %s", actives[0].ID, actives[0].Status))
		}

		if transferType == models.TypeDirect {
			if _, err := s.registry.ApplyLocationChange(ctx, r.ID, cmd.ToWardID, cmd.ToVillageID); err != nil {
				return err
			}
			t.Complete()
		}
		if err := s.transfers.Create(ctx, t); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create transfer")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRequested(string(transferType))
	s.emit(ctx, audit.NewEvent(ctx, audit.EventTransferRequested, actor.ID, actor.Role.String(), "transfer", t.ID.String()))
	if t.Status == models.StatusCompleted {
		s.metrics.Completed.Inc()
		s.emit(ctx, audit.NewEvent(ctx, audit.EventTransferCompleted, actor.ID, actor.Role.String(), "transfer", t.ID.String()))
	}
	s.logger.InfoContext(ctx, "transfer requested",
		"transfer_id", t.ID, "residence_id", r.ID, "type", t.Type, "status", t.Status)
	return t, nil
}

// ApproveAsWeo records the origin ward WEO's approval of a VEO-initiated
// transfer.
func (s *Service) ApproveAsWeo(ctx context.Context, actor identity.Actor, transferID id.TransferID) (t *models.Transfer, err error) {
	ctx, span := s.tracer.Start(ctx, "transfer.ApproveAsWeo")
	defer func() { finish(span, err) }()

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		t, err = s.transfers.Execute(ctx, transferID,
			func(t *models.Transfer) error {
				if err := t.CanApproveAsWeo(); err != nil {
					return err
				}
				if (actor.Role != identity.RoleWeo && actor.Role != identity.RoleAdmin) ||
					actor.AssignedWardID != t.FromWardID {
					s.emitDenied(ctx, actor, audit.EventTransferWeoApproved, transferID.String(), "actor is not the origin ward's WEO")
					return dErrors.New(dErrors.CodeForbidden, "only the origin ward's WEO may approve this step")
				}
				return nil
			},
			func(t *models.Transfer) { t.ApplyWeoApproval(actor.ID, now) },
		)
		return translateStoreErr(err)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordApproval("weo")
	s.emit(ctx, audit.NewEvent(ctx, audit.EventTransferWeoApproved, actor.ID, actor.Role.String(), "transfer", t.ID.String()))
	return t, nil
}

// ApproveAsReceivingWard records the receiving ward Admin's approval. For a
// ward_admin transfer this is the final step: the residence is relocated and
// the transfer completed in the same transaction.
func (s *Service) ApproveAsReceivingWard(ctx context.Context, actor identity.Actor, transferID id.TransferID) (t *models.Transfer, err error) {
	ctx, span := s.tracer.Start(ctx, "transfer.ApproveAsReceivingWard")
	defer func() { finish(span, err) }()

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		t, err = s.transfers.Execute(ctx, transferID,
			func(t *models.Transfer) error {
				if err := t.CanApproveAsReceivingWard(); err != nil {
					return err
				}
				if actor.Role != identity.RoleAdmin || actor.AssignedWardID != t.ToWardID {
					s.emitDenied(ctx, actor, audit.EventTransferWardApproved, transferID.String(), "actor is not the receiving ward's admin")
					return dErrors.New(dErrors.CodeForbidden, "only the receiving ward's admin may approve this step")
				}
				return nil
			},
			func(t *models.Transfer) {
				t.ApplyWardApproval(actor.ID, now)
				if t.Type == models.TypeWardAdmin {
					t.Complete()
				}
			},
		)
		if err != nil {
			return translateStoreErr(err)
		}
		if t.Status == models.StatusCompleted {
			if _, err := s.registry.ApplyLocationChange(ctx, t.ResidenceID, t.ToWardID, t.ToVillageID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordApproval("ward")
	s.emit(ctx, audit.NewEvent(ctx, audit.EventTransferWardApproved, actor.ID, actor.Role.String(), "transfer", t.ID.String()))
	if t.Status == models.StatusCompleted {
		s.metrics.Completed.Inc()
		s.emit(ctx, audit.NewEvent(ctx, audit.EventTransferCompleted, actor.ID, actor.Role.String(), "transfer", t.ID.String()))
	}
	return t, nil
}

// AcceptAsReceivingVeo records the receiving village VEO's acceptance of a
// veo transfer, then relocates the residence and completes the transfer in
// the same transaction. The veo_accepted stamps are persisted but the row
// never rests in that status.
func (s *Service) AcceptAsReceivingVeo(ctx context.Context, actor identity.Actor, transferID id.TransferID) (t *models.Transfer, err error) {
	ctx, span := s.tracer.Start(ctx, "transfer.AcceptAsReceivingVeo")
	defer func() { finish(span, err) }()

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		t, err = s.transfers.Execute(ctx, transferID,
			func(t *models.Transfer) error {
				if err := t.CanAcceptAsReceivingVeo(); err != nil {
					return err
				}
				if actor.Role != identity.RoleVeo || actor.AssignedVillageID != t.ToVillageID {
					s.emitDenied(ctx, actor, audit.EventTransferVeoAccepted, transferID.String(), "actor is not the receiving village's VEO")
					return dErrors.New(dErrors.CodeForbidden, "only the receiving village's VEO may accept this transfer")
				}
				return nil
			},
			func(t *models.Transfer) {
				t.ApplyVeoAcceptance(actor.ID, now)
				t.Complete()
			},
		)
		if err != nil {
			return translateStoreErr(err)
		}
		if _, err := s.registry.ApplyLocationChange(ctx, t.ResidenceID, t.ToWardID, t.ToVillageID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordApproval("veo")
	s.metrics.Completed.Inc()
	s.emit(ctx, audit.NewEvent(ctx, audit.EventTransferVeoAccepted, actor.ID, actor.Role.String(), "transfer", t.ID.String()))
	s.emit(ctx, audit.NewEvent(ctx, audit.EventTransferCompleted, actor.ID, actor.Role.String(), "transfer", t.ID.String()))
	s.logger.InfoContext(ctx, "transfer completed", "transfer_id", t.ID, "residence_id", t.ResidenceID)
	return t, nil
}

// Reject terminates a non-terminal transfer without touching the residence.
// The rejecting actor must hold the authority of whichever stage is pending;
// SuperAdmin may reject at any stage.
func (s *Service) Reject(ctx context.Context, actor identity.Actor, transferID id.TransferID, reason string) (t *models.Transfer, err error) {
	ctx, span := s.tracer.Start(ctx, "transfer.Reject")
	defer func() { finish(span, err) }()

	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		t, err = s.transfers.Execute(ctx, transferID,
			func(t *models.Transfer) error {
				if err := t.CanReject(); err != nil {
					return err
				}
				if !s.canRejectAtCurrentStage(actor, t) {
					s.emitDenied(ctx, actor, audit.EventTransferRejected, transferID.String(), "actor lacks the pending stage's authority")
					return dErrors.New(dErrors.CodeForbidden, "actor cannot reject this transfer at its current stage")
				}
				return nil
			},
			func(t *models.Transfer) { t.ApplyRejection(actor.ID, now, reason) },
		)
		return translateStoreErr(err)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Rejected.Inc()
	s.emit(ctx, audit.NewEvent(ctx, audit.EventTransferRejected, actor.ID, actor.Role.String(), "transfer", t.ID.String()).
		WithReason(reason))
	return t, nil
}

// GetTransfer returns a transfer with its progress projection. The actor
// must be able to view the residence's origin or target location.
func (s *Service) GetTransfer(ctx context.Context, actor identity.Actor, transferID id.TransferID) (*models.Transfer, models.Progress, error) {
	t, err := s.transfers.FindByID(ctx, transferID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.Progress{}, dErrors.New(dErrors.CodeNotFound, "transfer not found")
		}
		return nil, models.Progress{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load transfer")
	}
	if !s.canViewTransfer(actor, t) {
		return nil, models.Progress{}, dErrors.New(dErrors.CodeForbidden, "actor cannot access this transfer")
	}
	return t, models.Describe(t), nil
}

// ListByResidence returns a residence's full transfer history.
func (s *Service) ListByResidence(ctx context.Context, actor identity.Actor, residenceID id.ResidenceID) ([]*models.Transfer, error) {
	r, err := s.loadResidence(ctx, residenceID)
	if err != nil {
		return nil, err
	}
	if !s.checker.CanViewResidence(actor, r.WardID, r.VillageID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "actor cannot access this residence")
	}
	history, err := s.transfers.ListByResidence(ctx, residenceID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transfers")
	}
	return history, nil
}

func transferTypeForRole(role identity.Role) (models.TransferType, error) {
	switch role {
	case identity.RoleSuperAdmin:
		return models.TypeDirect, nil
	case identity.RoleAdmin:
		return models.TypeWardAdmin, nil
	case identity.RoleVeo:
		return models.TypeVeo, nil
	default:
		return "", dErrors.New(dErrors.CodeForbidden, "role cannot request transfers")
	}
}

func (s *Service) overridePermitted(actor identity.Actor, cmd RequestCommand) bool {
	if !cmd.AllowOverride {
		return false
	}
	return actor.Role == identity.RoleSuperAdmin || actor.Role == identity.RoleAdmin
}

// canRejectAtCurrentStage mirrors the approval authority of the stage the
// transfer is waiting on.
func (s *Service) canRejectAtCurrentStage(actor identity.Actor, t *models.Transfer) bool {
	if actor.Role == identity.RoleSuperAdmin {
		return true
	}
	switch {
	case t.Status == models.StatusPendingApproval && t.Type == models.TypeVeo:
		return (actor.Role == identity.RoleWeo || actor.Role == identity.RoleAdmin) &&
			actor.AssignedWardID == t.FromWardID
	case t.Status == models.StatusPendingApproval && t.Type == models.TypeWardAdmin:
		return actor.Role == identity.RoleAdmin && actor.AssignedWardID == t.ToWardID
	case t.Status == models.StatusWeoApproved:
		return actor.Role == identity.RoleAdmin && actor.AssignedWardID == t.ToWardID
	case t.Status == models.StatusWardApproved, t.Status == models.StatusVeoAccepted:
		return actor.Role == identity.RoleVeo && actor.AssignedVillageID == t.ToVillageID
	default:
		return false
	}
}

func (s *Service) canViewTransfer(actor identity.Actor, t *models.Transfer) bool {
	return s.checker.CanViewResidence(actor, t.FromWardID, t.FromVillageID) ||
		s.checker.CanViewResidence(actor, t.ToWardID, t.ToVillageID)
}

func (s *Service) loadResidence(ctx context.Context, residenceID id.ResidenceID) (*regmodels.Residence, error) {
	r, err := s.residences.FindByID(ctx, residenceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "residence not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load residence")
	}
	return r, nil
}

func translateStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "transfer not found")
	}
	return err
}

func (s *Service) emitDenied(ctx context.Context, actor identity.Actor, action audit.AuditEvent, subjectID, reason string) {
	s.emit(ctx, audit.NewEvent(ctx, action, actor.ID, actor.Role.String(), "transfer", subjectID).
		Denied(reason))
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}
