package models

import (
	"strings"
	"time"

	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
)

// TransferStatus is the state of a residence transfer in its approval chain.
type TransferStatus string

const (
	StatusPendingApproval TransferStatus = "pending_approval"
	StatusWeoApproved     TransferStatus = "weo_approved"
	StatusWardApproved    TransferStatus = "ward_approved"
	StatusVeoAccepted     TransferStatus = "veo_accepted"
	StatusCompleted       TransferStatus = "completed"
	StatusRejected        TransferStatus = "rejected"
)

// Terminal reports whether the status admits no further transitions.
func (s TransferStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// TransferType determines the approval chain a transfer walks through.
// It is fixed at request time from the requester's role and never changes.
type TransferType string

const (
	// TypeDirect takes effect immediately with no approvals (SuperAdmin).
	TypeDirect TransferType = "direct"
	// TypeWardAdmin needs a single approval from the receiving ward's Admin.
	TypeWardAdmin TransferType = "ward_admin"
	// TypeVeo walks the full chain: origin WEO, receiving ward Admin,
	// receiving village VEO.
	TypeVeo TransferType = "veo"
)

// Transfer is the append-only record of a residence's change of location.
// Rows are created by the request operation and mutated only through the
// Apply* transitions below; they are never deleted.
type Transfer struct {
	ID            id.TransferID  `json:"id"`
	ResidenceID   id.ResidenceID `json:"residence_id"`
	FromWardID    id.WardID      `json:"from_ward_id"`
	FromVillageID id.VillageID   `json:"from_village_id"`
	ToWardID      id.WardID      `json:"to_ward_id"`
	ToVillageID   id.VillageID   `json:"to_village_id"`
	Type          TransferType   `json:"transfer_type"`
	Reason        string         `json:"transfer_reason"`
	RequestedBy   id.UserID      `json:"requested_by"`
	Status        TransferStatus `json:"status"`

	WeoApprovedBy  id.UserID  `json:"weo_approved_by,omitempty"`
	WeoApprovedAt  *time.Time `json:"weo_approved_at,omitempty"`
	WardApprovedBy id.UserID  `json:"ward_approved_by,omitempty"`
	WardApprovedAt *time.Time `json:"ward_approved_at,omitempty"`
	VeoAcceptedBy  id.UserID  `json:"veo_accepted_by,omitempty"`
	VeoAcceptedAt  *time.Time `json:"veo_accepted_at,omitempty"`

	RejectedBy      id.UserID  `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewTransfer validates and constructs a transfer in pending_approval.
// Location plausibility (the target village belonging to the target ward,
// the target differing from the origin) is the caller's concern; the model
// only guards field presence.
func NewTransfer(transferID id.TransferID, residenceID id.ResidenceID,
	fromWardID id.WardID, fromVillageID id.VillageID,
	toWardID id.WardID, toVillageID id.VillageID,
	transferType TransferType, reason string, requestedBy id.UserID, now time.Time) (*Transfer, error) {

	reason = strings.TrimSpace(reason)
	switch {
	case residenceID.IsNil():
		return nil, dErrors.New(dErrors.CodeValidation, "transfer requires a residence")
	case fromWardID.IsNil() || fromVillageID.IsNil():
		return nil, dErrors.New(dErrors.CodeValidation, "transfer requires the residence's current location")
	case toWardID.IsNil() || toVillageID.IsNil():
		return nil, dErrors.New(dErrors.CodeValidation, "target ward and village are required")
	case reason == "":
		return nil, dErrors.New(dErrors.CodeValidation, "transfer reason is required")
	case requestedBy.IsNil():
		return nil, dErrors.New(dErrors.CodeValidation, "transfer requires a requesting actor")
	}
	switch transferType {
	case TypeDirect, TypeWardAdmin, TypeVeo:
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "unknown transfer type")
	}

	return &Transfer{
		ID:            transferID,
		ResidenceID:   residenceID,
		FromWardID:    fromWardID,
		FromVillageID: fromVillageID,
		ToWardID:      toWardID,
		ToVillageID:   toVillageID,
		Type:          transferType,
		Reason:        reason,
		RequestedBy:   requestedBy,
		Status:        StatusPendingApproval,
		CreatedAt:     now.UTC(),
	}, nil
}

// Terminal reports whether the transfer admits no further transitions.
func (t *Transfer) Terminal() bool { return t.Status.Terminal() }

// Active reports whether the transfer still blocks new requests for its
// residence.
func (t *Transfer) Active() bool { return !t.Terminal() }

func (t *Transfer) guardNotTerminal() error {
	if t.Terminal() {
		return dErrors.New(dErrors.CodeInvalidState, "transfer is already "+string(t.Status))
	}
	return nil
}

// CanApproveAsWeo checks that the WEO approval step is the one pending.
func (t *Transfer) CanApproveAsWeo() error {
	if err := t.guardNotTerminal(); err != nil {
		return err
	}
	if t.Type != TypeVeo {
		return dErrors.New(dErrors.CodeInvalidState, "transfer type "+string(t.Type)+" has no WEO approval step")
	}
	if t.Status != StatusPendingApproval {
		return dErrors.New(dErrors.CodeInvalidState, "transfer is past WEO approval")
	}
	return nil
}

// ApplyWeoApproval advances the transfer to weo_approved.
func (t *Transfer) ApplyWeoApproval(by id.UserID, at time.Time) {
	at = at.UTC()
	t.Status = StatusWeoApproved
	t.WeoApprovedBy = by
	t.WeoApprovedAt = &at
}

// CanApproveAsReceivingWard checks that the receiving ward's approval is the
// one pending: a ward_admin transfer straight from pending, a veo transfer
// after its WEO step.
func (t *Transfer) CanApproveAsReceivingWard() error {
	if err := t.guardNotTerminal(); err != nil {
		return err
	}
	switch {
	case t.Type == TypeWardAdmin && t.Status == StatusPendingApproval:
		return nil
	case t.Type == TypeVeo && t.Status == StatusWeoApproved:
		return nil
	case t.Type == TypeVeo && t.Status == StatusPendingApproval:
		return dErrors.New(dErrors.CodeInvalidState, "transfer is awaiting WEO approval")
	default:
		return dErrors.New(dErrors.CodeInvalidState, "transfer is past receiving ward approval")
	}
}

// ApplyWardApproval advances the transfer to ward_approved.
func (t *Transfer) ApplyWardApproval(by id.UserID, at time.Time) {
	at = at.UTC()
	t.Status = StatusWardApproved
	t.WardApprovedBy = by
	t.WardApprovedAt = &at
}

// CanAcceptAsReceivingVeo checks that the receiving village's acceptance is
// the one pending.
func (t *Transfer) CanAcceptAsReceivingVeo() error {
	if err := t.guardNotTerminal(); err != nil {
		return err
	}
	if t.Type != TypeVeo {
		return dErrors.New(dErrors.CodeInvalidState, "transfer type "+string(t.Type)+" has no VEO acceptance step")
	}
	if t.Status != StatusWardApproved {
		if t.Status == StatusVeoAccepted {
			return dErrors.New(dErrors.CodeInvalidState, "transfer is already accepted")
		}
		return dErrors.New(dErrors.CodeInvalidState, "transfer is not ready for VEO acceptance")
	}
	return nil
}

// ApplyVeoAcceptance advances the transfer to veo_accepted.
func (t *Transfer) ApplyVeoAcceptance(by id.UserID, at time.Time) {
	at = at.UTC()
	t.Status = StatusVeoAccepted
	t.VeoAcceptedBy = by
	t.VeoAcceptedAt = &at
}

// Complete marks the transfer done. The caller is responsible for committing
// it in the same transaction as the residence's location change.
func (t *Transfer) Complete() {
	t.Status = StatusCompleted
}

// CanReject checks that the transfer is still open to rejection.
func (t *Transfer) CanReject() error {
	return t.guardNotTerminal()
}

// ApplyRejection terminates the transfer without touching the residence.
func (t *Transfer) ApplyRejection(by id.UserID, at time.Time, reason string) {
	at = at.UTC()
	t.Status = StatusRejected
	t.RejectedBy = by
	t.RejectedAt = &at
	t.RejectionReason = strings.TrimSpace(reason)
}
