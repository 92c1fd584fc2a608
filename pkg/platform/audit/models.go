package audit

import (
	"context"
	"time"

	id "civreg/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention.
	// Examples: residence registration, completed transfers, user creation.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	// Examples: auth failures, permission denials, account locks.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled or aggregated with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// Denials are recorded with Decision="denied" so every authorization failure
// stays auditable: who attempted what, when, and from where.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// ActorID is the user who performed (or attempted) the action.
	ActorID   id.UserID
	ActorRole string
	Action    string
	// Subject identifies the entity acted on ("residence", "transfer", "ward", "user").
	Subject   string
	SubjectID string
	Decision  string
	Reason    string
	RequestID string
	ClientIP  string
	UserAgent string
}

type AuditEvent string

const (
	// Identity events
	EventUserCreated  AuditEvent = "user_created"
	EventUserLocked   AuditEvent = "user_locked"
	EventUserUnlocked AuditEvent = "user_unlocked"
	EventLoginOK      AuditEvent = "login_succeeded"
	EventLoginFailed  AuditEvent = "login_failed"
	EventLogout       AuditEvent = "logout"

	// Location events
	EventWardCreated    AuditEvent = "ward_created"
	EventVillageCreated AuditEvent = "village_created"
	EventWardDeleted    AuditEvent = "ward_deleted"

	// Registry events
	EventResidenceRegistered AuditEvent = "residence_registered"
	EventResidenceStatusSet  AuditEvent = "residence_status_set"
	EventResidenceRelocated  AuditEvent = "residence_relocated"
	EventFamilyMemberAdded   AuditEvent = "family_member_added"
	EventFamilyMemberRemoved AuditEvent = "family_member_removed"

	// Transfer workflow events
	EventTransferRequested    AuditEvent = "transfer_requested"
	EventTransferWeoApproved  AuditEvent = "transfer_weo_approved"
	EventTransferWardApproved AuditEvent = "transfer_ward_approved"
	EventTransferVeoAccepted  AuditEvent = "transfer_veo_accepted"
	EventTransferCompleted    AuditEvent = "transfer_completed"
	EventTransferRejected     AuditEvent = "transfer_rejected"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	// Compliance events - the registry's legal record
	EventUserCreated:         CategoryCompliance,
	EventResidenceRegistered: CategoryCompliance,
	EventResidenceRelocated:  CategoryCompliance,
	EventTransferRequested:   CategoryCompliance,
	EventTransferCompleted:   CategoryCompliance,
	EventTransferRejected:    CategoryCompliance,

	// Security events - feed into monitoring and alerting
	EventLoginFailed:  CategorySecurity,
	EventUserLocked:   CategorySecurity,
	EventUserUnlocked: CategorySecurity,

	// Operations events - routine activity, can be sampled
	EventLoginOK:              CategoryOperations,
	EventLogout:               CategoryOperations,
	EventWardCreated:          CategoryOperations,
	EventVillageCreated:       CategoryOperations,
	EventWardDeleted:          CategoryOperations,
	EventResidenceStatusSet:   CategoryOperations,
	EventFamilyMemberAdded:    CategoryOperations,
	EventFamilyMemberRemoved:  CategoryOperations,
	EventTransferWeoApproved:  CategoryOperations,
	EventTransferWardApproved: CategoryOperations,
	EventTransferVeoAccepted:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher delivers audit events to downstream consumers (broker, SIEM).
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
