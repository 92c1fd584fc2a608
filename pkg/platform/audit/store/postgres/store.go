package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	audit "civreg/pkg/platform/audit"
	txcontext "civreg/pkg/platform/tx"
)

// Store persists audit events in PostgreSQL. When the surrounding operation
// runs in a transaction (carried through context), the event commits or rolls
// back with it, so a denied or failed mutation never leaves a phantom trail.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes an audit event row.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events
			(id, category, occurred_at, actor_id, actor_role, action, subject, subject_id,
			 decision, reason, request_id, client_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	var actorID any
	if !event.ActorID.IsNil() {
		actorID = uuid.UUID(event.ActorID)
	}
	_, err := txcontext.Resolve(ctx, s.db).ExecContext(ctx, query,
		uuid.New(),
		string(event.Category),
		event.Timestamp,
		actorID,
		event.ActorRole,
		event.Action,
		event.Subject,
		event.SubjectID,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.ClientIP,
		event.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}
