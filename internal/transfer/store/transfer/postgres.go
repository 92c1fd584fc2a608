package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"civreg/internal/transfer/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
	txcontext "civreg/pkg/platform/tx"
)

// PostgresStore persists transfers in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed transfer store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create appends a transfer row. Rows are never deleted.
func (s *PostgresStore) Create(ctx context.Context, t *models.Transfer) error {
	if t == nil {
		return fmt.Errorf("transfer is required")
	}
	query := `
		INSERT INTO residence_transfers (id, residence_id, from_ward_id, from_village_id,
			to_ward_id, to_village_id, transfer_type, transfer_reason, requested_by, status,
			weo_approved_by, weo_approved_at, ward_approved_by, ward_approved_at,
			veo_accepted_by, veo_accepted_at, rejected_by, rejected_at, rejection_reason,
			created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err := txcontext.Resolve(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(t.ID),
		uuid.UUID(t.ResidenceID),
		uuid.UUID(t.FromWardID),
		uuid.UUID(t.FromVillageID),
		uuid.UUID(t.ToWardID),
		uuid.UUID(t.ToVillageID),
		string(t.Type),
		t.Reason,
		uuid.UUID(t.RequestedBy),
		string(t.Status),
		nullableUser(t.WeoApprovedBy),
		t.WeoApprovedAt,
		nullableUser(t.WardApprovedBy),
		t.WardApprovedAt,
		nullableUser(t.VeoAcceptedBy),
		t.VeoAcceptedAt,
		nullableUser(t.RejectedBy),
		t.RejectedAt,
		nullableText(t.RejectionReason),
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}
	return nil
}

// FindByID retrieves a transfer by UUID.
func (s *PostgresStore) FindByID(ctx context.Context, transferID id.TransferID) (*models.Transfer, error) {
	t, err := scanTransfer(txcontext.Resolve(ctx, s.db).QueryRowContext(ctx,
		selectTransfer+` WHERE id = $1`, uuid.UUID(transferID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find transfer by id: %w", err)
	}
	return t, nil
}

// FindActiveByResidence locks the residence row, then returns its
// non-terminal transfers oldest first. The residence lock is what makes a
// check-and-insert safe against a concurrent request: both callers contend
// on the same row, so the second sees the first's insert. Callers must run
// it and the subsequent Create inside the same transaction.
func (s *PostgresStore) FindActiveByResidence(ctx context.Context, residenceID id.ResidenceID) ([]*models.Transfer, error) {
	q := txcontext.Resolve(ctx, s.db)
	var locked uuid.UUID
	err := q.QueryRowContext(ctx,
		`SELECT id FROM residences WHERE id = $1 FOR UPDATE`, uuid.UUID(residenceID)).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock residence for transfer check: %w", err)
	}
	return s.list(ctx, selectTransfer+` WHERE residence_id = $1
		AND status IN ('pending_approval', 'weo_approved', 'ward_approved', 'veo_accepted')
		ORDER BY created_at, id`, locked)
}

// ListByResidence returns the residence's full transfer history, oldest
// first.
func (s *PostgresStore) ListByResidence(ctx context.Context, residenceID id.ResidenceID) ([]*models.Transfer, error) {
	return s.list(ctx, selectTransfer+` WHERE residence_id = $1 ORDER BY created_at, id`,
		uuid.UUID(residenceID))
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Transfer, error) {
	rows, err := txcontext.Resolve(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var out []*models.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update persists changes to an existing transfer.
func (s *PostgresStore) Update(ctx context.Context, t *models.Transfer) error {
	if t == nil {
		return fmt.Errorf("transfer is required")
	}
	query := `
		UPDATE residence_transfers
		SET status = $2,
			weo_approved_by = $3, weo_approved_at = $4,
			ward_approved_by = $5, ward_approved_at = $6,
			veo_accepted_by = $7, veo_accepted_at = $8,
			rejected_by = $9, rejected_at = $10, rejection_reason = $11
		WHERE id = $1
	`
	res, err := txcontext.Resolve(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(t.ID),
		string(t.Status),
		nullableUser(t.WeoApprovedBy),
		t.WeoApprovedAt,
		nullableUser(t.WardApprovedBy),
		t.WardApprovedAt,
		nullableUser(t.VeoAcceptedBy),
		t.VeoAcceptedAt,
		nullableUser(t.RejectedBy),
		t.RejectedAt,
		nullableText(t.RejectionReason),
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transfer rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Execute loads the transfer FOR UPDATE, runs validate, applies mutate and
// writes the result, all against the transaction carried in ctx. Callers
// must run it inside RunInTx or the row lock is pointless.
func (s *PostgresStore) Execute(ctx context.Context, transferID id.TransferID, validate func(*models.Transfer) error, mutate func(*models.Transfer)) (*models.Transfer, error) {
	t, err := scanTransfer(txcontext.Resolve(ctx, s.db).QueryRowContext(ctx,
		selectTransfer+` WHERE id = $1 FOR UPDATE`, uuid.UUID(transferID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock transfer: %w", err)
	}
	if err := validate(t); err != nil {
		return nil, err
	}
	mutate(t)
	if err := s.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

const selectTransfer = `
	SELECT id, residence_id, from_ward_id, from_village_id, to_ward_id, to_village_id,
		transfer_type, transfer_reason, requested_by, status,
		weo_approved_by, weo_approved_at, ward_approved_by, ward_approved_at,
		veo_accepted_by, veo_accepted_at, rejected_by, rejected_at, rejection_reason,
		created_at
	FROM residence_transfers`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (*models.Transfer, error) {
	var t models.Transfer
	var transferID, residenceID, fromWard, fromVillage, toWard, toVillage, requestedBy uuid.UUID
	var transferType, status string
	var weoBy, wardBy, veoBy, rejBy uuid.NullUUID
	var weoAt, wardAt, veoAt, rejAt sql.NullTime
	var rejReason sql.NullString
	if err := row.Scan(&transferID, &residenceID, &fromWard, &fromVillage, &toWard, &toVillage,
		&transferType, &t.Reason, &requestedBy, &status,
		&weoBy, &weoAt, &wardBy, &wardAt,
		&veoBy, &veoAt, &rejBy, &rejAt, &rejReason,
		&t.CreatedAt); err != nil {
		return nil, err
	}
	t.ID = id.TransferID(transferID)
	t.ResidenceID = id.ResidenceID(residenceID)
	t.FromWardID = id.WardID(fromWard)
	t.FromVillageID = id.VillageID(fromVillage)
	t.ToWardID = id.WardID(toWard)
	t.ToVillageID = id.VillageID(toVillage)
	t.Type = models.TransferType(transferType)
	t.RequestedBy = id.UserID(requestedBy)
	t.Status = models.TransferStatus(status)
	t.WeoApprovedBy = id.UserID(weoBy.UUID)
	t.WeoApprovedAt = nullableTime(weoAt)
	t.WardApprovedBy = id.UserID(wardBy.UUID)
	t.WardApprovedAt = nullableTime(wardAt)
	t.VeoAcceptedBy = id.UserID(veoBy.UUID)
	t.VeoAcceptedAt = nullableTime(veoAt)
	t.RejectedBy = id.UserID(rejBy.UUID)
	t.RejectedAt = nullableTime(rejAt)
	t.RejectionReason = rejReason.String
	return &t, nil
}

func nullableUser(userID id.UserID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(userID), Valid: !userID.IsNil()}
}

func nullableText(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
