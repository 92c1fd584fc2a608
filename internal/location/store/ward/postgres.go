package ward

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"civreg/internal/location/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
	txcontext "civreg/pkg/platform/tx"
)

// PostgresStore persists wards in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ward store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateIfCodeAvailable atomically creates the ward if the code is not already taken.
func (s *PostgresStore) CreateIfCodeAvailable(ctx context.Context, w *models.Ward) error {
	if w == nil {
		return fmt.Errorf("ward is required")
	}
	query := `
		INSERT INTO wards (id, name, code, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := txcontext.Resolve(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(w.ID),
		w.Name,
		w.Code,
		string(w.Status),
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ward code must be unique: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create ward: %w", err)
	}
	return nil
}

// FindByID retrieves a ward by its UUID.
func (s *PostgresStore) FindByID(ctx context.Context, wardID id.WardID) (*models.Ward, error) {
	query := `
		SELECT id, name, code, status, created_at, updated_at
		FROM wards
		WHERE id = $1
	`
	w, err := scanWard(txcontext.Resolve(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(wardID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find ward by id: %w", err)
	}
	return w, nil
}

// List returns all wards ordered by code.
func (s *PostgresStore) List(ctx context.Context) ([]*models.Ward, error) {
	query := `
		SELECT id, name, code, status, created_at, updated_at
		FROM wards
		ORDER BY code
	`
	rows, err := txcontext.Resolve(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list wards: %w", err)
	}
	defer rows.Close()

	var out []*models.Ward
	for rows.Next() {
		w, err := scanWard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ward: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Update persists changes to an existing ward.
func (s *PostgresStore) Update(ctx context.Context, w *models.Ward) error {
	if w == nil {
		return fmt.Errorf("ward is required")
	}
	query := `
		UPDATE wards
		SET name = $2, code = $3, status = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := txcontext.Resolve(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(w.ID),
		w.Name,
		w.Code,
		string(w.Status),
		w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ward code must be unique: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("update ward: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ward rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete removes a ward. The caller must first verify it has no villages;
// the villages foreign key is the storage-level backstop.
func (s *PostgresStore) Delete(ctx context.Context, wardID id.WardID) error {
	res, err := txcontext.Resolve(ctx, s.db).ExecContext(ctx,
		`DELETE FROM wards WHERE id = $1`, uuid.UUID(wardID))
	if err != nil {
		return fmt.Errorf("delete ward: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ward rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWard(row rowScanner) (*models.Ward, error) {
	var w models.Ward
	var status string
	var wardID uuid.UUID
	if err := row.Scan(&wardID, &w.Name, &w.Code, &status, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.ID = id.WardID(wardID)
	w.Status = models.LocationStatus(status)
	return &w, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
