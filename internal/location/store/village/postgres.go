package village

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

// PostgresStore persists villages in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed village store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateIfCodeAvailable atomically creates the village if the code is not
// already taken. Codes are unique across all wards.
func (s *PostgresStore) CreateIfCodeAvailable(ctx context.Context, v *models.Village) error {
	if v == nil {
		return fmt.Errorf("village is required")
	}
	query := `
		INSERT INTO villages (id, name, code, ward_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := txcontext.Resolve(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(v.ID),
		v.Name,
		v.Code,
		uuid.UUID(v.WardID),
		string(v.Status),
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("village code must be unique: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create village: %w", err)
	}
	return nil
}

// FindByID retrieves a village by its UUID.
func (s *PostgresStore) FindByID(ctx context.Context, villageID id.VillageID) (*models.Village, error) {
	query := `
		SELECT id, name, code, ward_id, status, created_at, updated_at
		FROM villages
		WHERE id = $1
	`
	v, err := scanVillage(txcontext.Resolve(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(villageID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find village by id: %w", err)
	}
	return v, nil
}

// ListByWard returns the villages of one ward ordered by code.
func (s *PostgresStore) ListByWard(ctx context.Context, wardID id.WardID) ([]*models.Village, error) {
	query := `
		SELECT id, name, code, ward_id, status, created_at, updated_at
		FROM villages
		WHERE ward_id = $1
		ORDER BY code
	`
	rows, err := txcontext.Resolve(ctx, s.db).QueryContext(ctx, query, uuid.UUID(wardID))
	if err != nil {
		return nil, fmt.Errorf("list villages by ward: %w", err)
	}
	defer rows.Close()

	var out []*models.Village
	for rows.Next() {
		v, err := scanVillage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan village: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CountByWard reports how many villages belong to a ward.
func (s *PostgresStore) CountByWard(ctx context.Context, wardID id.WardID) (int, error) {
	var n int
	err := txcontext.Resolve(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM villages WHERE ward_id = $1`, uuid.UUID(wardID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count villages by ward: %w", err)
	}
	return n, nil
}

// Update persists changes to an existing village.
func (s *PostgresStore) Update(ctx context.Context, v *models.Village) error {
	if v == nil {
		return fmt.Errorf("village is required")
	}
	query := `
		UPDATE villages
		SET name = $2, code = $3, status = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := txcontext.Resolve(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(v.ID),
		v.Name,
		v.Code,
		string(v.Status),
		v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("village code must be unique: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("update village: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update village rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVillage(row rowScanner) (*models.Village, error) {
	var v models.Village
	var status string
	var villageID, wardID uuid.UUID
	if err := row.Scan(&villageID, &v.Name, &v.Code, &wardID, &status, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.ID = id.VillageID(villageID)
	v.WardID = id.WardID(wardID)
	v.Status = models.LocationStatus(status)
	return &v, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
