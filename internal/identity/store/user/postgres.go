package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"civreg/internal/identity/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
	txcontext "civreg/pkg/platform/tx"
)

const (
	statusActive = "active"
	statusLocked = "locked"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateIfAvailable atomically creates the user if neither the username nor
// the NIDA number is taken.
func (s *PostgresStore) CreateIfAvailable(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is required")
	}
	query := `
		INSERT INTO users (id, full_name, username, credential_hash, role, nida_number,
			ward_id, village_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := txcontext.Resolve(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(u.ID),
		u.FullName,
		u.Username,
		u.PasswordHash,
		string(u.Role),
		string(u.NIDANumber),
		nullableUUID(uuid.UUID(u.AssignedWardID)),
		nullableUUID(uuid.UUID(u.AssignedVillageID)),
		lockState(u.Locked),
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username or nida number already in use: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by UUID.
func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := scanUser(txcontext.Resolve(ctx, s.db).QueryRowContext(ctx,
		selectUser+` WHERE id = $1`, uuid.UUID(userID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// FindByUsername retrieves a user by their login name, case-insensitively.
func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(txcontext.Resolve(ctx, s.db).QueryRowContext(ctx,
		selectUser+` WHERE LOWER(username) = LOWER($1)`, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}

// List returns all users ordered by username.
func (s *PostgresStore) List(ctx context.Context) ([]*models.User, error) {
	rows, err := txcontext.Resolve(ctx, s.db).QueryContext(ctx, selectUser+` ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update persists changes to an existing user.
func (s *PostgresStore) Update(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is required")
	}
	query := `
		UPDATE users
		SET full_name = $2, credential_hash = $3, role = $4,
			ward_id = $5, village_id = $6, status = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := txcontext.Resolve(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(u.ID),
		u.FullName,
		u.PasswordHash,
		string(u.Role),
		nullableUUID(uuid.UUID(u.AssignedWardID)),
		nullableUUID(uuid.UUID(u.AssignedVillageID)),
		lockState(u.Locked),
		u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

const selectUser = `
	SELECT id, full_name, username, credential_hash, role, nida_number,
		ward_id, village_id, status, created_at, updated_at
	FROM users`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var userID uuid.UUID
	var role, nida, status string
	var wardID, villageID uuid.NullUUID
	if err := row.Scan(&userID, &u.FullName, &u.Username, &u.PasswordHash, &role, &nida,
		&wardID, &villageID, &status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ID = id.UserID(userID)
	u.Role = models.Role(role)
	u.NIDANumber = id.NIDANumber(nida)
	if wardID.Valid {
		u.AssignedWardID = id.WardID(wardID.UUID)
	}
	if villageID.Valid {
		u.AssignedVillageID = id.VillageID(villageID.UUID)
	}
	u.Locked = status == statusLocked
	return &u, nil
}

func lockState(locked bool) string {
	if locked {
		return statusLocked
	}
	return statusActive
}

func nullableUUID(u uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: u, Valid: u != uuid.Nil}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
