package residence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"civreg/internal/registry/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
	txcontext "civreg/pkg/platform/tx"
)

// PostgresStore persists residences in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed residence store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateIfNIDAAvailable atomically creates the residence if the NIDA number
// is not already registered. Uniqueness rides on the column constraint.
func (s *PostgresStore) CreateIfNIDAAvailable(ctx context.Context, r *models.Residence) error {
	if r == nil {
		return fmt.Errorf("residence is required")
	}
	query := `
		INSERT INTO residences (id, house_no, resident_name, nida_number, ward_id, village_id,
			family_members, status, registered_by, registered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := txcontext.Resolve(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(r.ID),
		r.HouseNo,
		r.ResidentName,
		string(r.NIDANumber),
		uuid.UUID(r.WardID),
		uuid.UUID(r.VillageID),
		r.FamilyMembers,
		string(r.Status),
		uuid.UUID(r.RegisteredBy),
		r.RegisteredAt,
		r.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("nida number already registered: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create residence: %w", err)
	}
	return nil
}

// FindByID retrieves a residence by UUID.
func (s *PostgresStore) FindByID(ctx context.Context, residenceID id.ResidenceID) (*models.Residence, error) {
	r, err := scanResidence(txcontext.Resolve(ctx, s.db).QueryRowContext(ctx,
		selectResidence+` WHERE id = $1`, uuid.UUID(residenceID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find residence by id: %w", err)
	}
	return r, nil
}

// ListByWard returns residences currently located in a ward.
func (s *PostgresStore) ListByWard(ctx context.Context, wardID id.WardID) ([]*models.Residence, error) {
	return s.list(ctx, selectResidence+` WHERE ward_id = $1 ORDER BY registered_at, id`, uuid.UUID(wardID))
}

// ListByVillage returns residences currently located in a village.
func (s *PostgresStore) ListByVillage(ctx context.Context, villageID id.VillageID) ([]*models.Residence, error) {
	return s.list(ctx, selectResidence+` WHERE village_id = $1 ORDER BY registered_at, id`, uuid.UUID(villageID))
}

// ListAll returns every residence.
func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.Residence, error) {
	return s.list(ctx, selectResidence+` ORDER BY registered_at, id`)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Residence, error) {
	rows, err := txcontext.Resolve(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list residences: %w", err)
	}
	defer rows.Close()

	var out []*models.Residence
	for rows.Next() {
		r, err := scanResidence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan residence: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Update persists changes to an existing residence.
func (s *PostgresStore) Update(ctx context.Context, r *models.Residence) error {
	if r == nil {
		return fmt.Errorf("residence is required")
	}
	query := `
		UPDATE residences
		SET house_no = $2, resident_name = $3, ward_id = $4, village_id = $5,
			family_members = $6, status = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := txcontext.Resolve(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(r.ID),
		r.HouseNo,
		r.ResidentName,
		uuid.UUID(r.WardID),
		uuid.UUID(r.VillageID),
		r.FamilyMembers,
		string(r.Status),
		r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update residence: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update residence rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Execute loads the residence FOR UPDATE, runs validate, applies mutate and
// writes the result, all against the transaction carried in ctx. Callers
// must run it inside RunInTx or the row lock is pointless.
func (s *PostgresStore) Execute(ctx context.Context, residenceID id.ResidenceID, validate func(*models.Residence) error, mutate func(*models.Residence)) (*models.Residence, error) {
	r, err := scanResidence(txcontext.Resolve(ctx, s.db).QueryRowContext(ctx,
		selectResidence+` WHERE id = $1 FOR UPDATE`, uuid.UUID(residenceID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock residence: %w", err)
	}
	if err := validate(r); err != nil {
		return nil, err
	}
	mutate(r)
	if err := s.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

const selectResidence = `
	SELECT id, house_no, resident_name, nida_number, ward_id, village_id,
		family_members, status, registered_by, registered_at, updated_at
	FROM residences`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResidence(row rowScanner) (*models.Residence, error) {
	var r models.Residence
	var residenceID, wardID, villageID, registeredBy uuid.UUID
	var nida, status string
	if err := row.Scan(&residenceID, &r.HouseNo, &r.ResidentName, &nida, &wardID, &villageID,
		&r.FamilyMembers, &status, &registeredBy, &r.RegisteredAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.ID = id.ResidenceID(residenceID)
	r.NIDANumber = id.NIDANumber(nida)
	r.WardID = id.WardID(wardID)
	r.VillageID = id.VillageID(villageID)
	r.RegisteredBy = id.UserID(registeredBy)
	r.Status = models.ResidenceStatus(status)
	return &r, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
