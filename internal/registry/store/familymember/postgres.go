package familymember

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"civreg/internal/registry/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
	txcontext "civreg/pkg/platform/tx"
)

// PostgresStore persists family members in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed family member store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create persists a family member record.
func (s *PostgresStore) Create(ctx context.Context, m *models.FamilyMember) error {
	if m == nil {
		return fmt.Errorf("family member is required")
	}
	query := `
		INSERT INTO family_members (id, residence_id, name, gender, date_of_birth,
			relationship, nida_number, occupation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := txcontext.Resolve(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(m.ID),
		uuid.UUID(m.ResidenceID),
		m.Name,
		m.Gender,
		m.DateOfBirth,
		m.Relationship,
		nullableString(string(m.NIDANumber)),
		nullableString(m.Occupation),
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create family member: %w", err)
	}
	return nil
}

// FindByID retrieves a family member.
func (s *PostgresStore) FindByID(ctx context.Context, memberID id.FamilyMemberID) (*models.FamilyMember, error) {
	m, err := scanMember(txcontext.Resolve(ctx, s.db).QueryRowContext(ctx,
		selectMember+` WHERE id = $1`, uuid.UUID(memberID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find family member: %w", err)
	}
	return m, nil
}

// ListByResidence returns a residence's family members ordered by creation.
func (s *PostgresStore) ListByResidence(ctx context.Context, residenceID id.ResidenceID) ([]*models.FamilyMember, error) {
	rows, err := txcontext.Resolve(ctx, s.db).QueryContext(ctx,
		selectMember+` WHERE residence_id = $1 ORDER BY created_at, id`, uuid.UUID(residenceID))
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	defer rows.Close()

	var out []*models.FamilyMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Delete removes a family member record.
func (s *PostgresStore) Delete(ctx context.Context, memberID id.FamilyMemberID) error {
	res, err := txcontext.Resolve(ctx, s.db).ExecContext(ctx,
		`DELETE FROM family_members WHERE id = $1`, uuid.UUID(memberID))
	if err != nil {
		return fmt.Errorf("delete family member: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete family member rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

const selectMember = `
	SELECT id, residence_id, name, gender, date_of_birth, relationship,
		nida_number, occupation, created_at
	FROM family_members`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*models.FamilyMember, error) {
	var m models.FamilyMember
	var memberID, residenceID uuid.UUID
	var nida, occupation sql.NullString
	if err := row.Scan(&memberID, &residenceID, &m.Name, &m.Gender, &m.DateOfBirth,
		&m.Relationship, &nida, &occupation, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.ID = id.FamilyMemberID(memberID)
	m.ResidenceID = id.ResidenceID(residenceID)
	m.NIDANumber = id.NIDANumber(nida.String)
	m.Occupation = occupation.String
	return &m, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
