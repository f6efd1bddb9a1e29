package visitor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"garita/internal/access/models"
	id "garita/pkg/domain"
	"garita/pkg/platform/sentinel"
)

// PostgresStore persists visitors in PostgreSQL. Partial unique indexes on
// (national_id) and (foreign_id) make racing creates for the same document
// detectable; callers retry the lookup on conflict.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, v *models.Visitor) error {
	var national, foreign any
	if v.IsForeign {
		foreign = v.ForeignID
	} else {
		national = v.NationalID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visitors (id, national_id, foreign_id, is_foreign, name, surname,
			company_name, plate, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, uuid.UUID(v.ID), national, foreign, v.IsForeign, v.Name, v.Surname,
		v.CompanyName, v.Plate, string(v.Status), v.CreatedAt, v.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("visitor document taken: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert visitor: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, v *models.Visitor) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE visitors
		SET name = $2, surname = $3, company_name = $4, plate = $5, status = $6,
			updated_at = $7
		WHERE id = $1
	`, uuid.UUID(v.ID), v.Name, v.Surname, v.CompanyName, v.Plate, string(v.Status), v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update visitor: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update visitor rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("visitor not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, national_id, foreign_id, is_foreign, name, surname, company_name,
			plate, status, created_at, updated_at
		FROM visitors WHERE id = $1
	`, uuid.UUID(visitorID))
	return scanVisitor(row)
}

func (s *PostgresStore) FindByDocument(ctx context.Context, doc id.Document) (*models.Visitor, error) {
	var row *sql.Row
	if doc.Foreign {
		row = s.db.QueryRowContext(ctx, `
			SELECT id, national_id, foreign_id, is_foreign, name, surname, company_name,
				plate, status, created_at, updated_at
			FROM visitors WHERE foreign_id = $1 AND is_foreign
		`, doc.Value)
	} else {
		row = s.db.QueryRowContext(ctx, `
			SELECT id, national_id, foreign_id, is_foreign, name, surname, company_name,
				plate, status, created_at, updated_at
			FROM visitors WHERE national_id = $1 AND NOT is_foreign
		`, doc.Value)
	}
	return scanVisitor(row)
}

func scanVisitor(row *sql.Row) (*models.Visitor, error) {
	var v models.Visitor
	var vid uuid.UUID
	var national, foreign sql.NullString
	var status string
	err := row.Scan(&vid, &national, &foreign, &v.IsForeign, &v.Name, &v.Surname,
		&v.CompanyName, &v.Plate, &status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("visitor not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan visitor: %w", err)
	}
	v.ID = id.VisitorID(vid)
	v.NationalID = national.String
	v.ForeignID = foreign.String
	v.Status = models.VisitorStatus(status)
	return &v, nil
}

func isUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	var st sqlState
	return errors.As(err, &st) && st.SQLState() == "23505"
}
