package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"garita/internal/registry/models"
	id "garita/pkg/domain"
	"garita/pkg/platform/sentinel"
)

// PostgresStore persists registry data in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateCompany(ctx context.Context, c *models.Company) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, tax_id, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(c.ID), c.Name, c.TaxID, c.Email, c.Phone, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("company name taken: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateFacility(ctx context.Context, f *models.Facility) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO facilities (id, company_id, name, address)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(f.ID), uuid.UUID(f.CompanyID), f.Name, f.Address)
	if err != nil {
		return fmt.Errorf("insert facility: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateSector(ctx context.Context, sec *models.Sector) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sectors (id, facility_id, name, requires_escort_documentation)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(sec.ID), uuid.UUID(sec.FacilityID), sec.Name, sec.RequiresEscortDocumentation)
	if err != nil {
		return fmt.Errorf("insert sector: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetFacility(ctx context.Context, facilityID id.FacilityID) (*models.Facility, error) {
	var f models.Facility
	var fid, cid uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, name, address FROM facilities WHERE id = $1
	`, uuid.UUID(facilityID)).Scan(&fid, &cid, &f.Name, &f.Address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("facility not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get facility: %w", err)
	}
	f.ID = id.FacilityID(fid)
	f.CompanyID = id.CompanyID(cid)
	return &f, nil
}

func (s *PostgresStore) GetSectorInFacility(ctx context.Context, facilityID id.FacilityID, sectorID id.SectorID) (*models.Sector, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, facility_id, name, requires_escort_documentation
		FROM sectors WHERE id = $1 AND facility_id = $2
	`, uuid.UUID(sectorID), uuid.UUID(facilityID))
	return scanSector(row, "sector not found in facility")
}

func (s *PostgresStore) GetSector(ctx context.Context, sectorID id.SectorID) (*models.Sector, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, facility_id, name, requires_escort_documentation
		FROM sectors WHERE id = $1
	`, uuid.UUID(sectorID))
	return scanSector(row, "sector not found")
}

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]*models.Company, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, tax_id, email, phone, created_at FROM companies ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var out []*models.Company
	for rows.Next() {
		var c models.Company
		var cid uuid.UUID
		if err := rows.Scan(&cid, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		c.ID = id.CompanyID(cid)
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListSectors(ctx context.Context, facilityID id.FacilityID) ([]*models.Sector, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, facility_id, name, requires_escort_documentation
		FROM sectors WHERE facility_id = $1 ORDER BY name
	`, uuid.UUID(facilityID))
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	defer rows.Close()

	var out []*models.Sector
	for rows.Next() {
		var sec models.Sector
		var sid, fid uuid.UUID
		if err := rows.Scan(&sid, &fid, &sec.Name, &sec.RequiresEscortDocumentation); err != nil {
			return nil, fmt.Errorf("scan sector: %w", err)
		}
		sec.ID = id.SectorID(sid)
		sec.FacilityID = id.FacilityID(fid)
		out = append(out, &sec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSector(row rowScanner, notFoundMsg string) (*models.Sector, error) {
	var sec models.Sector
	var sid, fid uuid.UUID
	err := row.Scan(&sid, &fid, &sec.Name, &sec.RequiresEscortDocumentation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", notFoundMsg, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get sector: %w", err)
	}
	sec.ID = id.SectorID(sid)
	sec.FacilityID = id.FacilityID(fid)
	return &sec, nil
}

// isUniqueViolation matches postgres unique_violation (23505) without
// importing driver-specific error types at every call site.
func isUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	var st sqlState
	return errors.As(err, &st) && st.SQLState() == "23505"
}
