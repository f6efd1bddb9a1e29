// Package service provides the thin CRUD layer over the registry store. The
// access core never calls this; it reads the store through its own interface.
package service

import (
	"context"
	"errors"
	"fmt"

	"garita/internal/registry/models"
	id "garita/pkg/domain"
	dErrors "garita/pkg/domain-errors"
	"garita/pkg/platform/sentinel"
	"garita/pkg/requestcontext"
)

type Store interface {
	CreateCompany(ctx context.Context, c *models.Company) error
	CreateFacility(ctx context.Context, f *models.Facility) error
	CreateSector(ctx context.Context, sec *models.Sector) error
	GetFacility(ctx context.Context, facilityID id.FacilityID) (*models.Facility, error)
	ListCompanies(ctx context.Context) ([]*models.Company, error)
	ListSectors(ctx context.Context, facilityID id.FacilityID) ([]*models.Sector, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) CreateCompany(ctx context.Context, name, taxID, email, phone string) (*models.Company, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "company name is required")
	}
	company := &models.Company{
		ID:        id.NewCompanyID(),
		Name:      name,
		TaxID:     taxID,
		Email:     email,
		Phone:     phone,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.CreateCompany(ctx, company); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "company already exists")
		}
		return nil, fmt.Errorf("create company: %w", err)
	}
	return company, nil
}

func (s *Service) CreateFacility(ctx context.Context, companyID id.CompanyID, name, address string) (*models.Facility, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "facility name is required")
	}
	if companyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "empresa_id is required")
	}
	facility := &models.Facility{
		ID:        id.NewFacilityID(),
		CompanyID: companyID,
		Name:      name,
		Address:   address,
	}
	if err := s.store.CreateFacility(ctx, facility); err != nil {
		return nil, fmt.Errorf("create facility: %w", err)
	}
	return facility, nil
}

func (s *Service) CreateSector(ctx context.Context, facilityID id.FacilityID, name string, requiresDocs bool) (*models.Sector, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "sector name is required")
	}
	if _, err := s.store.GetFacility(ctx, facilityID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "facility not found")
		}
		return nil, fmt.Errorf("get facility: %w", err)
	}
	sector := &models.Sector{
		ID:                          id.NewSectorID(),
		FacilityID:                  facilityID,
		Name:                        name,
		RequiresEscortDocumentation: requiresDocs,
	}
	if err := s.store.CreateSector(ctx, sector); err != nil {
		return nil, fmt.Errorf("create sector: %w", err)
	}
	return sector, nil
}

func (s *Service) ListCompanies(ctx context.Context) ([]*models.Company, error) {
	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

func (s *Service) ListSectors(ctx context.Context, facilityID id.FacilityID) ([]*models.Sector, error) {
	if _, err := s.store.GetFacility(ctx, facilityID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "facility not found")
		}
		return nil, fmt.Errorf("get facility: %w", err)
	}
	sectors, err := s.store.ListSectors(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	return sectors, nil
}
