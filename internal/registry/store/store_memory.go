package store

import (
	"context"
	"fmt"
	"sync"

	"garita/internal/registry/models"
	id "garita/pkg/domain"
	"garita/pkg/platform/sentinel"
)

// InMemoryStore keeps registry data in maps for tests and dev.
type InMemoryStore struct {
	mu         sync.RWMutex
	companies  map[id.CompanyID]*models.Company
	facilities map[id.FacilityID]*models.Facility
	sectors    map[id.SectorID]*models.Sector
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		companies:  make(map[id.CompanyID]*models.Company),
		facilities: make(map[id.FacilityID]*models.Facility),
		sectors:    make(map[id.SectorID]*models.Sector),
	}
}

func (s *InMemoryStore) CreateCompany(_ context.Context, c *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.companies {
		if existing.Name == c.Name {
			return fmt.Errorf("company name taken: %w", sentinel.ErrConflict)
		}
	}
	cp := *c
	s.companies[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) CreateFacility(_ context.Context, f *models.Facility) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[f.CompanyID]; !ok {
		return fmt.Errorf("company not found: %w", sentinel.ErrNotFound)
	}
	cp := *f
	s.facilities[f.ID] = &cp
	return nil
}

func (s *InMemoryStore) CreateSector(_ context.Context, sec *models.Sector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.facilities[sec.FacilityID]; !ok {
		return fmt.Errorf("facility not found: %w", sentinel.ErrNotFound)
	}
	cp := *sec
	s.sectors[sec.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetFacility(_ context.Context, facilityID id.FacilityID) (*models.Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.facilities[facilityID]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, fmt.Errorf("facility not found: %w", sentinel.ErrNotFound)
}

// GetSectorInFacility returns the sector only when it belongs to the given
// facility; a sector id from another facility is reported as not found.
func (s *InMemoryStore) GetSectorInFacility(_ context.Context, facilityID id.FacilityID, sectorID id.SectorID) (*models.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sec, ok := s.sectors[sectorID]
	if !ok || sec.FacilityID != facilityID {
		return nil, fmt.Errorf("sector not found in facility: %w", sentinel.ErrNotFound)
	}
	cp := *sec
	return &cp, nil
}

func (s *InMemoryStore) GetSector(_ context.Context, sectorID id.SectorID) (*models.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sec, ok := s.sectors[sectorID]; ok {
		cp := *sec
		return &cp, nil
	}
	return nil, fmt.Errorf("sector not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) ListCompanies(_ context.Context) ([]*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Company, 0, len(s.companies))
	for _, c := range s.companies {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) ListSectors(_ context.Context, facilityID id.FacilityID) ([]*models.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Sector
	for _, sec := range s.sectors {
		if sec.FacilityID == facilityID {
			cp := *sec
			out = append(out, &cp)
		}
	}
	return out, nil
}
