//go:build integration

package event_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"garita/internal/access/models"
	banstore "garita/internal/access/store/ban"
	"garita/internal/access/store/event"
	visitorstore "garita/internal/access/store/visitor"
	regmodels "garita/internal/registry/models"
	regstore "garita/internal/registry/store"
	id "garita/pkg/domain"
	"garita/pkg/platform/sentinel"
	"garita/pkg/testutil/containers"
)

type PostgresEventStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *event.PostgresStore

	visitorID  id.VisitorID
	facilityID id.FacilityID
	sectorID   id.SectorID
	companyID  id.CompanyID
	guardID    id.GuardID
}

func TestPostgresEventStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresEventStoreSuite))
}

func (s *PostgresEventStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = event.NewPostgres(s.pg.DB)
}

func (s *PostgresEventStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.pg.TruncateAll(ctx))

	registry := regstore.NewPostgres(s.pg.DB)
	company := &regmodels.Company{ID: id.NewCompanyID(), Name: "Vigilancia Austral"}
	s.Require().NoError(registry.CreateCompany(ctx, company))
	s.companyID = company.ID

	facility := &regmodels.Facility{ID: id.NewFacilityID(), CompanyID: company.ID, Name: "Planta Norte"}
	s.Require().NoError(registry.CreateFacility(ctx, facility))
	s.facilityID = facility.ID

	sector := &regmodels.Sector{ID: id.NewSectorID(), FacilityID: facility.ID, Name: "Porteria"}
	s.Require().NoError(registry.CreateSector(ctx, sector))
	s.sectorID = sector.ID

	visitors := visitorstore.NewPostgres(s.pg.DB)
	visitor := &models.Visitor{
		ID:         id.NewVisitorID(),
		NationalID: "11111111-1",
		Name:       "Ana",
		Status:     models.VisitorStatusActive,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	s.Require().NoError(visitors.Create(ctx, visitor))
	s.visitorID = visitor.ID
	s.guardID = id.NewGuardID()
}

func (s *PostgresEventStoreSuite) newEvent(kind models.EventKind, at time.Time) *models.AccessEvent {
	return &models.AccessEvent{
		ID:         id.NewEventID(),
		VisitorID:  s.visitorID,
		FacilityID: s.facilityID,
		SectorID:   s.sectorID,
		CompanyID:  s.companyID,
		GuardID:    s.guardID,
		Kind:       kind,
		OccurredAt: at,
	}
}

func (s *PostgresEventStoreSuite) TestAppendEnforcesAlternation() {
	ctx := context.Background()
	t1 := time.Now().UTC().Truncate(time.Microsecond)

	s.Require().NoError(s.store.Append(ctx, s.newEvent(models.KindEntry, t1)))

	err := s.store.Append(ctx, s.newEvent(models.KindEntry, t1.Add(time.Minute)))
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrConflict))

	s.Require().NoError(s.store.Append(ctx, s.newEvent(models.KindExit, t1.Add(2*time.Minute))))

	err = s.store.Append(ctx, s.newEvent(models.KindExit, t1.Add(3*time.Minute)))
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrConflict))

	last, err := s.store.LastEvent(ctx, s.visitorID, s.facilityID)
	s.Require().NoError(err)
	s.Equal(models.KindExit, last.Kind)
}

func (s *PostgresEventStoreSuite) TestAppendSerializesConcurrentEntries() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.store.Append(ctx, s.newEvent(models.KindEntry, now))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.True(errors.Is(err, sentinel.ErrConflict), "unexpected error: %v", err)
		}
	}
	s.Equal(1, succeeded)

	events, err := s.store.List(ctx, models.EventFilter{VisitorID: s.visitorID})
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *PostgresEventStoreSuite) TestTimestampTiesBreakByInsertionOrder() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	// Entry and exit at the very same instant: the exit, inserted second,
	// must win the last-event query.
	s.Require().NoError(s.store.Append(ctx, s.newEvent(models.KindEntry, now)))
	s.Require().NoError(s.store.Append(ctx, s.newEvent(models.KindExit, now)))

	last, err := s.store.LastEvent(ctx, s.visitorID, s.facilityID)
	s.Require().NoError(err)
	s.Equal(models.KindExit, last.Kind)
}

func (s *PostgresEventStoreSuite) TestUpdateDocumentationAndPhotos() {
	ctx := context.Background()
	ev := s.newEvent(models.KindEntry, time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.Append(ctx, ev))

	photos := []string{"https://evidencia.example/1.jpg", "https://evidencia.example/2.jpg"}
	s.Require().NoError(s.store.UpdateDocumentation(ctx, ev.ID, "corregido", photos))

	stored, err := s.store.GetByID(ctx, ev.ID)
	s.Require().NoError(err)
	s.Equal("corregido", stored.Comment)
	s.Equal(photos, stored.PhotoURLs)
	s.Equal(models.KindEntry, stored.Kind)
}
