package service

import (
	"context"
	"sync"
	"time"

	"garita/internal/access/models"
	"garita/internal/audit"
	id "garita/pkg/domain"
	dErrors "garita/pkg/domain-errors"
	"garita/pkg/requestcontext"
)

func (s *ServiceSuite) TestRegisterEntry_HappyPath() {
	guard := s.guard()
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	ev, err := s.service.RegisterEntry(at(t1), guard, models.EntryRequest{
		Identity: models.IdentityQuery{Document: doc("11111111-1"), Name: "Ana", Surname: "Rojas"},
		SectorID: s.sectorID,
		Comment:  "proveedor",
	})

	s.Require().NoError(err)
	s.Equal(models.KindEntry, ev.Kind)
	s.Equal(s.facilityID, ev.FacilityID)
	s.Equal(s.sectorID, ev.SectorID)
	s.Equal(s.companyID, ev.CompanyID)
	s.Equal(guard.GuardID, ev.GuardID)
	s.True(t1.Equal(ev.OccurredAt))
	s.Equal("proveedor", ev.Comment)

	inside, err := s.service.IsInside(context.Background(), ev.VisitorID, s.facilityID)
	s.Require().NoError(err)
	s.True(inside)
}

func (s *ServiceSuite) TestRegisterEntry_DoubleEntryConflicts() {
	guard := s.guard()
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	_, err := s.service.RegisterEntry(at(t1), guard, entryReq("11111111-1", s.sectorID))
	s.Require().NoError(err)

	_, err = s.service.RegisterEntry(at(t1.Add(time.Hour)), guard, entryReq("11111111-1", s.sectorID))
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeConflict))
	s.Equal(ReasonAlreadyInside, dErrors.ReasonOf(err))
}

func (s *ServiceSuite) TestRegisterExit_WithoutOpenEntryConflicts() {
	guard := s.guard()

	// Unknown document: exit never creates visitors.
	_, err := s.service.RegisterExit(at(time.Now()), guard, exitReq("22222222-2", s.sectorID))
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
	s.Equal(ReasonVisitorNotFound, dErrors.ReasonOf(err))

	// Known visitor but no open entry.
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	_, err = s.service.RegisterEntry(at(t1), guard, entryReq("22222222-2", s.sectorID))
	s.Require().NoError(err)
	_, err = s.service.RegisterExit(at(t1.Add(time.Hour)), guard, exitReq("22222222-2", s.sectorID))
	s.Require().NoError(err)

	_, err = s.service.RegisterExit(at(t1.Add(2*time.Hour)), guard, exitReq("22222222-2", s.sectorID))
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeConflict))
	s.Equal(ReasonNoOpenEntry, dErrors.ReasonOf(err))
}

func (s *ServiceSuite) TestRegisterEntry_ActiveBanVetoes_ExitStillAllowed() {
	guard := s.guard()
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	// Enter before the ban starts.
	ev, err := s.service.RegisterEntry(at(t1), guard, entryReq("33333333-3", s.sectorID))
	s.Require().NoError(err)

	s.Require().NoError(s.bans.Create(context.Background(), &models.Ban{
		ID:         id.NewBanID(),
		VisitorID:  ev.VisitorID,
		FacilityID: s.facilityID,
		Reason:     "incidente",
		StartsAt:   t1.Add(time.Hour),
	}))

	// The banned visitor, already inside, can still leave.
	_, err = s.service.RegisterExit(at(t1.Add(2*time.Hour)), guard, exitReq("33333333-3", s.sectorID))
	s.Require().NoError(err)

	// But cannot re-enter while the open-ended ban is active.
	_, err = s.service.RegisterEntry(at(t1.Add(3*time.Hour)), guard, entryReq("33333333-3", s.sectorID))
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeForbidden))
	s.Equal(ReasonBanned, dErrors.ReasonOf(err))
}

func (s *ServiceSuite) TestRegisterEntry_BanCheckRunsAfterBackfill() {
	guard := s.guard()
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	// Seed the visitor and ban them.
	ev, err := s.service.RegisterEntry(at(t1), guard, entryReq("44444444-4", s.sectorID))
	s.Require().NoError(err)
	_, err = s.service.RegisterExit(at(t1.Add(time.Hour)), guard, exitReq("44444444-4", s.sectorID))
	s.Require().NoError(err)
	s.Require().NoError(s.bans.Create(context.Background(), &models.Ban{
		ID:         id.NewBanID(),
		VisitorID:  ev.VisitorID,
		FacilityID: s.facilityID,
		StartsAt:   t1,
	}))

	// The refused entry still backfills the empty name.
	_, err = s.service.RegisterEntry(at(t1.Add(2*time.Hour)), guard, models.EntryRequest{
		Identity: models.IdentityQuery{Document: doc("44444444-4"), Name: "Carla"},
		SectorID: s.sectorID,
	})
	s.Require().Error(err)
	s.Equal(ReasonBanned, dErrors.ReasonOf(err))

	stored, err := s.visitors.FindByDocument(context.Background(), doc("44444444-4"))
	s.Require().NoError(err)
	s.Equal("Carla", stored.Name)
}

func (s *ServiceSuite) TestRegisterExit_EscortSectorRequiresDocumentation() {
	guard := s.guard()
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	_, err := s.service.RegisterEntry(at(t1), guard, entryReq("55555555-5", s.escortSectorID))
	s.Require().NoError(err)

	s.Run("missing comment and photos rejected", func() {
		_, err := s.service.RegisterExit(at(t1.Add(time.Hour)), guard, exitReq("55555555-5", s.escortSectorID))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
		s.Equal(ReasonDocsRequired, dErrors.ReasonOf(err))
	})

	s.Run("comment without photos rejected", func() {
		req := exitReq("55555555-5", s.escortSectorID)
		req.Comment = "salida escoltada"
		_, err := s.service.RegisterExit(at(t1.Add(time.Hour)), guard, req)
		s.Require().Error(err)
		s.Equal(ReasonDocsRequired, dErrors.ReasonOf(err))
	})

	s.Run("comment plus photo accepted", func() {
		req := exitReq("55555555-5", s.escortSectorID)
		req.Comment = "salida escoltada"
		req.PhotoURLs = []string{"https://evidencia.example/1.jpg"}
		ev, err := s.service.RegisterExit(at(t1.Add(time.Hour)), guard, req)
		s.Require().NoError(err)
		s.Equal(models.KindExit, ev.Kind)
		s.Len(ev.PhotoURLs, 1)
	})
}

func (s *ServiceSuite) TestRegisterExit_NoOpenEntryWinsOverMissingDocumentation() {
	guard := s.guard()
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	// Close a full visit so the visitor is known but outside.
	_, err := s.service.RegisterEntry(at(t1), guard, entryReq("88888888-8", s.escortSectorID))
	s.Require().NoError(err)
	closing := exitReq("88888888-8", s.escortSectorID)
	closing.Comment = "salida escoltada"
	closing.PhotoURLs = []string{"https://evidencia.example/1.jpg"}
	_, err = s.service.RegisterExit(at(t1.Add(time.Hour)), guard, closing)
	s.Require().NoError(err)

	// An undocumented exit at the escort sector is refused for the missing
	// entry, not the missing documentation.
	_, err = s.service.RegisterExit(at(t1.Add(2*time.Hour)), guard, exitReq("88888888-8", s.escortSectorID))
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeConflict))
	s.Equal(ReasonNoOpenEntry, dErrors.ReasonOf(err))
}

func (s *ServiceSuite) TestRegisterEntry_SectorMustBelongToFacility() {
	guard := s.guard()

	_, err := s.service.RegisterEntry(at(time.Now()), guard, entryReq("66666666-6", s.foreignSector))
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
	s.Equal(ReasonInvalidSector, dErrors.ReasonOf(err))
}

func (s *ServiceSuite) TestRegisterEntry_GuardWithoutFacilityRejected() {
	actor := s.guard()
	actor.FacilityID = id.FacilityID{}

	_, err := s.service.RegisterEntry(at(time.Now()), actor, entryReq("66666666-6", s.sectorID))
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeForbidden))
	s.Equal(ReasonNoFacilityAssigned, dErrors.ReasonOf(err))
}

func (s *ServiceSuite) TestTransitions_FullCycleSequence() {
	guard := s.guard()
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t1.Add(2 * time.Hour)
	t4 := t1.Add(3 * time.Hour)

	_, err := s.service.RegisterEntry(at(t1), guard, entryReq("11111111-1", s.sectorID))
	s.Require().NoError(err)

	_, err = s.service.RegisterEntry(at(t2), guard, entryReq("11111111-1", s.sectorID))
	s.Require().Error(err)
	s.Equal(ReasonAlreadyInside, dErrors.ReasonOf(err))

	_, err = s.service.RegisterExit(at(t3), guard, exitReq("11111111-1", s.sectorID))
	s.Require().NoError(err)

	_, err = s.service.RegisterEntry(at(t4), guard, entryReq("11111111-1", s.sectorID))
	s.Require().NoError(err)

	events, err := s.service.ListEvents(context.Background(), guard, models.EventFilter{})
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	// Newest first: entry@T4, exit@T3, entry@T1.
	s.Equal(models.KindEntry, events[0].Kind)
	s.True(t4.Equal(events[0].OccurredAt))
	s.Equal(models.KindExit, events[1].Kind)
	s.True(t3.Equal(events[1].OccurredAt))
	s.Equal(models.KindEntry, events[2].Kind)
	s.True(t1.Equal(events[2].OccurredAt))
}

func (s *ServiceSuite) TestRegisterEntry_ConcurrentEntriesOneWins() {
	guard := s.guard()
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	// Pre-create the visitor so both goroutines race on the state check, not
	// the create.
	_, _, err := s.service.ResolveOrCreate(context.Background(), models.IdentityQuery{Document: doc("77777777-7")})
	s.Require().NoError(err)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.service.RegisterEntry(at(now), guard, entryReq("77777777-7", s.sectorID))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.Equal(ReasonAlreadyInside, dErrors.ReasonOf(err))
	}
	s.Equal(1, succeeded)
}

func (s *ServiceSuite) TestTransitions_AuditTrail() {
	guard := s.guard()
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(at(t1), "req-123")

	_, err := s.service.RegisterEntry(ctx, guard, entryReq("88888888-8", s.sectorID))
	s.Require().NoError(err)
	_, err = s.service.RegisterEntry(ctx, guard, entryReq("88888888-8", s.sectorID))
	s.Require().Error(err)

	events := s.auditor.Events()
	s.Require().Len(events, 2)
	s.Equal(audit.ActionEntryRegistered, events[0].Action)
	s.Equal("req-123", events[0].RequestID)
	s.Equal(audit.ActionEntryDenied, events[1].Action)
	s.Equal(ReasonAlreadyInside, events[1].Reason)
}
