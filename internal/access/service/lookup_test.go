package service

import (
	"context"
	"time"

	"garita/internal/access/models"
	id "garita/pkg/domain"
	dErrors "garita/pkg/domain-errors"
)

func (s *ServiceSuite) TestFindVisitorByDocument_ReportsBanAndPresence() {
	guard := s.guard()
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	ev, err := s.service.RegisterEntry(at(t1), guard, entryReq("11111111-1", s.sectorID))
	s.Require().NoError(err)

	lookup, err := s.service.FindVisitorByDocument(at(t1.Add(time.Minute)), guard, doc("11111111-1"))
	s.Require().NoError(err)
	s.Equal(ev.VisitorID, lookup.Visitor.ID)
	s.True(lookup.Inside)
	s.False(lookup.Banned)

	s.Require().NoError(s.bans.Create(context.Background(), &models.Ban{
		ID:         id.NewBanID(),
		VisitorID:  ev.VisitorID,
		FacilityID: s.facilityID,
		StartsAt:   t1,
	}))

	lookup, err = s.service.FindVisitorByDocument(at(t1.Add(time.Hour)), guard, doc("11111111-1"))
	s.Require().NoError(err)
	s.True(lookup.Banned)
	s.True(lookup.Inside)
}

func (s *ServiceSuite) TestFindVisitorByDocument_ExpiredBanDoesNotFlag() {
	guard := s.guard()
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	visitor, _, err := s.service.ResolveOrCreate(context.Background(), models.IdentityQuery{Document: doc("22222222-2")})
	s.Require().NoError(err)

	end := t1.Add(time.Hour)
	s.Require().NoError(s.bans.Create(context.Background(), &models.Ban{
		ID:         id.NewBanID(),
		VisitorID:  visitor.ID,
		FacilityID: s.facilityID,
		StartsAt:   t1,
		EndsAt:     &end,
	}))

	lookup, err := s.service.FindVisitorByDocument(at(t1.Add(2*time.Hour)), guard, doc("22222222-2"))
	s.Require().NoError(err)
	s.False(lookup.Banned)
	s.False(lookup.Inside)
}

func (s *ServiceSuite) TestFindVisitorByDocument_UnknownDocument() {
	_, err := s.service.FindVisitorByDocument(context.Background(), s.guard(), doc("00000000-0"))
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
	s.Equal(ReasonVisitorNotFound, dErrors.ReasonOf(err))
}

func (s *ServiceSuite) TestLatestEventByDocument_PolicyAndVerdict() {
	guard := s.guard()
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	s.Run("no events yields not found", func() {
		_, _, err := s.service.ResolveOrCreate(context.Background(), models.IdentityQuery{Document: doc("33333333-3")})
		s.Require().NoError(err)
		_, err = s.service.LatestEventByDocument(context.Background(), guard, doc("33333333-3"))
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("open entry at escort sector demands documentation", func() {
		_, err := s.service.RegisterEntry(at(t1), guard, entryReq("44444444-4", s.escortSectorID))
		s.Require().NoError(err)

		lookup, err := s.service.LatestEventByDocument(context.Background(), guard, doc("44444444-4"))
		s.Require().NoError(err)
		s.True(lookup.MayExit)
		s.True(lookup.RequiresDocumentation)
		s.Equal(models.KindEntry, lookup.Event.Kind)
	})

	s.Run("closed visit may not exit again", func() {
		req := exitReq("44444444-4", s.escortSectorID)
		req.Comment = "fin de visita"
		req.PhotoURLs = []string{"https://evidencia.example/2.jpg"}
		_, err := s.service.RegisterExit(at(t1.Add(time.Hour)), guard, req)
		s.Require().NoError(err)

		lookup, err := s.service.LatestEventByDocument(context.Background(), guard, doc("44444444-4"))
		s.Require().NoError(err)
		s.False(lookup.MayExit)
		s.Equal(models.KindExit, lookup.Event.Kind)
	})
}

func (s *ServiceSuite) TestListEvents_ScopesByRole() {
	guard := s.guard()
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	_, err := s.service.RegisterEntry(at(t1), guard, entryReq("55555555-5", s.sectorID))
	s.Require().NoError(err)

	s.Run("guard sees own facility", func() {
		events, err := s.service.ListEvents(context.Background(), guard, models.EventFilter{})
		s.Require().NoError(err)
		s.Len(events, 1)
	})

	s.Run("guard cannot widen scope to another facility", func() {
		events, err := s.service.ListEvents(context.Background(), guard, models.EventFilter{
			FacilityID: s.otherFacility,
		})
		s.Require().NoError(err)
		s.Len(events, 1)
		s.Equal(s.facilityID, events[0].FacilityID)
	})

	s.Run("admin sees company-wide", func() {
		events, err := s.service.ListEvents(context.Background(), s.admin(), models.EventFilter{})
		s.Require().NoError(err)
		s.Len(events, 1)
	})

	s.Run("kind filter applies", func() {
		events, err := s.service.ListEvents(context.Background(), guard, models.EventFilter{
			Kind: models.KindExit,
		})
		s.Require().NoError(err)
		s.Empty(events)
	})
}
