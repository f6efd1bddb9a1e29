package service

import (
	"context"
	"time"

	"garita/internal/access/models"
	id "garita/pkg/domain"
	dErrors "garita/pkg/domain-errors"
)

func (s *ServiceSuite) TestOverrideEvent_CorrectsDocumentationOnly() {
	guard := s.guard()
	admin := s.admin()
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	ev, err := s.service.RegisterEntry(at(t1), guard, entryReq("11111111-1", s.sectorID))
	s.Require().NoError(err)

	comment := "corregido por supervisor"
	updated, err := s.service.OverrideEvent(context.Background(), admin, ev.ID, models.EventOverride{
		Comment: &comment,
	})
	s.Require().NoError(err)
	s.Equal(comment, updated.Comment)
	// Everything else stays as committed.
	s.Equal(ev.Kind, updated.Kind)
	s.True(ev.OccurredAt.Equal(updated.OccurredAt))
	s.Equal(ev.VisitorID, updated.VisitorID)

	stored, err := s.events.GetByID(context.Background(), ev.ID)
	s.Require().NoError(err)
	s.Equal(comment, stored.Comment)
}

func (s *ServiceSuite) TestOverrideEvent_Guards() {
	guard := s.guard()
	admin := s.admin()
	t1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	ev, err := s.service.RegisterEntry(at(t1), guard, entryReq("22222222-2", s.sectorID))
	s.Require().NoError(err)
	comment := "x"

	s.Run("guards may not override", func() {
		_, err := s.service.OverrideEvent(context.Background(), guard, ev.ID, models.EventOverride{Comment: &comment})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
	})

	s.Run("empty override rejected", func() {
		_, err := s.service.OverrideEvent(context.Background(), admin, ev.ID, models.EventOverride{})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("unknown event not found", func() {
		_, err := s.service.OverrideEvent(context.Background(), admin, id.NewEventID(), models.EventOverride{Comment: &comment})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("admin of another company forbidden", func() {
		outsider := s.admin()
		outsider.CompanyID = id.NewCompanyID()
		_, err := s.service.OverrideEvent(context.Background(), outsider, ev.ID, models.EventOverride{Comment: &comment})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
	})
}
