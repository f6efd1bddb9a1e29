package service

import (
	"context"

	"garita/internal/access/models"
	id "garita/pkg/domain"
	dErrors "garita/pkg/domain-errors"
)

func (s *ServiceSuite) TestResolveOrCreate_CreatesWithPlaceholderName() {
	ctx := context.Background()

	visitor, created, err := s.service.ResolveOrCreate(ctx, models.IdentityQuery{
		Document: id.Document{Value: "P1234567", Foreign: true},
	})

	s.Require().NoError(err)
	s.True(created)
	s.Equal(models.PlaceholderName, visitor.Name)
	s.True(visitor.IsForeign)
	s.Equal("P1234567", visitor.ForeignID)
	s.Empty(visitor.NationalID)
	s.Equal(models.VisitorStatusActive, visitor.Status)
}

func (s *ServiceSuite) TestResolveOrCreate_BackfillIsMonotonic() {
	ctx := context.Background()
	query := models.IdentityQuery{Document: doc("11111111-1")}

	// First resolution: no name, placeholder stands in.
	first, created, err := s.service.ResolveOrCreate(ctx, query)
	s.Require().NoError(err)
	s.True(created)
	s.Equal(models.PlaceholderName, first.Name)

	// Second resolution supplies "Ana": the placeholder gives way.
	query.Name = "Ana"
	second, created, err := s.service.ResolveOrCreate(ctx, query)
	s.Require().NoError(err)
	s.False(created)
	s.Equal("Ana", second.Name)

	// Third resolution with "Beatriz" must not overwrite "Ana".
	query.Name = "Beatriz"
	query.Plate = "AB-CD-12"
	third, created, err := s.service.ResolveOrCreate(ctx, query)
	s.Require().NoError(err)
	s.False(created)
	s.Equal("Ana", third.Name)
	s.Equal("AB-CD-12", third.Plate)

	stored, err := s.visitors.FindByDocument(ctx, doc("11111111-1"))
	s.Require().NoError(err)
	s.Equal("Ana", stored.Name)
	s.Equal("AB-CD-12", stored.Plate)
}

func (s *ServiceSuite) TestResolveOrCreate_ByIDAndMisses() {
	ctx := context.Background()

	visitor, _, err := s.service.ResolveOrCreate(ctx, models.IdentityQuery{Document: doc("22222222-2")})
	s.Require().NoError(err)

	s.Run("lookup by internal id", func() {
		found, created, err := s.service.ResolveOrCreate(ctx, models.IdentityQuery{VisitorID: visitor.ID})
		s.Require().NoError(err)
		s.False(created)
		s.Equal(visitor.ID, found.ID)
	})

	s.Run("unknown internal id is not found", func() {
		_, _, err := s.service.ResolveOrCreate(ctx, models.IdentityQuery{VisitorID: id.NewVisitorID()})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
		s.Equal(ReasonVisitorNotFound, dErrors.ReasonOf(err))
	})

	s.Run("empty query fails validation", func() {
		_, _, err := s.service.ResolveOrCreate(ctx, models.IdentityQuery{})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
		s.Equal(ReasonIdentityRequired, dErrors.ReasonOf(err))
	})
}

func (s *ServiceSuite) TestResolveOrCreate_DocumentScopeIsExact() {
	ctx := context.Background()

	// Same value as national and foreign document yields two visitors.
	national, created, err := s.service.ResolveOrCreate(ctx, models.IdentityQuery{
		Document: id.Document{Value: "9999999"},
	})
	s.Require().NoError(err)
	s.True(created)

	foreign, created, err := s.service.ResolveOrCreate(ctx, models.IdentityQuery{
		Document: id.Document{Value: "9999999", Foreign: true},
	})
	s.Require().NoError(err)
	s.True(created)
	s.NotEqual(national.ID, foreign.ID)
}
