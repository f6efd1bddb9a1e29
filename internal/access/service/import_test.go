package service

import (
	"context"

	"garita/internal/access/models"
	id "garita/pkg/domain"
	dErrors "garita/pkg/domain-errors"
)

func (s *ServiceSuite) TestImportVisitors_MixedBatch() {
	ctx := context.Background()
	admin := s.admin()

	// One pre-existing visitor to exercise the updated counter.
	_, _, err := s.service.ResolveOrCreate(ctx, models.IdentityQuery{Document: doc("11111111-1")})
	s.Require().NoError(err)

	result, err := s.service.ImportVisitors(ctx, admin, models.ImportBatch{
		FacilityID: s.facilityID,
		Items: []models.ImportItem{
			{Document: doc("11111111-1"), Name: "Ana"},
			{Document: doc("22222222-2"), Name: "Bruno", CompanyName: "Transportes Sur"},
			{}, // no document: fails without aborting the batch
			{Document: doc("33333333-3")},
		},
	})

	s.Require().NoError(err)
	s.Equal(2, result.Created)
	s.Equal(1, result.Updated)
	s.Require().Len(result.Errors, 1)
	s.Equal(2, result.Errors[0].Index)
	s.Equal(ReasonIdentityRequired, result.Errors[0].Reason)

	// The failed row left no record behind; the rest landed.
	updated, err := s.visitors.FindByDocument(ctx, doc("11111111-1"))
	s.Require().NoError(err)
	s.Equal("Ana", updated.Name)
}

func (s *ServiceSuite) TestImportVisitors_Guards() {
	ctx := context.Background()

	s.Run("guards may not import", func() {
		_, err := s.service.ImportVisitors(ctx, s.guard(), models.ImportBatch{
			FacilityID: s.facilityID,
			Items:      []models.ImportItem{{Document: doc("44444444-4")}},
		})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
	})

	s.Run("batch without facility context rejected", func() {
		_, err := s.service.ImportVisitors(ctx, s.admin(), models.ImportBatch{
			Items: []models.ImportItem{{Document: doc("44444444-4")}},
		})
		s.Require().Error(err)
		s.Equal(ReasonNoFacilityAssigned, dErrors.ReasonOf(err))
	})

	s.Run("empty batch rejected", func() {
		_, err := s.service.ImportVisitors(ctx, s.admin(), models.ImportBatch{
			FacilityID: s.facilityID,
		})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("oversized batch rejected", func() {
		items := make([]models.ImportItem, 501)
		for i := range items {
			items[i] = models.ImportItem{Document: id.Document{Value: "x"}}
		}
		_, err := s.service.ImportVisitors(ctx, s.admin(), models.ImportBatch{
			FacilityID: s.facilityID,
			Items:      items,
		})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})
}
