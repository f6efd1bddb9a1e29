package service

import (
	"context"
	"errors"
	"fmt"

	"garita/internal/access/models"
	id "garita/pkg/domain"
	dErrors "garita/pkg/domain-errors"
	"garita/pkg/platform/sentinel"
	"garita/pkg/requestcontext"
)

// ResolveOrCreate resolves an identity query to a canonical visitor, creating
// the record when the document is unknown. Enrichment fields backfill empty
// columns only; populated values are never overwritten.
func (s *Service) ResolveOrCreate(ctx context.Context, q models.IdentityQuery) (*models.Visitor, bool, error) {
	return s.resolve(ctx, q, true)
}

func (s *Service) resolve(ctx context.Context, q models.IdentityQuery, allowCreate bool) (*models.Visitor, bool, error) {
	if err := q.Validate(); err != nil {
		return nil, false, err
	}

	if q.ByID() {
		visitor, err := s.visitors.FindByID(ctx, q.VisitorID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, errVisitorNotFound()
		}
		if err != nil {
			return nil, false, fmt.Errorf("find visitor by id: %w", err)
		}
		return s.backfill(ctx, visitor, q)
	}

	visitor, err := s.visitors.FindByDocument(ctx, q.Document)
	switch {
	case err == nil:
		return s.backfill(ctx, visitor, q)
	case errors.Is(err, sentinel.ErrNotFound):
		if !allowCreate {
			return nil, false, errVisitorNotFound()
		}
		return s.create(ctx, q)
	default:
		return nil, false, fmt.Errorf("find visitor by document: %w", err)
	}
}

func (s *Service) backfill(ctx context.Context, visitor *models.Visitor, q models.IdentityQuery) (*models.Visitor, bool, error) {
	if !visitor.Backfill(q.Name, q.Surname, q.CompanyName, q.Plate) {
		return visitor, false, nil
	}
	if err := s.visitors.Update(ctx, visitor); err != nil {
		return nil, false, fmt.Errorf("backfill visitor: %w", err)
	}
	return visitor, false, nil
}

func (s *Service) create(ctx context.Context, q models.IdentityQuery) (*models.Visitor, bool, error) {
	now := requestcontext.Now(ctx)
	visitor := &models.Visitor{
		ID:          id.NewVisitorID(),
		IsForeign:   q.Document.Foreign,
		Name:        q.Name,
		Surname:     q.Surname,
		CompanyName: q.CompanyName,
		Plate:       q.Plate,
		Status:      models.VisitorStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if q.Document.Foreign {
		visitor.ForeignID = q.Document.Value
	} else {
		visitor.NationalID = q.Document.Value
	}
	if visitor.Name == "" {
		visitor.Name = models.PlaceholderName
	}

	err := s.visitors.Create(ctx, visitor)
	if errors.Is(err, sentinel.ErrConflict) {
		// Lost a create race on the document's unique index; the winner's
		// record is the canonical one.
		existing, ferr := s.visitors.FindByDocument(ctx, q.Document)
		if ferr != nil {
			return nil, false, fmt.Errorf("refetch visitor after create race: %w", ferr)
		}
		visitor, _, berr := s.backfill(ctx, existing, q)
		return visitor, false, berr
	}
	if err != nil {
		return nil, false, fmt.Errorf("create visitor: %w", err)
	}

	s.metrics.RecordVisitorCreated()
	return visitor, true, nil
}

func errVisitorNotFound() error {
	return dErrors.NewReason(dErrors.CodeNotFound, "visita_no_encontrada",
		"no visitor matches the given identity")
}
