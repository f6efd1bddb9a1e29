package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"garita/internal/access/models"
	id "garita/pkg/domain"
	dErrors "garita/pkg/domain-errors"
	"garita/pkg/platform/sentinel"
	"garita/pkg/requestcontext"
)

// VisitorLookup is the guard-booth answer for "who is this document": the
// record plus its current standing at the guard's facility.
type VisitorLookup struct {
	Visitor *models.Visitor
	Banned  bool
	Inside  bool
}

// EventLookup is the pre-exit answer: the pair's latest event, whether its
// sector demands escort documentation, and whether an exit may be registered
// now.
type EventLookup struct {
	Event                 *models.AccessEvent
	RequiresDocumentation bool
	MayExit               bool
}

// FindVisitorByDocument resolves a document to a visitor and reports ban and
// presence status at the actor's facility. Ban status uses the active-interval
// rule at request time, the same rule RegisterEntry applies.
func (s *Service) FindVisitorByDocument(ctx context.Context, actor requestcontext.Actor, doc id.Document) (*VisitorLookup, error) {
	facility, err := s.resolveFacility(ctx, actor)
	if err != nil {
		return nil, err
	}
	if doc.IsZero() {
		return nil, dErrors.NewReason(dErrors.CodeValidation, ReasonIdentityRequired,
			"a document value is required")
	}

	visitor, err := s.visitors.FindByDocument(ctx, doc)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, errVisitorNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("find visitor by document: %w", err)
	}

	// Ban and presence are independent reads; fetch them concurrently.
	lookup := &VisitorLookup{Visitor: visitor}
	now := requestcontext.Now(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		banned, err := s.IsBanned(gctx, visitor.ID, facility.ID, now)
		lookup.Banned = banned
		return err
	})
	g.Go(func() error {
		inside, err := s.cachedInside(gctx, visitor.ID, facility.ID)
		lookup.Inside = inside
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lookup, nil
}

// LatestEventByDocument returns the pair's latest event with the sector
// policy flag, so the booth UI knows whether to collect documentation before
// calling RegisterExit.
func (s *Service) LatestEventByDocument(ctx context.Context, actor requestcontext.Actor, doc id.Document) (*EventLookup, error) {
	facility, err := s.resolveFacility(ctx, actor)
	if err != nil {
		return nil, err
	}
	if doc.IsZero() {
		return nil, dErrors.NewReason(dErrors.CodeValidation, ReasonIdentityRequired,
			"a document value is required")
	}

	visitor, err := s.visitors.FindByDocument(ctx, doc)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, errVisitorNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("find visitor by document: %w", err)
	}

	last, err := s.LastEvent(ctx, visitor.ID, facility.ID)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, dErrors.New(dErrors.CodeNotFound,
			"visitor has no events at this facility")
	}

	lookup := &EventLookup{Event: last, MayExit: last.IsEntry()}
	sector, err := s.registry.GetSector(ctx, last.SectorID)
	switch {
	case err == nil:
		lookup.RequiresDocumentation = sector.RequiresEscortDocumentation
	case errors.Is(err, sentinel.ErrNotFound):
		// Sector deleted after the event; no policy to apply.
	default:
		return nil, fmt.Errorf("get sector: %w", err)
	}
	return lookup, nil
}

// ListEvents returns ledger events newest first, scoped to what the actor may
// see: guards see their facility, admins their company, superadmins pass the
// filter through.
func (s *Service) ListEvents(ctx context.Context, actor requestcontext.Actor, filter models.EventFilter) ([]*models.AccessEvent, error) {
	switch actor.Role {
	case id.RoleGuard:
		if !actor.HasFacility() {
			return nil, dErrors.NewReason(dErrors.CodeForbidden, ReasonNoFacilityAssigned,
				"acting user has no facility assigned")
		}
		filter.FacilityID = actor.FacilityID
	case id.RoleAdmin:
		filter.CompanyID = actor.CompanyID
	case id.RoleSuperAdmin:
		// Unrestricted.
	default:
		return nil, dErrors.New(dErrors.CodeForbidden, "unknown role")
	}
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
