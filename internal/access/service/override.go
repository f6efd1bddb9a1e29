package service

import (
	"context"
	"errors"
	"fmt"

	"garita/internal/access/models"
	"garita/internal/audit"
	id "garita/pkg/domain"
	dErrors "garita/pkg/domain-errors"
	"garita/pkg/platform/sentinel"
	"garita/pkg/requestcontext"
)

// OverrideEvent corrects the documentation fields of a committed event. Only
// comment and photos are correctable: kind, timestamp and references stay
// immutable so the ledger's alternation can never be broken after the fact.
func (s *Service) OverrideEvent(ctx context.Context, actor requestcontext.Actor, eventID id.EventID, override models.EventOverride) (*models.AccessEvent, error) {
	if !actor.Role.Can(id.CapOverrideEvent) {
		return nil, dErrors.New(dErrors.CodeForbidden, "role may not override events")
	}
	if override.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "override must change comment or photos")
	}

	ev, err := s.events.GetByID(ctx, eventID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "access event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	// Admins only reach into their own company's ledger.
	if actor.Role != id.RoleSuperAdmin && ev.CompanyID != actor.CompanyID {
		return nil, dErrors.New(dErrors.CodeForbidden, "event belongs to another company")
	}

	comment := ev.Comment
	if override.Comment != nil {
		comment = *override.Comment
	}
	photos := ev.PhotoURLs
	if override.PhotoURLs != nil {
		photos = *override.PhotoURLs
	}
	if err := s.events.UpdateDocumentation(ctx, eventID, comment, photos); err != nil {
		return nil, fmt.Errorf("update event documentation: %w", err)
	}
	ev.Comment = comment
	ev.PhotoURLs = photos

	overridden := audit.FromContext(ctx, audit.ActionEventOverridden)
	overridden.VisitorID = ev.VisitorID
	overridden.FacilityID = ev.FacilityID
	overridden.AccessEventID = ev.ID
	s.record(overridden)

	return ev, nil
}
