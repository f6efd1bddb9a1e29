package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"garita/internal/access/models"
	"garita/internal/audit"
	regmodels "garita/internal/registry/models"
	id "garita/pkg/domain"
	dErrors "garita/pkg/domain-errors"
	"garita/pkg/platform/sentinel"
	"garita/pkg/requestcontext"
)

// Stable machine-readable reason codes surfaced to clients. These are public
// contract; they never change.
const (
	ReasonBanned             = "prohibido"
	ReasonAlreadyInside      = "visita_ya_adentro"
	ReasonNoOpenEntry        = "no_hay_ingreso_abierto"
	ReasonVisitorNotFound    = "visita_no_encontrada"
	ReasonInvalidSector      = "sector_no_valido"
	ReasonNoFacilityAssigned = "usuario_sin_instalacion_asociada"
	ReasonDocsRequired       = "documentacion_requerida"
	ReasonIdentityRequired   = "identidad_requerida"
)

// RegisterEntry validates and commits an entry event for the identified
// visitor at the acting guard's facility. The sequence is: resolve facility,
// validate sector, resolve or create the visitor, check bans, then append.
// The append revalidates the pair's state atomically, so concurrent entries
// for one pair cannot both commit.
func (s *Service) RegisterEntry(ctx context.Context, actor requestcontext.Actor, req models.EntryRequest) (*models.AccessEvent, error) {
	ctx, span := s.tracer.Start(ctx, "access.RegisterEntry")
	defer span.End()
	start := time.Now()

	facility, err := s.resolveFacility(ctx, actor)
	if err != nil {
		return nil, s.deny(ctx, audit.ActionEntryDenied, err)
	}
	sector, err := s.resolveSector(ctx, facility.ID, req.SectorID)
	if err != nil {
		return nil, s.deny(ctx, audit.ActionEntryDenied, err)
	}

	visitor, _, err := s.resolve(ctx, req.Identity, true)
	if err != nil {
		return nil, s.deny(ctx, audit.ActionEntryDenied, err)
	}
	span.SetAttributes(attribute.String("visitor_id", visitor.ID.String()))

	// Ban check runs after resolution so a banned visitor's enrichment data
	// still lands in the registry.
	now := requestcontext.Now(ctx)
	banned, err := s.IsBanned(ctx, visitor.ID, facility.ID, now)
	if err != nil {
		return nil, s.denyVisitor(ctx, audit.ActionEntryDenied, visitor.ID, facility.ID, err)
	}
	if banned {
		err := dErrors.NewReason(dErrors.CodeForbidden, ReasonBanned,
			"visitor has an active ban at this facility")
		return nil, s.denyVisitor(ctx, audit.ActionEntryDenied, visitor.ID, facility.ID, err)
	}

	ev := &models.AccessEvent{
		ID:         id.NewEventID(),
		VisitorID:  visitor.ID,
		FacilityID: facility.ID,
		SectorID:   sector.ID,
		CompanyID:  facility.CompanyID,
		GuardID:    actor.GuardID,
		Kind:       models.KindEntry,
		OccurredAt: now,
		Comment:    req.Comment,
	}
	if err := s.commit(ctx, ev); err != nil {
		return nil, s.denyVisitor(ctx, audit.ActionEntryDenied, visitor.ID, facility.ID, err)
	}

	s.cachePresence(ctx, visitor.ID, facility.ID, true)
	s.metrics.RecordCommit(string(models.KindEntry), time.Since(start).Seconds())

	committed := audit.FromContext(ctx, audit.ActionEntryRegistered)
	committed.GuardID = actor.GuardID
	committed.VisitorID = visitor.ID
	committed.FacilityID = facility.ID
	committed.AccessEventID = ev.ID
	s.record(committed)

	return ev, nil
}

// RegisterExit validates and commits an exit event. Exits never create
// visitors and never check bans: a banned visitor already inside must still
// be able to leave. Sectors with escort documentation require a comment and
// at least one photo.
func (s *Service) RegisterExit(ctx context.Context, actor requestcontext.Actor, req models.ExitRequest) (*models.AccessEvent, error) {
	ctx, span := s.tracer.Start(ctx, "access.RegisterExit")
	defer span.End()
	start := time.Now()

	facility, err := s.resolveFacility(ctx, actor)
	if err != nil {
		return nil, s.deny(ctx, audit.ActionExitDenied, err)
	}
	sector, err := s.resolveSector(ctx, facility.ID, req.SectorID)
	if err != nil {
		return nil, s.deny(ctx, audit.ActionExitDenied, err)
	}

	visitor, _, err := s.resolve(ctx, req.Identity, false)
	if err != nil {
		return nil, s.deny(ctx, audit.ActionExitDenied, err)
	}
	span.SetAttributes(attribute.String("visitor_id", visitor.ID.String()))

	// State is checked before documentation so a visitor who never entered is
	// refused for that, not for missing paperwork. The append revalidates the
	// same condition under the pair lock.
	last, err := s.LastEvent(ctx, visitor.ID, facility.ID)
	if err != nil {
		return nil, s.denyVisitor(ctx, audit.ActionExitDenied, visitor.ID, facility.ID, err)
	}
	if last == nil || !last.IsEntry() {
		err := dErrors.NewReason(dErrors.CodeConflict, ReasonNoOpenEntry,
			"visitor has no open entry at this facility")
		return nil, s.denyVisitor(ctx, audit.ActionExitDenied, visitor.ID, facility.ID, err)
	}

	if sector.RequiresEscortDocumentation && (req.Comment == "" || len(req.PhotoURLs) == 0) {
		err := dErrors.NewReason(dErrors.CodeValidation, ReasonDocsRequired,
			"this sector requires a comment and at least one photo on exit")
		return nil, s.denyVisitor(ctx, audit.ActionExitDenied, visitor.ID, facility.ID, err)
	}

	ev := &models.AccessEvent{
		ID:         id.NewEventID(),
		VisitorID:  visitor.ID,
		FacilityID: facility.ID,
		SectorID:   sector.ID,
		CompanyID:  facility.CompanyID,
		GuardID:    actor.GuardID,
		Kind:       models.KindExit,
		OccurredAt: requestcontext.Now(ctx),
		Comment:    req.Comment,
		PhotoURLs:  req.PhotoURLs,
	}
	if err := s.commit(ctx, ev); err != nil {
		return nil, s.denyVisitor(ctx, audit.ActionExitDenied, visitor.ID, facility.ID, err)
	}

	s.cachePresence(ctx, visitor.ID, facility.ID, false)
	s.metrics.RecordCommit(string(models.KindExit), time.Since(start).Seconds())

	committed := audit.FromContext(ctx, audit.ActionExitRegistered)
	committed.GuardID = actor.GuardID
	committed.VisitorID = visitor.ID
	committed.FacilityID = facility.ID
	committed.AccessEventID = ev.ID
	s.record(committed)

	return ev, nil
}

// commit appends the event, translating the store's conflict sentinel into
// the direction-specific stable reason.
func (s *Service) commit(ctx context.Context, ev *models.AccessEvent) error {
	err := s.events.Append(ctx, ev)
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel.ErrConflict) {
		if ev.IsEntry() {
			return dErrors.NewReason(dErrors.CodeConflict, ReasonAlreadyInside,
				"visitor is already inside this facility")
		}
		return dErrors.NewReason(dErrors.CodeConflict, ReasonNoOpenEntry,
			"visitor has no open entry at this facility")
	}
	return fmt.Errorf("append access event: %w", err)
}

// resolveFacility returns the acting guard's assigned facility. Requests never
// name a facility; the token scope is authoritative.
func (s *Service) resolveFacility(ctx context.Context, actor requestcontext.Actor) (*regmodels.Facility, error) {
	if !actor.HasFacility() {
		return nil, dErrors.NewReason(dErrors.CodeForbidden, ReasonNoFacilityAssigned,
			"acting user has no facility assigned")
	}
	facility, err := s.registry.GetFacility(ctx, actor.FacilityID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.NewReason(dErrors.CodeForbidden, ReasonNoFacilityAssigned,
			"assigned facility no longer exists")
	}
	if err != nil {
		return nil, fmt.Errorf("get facility: %w", err)
	}
	return facility, nil
}

func (s *Service) resolveSector(ctx context.Context, facilityID id.FacilityID, sectorID id.SectorID) (*regmodels.Sector, error) {
	if sectorID.IsNil() {
		return nil, dErrors.NewReason(dErrors.CodeValidation, ReasonInvalidSector,
			"sector_id is required")
	}
	sector, err := s.registry.GetSectorInFacility(ctx, facilityID, sectorID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.NewReason(dErrors.CodeNotFound, ReasonInvalidSector,
			"sector does not belong to this facility")
	}
	if err != nil {
		return nil, fmt.Errorf("get sector: %w", err)
	}
	return sector, nil
}

// deny records the refusal in metrics and the audit trail, then returns err
// unchanged so the caller surfaces the coded error.
func (s *Service) deny(ctx context.Context, action audit.Action, err error) error {
	return s.denyVisitor(ctx, action, id.VisitorID{}, id.FacilityID{}, err)
}

func (s *Service) denyVisitor(ctx context.Context, action audit.Action, visitorID id.VisitorID, facilityID id.FacilityID, err error) error {
	reason := dErrors.ReasonOf(err)
	if reason == "" {
		reason = string(dErrors.CodeOf(err))
	}
	s.metrics.RecordDenied(reason)

	denied := audit.FromContext(ctx, action)
	denied.VisitorID = visitorID
	denied.FacilityID = facilityID
	denied.Reason = reason
	s.record(denied)

	return err
}
