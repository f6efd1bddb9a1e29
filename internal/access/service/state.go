package service

import (
	"context"
	"errors"
	"fmt"

	"garita/internal/access/models"
	id "garita/pkg/domain"
	"garita/pkg/platform/sentinel"
)

// LastEvent returns the most recent ledger event for the pair, or nil when the
// pair has no history. The ledger is the sole authority for presence.
func (s *Service) LastEvent(ctx context.Context, visitorID id.VisitorID, facilityID id.FacilityID) (*models.AccessEvent, error) {
	last, err := s.events.LastEvent(ctx, visitorID, facilityID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last event: %w", err)
	}
	return last, nil
}

// IsInside reports whether the pair's last event is an open entry, reading the
// ledger directly. Use cachedInside only for display hints.
func (s *Service) IsInside(ctx context.Context, visitorID id.VisitorID, facilityID id.FacilityID) (bool, error) {
	last, err := s.LastEvent(ctx, visitorID, facilityID)
	if err != nil {
		return false, err
	}
	return last != nil && last.IsEntry(), nil
}

// cachedInside answers the presence question from the cache when possible,
// falling back to the ledger on miss.
func (s *Service) cachedInside(ctx context.Context, visitorID id.VisitorID, facilityID id.FacilityID) (bool, error) {
	if s.presence != nil {
		if inside, ok := s.presence.Get(ctx, visitorID, facilityID); ok {
			return inside, nil
		}
	}
	return s.IsInside(ctx, visitorID, facilityID)
}
