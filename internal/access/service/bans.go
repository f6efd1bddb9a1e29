package service

import (
	"context"
	"fmt"
	"time"

	id "garita/pkg/domain"
)

// IsBanned reports whether any ban for the pair covers the instant at.
// Overlapping bans are permitted; one active interval is enough to veto.
func (s *Service) IsBanned(ctx context.Context, visitorID id.VisitorID, facilityID id.FacilityID, at time.Time) (bool, error) {
	bans, err := s.bans.ListForPair(ctx, visitorID, facilityID)
	if err != nil {
		return false, fmt.Errorf("list bans: %w", err)
	}
	for _, ban := range bans {
		if ban.ActiveAt(at) {
			return true, nil
		}
	}
	return false, nil
}
