package models

import (
	"time"

	id "garita/pkg/domain"
)

// Ban is a time-bounded restriction of one visitor from one facility. A nil
// EndsAt means open-ended. Overlapping bans are allowed; any active one vetoes
// entry.
type Ban struct {
	ID         id.BanID
	VisitorID  id.VisitorID
	FacilityID id.FacilityID
	Reason     string
	StartsAt   time.Time
	EndsAt     *time.Time
}

// ActiveAt reports whether the ban covers the instant t:
// starts_at <= t and (ends_at is null or ends_at >= t).
func (b *Ban) ActiveAt(t time.Time) bool {
	if b.StartsAt.After(t) {
		return false
	}
	return b.EndsAt == nil || !b.EndsAt.Before(t)
}
