package models

import (
	"time"

	id "garita/pkg/domain"
)

// EventKind is the direction of an access event.
type EventKind string

const (
	KindEntry EventKind = "ingreso"
	KindExit  EventKind = "salida"
)

// AccessEvent is one immutable ledger entry. Events for a (visitor, facility)
// pair strictly alternate starting with an entry; the event store enforces
// this at commit time. Seq breaks timestamp ties by insertion order.
type AccessEvent struct {
	ID         id.EventID
	Seq        int64
	VisitorID  id.VisitorID
	FacilityID id.FacilityID
	SectorID   id.SectorID
	CompanyID  id.CompanyID
	GuardID    id.GuardID
	Kind       EventKind
	OccurredAt time.Time
	Comment    string
	PhotoURLs  []string
}

// IsEntry reports whether this event opened a visit.
func (e *AccessEvent) IsEntry() bool { return e.Kind == KindEntry }
