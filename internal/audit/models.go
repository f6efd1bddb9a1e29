// Package audit records who did what at the gates. Events flow from domain
// services through a channel to a background worker, which fans out to the
// postgres sink and, when configured, a Kafka topic for downstream consumers.
package audit

import (
	"context"
	"time"

	id "garita/pkg/domain"
)

// Action names an auditable occurrence. Stable strings; consumers key on them.
type Action string

const (
	ActionEntryRegistered Action = "entry_registered"
	ActionExitRegistered  Action = "exit_registered"
	ActionEntryDenied     Action = "entry_denied"
	ActionExitDenied      Action = "exit_denied"
	ActionEventOverridden Action = "event_overridden"
	ActionVisitorImported Action = "visitor_imported"
)

// Event captures one auditable action. Transport-agnostic so sinks can fan
// out without caring where it came from.
type Event struct {
	ID         id.EventID
	Action     Action
	OccurredAt time.Time
	GuardID    id.GuardID
	VisitorID  id.VisitorID
	FacilityID id.FacilityID
	// AccessEventID links to the ledger entry for committed transitions.
	AccessEventID id.EventID
	// Reason carries the stable denial code for denied transitions.
	Reason    string
	Device    string
	RequestID string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher ships audit events to an external sink (Kafka).
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
