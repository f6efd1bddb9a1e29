package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore appends audit events to the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	const query = `
		INSERT INTO audit_events
			(id, action, occurred_at, guard_id, visitor_id, facility_id, event_id, reason, device, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.ExecContext(ctx, query,
		event.ID.String(),
		string(event.Action),
		event.OccurredAt,
		nullID(event.GuardID),
		nullID(event.VisitorID),
		nullID(event.FacilityID),
		nullID(event.AccessEventID),
		event.Reason,
		event.Device,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func nullID[T interface {
	IsNil() bool
	String() string
}](v T) any {
	if v.IsNil() {
		return nil
	}
	return v.String()
}
