package ban

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"garita/internal/access/models"
	id "garita/pkg/domain"
)

// PostgresStore persists bans in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, b *models.Ban) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bans (id, visitor_id, facility_id, reason, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(b.ID), uuid.UUID(b.VisitorID), uuid.UUID(b.FacilityID),
		b.Reason, b.StartsAt, nullTime(b.EndsAt))
	if err != nil {
		return fmt.Errorf("insert ban: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListForPair(ctx context.Context, visitorID id.VisitorID, facilityID id.FacilityID) ([]*models.Ban, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, visitor_id, facility_id, reason, starts_at, ends_at
		FROM bans WHERE visitor_id = $1 AND facility_id = $2
	`, uuid.UUID(visitorID), uuid.UUID(facilityID))
	if err != nil {
		return nil, fmt.Errorf("list bans for pair: %w", err)
	}
	defer rows.Close()
	return scanBans(rows)
}

func scanBans(rows *sql.Rows) ([]*models.Ban, error) {
	var out []*models.Ban
	for rows.Next() {
		var b models.Ban
		var bid, vid, fid uuid.UUID
		var ends sql.NullTime
		if err := rows.Scan(&bid, &vid, &fid, &b.Reason, &b.StartsAt, &ends); err != nil {
			return nil, fmt.Errorf("scan ban: %w", err)
		}
		b.ID = id.BanID(bid)
		b.VisitorID = id.VisitorID(vid)
		b.FacilityID = id.FacilityID(fid)
		if ends.Valid {
			t := ends.Time.UTC()
			b.EndsAt = &t
		}
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bans: %w", err)
	}
	return out, nil
}

// nullTime converts an optional time for insertion.
func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}
