package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"garita/internal/access/models"
	id "garita/pkg/domain"
	"garita/pkg/platform/sentinel"
)

// PostgresStore persists the access-event ledger.
//
// Concurrency: Append wraps the read-check-insert in one transaction holding
// pg_advisory_xact_lock keyed on the (visitor, facility) pair, so transitions
// for a pair serialize across every process sharing the database. The lock
// releases automatically at commit/rollback.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const lastEventQuery = `
	SELECT id, seq, visitor_id, facility_id, sector_id, company_id, guard_id,
		kind, occurred_at, comment, photo_urls
	FROM access_events
	WHERE visitor_id = $1 AND facility_id = $2
	ORDER BY occurred_at DESC, seq DESC
	LIMIT 1
`

// Append commits ev if the alternation invariant holds for its pair.
// Returns wrapped sentinel.ErrConflict on an illegal transition; the
// transaction rolls back and nothing is written.
func (s *PostgresStore) Append(ctx context.Context, ev *models.AccessEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`,
		ev.VisitorID.String(), ev.FacilityID.String())
	if err != nil {
		return fmt.Errorf("acquire pair lock: %w", err)
	}

	last, err := scanEventRow(tx.QueryRowContext(ctx, lastEventQuery,
		uuid.UUID(ev.VisitorID), uuid.UUID(ev.FacilityID)))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	if err := checkAlternation(last, ev.Kind); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO access_events (id, visitor_id, facility_id, sector_id, company_id,
			guard_id, kind, occurred_at, comment, photo_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq
	`, uuid.UUID(ev.ID), uuid.UUID(ev.VisitorID), uuid.UUID(ev.FacilityID),
		uuid.UUID(ev.SectorID), uuid.UUID(ev.CompanyID), uuid.UUID(ev.GuardID),
		string(ev.Kind), ev.OccurredAt, ev.Comment, pq.Array(ev.PhotoURLs)).Scan(&ev.Seq)
	if err != nil {
		return fmt.Errorf("insert access event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}

func (s *PostgresStore) LastEvent(ctx context.Context, visitorID id.VisitorID, facilityID id.FacilityID) (*models.AccessEvent, error) {
	return scanEventRow(s.db.QueryRowContext(ctx, lastEventQuery,
		uuid.UUID(visitorID), uuid.UUID(facilityID)))
}

func (s *PostgresStore) GetByID(ctx context.Context, eventID id.EventID) (*models.AccessEvent, error) {
	return scanEventRow(s.db.QueryRowContext(ctx, `
		SELECT id, seq, visitor_id, facility_id, sector_id, company_id, guard_id,
			kind, occurred_at, comment, photo_urls
		FROM access_events WHERE id = $1
	`, uuid.UUID(eventID)))
}

func (s *PostgresStore) UpdateDocumentation(ctx context.Context, eventID id.EventID, comment string, photos []string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE access_events SET comment = $2, photo_urls = $3 WHERE id = $1
	`, uuid.UUID(eventID), comment, pq.Array(photos))
	if err != nil {
		return fmt.Errorf("update event documentation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("event not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, f models.EventFilter) ([]*models.AccessEvent, error) {
	query := `
		SELECT id, seq, visitor_id, facility_id, sector_id, company_id, guard_id,
			kind, occurred_at, comment, photo_urls
		FROM access_events
		WHERE ($1::uuid IS NULL OR visitor_id = $1)
		  AND ($2::uuid IS NULL OR facility_id = $2)
		  AND ($3::uuid IS NULL OR company_id = $3)
		  AND ($4::text IS NULL OR kind = $4)
		ORDER BY occurred_at DESC, seq DESC
		LIMIT $5
	`
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, query,
		nullUUID(uuid.UUID(f.VisitorID)), nullUUID(uuid.UUID(f.FacilityID)),
		nullUUID(uuid.UUID(f.CompanyID)), nullString(string(f.Kind)), limit)
	if err != nil {
		return nil, fmt.Errorf("list access events: %w", err)
	}
	defer rows.Close()

	var out []*models.AccessEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access events: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.AccessEvent, error) {
	var ev models.AccessEvent
	var eid, vid, fid, sid, cid, gid uuid.UUID
	var kind string
	err := row.Scan(&eid, &ev.Seq, &vid, &fid, &sid, &cid, &gid,
		&kind, &ev.OccurredAt, &ev.Comment, pq.Array(&ev.PhotoURLs))
	if err != nil {
		return nil, err
	}
	ev.ID = id.EventID(eid)
	ev.VisitorID = id.VisitorID(vid)
	ev.FacilityID = id.FacilityID(fid)
	ev.SectorID = id.SectorID(sid)
	ev.CompanyID = id.CompanyID(cid)
	ev.GuardID = id.GuardID(gid)
	ev.Kind = models.EventKind(kind)
	return &ev, nil
}

func scanEventRow(row *sql.Row) (*models.AccessEvent, error) {
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no events for pair: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan access event: %w", err)
	}
	return ev, nil
}

func nullUUID(u uuid.UUID) any {
	if u == uuid.Nil {
		return nil
	}
	return u
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
