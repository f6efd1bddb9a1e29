package event

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"garita/internal/access/models"
	id "garita/pkg/domain"
	"garita/pkg/platform/sentinel"
)

// InMemoryStore keeps the event ledger in memory. One mutex covers the whole
// ledger, which is coarser than the per-pair scope the postgres store locks
// at, but equally correct for the single-process dev/test deployments this
// store is limited to.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []*models.AccessEvent
	seq    int64
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{}
}

// Append commits ev after revalidating the pair's state under the lock:
// entries require the pair to be outside, exits require an open entry.
// Violations return a wrapped sentinel.ErrConflict and nothing is written.
func (s *InMemoryStore) Append(_ context.Context, ev *models.AccessEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := s.lastLocked(ev.VisitorID, ev.FacilityID)
	if err := checkAlternation(last, ev.Kind); err != nil {
		return err
	}

	s.seq++
	cp := *ev
	cp.Seq = s.seq
	s.events = append(s.events, &cp)
	ev.Seq = cp.Seq
	return nil
}

// LastEvent returns the most recent event for the pair, by timestamp with
// insertion order breaking ties, or sentinel.ErrNotFound when none exists.
func (s *InMemoryStore) LastEvent(_ context.Context, visitorID id.VisitorID, facilityID id.FacilityID) (*models.AccessEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if last := s.lastLocked(visitorID, facilityID); last != nil {
		cp := *last
		return &cp, nil
	}
	return nil, fmt.Errorf("no events for pair: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) GetByID(_ context.Context, eventID id.EventID) (*models.AccessEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.events {
		if ev.ID == eventID {
			cp := *ev
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("event not found: %w", sentinel.ErrNotFound)
}

// UpdateDocumentation corrects comment/photos of a committed event. Kind and
// timestamp are deliberately not updatable.
func (s *InMemoryStore) UpdateDocumentation(_ context.Context, eventID id.EventID, comment string, photos []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range s.events {
		if ev.ID == eventID {
			ev.Comment = comment
			ev.PhotoURLs = append([]string(nil), photos...)
			return nil
		}
	}
	return fmt.Errorf("event not found: %w", sentinel.ErrNotFound)
}

// List returns events matching the filter, newest first.
func (s *InMemoryStore) List(_ context.Context, f models.EventFilter) ([]*models.AccessEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.AccessEvent
	for _, ev := range s.events {
		if !f.VisitorID.IsNil() && ev.VisitorID != f.VisitorID {
			continue
		}
		if !f.FacilityID.IsNil() && ev.FacilityID != f.FacilityID {
			continue
		}
		if !f.CompanyID.IsNil() && ev.CompanyID != f.CompanyID {
			continue
		}
		if f.Kind != "" && ev.Kind != f.Kind {
			continue
		}
		cp := *ev
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].Seq > out[j].Seq
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *InMemoryStore) lastLocked(visitorID id.VisitorID, facilityID id.FacilityID) *models.AccessEvent {
	var last *models.AccessEvent
	for _, ev := range s.events {
		if ev.VisitorID != visitorID || ev.FacilityID != facilityID {
			continue
		}
		if last == nil ||
			ev.OccurredAt.After(last.OccurredAt) ||
			(ev.OccurredAt.Equal(last.OccurredAt) && ev.Seq > last.Seq) {
			last = ev
		}
	}
	return last
}

// checkAlternation enforces the strict entry/exit alternation for one pair.
func checkAlternation(last *models.AccessEvent, next models.EventKind) error {
	switch next {
	case models.KindEntry:
		if last != nil && last.IsEntry() {
			return fmt.Errorf("pair already inside: %w", sentinel.ErrConflict)
		}
	case models.KindExit:
		if last == nil || !last.IsEntry() {
			return fmt.Errorf("no open entry for pair: %w", sentinel.ErrConflict)
		}
	default:
		return fmt.Errorf("unknown event kind %q: %w", next, sentinel.ErrInvalidState)
	}
	return nil
}
