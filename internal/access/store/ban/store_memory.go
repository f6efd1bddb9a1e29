package ban

import (
	"context"
	"sync"

	"garita/internal/access/models"
	id "garita/pkg/domain"
)

// InMemoryStore keeps bans in memory for tests and dev.
type InMemoryStore struct {
	mu   sync.RWMutex
	bans []*models.Ban
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Create(_ context.Context, b *models.Ban) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.bans = append(s.bans, &cp)
	return nil
}

// ListForPair returns every ban for the (visitor, facility) pair, active or
// not; the checker applies the interval test.
func (s *InMemoryStore) ListForPair(_ context.Context, visitorID id.VisitorID, facilityID id.FacilityID) ([]*models.Ban, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Ban
	for _, b := range s.bans {
		if b.VisitorID == visitorID && b.FacilityID == facilityID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}
