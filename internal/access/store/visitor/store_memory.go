package visitor

import (
	"context"
	"fmt"
	"sync"

	"garita/internal/access/models"
	id "garita/pkg/domain"
	"garita/pkg/platform/sentinel"
)

// InMemoryStore keeps visitors in memory for tests and dev. Single-process
// only; production uses the postgres store.
type InMemoryStore struct {
	mu       sync.RWMutex
	visitors map[id.VisitorID]*models.Visitor
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{visitors: make(map[id.VisitorID]*models.Visitor)}
}

func (s *InMemoryStore) Create(_ context.Context, v *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.visitors {
		if sameDocument(existing, v.Document()) {
			return fmt.Errorf("visitor document taken: %w", sentinel.ErrConflict)
		}
	}
	cp := *v
	s.visitors[v.ID] = &cp
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, v *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.visitors[v.ID]; !ok {
		return fmt.Errorf("visitor not found: %w", sentinel.ErrNotFound)
	}
	cp := *v
	s.visitors[v.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.visitors[visitorID]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, fmt.Errorf("visitor not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByDocument(_ context.Context, doc id.Document) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.visitors {
		if sameDocument(v, doc) {
			cp := *v
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("visitor not found: %w", sentinel.ErrNotFound)
}

func sameDocument(v *models.Visitor, doc id.Document) bool {
	if doc.IsZero() || v.IsForeign != doc.Foreign {
		return false
	}
	if doc.Foreign {
		return v.ForeignID == doc.Value
	}
	return v.NationalID == doc.Value
}
