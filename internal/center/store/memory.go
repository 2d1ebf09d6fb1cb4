// Package store provides center persistence: an in-memory implementation for
// tests and a PostgreSQL implementation for production.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/R3gret/TinyBackend-sub000/internal/center/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/sentinel"
)

// InMemory keeps centers and their location rows in separate maps, mirroring
// the relational shape so integrity faults (a center with no location row)
// are representable in tests.
type InMemory struct {
	mu        sync.RWMutex
	centers   map[domain.CenterID]*models.Center
	locations map[domain.CenterID]models.Location
}

func NewInMemory() *InMemory {
	return &InMemory{
		centers:   make(map[domain.CenterID]*models.Center),
		locations: make(map[domain.CenterID]models.Location),
	}
}

func (s *InMemory) CreateIfNameAvailable(_ context.Context, center *models.Center) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.centers {
		if strings.EqualFold(existing.Name, center.Name) {
			return sentinel.ErrAlreadyUsed
		}
	}

	cp := *center
	s.centers[center.ID] = &cp
	s.locations[center.ID] = center.Location
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.CenterID) (*models.Center, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.centers[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemory) FindLocation(_ context.Context, id domain.CenterID) (*models.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.centers[id]; !ok {
		return nil, sentinel.ErrNotFound
	}
	loc, ok := s.locations[id]
	if !ok {
		return nil, nil
	}
	cp := loc
	return &cp, nil
}

func (s *InMemory) ListActive(_ context.Context) ([]*models.Center, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Center
	for _, c := range s.centers {
		if c.IsActive() {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemory) UpdateStatus(_ context.Context, center *models.Center) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.centers[center.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	existing.Status = center.Status
	existing.UpdatedAt = center.UpdatedAt
	return nil
}

// DropLocation removes a center's location row, leaving the center orphaned.
// Exists so integrity-fault handling is testable.
func (s *InMemory) DropLocation(id domain.CenterID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locations, id)
}
