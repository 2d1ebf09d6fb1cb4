// Package store provides content persistence: in-memory for tests,
// PostgreSQL for production.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/R3gret/TinyBackend-sub000/internal/content/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/sentinel"
)

// InMemory keeps content items in memory.
type InMemory struct {
	mu    sync.RWMutex
	items map[domain.ContentID]*models.Item
}

func NewInMemory() *InMemory {
	return &InMemory{items: make(map[domain.ContentID]*models.Item)}
}

func (s *InMemory) Create(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := cloneItem(item)
	s.items[item.ID] = cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ContentID) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneItem(item), nil
}

// ListForCenter returns broadcast items plus the given center's items,
// newest first.
func (s *InMemory) ListForCenter(_ context.Context, centerID domain.CenterID) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Item
	for _, item := range s.items {
		if item.CenterID == nil || *item.CenterID == centerID {
			out = append(out, cloneItem(item))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListCenterBound returns every item bound to a center, newest first.
// Broadcast items are excluded; municipality-scoped viewers never see them.
func (s *InMemory) ListCenterBound(_ context.Context) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Item
	for _, item := range s.items {
		if item.CenterID != nil {
			out = append(out, cloneItem(item))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, id domain.ContentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func cloneItem(item *models.Item) *models.Item {
	cp := *item
	cp.RoleFilter = append([]domain.Role(nil), item.RoleFilter...)
	if item.CenterID != nil {
		cid := *item.CenterID
		cp.CenterID = &cid
	}
	return &cp
}

func sortNewestFirst(items []*models.Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID.String() < items[j].ID.String()
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
