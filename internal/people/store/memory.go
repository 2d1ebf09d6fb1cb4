// Package store provides person persistence: in-memory for tests,
// PostgreSQL for production.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/R3gret/TinyBackend-sub000/internal/people/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/sentinel"
)

// InMemoryUsers keeps user accounts in memory. Geography columns for focal
// accounts are stored alongside so the one-focal-per-municipality check
// works like the SQL version.
type InMemoryUsers struct {
	mu    sync.RWMutex
	users map[domain.UserID]*models.User
	geo   map[domain.UserID]geoKey
}

type geoKey struct {
	municipality string
	province     string
}

func NewInMemoryUsers() *InMemoryUsers {
	return &InMemoryUsers{
		users: make(map[domain.UserID]*models.User),
		geo:   make(map[domain.UserID]geoKey),
	}
}

func (s *InMemoryUsers) CreateIfUsernameAvailable(_ context.Context, user *models.User, municipality, province string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return sentinel.ErrAlreadyUsed
		}
	}

	cp := *user
	s.users[user.ID] = &cp
	if municipality != "" {
		s.geo[user.ID] = geoKey{
			municipality: strings.ToLower(municipality),
			province:     strings.ToLower(province),
		}
	}
	return nil
}

func (s *InMemoryUsers) FindByID(_ context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemoryUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUsers) FocalExistsInMunicipality(_ context.Context, municipality, province string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := geoKey{
		municipality: strings.ToLower(municipality),
		province:     strings.ToLower(province),
	}
	for id, key := range s.geo {
		if key == want && s.users[id].Role == domain.RoleFocal {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryUsers) ListByCenter(_ context.Context, centerID domain.CenterID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.User
	for _, u := range s.users {
		if u.CenterID != nil && *u.CenterID == centerID {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// InMemoryChildren keeps children, their profile rows and guardian links.
type InMemoryChildren struct {
	mu        sync.RWMutex
	children  map[domain.ChildID]*models.Child
	profiles  map[domain.ChildID][]models.Profile
	guardians map[domain.UserID]domain.ChildID
}

func NewInMemoryChildren() *InMemoryChildren {
	return &InMemoryChildren{
		children:  make(map[domain.ChildID]*models.Child),
		profiles:  make(map[domain.ChildID][]models.Profile),
		guardians: make(map[domain.UserID]domain.ChildID),
	}
}

func (s *InMemoryChildren) Enroll(_ context.Context, child *models.Child, profiles []models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.children[child.ID]; exists {
		return sentinel.ErrConflict
	}

	cp := *child
	s.children[child.ID] = &cp
	s.profiles[child.ID] = append([]models.Profile(nil), profiles...)
	return nil
}

func (s *InMemoryChildren) FindByID(_ context.Context, id domain.ChildID) (*models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.children[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryChildren) ListByCenter(_ context.Context, centerID domain.CenterID) ([]*models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Child
	for _, c := range s.children {
		if c.CenterID == centerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryChildren) Profiles(_ context.Context, id domain.ChildID) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.children[id]; !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]models.Profile(nil), s.profiles[id]...), nil
}

func (s *InMemoryChildren) LinkGuardian(_ context.Context, parent domain.UserID, child domain.ChildID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.children[child]; !ok {
		return sentinel.ErrNotFound
	}
	if _, linked := s.guardians[parent]; linked {
		return sentinel.ErrConflict
	}
	s.guardians[parent] = child
	return nil
}

func (s *InMemoryChildren) LinkedChild(_ context.Context, parent domain.UserID) (domain.ChildID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	child, ok := s.guardians[parent]
	return child, ok, nil
}
