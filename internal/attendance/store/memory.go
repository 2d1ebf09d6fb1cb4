// Package store provides attendance persistence: in-memory for tests,
// PostgreSQL for production.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/R3gret/TinyBackend-sub000/internal/attendance/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/sentinel"
)

type dayKey struct {
	child domain.ChildID
	date  time.Time
}

// InMemory keeps attendance records in memory.
type InMemory struct {
	mu      sync.RWMutex
	records map[dayKey]*models.Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[dayKey]*models.Record)}
}

func (s *InMemory) Mark(_ context.Context, rec *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey{child: rec.ChildID, date: rec.Date}
	if _, exists := s.records[key]; exists {
		return sentinel.ErrConflict
	}
	cp := *rec
	s.records[key] = &cp
	return nil
}

func (s *InMemory) ListByCenterAndDate(_ context.Context, centerID domain.CenterID, date time.Time) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Record
	for _, rec := range s.records {
		if rec.CenterID == centerID && rec.Date.Equal(date) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChildID.String() < out[j].ChildID.String() })
	return out, nil
}

// Summarize aggregates records per center and day over [from, to], counts
// only.
func (s *InMemory) Summarize(_ context.Context, from, to time.Time) ([]*models.DaySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type sumKey struct {
		center domain.CenterID
		date   time.Time
	}
	sums := make(map[sumKey]*models.DaySummary)
	for _, rec := range s.records {
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		key := sumKey{center: rec.CenterID, date: rec.Date}
		sum, ok := sums[key]
		if !ok {
			sum = &models.DaySummary{CenterID: rec.CenterID, Date: rec.Date}
			sums[key] = sum
		}
		switch rec.Status {
		case models.StatusPresent:
			sum.Present++
		case models.StatusAbsent:
			sum.Absent++
		case models.StatusLate:
			sum.Late++
		case models.StatusExcused:
			sum.Excused++
		}
	}

	out := make([]*models.DaySummary, 0, len(sums))
	for _, sum := range sums {
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CenterID.String() < out[j].CenterID.String()
	})
	return out, nil
}
