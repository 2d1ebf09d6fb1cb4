package store

import (
	"context"
	"sort"
	"sync"
)

// InMemory holds catalog rows in memory for tests and single-node setups.
type InMemory struct {
	mu   sync.RWMutex
	rows []Row
}

func NewInMemory(rows ...Row) *InMemory {
	s := &InMemory{rows: append([]Row(nil), rows...)}
	sort.SliceStable(s.rows, func(i, j int) bool { return s.rows[i].Position < s.rows[j].Position })
	return s
}

// Add appends a row, keeping position order.
func (s *InMemory) Add(row Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	sort.SliceStable(s.rows, func(i, j int) bool { return s.rows[i].Position < s.rows[j].Position })
}

func (s *InMemory) ListBands(_ context.Context) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Row(nil), s.rows...), nil
}
