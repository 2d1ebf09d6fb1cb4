// Package store persists the age band catalog: effectively static reference
// data keyed by a stable position column that fixes classification order.
package store

import "context"

// Row is one raw catalog entry as stored. The range text is parsed by the
// ageband package, not here; a store never rejects a row for bad text.
type Row struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Raw      string `json:"raw"`
	Position int    `json:"position"`
}

// Store lists catalog rows in declared (position) order.
type Store interface {
	ListBands(ctx context.Context) ([]Row, error)
}
