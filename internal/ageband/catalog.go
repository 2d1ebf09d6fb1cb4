package ageband

import (
	"context"
	"log/slog"

	"github.com/R3gret/TinyBackend-sub000/internal/ageband/store"
)

// Catalog loads the age band reference data and normalizes it into parsed
// bands, in the stable order the catalog declares.
//
// A row whose range cannot be parsed is skipped with a warning rather than
// failing the load; one corrupted row degrades targeting for that band only.
type Catalog struct {
	store  store.Store
	logger *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used for skipped-row warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// NewCatalog constructs a Catalog. A nil store means no catalog is available
// and every load serves the canonical fallback bands.
func NewCatalog(s store.Store, opts ...Option) *Catalog {
	c := &Catalog{store: s, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bands returns the parsed catalog in declared order, or the canonical
// fallback bands when no catalog rows exist.
func (c *Catalog) Bands(ctx context.Context) ([]Band, error) {
	if c.store == nil {
		return CanonicalBands, nil
	}
	rows, err := c.store.ListBands(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return CanonicalBands, nil
	}

	bands := make([]Band, 0, len(rows))
	for _, row := range rows {
		r, err := ParseRange(row.Raw)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping unparseable age band",
				"band_id", row.ID,
				"raw", row.Raw,
				"error", err,
			)
			continue
		}
		bands = append(bands, Band{ID: row.ID, Label: row.Label, Raw: row.Raw, Range: r})
	}
	return bands, nil
}
