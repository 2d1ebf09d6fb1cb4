package ageband

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3gret/TinyBackend-sub000/internal/ageband/store"
)

func TestCatalog_Bands(t *testing.T) {
	ctx := context.Background()
	logBuf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logBuf, nil))

	t.Run("parses rows in declared order", func(t *testing.T) {
		s := store.NewInMemory(
			store.Row{ID: "3-4", Label: "3-4 years old", Raw: "3.0-4.0", Position: 1},
			store.Row{ID: "4-5", Label: "4-5 years old", Raw: "4.0-5.0", Position: 2},
			store.Row{ID: "5-6", Label: "5-6 years old", Raw: "5.0-6.0", Position: 3},
		)
		bands, err := NewCatalog(s, WithLogger(logger)).Bands(ctx)
		require.NoError(t, err)
		require.Len(t, bands, 3)
		assert.Equal(t, "3-4", bands[0].ID)
		assert.Equal(t, Range{36, 48}, bands[0].Range)
		assert.Equal(t, "5-6", bands[2].ID)
	})

	t.Run("skips unparseable rows and keeps the rest", func(t *testing.T) {
		s := store.NewInMemory(
			store.Row{ID: "3-4", Raw: "3.0-4.0", Position: 1},
			store.Row{ID: "bad", Raw: "not a range", Position: 2},
			store.Row{ID: "5-6", Raw: "5?0-6?0", Position: 3},
		)
		bands, err := NewCatalog(s, WithLogger(logger)).Bands(ctx)
		require.NoError(t, err)
		require.Len(t, bands, 2)
		assert.Equal(t, "3-4", bands[0].ID)
		assert.Equal(t, "5-6", bands[1].ID)
		assert.Contains(t, logBuf.String(), "skipping unparseable age band")
	})

	t.Run("nil store serves the canonical fallback", func(t *testing.T) {
		bands, err := NewCatalog(nil).Bands(ctx)
		require.NoError(t, err)
		assert.Equal(t, CanonicalBands, bands)
	})

	t.Run("empty catalog serves the canonical fallback", func(t *testing.T) {
		bands, err := NewCatalog(store.NewInMemory()).Bands(ctx)
		require.NoError(t, err)
		assert.Equal(t, CanonicalBands, bands)
	})
}
