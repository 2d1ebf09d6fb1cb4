package ageband

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Range
	}{
		{"clean dotted form", "3.1-4.0", Range{37, 48}},
		{"whole years", "3-4", Range{36, 48}},
		{"placeholder as decimal point", "3?1-4?0", Range{37, 48}},
		{"placeholder as range dash", "3?4.0", Range{36, 48}},
		{"placeholder dash between dotted sides", "3.1?4.0", Range{37, 48}},
		{"replacement character as decimal point", "3�1-4�0", Range{37, 48}},
		{"surrounding whitespace", "  4.0-5.0 ", Range{48, 60}},
		{"zero lower bound", "0-1", Range{0, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The placeholder-corrupted encoding of a range and its clean form must parse
// identically; the corruption is upstream data damage, not a different range.
func TestParseRange_CorruptionEquivalence(t *testing.T) {
	clean, err := ParseRange("3.1-4.0")
	require.NoError(t, err)
	corrupted, err := ParseRange("3?1-4?0")
	require.NoError(t, err)
	assert.Equal(t, clean, corrupted)
}

func TestParseRange_Unparseable(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"not a range",
		"3.1",
		"4.0-3.1", // inverted interval
		"3.13-4.0", // months out of range
		"-1-4",
		"3?1?4?0", // every separator corrupted, genuinely ambiguous
		"a-b",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseRange(raw)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnparseableRange))
		})
	}
}

func TestClassify_FirstMatch(t *testing.T) {
	bands := []Band{
		{ID: "3-4", Range: Range{36, 48}},
		{ID: "4-5", Range: Range{48, 60}},
		{ID: "5-6", Range: Range{60, 72}},
	}

	tests := []struct {
		months int
		want   string
		ok     bool
	}{
		{35, "", false},
		{36, "3-4", true},
		{42, "3-4", true},
		// Shared bound: both "3-4" and "4-5" contain 48; declared order wins
		// and exactly one band is returned.
		{48, "3-4", true},
		{49, "4-5", true},
		{60, "4-5", true},
		{61, "5-6", true},
		{72, "5-6", true},
		{73, "", false},
	}

	for _, tt := range tests {
		got, ok := Classify(tt.months, bands)
		assert.Equal(t, tt.ok, ok, "months=%d", tt.months)
		assert.Equal(t, tt.want, got, "months=%d", tt.months)
	}
}

// Contiguous bands must classify every boundary month to exactly one band:
// never both, never neither.
func TestClassify_ContiguousBoundaries(t *testing.T) {
	bands := []Band{
		{ID: "a", Range: Range{36, 48}},
		{ID: "b", Range: Range{48, 60}},
	}
	for months := 36; months <= 60; months++ {
		matches := 0
		for _, b := range bands {
			if b.Range.Contains(months) {
				matches++
			}
		}
		require.GreaterOrEqual(t, matches, 1, "months=%d unmatched", months)

		_, ok := Classify(months, bands)
		require.True(t, ok, "months=%d", months)
	}
}

func TestClassify_OverlapIsDeterministic(t *testing.T) {
	overlapping := []Band{
		{ID: "wide", Range: Range{36, 72}},
		{ID: "narrow", Range: Range{48, 60}},
	}
	// First-match in declared order, not narrowest-match.
	got, ok := Classify(50, overlapping)
	require.True(t, ok)
	assert.Equal(t, "wide", got)

	reordered := []Band{overlapping[1], overlapping[0]}
	got, ok = Classify(50, reordered)
	require.True(t, ok)
	assert.Equal(t, "narrow", got)
}

func TestClassifyFallback(t *testing.T) {
	asOf := date(2025, time.January, 10)

	t.Run("worked scenario lands in 3-4", func(t *testing.T) {
		got, ok := ClassifyFallback(date(2021, time.June, 15), asOf)
		require.True(t, ok)
		assert.Equal(t, "3-4", got)
	})

	t.Run("too young", func(t *testing.T) {
		_, ok := ClassifyFallback(date(2024, time.June, 15), asOf)
		assert.False(t, ok)
	})

	t.Run("future birthdate", func(t *testing.T) {
		_, ok := ClassifyFallback(date(2026, time.June, 15), asOf)
		assert.False(t, ok)
	})

	// Both code paths must agree at the canonical boundaries. Exactly 48
	// months is "3-4" whether the months come from the catalog arithmetic or
	// from the fallback's calendar computation, and exactly 60 is "4-5".
	t.Run("boundary agreement with catalog path", func(t *testing.T) {
		fourToday := date(2021, time.January, 10)
		got, ok := ClassifyFallback(fourToday, asOf)
		require.True(t, ok)
		catalogGot, catalogOK := Classify(48, CanonicalBands)
		require.True(t, catalogOK)
		assert.Equal(t, catalogGot, got)
		assert.Equal(t, "3-4", got)

		fiveToday := date(2020, time.January, 10)
		got, ok = ClassifyFallback(fiveToday, asOf)
		require.True(t, ok)
		catalogGot, catalogOK = Classify(60, CanonicalBands)
		require.True(t, catalogOK)
		assert.Equal(t, catalogGot, got)
		assert.Equal(t, "4-5", got)
	})
}
