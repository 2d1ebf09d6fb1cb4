package ageband

import (
	"strconv"
	"strings"
	"time"

	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

// placeholderRunes are the bytes the upstream system is known to substitute
// for either the decimal point or the range dash when a catalog row passes
// through its legacy encoding path. Both separators have been observed
// replaced by the same placeholder in one row.
var placeholderRunes = map[rune]bool{
	'?':      true,
	'�': true, // replacement character from a later UTF-8 re-import
}

// Range is a parsed age band interval in whole months, inclusive on both ends.
type Range struct {
	MinMonths int
	MaxMonths int
}

// Contains reports whether totalMonths falls inside the interval.
func (r Range) Contains(totalMonths int) bool {
	return totalMonths >= r.MinMonths && totalMonths <= r.MaxMonths
}

// Band is one catalog entry: a named range a content item can target.
type Band struct {
	ID    string
	Label string
	Raw   string
	Range Range
}

// ParseRange normalizes the loosely formatted textual range of a catalog row,
// e.g. "3.1-4.0" meaning 3 years 1 month through 4 years 0 months.
//
// Two encodings of the same logical range must be accepted: the clean dotted
// form, and a corrupted variant where a placeholder byte stands in for either
// the decimal point or the range dash. The dotted interpretation is tried
// first (placeholders read as decimal points); if that fails, the placeholder
// is treated as the range delimiter instead.
//
// Errors: CodeUnparseableRange on anything else. Callers skip the offending
// row and keep the rest of the catalog.
func ParseRange(raw string) (Range, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Range{}, dErrors.New(dErrors.CodeUnparseableRange, "empty range")
	}

	// First reading: placeholders are decimal points, '-' splits the range.
	if r, ok := parseWith(s, func(c rune) rune {
		if placeholderRunes[c] {
			return '.'
		}
		return c
	}, "-"); ok {
		return r, nil
	}

	// Fallback reading: the placeholder is the range delimiter itself.
	if r, ok := parseWith(s, func(c rune) rune { return c }, string(placeholderSplit(s))); ok {
		return r, nil
	}

	return Range{}, dErrors.Newf(dErrors.CodeUnparseableRange, "unparseable range %q", raw)
}

// placeholderSplit returns the first placeholder rune present in s, or '-'
// when none is, so the fallback degrades to the plain form.
func placeholderSplit(s string) rune {
	for _, c := range s {
		if placeholderRunes[c] {
			return c
		}
	}
	return '-'
}

func parseWith(s string, mapRune func(rune) rune, sep string) (Range, bool) {
	mapped := strings.Map(mapRune, s)
	parts := strings.Split(mapped, sep)
	if len(parts) != 2 {
		return Range{}, false
	}
	lo, ok := parseSide(parts[0])
	if !ok {
		return Range{}, false
	}
	hi, ok := parseSide(parts[1])
	if !ok {
		return Range{}, false
	}
	if lo > hi {
		return Range{}, false
	}
	return Range{MinMonths: lo, MaxMonths: hi}, true
}

// parseSide reads one side of a range as "years" or "years.months" and
// returns it in whole months.
func parseSide(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	yearsPart, monthsPart, dotted := strings.Cut(s, ".")
	years, err := strconv.Atoi(yearsPart)
	if err != nil || years < 0 {
		return 0, false
	}
	months := 0
	if dotted {
		months, err = strconv.Atoi(monthsPart)
		if err != nil || months < 0 || months > 11 {
			return 0, false
		}
	}
	return years*12 + months, true
}

// Classify scans bands in the caller-supplied order and returns the first
// band whose interval contains totalMonths, inclusive on both ends.
//
// The catalog permits overlapping bands; first-match in declared order is the
// defined tie-break, so classification stays deterministic regardless of how
// the reference data drifts.
func Classify(totalMonths int, bands []Band) (string, bool) {
	for _, b := range bands {
		if b.Range.Contains(totalMonths) {
			return b.ID, true
		}
	}
	return "", false
}

// Canonical bands used wherever no catalog is available. The intervals share
// their month boundaries with the catalog path, so 48 months classifies as
// "3-4" under either; first-match resolves the shared bound.
var CanonicalBands = []Band{
	{ID: "3-4", Label: "3-4 years old", Raw: "3.0-4.0", Range: Range{MinMonths: 36, MaxMonths: 48}},
	{ID: "4-5", Label: "4-5 years old", Raw: "4.0-5.0", Range: Range{MinMonths: 48, MaxMonths: 60}},
	{ID: "5-6", Label: "5-6 years old", Raw: "5.0-6.0", Range: Range{MinMonths: 60, MaxMonths: 72}},
}

// ClassifyFallback classifies a birthdate against the canonical bands without
// a catalog, going through the same month arithmetic as the catalog path.
func ClassifyFallback(birthdate, asOf time.Time) (string, bool) {
	age, err := Compute(birthdate, asOf)
	if err != nil {
		return "", false
	}
	return Classify(age.TotalMonths, CanonicalBands)
}
