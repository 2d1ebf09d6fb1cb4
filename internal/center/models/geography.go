package models

import (
	"strings"

	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

// Geography is a viewer's resolved place, used to scope the focal role by
// municipality rather than by a center row.
type Geography struct {
	Barangay     string `json:"barangay"`
	Municipality string `json:"municipality"`
	Province     string `json:"province"`
	Region       string `json:"region,omitempty"`
}

// ParseGeography derives a Geography from the free-text home address stored
// on geography-scoped accounts, split on commas into ordered parts
// [barangay, municipality, province, region?].
//
// This is fragile upstream data by nature, so it is validated here rather
// than trusted as array indices downstream.
//
// Errors: CodeIncompleteAddress when fewer than three parts are present; the
// operation that needed the geography fails rather than defaulting.
func ParseGeography(address string) (Geography, error) {
	parts := strings.Split(address, ",")
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) < 3 {
		return Geography{}, dErrors.New(dErrors.CodeIncompleteAddress, "address must contain barangay, municipality and province")
	}

	g := Geography{
		Barangay:     cleaned[0],
		Municipality: cleaned[1],
		Province:     cleaned[2],
	}
	if len(cleaned) > 3 {
		g.Region = cleaned[3]
	}
	return g, nil
}

// Matches reports whether the geography covers a center location: same
// province and same municipality.
func (g Geography) Matches(loc Location) bool {
	return strings.EqualFold(g.Province, loc.Province) &&
		strings.EqualFold(g.Municipality, loc.Municipality)
}
