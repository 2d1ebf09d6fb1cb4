// Package targeting decides content visibility for one viewer. The decision
// is a pure function over already-fetched facts; listing services resolve
// the viewer's center, child classification and geography first, then filter
// the candidate set through Visible.
package targeting

import (
	centermodels "github.com/R3gret/TinyBackend-sub000/internal/center/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
)

// AgeFilterAll is the sentinel age filter matching every child.
const AgeFilterAll = "all"

// ChildView carries the resolved facts about the child a viewer acts for.
// BandID is empty when no catalog band matched the child's age.
type ChildView struct {
	BandID string
}

// Viewer is one caller's resolved targeting identity.
type Viewer struct {
	Role     domain.Role
	CenterID *domain.CenterID
	// Child is set when the viewer resolves to an enrolled child, e.g. a
	// parent browsing on behalf of their linked child.
	Child *ChildView
	// Geography is set for municipality-scoped roles.
	Geography *centermodels.Geography
}

// Item is the audience declaration of one content item. Location is the
// item's center location, resolved by the caller; nil for broadcast items.
type Item struct {
	CenterID   *domain.CenterID
	Location   *centermodels.Location
	AgeFilter  string
	RoleFilter []domain.Role
}

// Broadcast reports whether the item is bound to no center.
func (i Item) Broadcast() bool {
	return i.CenterID == nil
}

// Visible evaluates the targeting rules in order, short-circuiting on the
// first failure: role filter, center, age band, geography.
//
// Municipality-scoped viewers are the asymmetric case: they never see
// broadcast items, and for center-bound items the center rule is replaced
// by the geography rule (their municipality and province must match the
// item's center location).
//
// A missing prerequisite (no resolvable center, no classified band, no
// geography) makes the item not visible. It is never an error.
func Visible(item Item, viewer Viewer) bool {
	if !roleMatch(item.RoleFilter, viewer.Role) {
		return false
	}

	if viewer.Role.GeographyScoped() {
		if item.Broadcast() {
			return false
		}
	} else if !item.Broadcast() {
		if viewer.CenterID == nil || *viewer.CenterID != *item.CenterID {
			return false
		}
	}

	if viewer.Child != nil && item.AgeFilter != AgeFilterAll {
		if viewer.Child.BandID == "" || viewer.Child.BandID != item.AgeFilter {
			return false
		}
	}

	if viewer.Role.GeographyScoped() {
		if viewer.Geography == nil || item.Location == nil {
			return false
		}
		if !viewer.Geography.Matches(*item.Location) {
			return false
		}
	}

	return true
}

// Filter returns the items visible to the viewer, preserving order.
func Filter(items []Item, viewer Viewer) []Item {
	var out []Item
	for _, item := range items {
		if Visible(item, viewer) {
			out = append(out, item)
		}
	}
	return out
}

func roleMatch(filter []domain.Role, role domain.Role) bool {
	for _, r := range filter {
		if r == role {
			return true
		}
	}
	return false
}
