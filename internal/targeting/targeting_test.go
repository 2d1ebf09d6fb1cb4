package targeting

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	centermodels "github.com/R3gret/TinyBackend-sub000/internal/center/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
)

var (
	lianCenter  = domain.CenterID(uuid.New())
	otherCenter = domain.CenterID(uuid.New())

	lianLocation = centermodels.Location{
		Region:       "IV-A",
		Province:     "Batangas",
		Municipality: "Lian",
		Barangay:     "Malaruhatan",
	}
	nasugbuLocation = centermodels.Location{
		Region:       "IV-A",
		Province:     "Batangas",
		Municipality: "Nasugbu",
		Barangay:     "Poblacion",
	}
)

func parentViewer(center domain.CenterID, bandID string) Viewer {
	return Viewer{
		Role:     domain.RoleParent,
		CenterID: &center,
		Child:    &ChildView{BandID: bandID},
	}
}

func TestVisible_ParentScenarios(t *testing.T) {
	item := Item{
		CenterID:   &lianCenter,
		Location:   &lianLocation,
		AgeFilter:  "4-5",
		RoleFilter: []domain.Role{domain.RoleParent},
	}

	t.Run("matching center and band is visible", func(t *testing.T) {
		assert.True(t, Visible(item, parentViewer(lianCenter, "4-5")))
	})

	t.Run("different center is invisible regardless of age match", func(t *testing.T) {
		assert.False(t, Visible(item, parentViewer(otherCenter, "4-5")))
	})

	t.Run("different band is invisible", func(t *testing.T) {
		assert.False(t, Visible(item, parentViewer(lianCenter, "3-4")))
	})

	t.Run("age filter all ignores the band", func(t *testing.T) {
		open := item
		open.AgeFilter = AgeFilterAll
		assert.True(t, Visible(open, parentViewer(lianCenter, "")))
	})

	t.Run("unclassified child fails a band-filtered item", func(t *testing.T) {
		assert.False(t, Visible(item, parentViewer(lianCenter, "")))
	})

	t.Run("role filter excludes other roles first", func(t *testing.T) {
		worker := Viewer{Role: domain.RoleWorker, CenterID: &lianCenter}
		assert.False(t, Visible(item, worker))
	})
}

func TestVisible_BroadcastItems(t *testing.T) {
	broadcast := Item{
		AgeFilter:  AgeFilterAll,
		RoleFilter: []domain.Role{domain.RoleParent, domain.RoleWorker, domain.RoleFocal},
	}

	t.Run("visible across centers for center-bound roles", func(t *testing.T) {
		assert.True(t, Visible(broadcast, parentViewer(lianCenter, "3-4")))
		assert.True(t, Visible(broadcast, parentViewer(otherCenter, "5-6")))
	})

	t.Run("visible to viewers with no center at all", func(t *testing.T) {
		assert.True(t, Visible(broadcast, Viewer{Role: domain.RoleWorker}))
	})
}

func TestVisible_FocalGeography(t *testing.T) {
	lianGeo := centermodels.Geography{
		Barangay:     "Malaruhatan",
		Municipality: "Lian",
		Province:     "Batangas",
	}
	focal := Viewer{Role: domain.RoleFocal, Geography: &lianGeo}

	t.Run("center in own municipality is visible", func(t *testing.T) {
		item := Item{
			CenterID:   &lianCenter,
			Location:   &lianLocation,
			AgeFilter:  AgeFilterAll,
			RoleFilter: []domain.Role{domain.RoleFocal},
		}
		assert.True(t, Visible(item, focal))
	})

	t.Run("center in another municipality is invisible", func(t *testing.T) {
		item := Item{
			CenterID:   &otherCenter,
			Location:   &nasugbuLocation,
			AgeFilter:  AgeFilterAll,
			RoleFilter: []domain.Role{domain.RoleFocal},
		}
		assert.False(t, Visible(item, focal))
	})

	t.Run("broadcast items are never geography-matched", func(t *testing.T) {
		item := Item{
			AgeFilter:  AgeFilterAll,
			RoleFilter: []domain.Role{domain.RoleFocal},
		}
		assert.False(t, Visible(item, focal))
	})

	t.Run("municipality match is case-insensitive", func(t *testing.T) {
		geo := centermodels.Geography{Barangay: "X", Municipality: "LIAN", Province: "batangas"}
		item := Item{
			CenterID:   &lianCenter,
			Location:   &lianLocation,
			AgeFilter:  AgeFilterAll,
			RoleFilter: []domain.Role{domain.RoleFocal},
		}
		assert.True(t, Visible(item, Viewer{Role: domain.RoleFocal, Geography: &geo}))
	})

	t.Run("unresolved geography means nothing is visible", func(t *testing.T) {
		item := Item{
			CenterID:   &lianCenter,
			Location:   &lianLocation,
			AgeFilter:  AgeFilterAll,
			RoleFilter: []domain.Role{domain.RoleFocal},
		}
		assert.False(t, Visible(item, Viewer{Role: domain.RoleFocal}))
	})

	t.Run("item with no resolvable location is invisible to focal", func(t *testing.T) {
		item := Item{
			CenterID:   &lianCenter,
			AgeFilter:  AgeFilterAll,
			RoleFilter: []domain.Role{domain.RoleFocal},
		}
		assert.False(t, Visible(item, focal))
	})
}

func TestVisible_EmptyRoleFilter(t *testing.T) {
	item := Item{CenterID: &lianCenter, AgeFilter: AgeFilterAll}
	assert.False(t, Visible(item, parentViewer(lianCenter, "3-4")))
}

func TestFilter(t *testing.T) {
	visible := Item{
		CenterID:   &lianCenter,
		AgeFilter:  AgeFilterAll,
		RoleFilter: []domain.Role{domain.RoleParent},
	}
	hidden := Item{
		CenterID:   &otherCenter,
		AgeFilter:  AgeFilterAll,
		RoleFilter: []domain.Role{domain.RoleParent},
	}

	got := Filter([]Item{hidden, visible, hidden}, parentViewer(lianCenter, ""))
	assert.Equal(t, []Item{visible}, got)
}
