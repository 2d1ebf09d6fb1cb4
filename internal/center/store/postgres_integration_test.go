//go:build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/R3gret/TinyBackend-sub000/internal/center/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/sentinel"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/tx"
	"github.com/R3gret/TinyBackend-sub000/pkg/testutil/containers"
)

type PostgresCenterSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Postgres
	ctx   context.Context
}

func (s *PostgresCenterSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.StartPostgres(s.T())
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresCenterSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "center_locations", "centers"))
}

func TestPostgresCenterSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresCenterSuite))
}

func (s *PostgresCenterSuite) newCenter(name string) *models.Center {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Center{
		ID:     domain.CenterID(uuid.New()),
		Name:   name,
		Status: models.StatusActive,
		Location: models.Location{
			Region:       "IV-A",
			Province:     "Batangas",
			Municipality: "Lian",
			Barangay:     "Malaruhatan",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresCenterSuite) TestCreateAndFind() {
	c := s.newCenter("Lian Day Care 1")
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, c))

	found, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.Name, found.Name)
	s.Equal(models.StatusActive, found.Status)
	s.Equal("Lian", found.Location.Municipality)
	s.Equal("Batangas", found.Location.Province)
}

func (s *PostgresCenterSuite) TestFindByIDNotFound() {
	_, err := s.store.FindByID(s.ctx, domain.CenterID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresCenterSuite) TestNameUniquenessIsCaseInsensitive() {
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, s.newCenter("Duplicate DCC")))

	err := s.store.CreateIfNameAvailable(s.ctx, s.newCenter("duplicate dcc"))
	s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *PostgresCenterSuite) TestConcurrentCreateSameName() {
	const workers = 8

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.CreateIfNameAvailable(s.ctx, s.newCenter("Contended DCC"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case s.ErrorIs(err, sentinel.ErrAlreadyUsed):
				rejected++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, created)
	s.Equal(workers-1, rejected)
}

func (s *PostgresCenterSuite) TestCreateIsAtomicWithLocationRow() {
	c := s.newCenter("Atomic DCC")
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, c))

	loc, err := s.store.FindLocation(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Require().NotNil(loc)
	s.Equal("Lian", loc.Municipality)
}

func (s *PostgresCenterSuite) TestFindLocationOrphan() {
	c := s.newCenter("Orphan DCC")
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, c))

	_, err := s.pg.DB.ExecContext(s.ctx,
		"DELETE FROM center_locations WHERE center_id = $1", uuid.UUID(c.ID))
	s.Require().NoError(err)

	loc, err := s.store.FindLocation(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Nil(loc)
}

func (s *PostgresCenterSuite) TestFindLocationUnknownCenter() {
	_, err := s.store.FindLocation(s.ctx, domain.CenterID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresCenterSuite) TestListActiveExcludesDeactivated() {
	active := s.newCenter("Active DCC")
	inactive := s.newCenter("Closed DCC")
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, active))
	s.Require().NoError(s.store.CreateIfNameAvailable(s.ctx, inactive))

	s.Require().NoError(inactive.Deactivate(time.Now().UTC()))
	s.Require().NoError(s.store.UpdateStatus(s.ctx, inactive))

	centers, err := s.store.ListActive(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(centers, 1)
	s.Equal(active.ID, centers[0].ID)
}

func (s *PostgresCenterSuite) TestUpdateStatusUnknownCenter() {
	ghost := s.newCenter("Ghost DCC")
	s.Require().ErrorIs(s.store.UpdateStatus(s.ctx, ghost), sentinel.ErrNotFound)
}

func (s *PostgresCenterSuite) TestCreateJoinsAmbientTransaction() {
	c := s.newCenter("Rolled Back DCC")

	err := tx.RunInTx(s.ctx, s.pg.DB, func(ctx context.Context) error {
		if err := s.store.CreateIfNameAvailable(ctx, c); err != nil {
			return err
		}
		return sentinel.ErrInvalidState
	})
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)

	_, err = s.store.FindByID(s.ctx, c.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
