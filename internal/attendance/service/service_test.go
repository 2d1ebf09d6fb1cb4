package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3gret/TinyBackend-sub000/internal/access"
	"github.com/R3gret/TinyBackend-sub000/internal/attendance/models"
	"github.com/R3gret/TinyBackend-sub000/internal/attendance/store"
	"github.com/R3gret/TinyBackend-sub000/internal/audit"
	centermodels "github.com/R3gret/TinyBackend-sub000/internal/center/models"
	centerservice "github.com/R3gret/TinyBackend-sub000/internal/center/service"
	centerstore "github.com/R3gret/TinyBackend-sub000/internal/center/store"
	peoplemodels "github.com/R3gret/TinyBackend-sub000/internal/people/models"
	peopleservice "github.com/R3gret/TinyBackend-sub000/internal/people/service"
	"github.com/R3gret/TinyBackend-sub000/internal/people/secrets"
	peoplestore "github.com/R3gret/TinyBackend-sub000/internal/people/store"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

var (
	schoolDay = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	birthdate = time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc       *Service
	directory *centerservice.Directory
	registry  *peopleservice.Registry
	sink      *audit.InMemoryStore

	lian    *centermodels.Center
	nasugbu *centermodels.Center
	worker  *peoplemodels.User
	child   *peoplemodels.Child
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	directory := centerservice.New(centerstore.NewInMemory())
	registry := peopleservice.New(
		peoplestore.NewInMemoryUsers(),
		peoplestore.NewInMemoryChildren(),
		directory,
		secrets.NewBcryptHasher(4),
	)
	sink := audit.NewInMemoryStore()
	svc := New(
		store.NewInMemory(),
		access.New(directory, registry),
		registry,
		directory,
		WithAuditPublisher(audit.NewPublisher(sink)),
	)

	ctx := context.Background()
	lian, err := directory.CreateCenter(ctx, "Lian Day Care 1", centermodels.Location{
		Province: "Batangas", Municipality: "Lian", Barangay: "Malaruhatan",
	})
	require.NoError(t, err)
	nasugbu, err := directory.CreateCenter(ctx, "Nasugbu Day Care 1", centermodels.Location{
		Province: "Batangas", Municipality: "Nasugbu", Barangay: "Poblacion",
	})
	require.NoError(t, err)

	worker, err := registry.RegisterUser(ctx, peopleservice.RegisterUserRequest{
		Username: "worker1", Password: "correct horse",
		Role: domain.RoleWorker, CenterID: &lian.ID,
	})
	require.NoError(t, err)

	child, err := registry.EnrollChild(ctx, peopleservice.EnrollChildRequest{
		Name: "Ana Cruz", Birthdate: birthdate, CenterID: lian.ID,
	})
	require.NoError(t, err)

	return &fixture{
		svc: svc, directory: directory, registry: registry, sink: sink,
		lian: lian, nasugbu: nasugbu, worker: worker, child: child,
	}
}

func (f *fixture) ctxFor(role domain.Role, userID domain.UserID, center *domain.CenterID) context.Context {
	return requestcontext.WithIdentity(context.Background(), domain.Identity{
		UserID: userID, Role: role, CenterID: center,
	})
}

func TestMark(t *testing.T) {
	t.Run("worker marks a child in their own center", func(t *testing.T) {
		f := newFixture(t)
		ctx := f.ctxFor(domain.RoleWorker, f.worker.ID, &f.lian.ID)

		rec, err := f.svc.Mark(ctx, f.child.ID, schoolDay, models.StatusPresent)
		require.NoError(t, err)
		assert.Equal(t, f.lian.ID, rec.CenterID)
		assert.Equal(t, schoolDay, rec.Date)
		assert.Equal(t, f.worker.ID, rec.MarkedBy)

		events := f.sink.Events()
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionAttendanceMarked, events[0].Action)
	})

	t.Run("second mark for the same day is a conflict", func(t *testing.T) {
		f := newFixture(t)
		ctx := f.ctxFor(domain.RoleWorker, f.worker.ID, &f.lian.ID)

		_, err := f.svc.Mark(ctx, f.child.ID, schoolDay, models.StatusPresent)
		require.NoError(t, err)

		// Different wall-clock time, same calendar day.
		_, err = f.svc.Mark(ctx, f.child.ID, schoolDay.Add(3*time.Hour), models.StatusLate)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("a worker from another center is refused", func(t *testing.T) {
		f := newFixture(t)
		outsider, err := f.registry.RegisterUser(context.Background(), peopleservice.RegisterUserRequest{
			Username: "worker2", Password: "correct horse",
			Role: domain.RoleWorker, CenterID: &f.nasugbu.ID,
		})
		require.NoError(t, err)

		_, err = f.svc.Mark(f.ctxFor(domain.RoleWorker, outsider.ID, &f.nasugbu.ID),
			f.child.ID, schoolDay, models.StatusPresent)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("unknown child gets the same refusal as a denied mark", func(t *testing.T) {
		f := newFixture(t)
		ctx := f.ctxFor(domain.RoleWorker, f.worker.ID, &f.lian.ID)

		_, err := f.svc.Mark(ctx, domain.ChildID{}, schoolDay, models.StatusPresent)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		f := newFixture(t)
		ctx := f.ctxFor(domain.RoleWorker, f.worker.ID, &f.lian.ID)

		_, err := f.svc.Mark(ctx, f.child.ID, schoolDay, models.Status("vacationing"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestListForDay(t *testing.T) {
	f := newFixture(t)
	ctx := f.ctxFor(domain.RoleWorker, f.worker.ID, &f.lian.ID)

	_, err := f.svc.Mark(ctx, f.child.ID, schoolDay, models.StatusPresent)
	require.NoError(t, err)

	t.Run("worker sees their center's day", func(t *testing.T) {
		records, err := f.svc.ListForDay(ctx, schoolDay.Add(9*time.Hour))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, f.child.ID, records[0].ChildID)
	})

	t.Run("parents cannot list attendance", func(t *testing.T) {
		parent, err := f.registry.RegisterUser(context.Background(), peopleservice.RegisterUserRequest{
			Username: "parent1", Password: "correct horse", Role: domain.RoleParent,
		})
		require.NoError(t, err)

		_, err = f.svc.ListForDay(f.ctxFor(domain.RoleParent, parent.ID, nil), schoolDay)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func TestSummarize(t *testing.T) {
	f := newFixture(t)
	workerCtx := f.ctxFor(domain.RoleWorker, f.worker.ID, &f.lian.ID)

	second, err := f.registry.EnrollChild(context.Background(), peopleservice.EnrollChildRequest{
		Name: "Ben Cruz", Birthdate: birthdate, CenterID: f.lian.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.Mark(workerCtx, f.child.ID, schoolDay, models.StatusPresent)
	require.NoError(t, err)
	_, err = f.svc.Mark(workerCtx, second.ID, schoolDay, models.StatusAbsent)
	require.NoError(t, err)

	msw, err := f.registry.RegisterUser(context.Background(), peopleservice.RegisterUserRequest{
		Username: "msw1", Password: "correct horse", Role: domain.RoleMSW,
	})
	require.NoError(t, err)
	mswCtx := f.ctxFor(domain.RoleMSW, msw.ID, nil)

	t.Run("msw sees per-center counts", func(t *testing.T) {
		sums, err := f.svc.Summarize(mswCtx, schoolDay, schoolDay)
		require.NoError(t, err)
		require.Len(t, sums, 1)
		assert.Equal(t, f.lian.ID, sums[0].CenterID)
		assert.Equal(t, 1, sums[0].Present)
		assert.Equal(t, 1, sums[0].Absent)
	})

	t.Run("deactivated centers drop out of the aggregate", func(t *testing.T) {
		_, err := f.directory.DeactivateCenter(context.Background(), f.lian.ID)
		require.NoError(t, err)
		defer func() {
			_, err := f.directory.ReactivateCenter(context.Background(), f.lian.ID)
			require.NoError(t, err)
		}()

		sums, err := f.svc.Summarize(mswCtx, schoolDay, schoolDay)
		require.NoError(t, err)
		assert.Empty(t, sums)
	})

	t.Run("workers cannot read the aggregate view", func(t *testing.T) {
		_, err := f.svc.Summarize(workerCtx, schoolDay, schoolDay)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
