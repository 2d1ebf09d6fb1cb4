package handler

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/R3gret/TinyBackend-sub000/internal/access"
	centermodels "github.com/R3gret/TinyBackend-sub000/internal/center/models"
	centerservice "github.com/R3gret/TinyBackend-sub000/internal/center/service"
	centerstore "github.com/R3gret/TinyBackend-sub000/internal/center/store"
	jwttoken "github.com/R3gret/TinyBackend-sub000/internal/jwt_token"
	"github.com/R3gret/TinyBackend-sub000/internal/people/models"
	"github.com/R3gret/TinyBackend-sub000/internal/people/secrets"
	"github.com/R3gret/TinyBackend-sub000/internal/people/service"
	peoplestore "github.com/R3gret/TinyBackend-sub000/internal/people/store"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/testutil"
)

type fixture struct {
	router    *chi.Mux
	directory *centerservice.Directory
	registry  *service.Registry
	tokens    *jwttoken.JWTService
	lian      *centermodels.Center
	nasugbu   *centermodels.Center
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	directory := centerservice.New(centerstore.NewInMemory())
	registry := service.New(
		peoplestore.NewInMemoryUsers(),
		peoplestore.NewInMemoryChildren(),
		directory,
		secrets.NewBcryptHasher(4),
	)
	authorizer := access.New(directory, registry)
	tokens := jwttoken.NewJWTService("test-key", "test-issuer", "test-audience")

	h := New(registry, authorizer, tokens, slog.New(slog.DiscardHandler))
	router := chi.NewRouter()
	h.RegisterPublic(router)
	h.Register(router)

	lian, err := directory.CreateCenter(ctx, "Lian CDC", centermodels.Location{
		Region:       "IV-A",
		Province:     "Batangas",
		Municipality: "Lian",
		Barangay:     "Malaruhatan",
	})
	require.NoError(t, err)
	nasugbu, err := directory.CreateCenter(ctx, "Nasugbu CDC", centermodels.Location{
		Region:       "IV-A",
		Province:     "Batangas",
		Municipality: "Nasugbu",
		Barangay:     "Wawa",
	})
	require.NoError(t, err)

	return &fixture{
		router:    router,
		directory: directory,
		registry:  registry,
		tokens:    tokens,
		lian:      lian,
		nasugbu:   nasugbu,
	}
}

func (f *fixture) registerUser(t *testing.T, username string, role domain.Role, centerID *domain.CenterID) *models.User {
	t.Helper()
	user, err := f.registry.RegisterUser(context.Background(), service.RegisterUserRequest{
		Username: username,
		Password: "correct-horse",
		Role:     role,
		CenterID: centerID,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) enrollChild(t *testing.T, name string, centerID domain.CenterID) *models.Child {
	t.Helper()
	child, err := f.registry.EnrollChild(context.Background(), service.EnrollChildRequest{
		Name:      name,
		Birthdate: time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC),
		CenterID:  centerID,
	})
	require.NoError(t, err)
	return child
}

func ident(userID domain.UserID, role domain.Role, centerID *domain.CenterID) domain.Identity {
	return domain.Identity{UserID: userID, Role: role, CenterID: centerID}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.registerUser(t, "aling.rosa", domain.RoleWorker, &f.lian.ID)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"username": "aling.rosa",
		"password": "correct-horse",
	})
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	resp := testutil.UnmarshalResponse[struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}](t, rr)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, "Bearer", resp.TokenType)

	claims, err := f.tokens.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "worker", claims.Role)
	require.Equal(t, f.lian.ID.String(), claims.CenterID)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	f.registerUser(t, "aling.rosa", domain.RoleWorker, &f.lian.ID)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"username": "aling.rosa",
		"password": "wrong-password",
	})
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	testutil.AssertErrorCode(t, rr, "unauthorized")
}

func TestLogin_UnknownUserSameRefusal(t *testing.T) {
	f := newFixture(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"username": "nobody",
		"password": "correct-horse",
	})
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	testutil.AssertErrorCode(t, rr, "unauthorized")
}

func TestRegisterUser_PresidentCreatesWorker(t *testing.T) {
	f := newFixture(t)
	pres := f.registerUser(t, "pres.lian", domain.RolePresident, &f.lian.ID)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/users", map[string]string{
		"username":  "new.worker",
		"password":  "long-enough",
		"role":      "worker",
		"center_id": f.lian.ID.String(),
	})
	req = testutil.WithIdentity(req, ident(pres.ID, domain.RolePresident, &f.lian.ID))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)

	resp := testutil.UnmarshalResponse[models.User](t, rr)
	require.Equal(t, domain.RoleWorker, resp.Role)
}

func TestRegisterUser_CrossCenterDenied(t *testing.T) {
	f := newFixture(t)
	pres := f.registerUser(t, "pres.lian", domain.RolePresident, &f.lian.ID)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/users", map[string]string{
		"username":  "smuggled.worker",
		"password":  "long-enough",
		"role":      "worker",
		"center_id": f.nasugbu.ID.String(),
	})
	req = testutil.WithIdentity(req, ident(pres.ID, domain.RolePresident, &f.lian.ID))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusForbidden)
	testutil.AssertErrorCode(t, rr, "forbidden")
}

func TestRegisterUser_PresidentRoleNeedsAdminGrant(t *testing.T) {
	f := newFixture(t)
	pres := f.registerUser(t, "pres.lian", domain.RolePresident, &f.lian.ID)
	admin := f.registerUser(t, "admin.lian", domain.RoleAdmin, &f.lian.ID)

	body := map[string]string{
		"username":  "second.pres",
		"password":  "long-enough",
		"role":      "president",
		"center_id": f.lian.ID.String(),
	}

	req := testutil.NewJSONRequest(t, http.MethodPost, "/users", body)
	req = testutil.WithIdentity(req, ident(pres.ID, domain.RolePresident, &f.lian.ID))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusForbidden)

	req = testutil.NewJSONRequest(t, http.MethodPost, "/users", body)
	req = testutil.WithIdentity(req, ident(admin.ID, domain.RoleAdmin, &f.lian.ID))
	rr = testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
}

func TestEnrollChild(t *testing.T) {
	f := newFixture(t)
	worker := f.registerUser(t, "aling.rosa", domain.RoleWorker, &f.lian.ID)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/children", map[string]string{
		"name":      "Ana Santos",
		"birthdate": "2020-06-15",
		"center_id": f.lian.ID.String(),
	})
	req = testutil.WithIdentity(req, ident(worker.ID, domain.RoleWorker, &f.lian.ID))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)

	resp := testutil.UnmarshalResponse[models.Child](t, rr)
	require.Equal(t, f.lian.ID, resp.CenterID)
}

func TestEnrollChild_CrossCenterDenied(t *testing.T) {
	f := newFixture(t)
	worker := f.registerUser(t, "aling.rosa", domain.RoleWorker, &f.lian.ID)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/children", map[string]string{
		"name":      "Ana Santos",
		"birthdate": "2020-06-15",
		"center_id": f.nasugbu.ID.String(),
	})
	req = testutil.WithIdentity(req, ident(worker.ID, domain.RoleWorker, &f.lian.ID))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusForbidden)
}

func TestGetChild_UnknownChildSameRefusal(t *testing.T) {
	f := newFixture(t)
	worker := f.registerUser(t, "aling.rosa", domain.RoleWorker, &f.lian.ID)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/children/0c6e4c57-96c8-4df0-9f52-3b0e7e26a1d1", nil)
	req = testutil.WithIdentity(req, ident(worker.ID, domain.RoleWorker, &f.lian.ID))
	rr := testutil.DoRequest(f.router, req)

	// Unknown and denied look identical; existence is not revealed.
	testutil.AssertStatus(t, rr, http.StatusForbidden)
	testutil.AssertErrorCode(t, rr, "forbidden")
}

func TestGetChild_CrossCenterDenied(t *testing.T) {
	f := newFixture(t)
	worker := f.registerUser(t, "aling.rosa", domain.RoleWorker, &f.lian.ID)
	child := f.enrollChild(t, "Ana Santos", f.nasugbu.ID)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/children/"+child.ID.String(), nil)
	req = testutil.WithIdentity(req, ident(worker.ID, domain.RoleWorker, &f.lian.ID))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusForbidden)
}

func TestListChildren_ScopedByGrant(t *testing.T) {
	f := newFixture(t)
	worker := f.registerUser(t, "aling.rosa", domain.RoleWorker, &f.lian.ID)
	parent := f.registerUser(t, "nanay.fe", domain.RoleParent, nil)
	lianChild := f.enrollChild(t, "Ana Santos", f.lian.ID)
	f.enrollChild(t, "Ben Reyes", f.nasugbu.ID)
	require.NoError(t, f.registry.LinkGuardian(context.Background(), parent.ID, lianChild.ID))

	type listResponse struct {
		Children []models.Child `json:"children"`
	}

	req := testutil.NewJSONRequest(t, http.MethodGet, "/children", nil)
	req = testutil.WithIdentity(req, ident(worker.ID, domain.RoleWorker, &f.lian.ID))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[listResponse](t, rr)
	require.Len(t, resp.Children, 1)
	require.Equal(t, lianChild.ID, resp.Children[0].ID)

	req = testutil.NewJSONRequest(t, http.MethodGet, "/children", nil)
	req = testutil.WithIdentity(req, ident(parent.ID, domain.RoleParent, nil))
	rr = testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	resp = testutil.UnmarshalResponse[listResponse](t, rr)
	require.Len(t, resp.Children, 1)
	require.Equal(t, lianChild.ID, resp.Children[0].ID)
}

func TestListChildren_UnlinkedParentDenied(t *testing.T) {
	f := newFixture(t)
	parent := f.registerUser(t, "nanay.fe", domain.RoleParent, nil)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/children", nil)
	req = testutil.WithIdentity(req, ident(parent.ID, domain.RoleParent, nil))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusForbidden)
}

func TestLinkGuardian(t *testing.T) {
	f := newFixture(t)
	pres := f.registerUser(t, "pres.lian", domain.RolePresident, &f.lian.ID)
	parent := f.registerUser(t, "nanay.fe", domain.RoleParent, nil)
	child := f.enrollChild(t, "Ana Santos", f.lian.ID)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/guardian-links", map[string]string{
		"parent_id": parent.ID.String(),
		"child_id":  child.ID.String(),
	})
	req = testutil.WithIdentity(req, ident(pres.ID, domain.RolePresident, &f.lian.ID))
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	// A parent account links to exactly one child.
	second := f.enrollChild(t, "Liza Santos", f.lian.ID)
	req = testutil.NewJSONRequest(t, http.MethodPost, "/guardian-links", map[string]string{
		"parent_id": parent.ID.String(),
		"child_id":  second.ID.String(),
	})
	req = testutil.WithIdentity(req, ident(pres.ID, domain.RolePresident, &f.lian.ID))
	rr = testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusConflict)
}

func TestGuardianLinkScenario(t *testing.T) {
	f := newFixture(t)
	pres := f.registerUser(t, "pres.lian", domain.RolePresident, &f.lian.ID)
	parent := f.registerUser(t, "nanay.fe", domain.RoleParent, nil)

	var child *models.Child

	testutil.Given(t, "an enrolled child at the president's center", func(t *testing.T) {
		child = f.enrollChild(t, "Ana Santos", f.lian.ID)
	})

	testutil.When(t, "the president links the parent as guardian", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/guardian-links", map[string]string{
			"parent_id": parent.ID.String(),
			"child_id":  child.ID.String(),
		})
		req = testutil.WithIdentity(req, ident(pres.ID, domain.RolePresident, &f.lian.ID))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)
	})

	testutil.Then(t, "the parent sees exactly that child", func(t *testing.T) {
		type listResponse struct {
			Children []models.Child `json:"children"`
		}
		req := testutil.NewJSONRequest(t, http.MethodGet, "/children", nil)
		req = testutil.WithIdentity(req, ident(parent.ID, domain.RoleParent, nil))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[listResponse](t, rr)
		require.Len(t, resp.Children, 1)
		require.Equal(t, child.ID, resp.Children[0].ID)
	})
}

func TestUnauthenticatedDenied(t *testing.T) {
	f := newFixture(t)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/children", nil)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusForbidden)
}
