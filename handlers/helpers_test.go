package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eerojala/My-video-game-collection/auth"
	"github.com/eerojala/My-video-game-collection/dbtest"
	"github.com/eerojala/My-video-game-collection/models"
	"github.com/eerojala/My-video-game-collection/store"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const testSecret = "handler-test-secret"

type testServer struct {
	t      *testing.T
	ctx    context.Context
	router *gin.Engine
	store  *store.Store
	auth   *auth.Service
	logs   *test.Hook

	admin       *models.User
	member      *models.User
	adminToken  string
	memberToken string
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := dbtest.Store(t)
	policy, err := auth.NewPolicy()
	require.NoError(t, err)
	svc := auth.NewService(s.Users, policy, auth.Options{Secret: testSecret})
	log, hook := test.NewNullLogger()

	ts := &testServer{
		t:      t,
		ctx:    context.Background(),
		router: NewRouter(New(Deps{Store: s, Auth: svc, Log: log}), RouterOptions{}),
		store:  s,
		auth:   svc,
		logs:   hook,
	}
	ts.admin, ts.adminToken = ts.createUser("root", "sekret", models.RoleAdmin)
	ts.member, ts.memberToken = ts.createUser("mario", "sekret", models.RoleMember)
	return ts
}

func (ts *testServer) createUser(username, password string, role models.Role) (*models.User, string) {
	ts.t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(ts.t, err)
	u := &models.User{Username: username, PasswordHash: hash, Role: role, OwnedGames: datatypes.JSONSlice[string]{}}
	require.NoError(ts.t, ts.store.Users.Create(ts.ctx, u))
	token, err := ts.auth.IssueToken(u)
	require.NoError(ts.t, err)
	return u, token
}

// do sends body as JSON; a string body is sent verbatim.
func (ts *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

func (ts *testServer) postPlatform(name string) models.PlatformView {
	ts.t.Helper()
	w := ts.do(http.MethodPost, "/api/platforms", gin.H{"name": name, "creator": "Sega", "year": 1998}, ts.adminToken)
	require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())
	return decode[models.PlatformView](ts.t, w)
}

func (ts *testServer) postGame(name, platformID string) models.GameView {
	ts.t.Helper()
	w := ts.do(http.MethodPost, "/api/games", gin.H{
		"name":       name,
		"platform":   platformID,
		"year":       1999,
		"developers": []string{"Sonic Team"},
		"publishers": []string{"Sega"},
	}, ts.adminToken)
	require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())
	return decode[models.GameView](ts.t, w)
}

func (ts *testServer) platform(id string) *models.Platform {
	ts.t.Helper()
	p, err := ts.store.Platforms.GetByID(ts.ctx, id)
	require.NoError(ts.t, err)
	return p
}

func (ts *testServer) user(id string) *models.User {
	ts.t.Helper()
	u, err := ts.store.Users.GetByID(ts.ctx, id)
	require.NoError(ts.t, err)
	return u
}

func (ts *testServer) count(repo interface {
	Count(context.Context, ...store.Scope) (int64, error)
}) int64 {
	ts.t.Helper()
	n, err := repo.Count(ts.ctx)
	require.NoError(ts.t, err)
	return n
}
