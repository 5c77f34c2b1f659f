package stickyapi_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stickylist/internal/backend/stickyapi"
	"stickylist/internal/config"
	"stickylist/internal/mirror"
	"stickylist/internal/service"
	"stickylist/internal/session"
	"stickylist/internal/testutil"
)

type fixture struct {
	api    *testutil.FakeAPI
	store  *mirror.MemoryStore
	client *stickyapi.Client
	token  string
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	api := testutil.NewFakeAPI()
	t.Cleanup(api.Close)

	cfg := config.Default(t.TempDir())
	cfg.BaseURL = api.URL()
	if mutate != nil {
		mutate(cfg)
	}

	ctx := context.Background()
	store := mirror.NewMemoryStore()
	token := api.AddUser("ada@example.com", "hunter2")
	require.NoError(t, store.Set(ctx, mirror.KeyToken, token))

	return &fixture{
		api:    api,
		store:  store,
		client: stickyapi.New(cfg, session.TokenSource(ctx, store), nil),
		token:  token,
	}
}

func lastRequest(t *testing.T, api *testutil.FakeAPI) testutil.Request {
	t.Helper()
	reqs := api.Requests()
	require.NotEmpty(t, reqs)
	return reqs[len(reqs)-1]
}

func TestLogin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	token, err := f.client.Login(ctx, "ada@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	req := lastRequest(t, f.api)
	assert.Equal(t, "/api/auth/login", req.Path)
	assert.Empty(t, req.Auth, "login is sent without a session")
	assert.Equal(t, "ada@example.com", req.Body["email"])

	_, err = f.client.Login(ctx, "ada@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", service.UserMessage(err, ""))
}

func TestRegister(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.client.Register(ctx, "bob@example.com", "pw"))
	err := f.client.Register(ctx, "bob@example.com", "pw")
	require.Error(t, err)

	var remote *service.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusBadRequest, remote.StatusCode)
	assert.Equal(t, "User already exists", remote.Message)
}

func TestAuthenticatedCallsSendBearerToken(t *testing.T) {
	f := newFixture(t, nil)
	f.api.AddChecklist("Groceries")

	lists, err := f.client.ListChecklists(context.Background())
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "Groceries", lists[0].Title)

	assert.Equal(t, "Bearer "+f.token, lastRequest(t, f.api).Auth)
}

func TestAuthHeaderDisabled(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) { cfg.SendAuthHeader = false })

	_, err := f.client.ListChecklists(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrNotLoggedIn)
	assert.Empty(t, lastRequest(t, f.api).Auth)

	// A server that does not check tokens still answers.
	f.api.RequireAuth = false
	lists, err := f.client.ListChecklists(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestNoStoredToken(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.store.Delete(context.Background(), mirror.KeyToken))

	_, err := f.client.ListChecklists(context.Background())
	assert.ErrorIs(t, err, service.ErrNotLoggedIn)
	assert.Empty(t, f.api.Requests())
}

func TestChecklistLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.api.AddChecklist("Work")

	created, err := f.client.CreateChecklist(ctx, "Groceries")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", created.Title)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	lists, err := f.client.ListChecklists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, created.ID, lists[0].ID, "new checklists come first")

	require.NoError(t, f.client.DeleteChecklist(ctx, created.ID))
	assert.Equal(t, "/api/checklists/"+created.ID, lastRequest(t, f.api).Path)

	err = f.client.DeleteChecklist(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestTaskLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	list := f.api.AddChecklist("Groceries")

	task, err := f.client.CreateTask(ctx, list.ID, "Milk", service.Red)
	require.NoError(t, err)
	assert.Equal(t, "Milk", task.Text)
	assert.Equal(t, service.Red, task.Color)
	assert.Equal(t, list.ID, task.Checklist)

	req := lastRequest(t, f.api)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/tasks", req.Path)
	assert.Equal(t, "Milk", req.Body["title"])
	assert.Equal(t, list.ID, req.Body["checklist"])
	assert.Equal(t, string(service.Red), req.Body["color"])

	tasks, err := f.client.ListTasks(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)

	require.NoError(t, f.client.DeleteTask(ctx, list.ID, task.ID))
	assert.Equal(t, "/api/tasks/"+task.ID, lastRequest(t, f.api).Path)

	tasks, err = f.client.ListTasks(ctx, list.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestServerError(t *testing.T) {
	f := newFixture(t, nil)
	f.api.FailPaths["GET /api/checklists"] = http.StatusInternalServerError

	_, err := f.client.ListChecklists(context.Background())
	var remote *service.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusInternalServerError, remote.StatusCode)
	assert.Equal(t, "Internal Server Error", remote.Message)
}

func TestTimeout(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) { cfg.Timeout = 50 * time.Millisecond })
	f.api.Delay = time.Second

	_, err := f.client.ListChecklists(context.Background())
	assert.ErrorIs(t, err, service.ErrTimeout)
}

func TestNewWithHTTPClient(t *testing.T) {
	api := testutil.NewFakeAPI()
	defer api.Close()
	api.RequireAuth = false
	list := api.AddChecklist("Inbox")
	api.AddTask(list.ID, "Call mom", service.Green)

	client := stickyapi.NewWithHTTPClient(api.URL()+"/", api.Server.Client())
	tasks, err := client.ListTasks(context.Background(), list.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Call mom", tasks[0].Text)
	assert.Equal(t, service.Green, tasks[0].Color)
}
