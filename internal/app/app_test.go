package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/taskdesk/internal/api"
	"github.com/sadopc/taskdesk/internal/config"
	"github.com/sadopc/taskdesk/internal/model"
	"github.com/sadopc/taskdesk/internal/session"
	"github.com/sadopc/taskdesk/internal/store"
	"github.com/sadopc/taskdesk/internal/tasks"
)

type server struct {
	*httptest.Server
	listStatus atomic.Int32
}

func newServer(t *testing.T) *server {
	t.Helper()
	s := &server{}
	s.listStatus.Store(http.StatusOK)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login/":
			json.NewEncoder(w).Encode(map[string]any{
				"access": "tok", "refresh": "ref",
				"user": map[string]any{"id": 7, "name": "Ann", "email": "ann@example.com"},
			})
		case "/api/tasks/":
			if status := int(s.listStatus.Load()); status != http.StatusOK {
				w.WriteHeader(status)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Given token not valid for any token type"})
				return
			}
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": 1, "title": "a", "description": "a", "status": "To Do", "category": "Work", "createdAt": "2024-01-01T00:00:00Z"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func testConfig(t *testing.T, baseURL, dir string) config.Config {
	t.Helper()
	cfg := config.Default(dir)
	cfg.APIBaseURL = baseURL
	return cfg
}

func newApp(t *testing.T, cfg config.Config, path string) *App {
	t.Helper()
	a, err := New(cfg, Options{
		Path:      path,
		Logger:    zerolog.Nop(),
		LookupEnv: func(string) (string, bool) { return "", false },
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func signIn(t *testing.T, a *App) {
	t.Helper()
	res, err := a.API.Login(context.Background(), "ann", "pw")
	require.NoError(t, err)
	require.NoError(t, a.Machine.Login(res))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.APIBaseURL = "nope"
	_, err := New(cfg, Options{Logger: zerolog.Nop()})
	assert.Error(t, err)
}

func TestNew_StartsSignedOut(t *testing.T) {
	srv := newServer(t)
	a := newApp(t, testConfig(t, srv.URL, t.TempDir()), "/settings")

	assert.Equal(t, session.PageLogin, a.Machine.Page())
	assert.Equal(t, "/login", a.History.Path())
}

func TestSessionAndLocationSurviveRestart(t *testing.T) {
	srv := newServer(t)
	dir := t.TempDir()
	cfg := testConfig(t, srv.URL, dir)

	a := newApp(t, cfg, "")
	signIn(t, a)
	a.Machine.Navigate(session.PageSettings)
	require.NoError(t, a.Close())

	b := newApp(t, cfg, "")
	assert.True(t, b.Machine.IsAuthenticated())
	assert.Equal(t, session.PageSettings, b.Machine.Page())
	u, ok := b.Machine.User()
	require.True(t, ok)
	assert.Equal(t, "Ann", u.Name)
}

func TestStorageIsPerOrigin(t *testing.T) {
	srv := newServer(t)
	dir := t.TempDir()

	a := newApp(t, testConfig(t, srv.URL, dir), "")
	signIn(t, a)
	require.NoError(t, a.Close())

	other := newServer(t)
	b := newApp(t, testConfig(t, other.URL, dir), "")
	assert.False(t, b.Machine.IsAuthenticated())
}

func TestLogoutClearsEverything(t *testing.T) {
	srv := newServer(t)
	a := newApp(t, testConfig(t, srv.URL, t.TempDir()), "")
	signIn(t, a)
	require.NoError(t, a.Tasks.Refresh(context.Background()))
	require.NoError(t, a.Prefs.SetDarkMode(true))
	require.Equal(t, 1, a.Tasks.Len())

	require.NoError(t, a.Machine.Logout())

	assert.Zero(t, a.Tasks.Len())
	assert.False(t, a.Machine.IsAuthenticated())
	assert.Equal(t, session.PageLogin, a.Machine.Page())
	st := a.Store.Storage(a.API.BaseURL())
	for _, key := range []string{store.KeyAuthToken, store.KeyRefreshToken, store.KeyUser} {
		_, ok, err := st.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
	dark, ok, _ := a.Prefs.DarkMode()
	assert.True(t, ok && dark)
}

func TestUnauthorizedListSignsOutWithOneNotification(t *testing.T) {
	srv := newServer(t)
	a := newApp(t, testConfig(t, srv.URL, t.TempDir()), "")
	signIn(t, a)
	require.NoError(t, a.Tasks.Refresh(context.Background()))
	l, err := a.Localizer()
	require.NoError(t, err)

	srv.listStatus.Store(http.StatusUnauthorized)
	err = a.Tasks.Refresh(context.Background())
	require.ErrorIs(t, err, api.ErrUnauthorized)

	n := a.Fail(err, l, "errorFetchingTasks")

	require.NotNil(t, n)
	assert.Equal(t, model.SeverityError, n.Severity)
	assert.Equal(t, "Error fetching tasks.", n.Message)
	assert.Zero(t, a.Tasks.Len())
	assert.False(t, a.Machine.IsAuthenticated())
	assert.Equal(t, session.PageLogin, a.Machine.Page())
	_, stored, _ := a.Prefs.Load()
	assert.False(t, stored)
}

func TestGuestSession(t *testing.T) {
	srv := newServer(t)
	a := newApp(t, testConfig(t, srv.URL, t.TempDir()), "")
	l, err := a.Localizer()
	require.NoError(t, err)

	require.NoError(t, a.Machine.GuestLogin(a.API.GuestLogin(l.T("guestUser"))))
	err = a.Tasks.Refresh(context.Background())
	n := Describe(err, l, "errorFetchingTasks")
	require.NotNil(t, n)
	assert.Equal(t, model.SeverityInfo, n.Severity)

	_, err = a.Tasks.Add(context.Background(), model.Draft{Title: "x", Description: "y"})
	n = a.Fail(err, l, "errorCreatingTask")
	require.NotNil(t, n)
	assert.Equal(t, model.SeverityInfo, n.Severity)
	assert.Equal(t, "Creating tasks is not available for guest users. Please log in.", n.Message)
	assert.True(t, a.Machine.IsAuthenticated())
	assert.Zero(t, a.Tasks.Len())
}

func TestDescribe(t *testing.T) {
	srv := newServer(t)
	a := newApp(t, testConfig(t, srv.URL, t.TempDir()), "")
	l, err := a.Localizer()
	require.NoError(t, err)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"network", errors.Join(api.ErrNetwork, errors.New("refused")), "Network error, please try again."},
		{"detail", &api.RejectedError{Status: 400, Detail: "Title too long."}, "Title too long."},
		{"no detail", &api.RejectedError{Status: 500}, "Error updating task."},
		{"validation", api.ErrValidation, "Title and Description are required."},
		{"other", errors.New("boom"), "Error updating task."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Describe(tt.err, l, "errorUpdatingTask")
			require.NotNil(t, n)
			assert.Equal(t, tt.want, n.Message)
		})
	}

	assert.Nil(t, Describe(nil, l, "x"))
	assert.Nil(t, Describe(tasks.ErrStale, l, "x"))
	assert.Nil(t, Describe(session.ErrStale, l, "x"))
	assert.Nil(t, a.Fail(fmt.Errorf("%w: %w", session.ErrStale, session.ErrSignedOut), l, "errorUpdatingProfilePic"))
}

func TestLanguagePreference(t *testing.T) {
	srv := newServer(t)
	dir := t.TempDir()
	cfg := testConfig(t, srv.URL, dir)
	a := newApp(t, cfg, "")

	assert.Equal(t, []string{"en", "fa"}, a.Languages())
	l, err := a.SetLanguage("fa")
	require.NoError(t, err)
	assert.Equal(t, "fa", l.Tag().String())
	require.NoError(t, a.Close())

	b := newApp(t, cfg, "")
	l, err = b.Localizer()
	require.NoError(t, err)
	assert.Equal(t, "fa", l.Tag().String())
}

func TestStoragePathFromConfig(t *testing.T) {
	srv := newServer(t)
	cfg := testConfig(t, srv.URL, t.TempDir())
	cfg.StoragePath = filepath.Join(t.TempDir(), "nested", "db.sqlite")
	a := newApp(t, cfg, "")
	assert.NotNil(t, a.Store)
}
