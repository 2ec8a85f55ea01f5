package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sadopc/taskdesk/internal/config"
)

// fakeServer is an in-memory task API.
type fakeServer struct {
	*httptest.Server

	mu      sync.Mutex
	tasks   []map[string]any
	nextID  int
	expired bool
	uploads int
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{nextID: 1}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeServer) reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (f *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/api/auth/login/" {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			f.reply(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		f.reply(w, http.StatusOK, map[string]any{
			"access":  "tok",
			"refresh": "ref",
			"user":    map[string]any{"id": 7, "name": "Ann", "email": "ann@example.com"},
		})
		return
	}

	if f.expired || r.Header.Get("Authorization") != "Bearer tok" {
		f.reply(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
		return
	}

	switch {
	case r.URL.Path == "/api/auth/user/":
		f.reply(w, http.StatusOK, map[string]any{
			"id": 7, "name": "Ann", "email": "ann@example.com",
			"profile_picture_url": "http://cdn.example/ann.png",
		})
	case r.URL.Path == "/api/profile/picture/":
		if _, _, err := r.FormFile("profile_picture"); err != nil {
			f.reply(w, http.StatusBadRequest, map[string]string{"detail": "missing file"})
			return
		}
		f.uploads++
		f.reply(w, http.StatusOK, map[string]string{"status": "ok"})
	case r.URL.Path == "/api/tasks/" && r.Method == http.MethodGet:
		f.reply(w, http.StatusOK, f.tasks)
	case r.URL.Path == "/api/tasks/" && r.Method == http.MethodPost:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["id"] = f.nextID
		body["created_at"] = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
		f.nextID++
		f.tasks = append([]map[string]any{body}, f.tasks...)
		f.reply(w, http.StatusCreated, body)
	case strings.HasPrefix(r.URL.Path, "/api/tasks/"):
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tasks/"), "/")
		i := f.index(id)
		if i < 0 {
			f.reply(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		switch r.Method {
		case http.MethodPut:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			body["id"] = f.tasks[i]["id"]
			body["created_at"] = f.tasks[i]["created_at"]
			f.tasks[i] = body
			f.reply(w, http.StatusOK, body)
		case http.MethodDelete:
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeServer) index(id string) int {
	for i, t := range f.tasks {
		if n, ok := t["id"].(int); ok && strconv.Itoa(n) == id {
			return i
		}
		if n, ok := t["id"].(float64); ok && strconv.Itoa(int(n)) == id {
			return i
		}
	}
	return -1
}

func (f *fakeServer) expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = true
}

func (f *fakeServer) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads
}

func (f *fakeServer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

func (f *fakeServer) task(i int) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks[i]
}

func testLookup(key string) (string, bool) {
	if key == config.EnvPrefix+"UI_LANGUAGE" {
		return "en", true
	}
	return "", false
}

// cliEnv runs commands the way separate processes would: a fresh runtime
// per call, sharing one config directory.
type cliEnv struct {
	t   *testing.T
	dir string
	srv *fakeServer
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	return &cliEnv{t: t, dir: t.TempDir(), srv: newFakeServer(t)}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	rt := NewRuntime("test", config.NewLoaderWithDir(e.dir, "", testLookup))
	defer rt.Close()

	root := NewRootCommand(rt)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--api-url", e.srv.URL}, args...))
	err := root.Execute()
	return buf.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, out)
	return out
}

func (e *cliEnv) login() {
	e.t.Helper()
	e.mustRun("login", "--user", "ann", "--password", "secret")
}
