package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/taskdesk/internal/model"
)

type fakeAPI struct {
	*httptest.Server
	hits atomic.Int32
}

func newFakeAPI(t *testing.T, h http.HandlerFunc) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(f.Close)

	c, err := New(f.URL)
	require.NoError(t, err)
	return f, c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var userAuth = Auth{Token: "tok", UserID: "7"}
var guestAuth = Auth{UserID: model.GuestID}

func validDraft() model.Draft {
	d := model.NewDraft()
	d.Title = "Write report"
	d.Description = "Quarterly numbers"
	return d
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:8000")
	require.Error(t, err)

	_, err = New("/api")
	require.Error(t, err)

	c, err := New("http://127.0.0.1:8000/")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", c.BaseURL())
}

func TestLogin_Success(t *testing.T) {
	var got loginRequest
	_, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]any{
			"access":  "a-token",
			"refresh": "r-token",
			"user": map[string]any{
				"id":                  12,
				"username":            "ann",
				"name":                "",
				"email":               "ann@example.com",
				"is_staff":            true,
				"profile_picture_url": nil,
			},
		})
	})

	res, err := c.Login(context.Background(), "ann", "secret")
	require.NoError(t, err)
	assert.Equal(t, loginRequest{Username: "ann", Password: "secret"}, got)
	assert.Equal(t, "a-token", res.Access)
	assert.Equal(t, "r-token", res.Refresh)
	assert.Equal(t, model.User{ID: "12", Name: "ann", Email: "ann@example.com", IsAdmin: true}, res.User)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	_, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
	})

	_, err := c.Login(context.Background(), "ann", "wrong")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)

	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusUnauthorized, rej.Status)
	assert.Equal(t, "No active account found with the given credentials", Detail(err))
}

func TestLogin_UnparseableRejection(t *testing.T) {
	_, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "<html>oops</html>")
	})

	_, err := c.Login(context.Background(), "ann", "pw")
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "", rej.Detail)
}

func TestNetworkError(t *testing.T) {
	f, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {})
	f.Close()

	_, err := c.Login(context.Background(), "ann", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.True(t, IsNetwork(err))
}

func TestGuestLogin(t *testing.T) {
	f, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {})

	u := c.GuestLogin("Guest User")
	assert.True(t, u.IsGuest())
	assert.Equal(t, "Guest User", u.Name)
	assert.Zero(t, f.hits.Load())
}

func TestRejectionDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"Not found."}`, "Not found."},
		{`{"title":["This field is required."],"status":["\"Later\" is not a valid choice."]}`,
			`status: "Later" is not a valid choice.; title: This field is required.`},
		{`{"non_field_errors":"bad"}`, "non_field_errors: bad"},
		{`not json`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rejectionDetail([]byte(tt.body)), tt.body)
	}
}

func TestRequestHeaders(t *testing.T) {
	_, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "taskdesk"))
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "name": "Ann"})
	})

	u, err := c.CurrentUser(context.Background(), userAuth)
	require.NoError(t, err)
	assert.Equal(t, "7", u.ID)
}
