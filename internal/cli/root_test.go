package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/taskdesk/internal/api"
	"github.com/sadopc/taskdesk/internal/app"
	"github.com/sadopc/taskdesk/internal/i18n"
	"github.com/sadopc/taskdesk/internal/session"
)

func TestNewRootCommand_NoArgs_LaunchesTUI(t *testing.T) {
	originalFunc := launchTUIFunc
	defer func() {
		launchTUIFunc = originalFunc
	}()

	var got *app.App
	launchTUIFunc = func(a *app.App) error {
		got = a
		return nil
	}

	e := newCLIEnv(t)
	_, err := e.run()

	assert.NoError(t, err)
	require.NotNil(t, got, "launchTUIFunc should be called when no arguments are provided")
	assert.Equal(t, session.PageLogin, got.Machine.Page())
}

func TestNewRootCommand_PathFlag(t *testing.T) {
	originalFunc := launchTUIFunc
	defer func() {
		launchTUIFunc = originalFunc
	}()

	var page session.Page
	launchTUIFunc = func(a *app.App) error {
		page = a.Machine.Page()
		return nil
	}

	e := newCLIEnv(t)
	e.login()
	e.mustRun("--path", "/settings")
	assert.Equal(t, session.PageSettings, page)

	e.mustRun("--path", "/nowhere")
	assert.Equal(t, session.PageNotFound, page)
}

func TestNewRootCommand_WithHelp_ShowsHelp(t *testing.T) {
	originalFunc := launchTUIFunc
	defer func() {
		launchTUIFunc = originalFunc
	}()

	called := false
	launchTUIFunc = func(*app.App) error {
		called = true
		return nil
	}

	e := newCLIEnv(t)
	out, err := e.run("--help")

	assert.NoError(t, err)
	assert.False(t, called, "launchTUIFunc should NOT be called when --help is provided")
	assert.Contains(t, out, "tasks")
	assert.Contains(t, out, "login")
}

func TestNewRootCommand_InvalidAPIURL(t *testing.T) {
	e := newCLIEnv(t)
	// The later flag wins over the test server URL.
	_, err := e.run("--api-url", "not a url", "whoami")
	assert.Error(t, err)
}

// =============================================================================
// Session Commands
// =============================================================================

func TestLogin_Flags(t *testing.T) {
	e := newCLIEnv(t)
	out := e.mustRun("login", "--user", "ann", "--password", "secret")
	assert.Contains(t, out, "Logged in successfully!")

	out = e.mustRun("whoami")
	assert.Contains(t, out, "Ann")
	assert.Contains(t, out, "ann@example.com")
}

func TestLogin_BadPassword(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run("login", "--user", "ann", "--password", "wrong")

	require.Error(t, err)
	assert.Equal(t, "No active account found with the given credentials", err.Error())
	var rejected *api.RejectedError
	assert.True(t, errors.As(err, &rejected))

	_, err = e.run("whoami")
	assert.ErrorIs(t, err, session.ErrSignedOut)
}

func TestLogin_Prompt(t *testing.T) {
	original := promptCredentialsFunc
	defer func() { promptCredentialsFunc = original }()

	prompted := false
	promptCredentialsFunc = func(_ *i18n.Localizer, c *credentials) error {
		prompted = true
		c.Password = "secret"
		return nil
	}

	e := newCLIEnv(t)
	e.mustRun("login", "--user", "ann")
	assert.True(t, prompted)
}

func TestLogin_PromptLeavesFieldsEmpty(t *testing.T) {
	original := promptCredentialsFunc
	defer func() { promptCredentialsFunc = original }()
	promptCredentialsFunc = func(*i18n.Localizer, *credentials) error { return nil }

	e := newCLIEnv(t)
	_, err := e.run("login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestLogin_Guest(t *testing.T) {
	e := newCLIEnv(t)
	out := e.mustRun("login", "--guest")
	assert.Contains(t, out, "Logged in as Guest!")

	// A guest session is not restored by the next process.
	_, err := e.run("whoami")
	assert.ErrorIs(t, err, session.ErrSignedOut)
}

func TestLogout(t *testing.T) {
	e := newCLIEnv(t)
	e.login()

	out := e.mustRun("logout")
	assert.Contains(t, out, "Logged out.")

	_, err := e.run("tasks", "list")
	assert.ErrorIs(t, err, session.ErrSignedOut)

	// Logging out twice is fine.
	e.mustRun("logout")
}

func TestUnauthorizedSignsOut(t *testing.T) {
	e := newCLIEnv(t)
	e.login()
	e.srv.expire()

	_, err := e.run("tasks", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, "Error fetching tasks.", err.Error())

	_, err = e.run("whoami")
	assert.ErrorIs(t, err, session.ErrSignedOut)
}

func TestProfilePicture(t *testing.T) {
	e := newCLIEnv(t)
	e.login()

	pic := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(pic, []byte("\x89PNG"), 0o600))

	out := e.mustRun("profile", "picture", pic)
	assert.Contains(t, out, "Profile picture updated!")
	assert.Contains(t, out, "http://cdn.example/ann.png")
	assert.Equal(t, 1, e.srv.uploadCount())

	_, err := e.run("profile", "picture", filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

// =============================================================================
// Config Commands
// =============================================================================

func TestConfigShow(t *testing.T) {
	e := newCLIEnv(t)
	out := e.mustRun("config", "show")

	assert.Contains(t, out, "[api]")
	assert.Contains(t, out, e.srv.URL)
	assert.Regexp(t, `language = ['"]en['"]`, out)
}

func TestConfigPath(t *testing.T) {
	e := newCLIEnv(t)
	out := e.mustRun("config", "path")
	assert.Equal(t, filepath.Join(e.dir, "config.toml"), strings.TrimSpace(out))
}
