package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sadopc/taskdesk/internal/api"
	"github.com/sadopc/taskdesk/internal/model"
)

// ErrSignedOut is returned by operations that need a session when there is
// none.
var ErrSignedOut = errors.New("not signed in")

// ErrStale means a result arrived for a session that is no longer the
// current one and was dropped.
var ErrStale = errors.New("result discarded: session changed")

// Persisted is the session as kept in durable storage. A guest session has
// a user but no tokens.
type Persisted struct {
	AuthToken    string
	RefreshToken string
	User         *model.User
}

// Store keeps the session across restarts. Load reports ok=false when no
// auth token is stored.
type Store interface {
	Load() (p Persisted, ok bool, err error)
	Save(p Persisted) error
	Clear() error
}

// Machine owns the authentication state and the current page, and keeps
// both in step with the history location.
type Machine struct {
	mu            sync.Mutex
	store         Store
	history       History
	log           zerolog.Logger
	authenticated bool
	token         string
	refresh       string
	user          *model.User
	page          Page
	listeners     []func(authenticated bool)
}

func NewMachine(store Store, history History, log zerolog.Logger) *Machine {
	return &Machine{
		store:   store,
		history: history,
		log:     log,
		page:    PageLogin,
	}
}

// OnAuthChange registers fn to run after every change of the authenticated
// flag. Listeners run outside the machine's lock.
func (m *Machine) OnAuthChange(fn func(authenticated bool)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Start rehydrates the session from the store and settles the page from the
// current location.
func (m *Machine) Start() Page {
	p, ok, err := m.store.Load()
	if err != nil {
		m.log.Warn().Err(err).Msg("discarding unreadable stored session")
		if err := m.store.Clear(); err != nil {
			m.log.Error().Err(err).Msg("clear stored session")
		}
		ok = false
	}

	m.mu.Lock()
	changed := ok && !m.authenticated
	if ok {
		m.authenticated = true
		m.token = p.AuthToken
		m.refresh = p.RefreshToken
		m.user = p.User
	}
	page := m.settleLocked()
	m.mu.Unlock()

	m.log.Info().Bool("authenticated", ok).Str("page", string(page)).Msg("session started")
	if changed {
		m.notify(true)
	}
	return page
}

// Reconcile settles the page from the current location again.
func (m *Machine) Reconcile() Page {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settleLocked()
}

// PopState settles the page after the location changed from outside,
// looking only at the new path.
func (m *Machine) PopState() Page {
	return m.Reconcile()
}

// Back moves one entry back in the history, if possible.
func (m *Machine) Back() Page {
	if !m.history.Back() {
		return m.Page()
	}
	return m.PopState()
}

// Forward moves one entry forward in the history, if possible.
func (m *Machine) Forward() Page {
	if !m.history.Forward() {
		return m.Page()
	}
	return m.PopState()
}

func (m *Machine) settleLocked() Page {
	path := m.history.Path()
	resolved := Resolve(path, m.authenticated)
	page := guard(resolved, m.authenticated)
	if page != resolved || segment(path) == "" {
		m.history.Replace(page.Path())
	}
	m.page = page
	return page
}

// Login persists a server session and moves to the app page.
func (m *Machine) Login(res api.LoginResult) error {
	user := res.User
	return m.begin(Persisted{AuthToken: res.Access, RefreshToken: res.Refresh, User: &user})
}

// GuestLogin starts a local-only session for the guest user. Only the user
// is persisted.
func (m *Machine) GuestLogin(user model.User) error {
	return m.begin(Persisted{User: &user})
}

func (m *Machine) begin(p Persisted) error {
	if err := m.store.Save(p); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	m.mu.Lock()
	changed := !m.authenticated
	m.authenticated = true
	m.token = p.AuthToken
	m.refresh = p.RefreshToken
	m.user = p.User
	m.pushLocked(PageApp)
	m.mu.Unlock()

	m.log.Info().Str("user_id", p.User.ID).Msg("signed in")
	if changed {
		m.notify(true)
	}
	return nil
}

// Logout purges the persisted session and moves to the login page. Calling
// it while signed out only makes sure the login page is showing.
func (m *Machine) Logout() error {
	err := m.store.Clear()

	m.mu.Lock()
	changed := m.authenticated
	m.authenticated = false
	m.token = ""
	m.refresh = ""
	m.user = nil
	m.pushLocked(PageLogin)
	m.mu.Unlock()

	if changed {
		m.log.Info().Msg("signed out")
		m.notify(false)
	}
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Navigate pushes the location of p. A page the auth state does not allow
// is redirected.
func (m *Machine) Navigate(p Page) Page {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushLocked(guard(p, m.authenticated))
	return m.page
}

func (m *Machine) pushLocked(p Page) {
	if m.history.Path() != p.Path() {
		m.history.Push(p.Path())
	}
	m.page = p
}

// UpdateUser replaces the cached profile and persists it. issuer is the
// Auth the profile was fetched with; the update is dropped with ErrStale
// unless that session is still the current one.
func (m *Machine) UpdateUser(issuer api.Auth, u model.User) error {
	m.mu.Lock()
	if !m.authenticated {
		m.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrStale, ErrSignedOut)
	}
	current := ""
	if m.user != nil {
		current = m.user.ID
	}
	if m.token != issuer.Token || current != issuer.UserID {
		m.mu.Unlock()
		m.log.Debug().Str("user", u.ID).Msg("profile update from a previous session dropped")
		return ErrStale
	}
	m.user = &u
	p := Persisted{AuthToken: m.token, RefreshToken: m.refresh, User: &u}
	m.mu.Unlock()

	if err := m.store.Save(p); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

func (m *Machine) notify(authenticated bool) {
	m.mu.Lock()
	listeners := append([]func(bool){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(authenticated)
	}
}

// Auth returns the credentials for gateway calls.
func (m *Machine) Auth() api.Auth {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := api.Auth{Token: m.token}
	if m.user != nil {
		a.UserID = m.user.ID
	}
	return a
}

func (m *Machine) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated
}

// User returns the signed-in user; ok is false when signed out or when the
// stored session carried no profile.
func (m *Machine) User() (model.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return model.User{}, false
	}
	return *m.user, true
}

func (m *Machine) IsGuest() bool {
	u, ok := m.User()
	return ok && u.IsGuest()
}

func (m *Machine) Page() Page {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page
}

// Path returns the current history location.
func (m *Machine) Path() string {
	return m.history.Path()
}
