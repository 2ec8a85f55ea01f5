package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sadopc/taskdesk/internal/model"
	"github.com/sadopc/taskdesk/internal/session"
)

// Storage keys. The three session keys are removed together on logout; the
// preference keys survive it.
const (
	KeyAuthToken    = "taskManagerAuthToken"
	KeyRefreshToken = "taskManagerRefreshToken"
	KeyUser         = "taskManagerUser"
	KeyDarkMode     = "darkMode"
	KeyLanguage     = "language"
	KeyLocation     = "location"
)

var sessionKeys = []string{KeyAuthToken, KeyRefreshToken, KeyUser}

// SessionStore keeps the signed-in session and the UI preferences of one
// origin.
type SessionStore struct {
	st *Storage
}

func NewSessionStore(st *Storage) *SessionStore {
	return &SessionStore{st: st}
}

var _ session.Store = (*SessionStore)(nil)

// Save replaces the session keys in one transaction. Empty tokens are
// removed rather than stored.
func (s *SessionStore) Save(p session.Persisted) error {
	var user []byte
	if p.User != nil {
		var err error
		if user, err = json.Marshal(p.User); err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
	}

	values := map[string]string{
		KeyAuthToken:    p.AuthToken,
		KeyRefreshToken: p.RefreshToken,
		KeyUser:         string(user),
	}
	return s.st.tx(func(x execer) error {
		for _, key := range sessionKeys {
			if values[key] == "" {
				if err := s.st.deleteWith(x, key); err != nil {
					return err
				}
				continue
			}
			if err := s.st.setWith(x, key, values[key]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load reads the session keys. ok is false when no auth token is stored; a
// cached user is returned either way.
func (s *SessionStore) Load() (session.Persisted, bool, error) {
	var p session.Persisted
	token, ok, err := s.st.Get(KeyAuthToken)
	if err != nil {
		return p, false, err
	}
	p.AuthToken = token

	if p.RefreshToken, _, err = s.st.Get(KeyRefreshToken); err != nil {
		return p, false, err
	}

	raw, hasUser, err := s.st.Get(KeyUser)
	if err != nil {
		return p, false, err
	}
	if hasUser {
		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return session.Persisted{}, false, fmt.Errorf("decode cached user: %w", err)
		}
		p.User = &u
	}
	return p, ok && token != "", nil
}

// Clear removes the session keys in one transaction.
func (s *SessionStore) Clear() error {
	return s.st.tx(func(x execer) error {
		for _, key := range sessionKeys {
			if err := s.st.deleteWith(x, key); err != nil {
				return err
			}
		}
		return nil
	})
}

// DarkMode returns the stored theme preference; ok is false when unset.
func (s *SessionStore) DarkMode() (dark, ok bool, err error) {
	raw, ok, err := s.st.Get(KeyDarkMode)
	if err != nil || !ok {
		return false, false, err
	}
	dark, err = strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("decode %s: %w", KeyDarkMode, err)
	}
	return dark, true, nil
}

func (s *SessionStore) SetDarkMode(dark bool) error {
	return s.st.Set(KeyDarkMode, strconv.FormatBool(dark))
}

func (s *SessionStore) Language() (string, bool, error) {
	return s.st.Get(KeyLanguage)
}

func (s *SessionStore) SetLanguage(tag string) error {
	return s.st.Set(KeyLanguage, tag)
}

// Location is the last history path, restored on the next start.
func (s *SessionStore) Location() (string, bool, error) {
	return s.st.Get(KeyLocation)
}

func (s *SessionStore) SetLocation(path string) error {
	return s.st.Set(KeyLocation, path)
}
