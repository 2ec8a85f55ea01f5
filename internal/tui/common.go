package tui

import (
	"strings"
	"time"

	"github.com/sadopc/taskdesk/internal/api"
	"github.com/sadopc/taskdesk/internal/i18n"
	"github.com/sadopc/taskdesk/internal/model"
	"github.com/sadopc/taskdesk/internal/session"
)

// tabPages are the pages shown as tabs once signed in.
var tabPages = []session.Page{session.PageApp, session.PageSettings}

// timeLayout is how start and end times are typed and shown.
const timeLayout = "2006-01-02 15:04"

// --- Messages ---

type catalogMsg struct {
	loc *i18n.Localizer
	err error
}

type loginDoneMsg struct {
	result api.LoginResult
	err    error
}

// opDoneMsg reports a finished task or profile operation. fallback names
// the generic error message; success the message shown when err is nil.
type opDoneMsg struct {
	err      error
	fallback string
	success  string
	kv       []string
}

type dismissMsg struct {
	id string
}

type pictureDoneMsg struct {
	auth     api.Auth // session the upload was issued under
	uploaded bool     // a request was sent
	user     model.User
	err      error
}

type exportDoneMsg struct {
	path  string
	count int
	err   error
}

// --- Helpers ---

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(timeLayout)
}

func parseTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// statusKey maps a status to its catalog key, e.g. "In Progress" to
// "status.inprogress".
func statusKey(s model.Status) string {
	return "status." + strings.ToLower(strings.ReplaceAll(string(s), " ", ""))
}

func categoryKey(c model.Category) string {
	return "category." + strings.ToLower(string(c))
}

// label translates key, or returns raw when the catalog has no entry.
func label(l *i18n.Localizer, key, raw string) string {
	if l != nil && l.Has(key) {
		return l.T(key)
	}
	return raw
}
