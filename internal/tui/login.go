package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskdesk/internal/api"
	"github.com/sadopc/taskdesk/internal/i18n"
)

var errLoginFieldsMissing = errors.New("identifier and password are required")

type loginModel struct {
	api   *api.Client
	st    *styles
	width int

	form       *huh.Form
	submitting bool

	// Form values as pointers (survive value copies)
	identifier *string
	password   *string
}

func newLoginModel(c *api.Client, st *styles) loginModel {
	id, pw := "", ""
	return loginModel{api: c, st: st, identifier: &id, password: &pw}
}

func (m *loginModel) setSize(w, _ int) {
	m.width = w
}

// reset builds a fresh form. The identifier is kept so a failed attempt
// only needs the password again.
func (m loginModel) reset(l *i18n.Localizer) (loginModel, tea.Cmd) {
	*m.password = ""
	m.submitting = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(l.T("emailOrUsername")).
				Placeholder(l.T("emailOrUsernamePlaceholder")).
				Value(m.identifier),
			huh.NewInput().
				Title(l.T("password")).
				EchoMode(huh.EchoModePassword).
				Value(m.password),
		).Title(l.T("login")),
	).WithShowHelp(true).WithShowErrors(true)
	return m, m.form.Init()
}

func (m loginModel) submit() tea.Cmd {
	id, pw := strings.TrimSpace(*m.identifier), *m.password
	if id == "" || pw == "" {
		return func() tea.Msg { return loginDoneMsg{err: errLoginFieldsMissing} }
	}
	c := m.api
	return func() tea.Msg {
		res, err := c.Login(context.Background(), id, pw)
		return loginDoneMsg{result: res, err: err}
	}
}

// update returns guest=true when the user asked for a guest session.
func (m loginModel) update(msg tea.Msg, l *i18n.Localizer) (loginModel, tea.Cmd, bool) {
	if m.form == nil {
		var cmd tea.Cmd
		m, cmd = m.reset(l)
		return m, cmd, false
	}
	if m.submitting {
		return m, nil, false
	}
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Guest) {
		return m, nil, true
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.submitting = true
		return m, m.submit(), false
	case huh.StateAborted:
		var reset tea.Cmd
		m, reset = m.reset(l)
		return m, reset, false
	}
	return m, cmd, false
}

func (m loginModel) view(l *i18n.Localizer) string {
	w := min(m.width-4, 60)
	title := m.st.title.Render(l.T("taskManager"))

	body := m.st.muted.Render(l.T("loading"))
	if m.form != nil && !m.submitting {
		body = m.form.View()
	}
	guest := m.st.muted.Render(keys.Guest.Help().Key + ": " + l.T("loginAsGuest"))

	return m.st.activePanel.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", guest),
	)
}
