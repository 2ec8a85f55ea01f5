// Package tui is the terminal front end: one root Bubble Tea model that
// renders the page the session machine is on.
package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskdesk/internal/app"
	"github.com/sadopc/taskdesk/internal/i18n"
	"github.com/sadopc/taskdesk/internal/model"
	"github.com/sadopc/taskdesk/internal/session"
)

// App is the root Bubble Tea model.
type App struct {
	app    *app.App
	st     *styles
	width  int
	height int
	now    func() time.Time

	loc     *i18n.Localizer
	keys    keyMap
	loadErr error

	// authed is the auth state seen after the previous update. A false to
	// true transition triggers a refresh.
	authed bool
	busy   int

	showHelp bool
	notice   *model.Notification

	login     loginModel
	dashboard dashboardModel
	tasks     tasksModel
	settings  settingsModel

	help    help.Model
	spinner spinner.Model
}

func NewApp(a *app.App) App {
	dark := true
	if v, ok, err := a.Prefs.DarkMode(); err != nil {
		a.Log.Warn().Err(err).Msg("read dark mode preference")
	} else if ok {
		dark = v
	}
	st := newStyles(dark)

	h := help.New()
	h.ShowAll = false

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return App{
		app:       a,
		st:        st,
		now:       time.Now,
		keys:      keys,
		login:     newLoginModel(a.API, st),
		dashboard: newDashboardModel(a.Tasks, st),
		tasks:     newTasksModel(a.Tasks, st),
		settings:  newSettingsModel(a, st),
		help:      h,
		spinner:   sp,
	}
}

func (m App) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadCatalog(m.app),
	)
}

func loadCatalog(a *app.App) tea.Cmd {
	return func() tea.Msg {
		l, err := a.Localizer()
		return catalogMsg{loc: l, err: err}
	}
}

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	return m.syncAuth(cmd)
}

// syncAuth reacts to auth changes made by the previous update, whatever
// caused them: a login, a logout key or a 401.
func (m App) syncAuth(cmd tea.Cmd) (App, tea.Cmd) {
	if m.loc == nil {
		return m, cmd
	}
	authed := m.app.Machine.IsAuthenticated()
	if authed == m.authed {
		return m, cmd
	}
	m.authed = authed
	if authed {
		m.busy++
		return m, tea.Batch(cmd, m.tasks.refresh())
	}
	m.tasks.cursor = 0
	var reset tea.Cmd
	m.login, reset = m.login.reset(m.loc)
	return m, tea.Batch(cmd, reset)
}

func (m App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		contentHeight := m.height - 4 // header + footer
		m.login.setSize(m.width, contentHeight)
		m.dashboard.setSize(m.width, contentHeight)
		m.tasks.setSize(m.width, contentHeight)
		m.settings.setSize(m.width, contentHeight)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case catalogMsg:
		if msg.err != nil {
			m.loadErr = msg.err
			return m, nil
		}
		m.loc = msg.loc
		m.keys = newKeyMap(msg.loc)
		m.app.Machine.Reconcile()
		var cmd tea.Cmd
		m.login, cmd = m.login.reset(m.loc)
		return m, cmd

	case dismissMsg:
		if m.notice != nil && m.notice.ID == msg.id {
			m.notice = nil
		}
		return m, nil

	case loginDoneMsg:
		if m.busy > 0 {
			m.busy--
		}
		return m.finishLogin(msg)

	case opDoneMsg:
		if m.busy > 0 {
			m.busy--
		}
		n := m.app.Fail(msg.err, m.loc, msg.fallback)
		if n == nil && msg.err == nil && msg.success != "" {
			ok := model.NewNotification(model.SeveritySuccess, m.loc.T(msg.success, msg.kv...))
			n = &ok
		}
		return m, m.notify(n)

	case pictureDoneMsg:
		if msg.uploaded && m.busy > 0 {
			m.busy--
		}
		if !m.app.Machine.IsAuthenticated() || msg.auth != m.app.Machine.Auth() {
			m.app.Log.Debug().Err(msg.err).Msg("profile picture result from a previous session dropped")
			return m, nil
		}
		if msg.err != nil {
			return m, m.notify(m.app.Fail(msg.err, m.loc, "errorUpdatingProfilePic"))
		}
		if err := m.app.Machine.UpdateUser(msg.auth, msg.user); err != nil {
			return m, m.notify(m.app.Fail(err, m.loc, "errorUpdatingProfilePic"))
		}
		return m, m.notifyKey(model.SeveritySuccess, "profilePictureUpdatedSuccess")

	case exportDoneMsg:
		if m.busy > 0 {
			m.busy--
		}
		if msg.err != nil {
			m.app.Log.Error().Err(msg.err).Str("path", msg.path).Msg("export tasks")
			return m, m.notifyKey(model.SeverityError, "errorExport")
		}
		return m, m.notifyKey(model.SeveritySuccess, "exportedTasks", "count", fmt.Sprint(msg.count), "path", msg.path)

	case themeMsg:
		if msg.err != nil {
			m.app.Log.Warn().Err(msg.err).Msg("save dark mode preference")
		}
		m.st.apply(msg.dark)
		return m, nil

	case languageMsg:
		l, err := m.app.SetLanguage(msg.tag)
		if err != nil {
			m.app.Log.Warn().Err(err).Str("language", msg.tag).Msg("switch language")
			return m, nil
		}
		m.loc = l
		m.keys = newKeyMap(l)
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m.updateActivePage(msg)
}

func (m App) updateKey(msg tea.KeyMsg) (App, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.loc == nil {
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	page := m.app.Machine.Page()

	// The login form and open forms get every key.
	if page == session.PageLogin || m.formActive() {
		return m.updateActivePage(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, keys.Dismiss):
		m.notice = nil
		return m, nil
	case key.Matches(msg, keys.Back):
		m.app.Machine.Back()
		return m, nil
	case key.Matches(msg, keys.Forward):
		m.app.Machine.Forward()
		return m, nil
	case key.Matches(msg, keys.TabApp):
		m.app.Machine.Navigate(session.PageApp)
		return m, nil
	case key.Matches(msg, keys.TabSet):
		m.app.Machine.Navigate(session.PageSettings)
		return m, nil
	case key.Matches(msg, keys.Tab404):
		m.app.Machine.Navigate(session.PageNotFound)
		return m, nil
	case key.Matches(msg, keys.Logout):
		if err := m.app.Machine.Logout(); err != nil {
			m.app.Log.Error().Err(err).Msg("logout")
		}
		return m, m.notifyKey(model.SeverityInfo, "loggedOut")
	case page == session.PageNotFound && key.Matches(msg, keys.Enter):
		m.app.Machine.Navigate(session.PageApp)
		return m, nil
	}

	return m.updateActivePage(msg)
}

func (m App) updateActivePage(msg tea.Msg) (App, tea.Cmd) {
	if m.loc == nil {
		return m, nil
	}
	var cmd tea.Cmd
	switch m.app.Machine.Page() {
	case session.PageLogin:
		var guest bool
		wasSubmitting := m.login.submitting
		m.login, cmd, guest = m.login.update(msg, m.loc)
		if guest {
			return m.startGuest()
		}
		if m.login.submitting && !wasSubmitting {
			m.busy++
		}
	case session.PageApp:
		m.tasks, cmd = m.tasks.update(msg, m.loc)
		if cmd != nil && !m.tasks.formActive() {
			m.busy++
		}
	case session.PageSettings:
		uploads := m.settings.uploads
		m.settings, cmd = m.settings.update(msg, m.loc)
		if m.settings.uploads > uploads {
			m.busy++
		}
	}
	return m, cmd
}

func (m App) formActive() bool {
	switch m.app.Machine.Page() {
	case session.PageApp:
		return m.tasks.formActive()
	case session.PageSettings:
		return m.settings.formActive()
	}
	return false
}

func (m App) startGuest() (App, tea.Cmd) {
	user := m.app.API.GuestLogin(m.loc.T("guestUser"))
	if err := m.app.Machine.GuestLogin(user); err != nil {
		m.app.Log.Error().Err(err).Msg("guest login")
		return m, m.notifyKey(model.SeverityError, "loginFailed")
	}
	return m, m.notifyKey(model.SeverityInfo, "loggedInAsGuest")
}

func (m App) finishLogin(msg loginDoneMsg) (App, tea.Cmd) {
	if msg.err != nil {
		var n *model.Notification
		if errors.Is(msg.err, errLoginFieldsMissing) {
			e := model.NewNotification(model.SeverityError, m.loc.T("errorLoginFieldsMissing"))
			n = &e
		} else {
			n = m.app.Fail(msg.err, m.loc, "loginFailed")
		}
		var reset tea.Cmd
		m.login, reset = m.login.reset(m.loc)
		return m, tea.Batch(reset, m.notify(n))
	}
	if err := m.app.Machine.Login(msg.result); err != nil {
		m.app.Log.Error().Err(err).Msg("persist session")
		var reset tea.Cmd
		m.login, reset = m.login.reset(m.loc)
		return m, tea.Batch(reset, m.notifyKey(model.SeverityError, "loginFailed"))
	}
	return m, m.notifyKey(model.SeveritySuccess, "loggedInSuccess")
}

// notify puts n in the notification slot, replacing whatever was there, and
// schedules its dismissal.
func (m *App) notify(n *model.Notification) tea.Cmd {
	if n == nil {
		return nil
	}
	m.notice = n
	id := n.ID
	return tea.Tick(model.NotificationTTL, func(time.Time) tea.Msg {
		return dismissMsg{id: id}
	})
}

func (m *App) notifyKey(sev model.Severity, msgKey string, kv ...string) tea.Cmd {
	n := model.NewNotification(sev, m.loc.T(msgKey, kv...))
	return m.notify(&n)
}

func (m App) View() string {
	if m.loadErr != nil {
		return m.st.errorText.Render("Error: "+m.loadErr.Error()) + "\n"
	}
	if m.width == 0 || m.loc == nil {
		return m.spinner.View() + " Loading..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	now := m.now()
	var content string
	switch m.app.Machine.Page() {
	case session.PageLogin:
		content = lipgloss.Place(m.width, max(1, m.height-4), lipgloss.Center, lipgloss.Center, m.login.view(m.loc))
	case session.PageApp:
		if m.tasks.formActive() {
			content = m.tasks.view(m.loc, now)
		} else {
			content = lipgloss.JoinVertical(lipgloss.Left,
				m.dashboard.view(m.loc, now),
				m.tasks.view(m.loc, now),
			)
		}
	case session.PageSettings:
		content = m.settings.view(m.loc, now)
	default:
		content = renderNotFound(m.st, m.loc, m.app.History.Path(), m.width)
	}

	// Calculate available height for content
	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 1 {
		contentHeight = 1
	}
	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (m App) renderHeader() string {
	page := m.app.Machine.Page()

	var tabs []string
	if m.app.Machine.IsAuthenticated() {
		for _, p := range tabPages {
			name := m.loc.T(tabLabel(p))
			if p == page {
				tabs = append(tabs, m.st.activeTab.Render(name))
			} else {
				tabs = append(tabs, m.st.inactiveTab.Render(name))
			}
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(m.st.pal.Primary).Render(m.loc.T("taskManager"))
	location := m.st.muted.Render(" " + m.app.History.Path())

	user := ""
	if u, ok := m.app.Machine.User(); ok {
		user = m.st.highlight.Render(u.Name)
		if u.IsGuest() {
			user = m.st.warning.Render(u.Name)
		}
	}

	left := lipgloss.JoinHorizontal(lipgloss.Bottom, title, location)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(tabRow) - lipgloss.Width(user) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return m.st.header.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, tabRow, " ", user),
	)
}

func tabLabel(p session.Page) string {
	if p == session.PageSettings {
		return "settings"
	}
	return "dashboard"
}

func (m App) renderFooter() string {
	left := m.st.footer.Render(m.help.View(m.keys))

	right := ""
	if m.busy > 0 {
		right = m.spinner.View() + " "
	}
	if m.notice != nil {
		right += m.renderNotice(*m.notice)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (m App) renderNotice(n model.Notification) string {
	switch n.Severity {
	case model.SeveritySuccess:
		return m.st.success.Render("✓ " + n.Message)
	case model.SeverityError:
		return m.st.errorText.Render("✗ " + n.Message)
	default:
		return m.st.info.Render("ℹ " + n.Message)
	}
}
