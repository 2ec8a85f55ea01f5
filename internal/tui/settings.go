package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskdesk/internal/api"
	"github.com/sadopc/taskdesk/internal/app"
	"github.com/sadopc/taskdesk/internal/i18n"
	"github.com/sadopc/taskdesk/internal/session"
)

var pictureTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

type languageMsg struct {
	tag string
}

type themeMsg struct {
	dark bool
	err  error
}

type settingsModel struct {
	app    *app.App
	st     *styles
	width  int
	height int

	form     *huh.Form
	formType string // "language", "picture"

	// Form values as pointers (survive value copies)
	language *string
	picture  *string

	uploads int // uploads started
}

func newSettingsModel(a *app.App, st *styles) settingsModel {
	lang, pic := "", ""
	return settingsModel{app: a, st: st, language: &lang, picture: &pic}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) formActive() bool {
	return s.form != nil
}

func (s settingsModel) update(msg tea.Msg, l *i18n.Localizer) (settingsModel, tea.Cmd) {
	if s.form != nil {
		return s.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch {
	case key.Matches(km, keys.Theme):
		return s, s.toggleTheme()
	case key.Matches(km, keys.Language):
		return s.showLanguageForm(l)
	case key.Matches(km, keys.Picture):
		auth := s.app.Machine.Auth()
		if err := api.GuardGuest(auth, api.ActionUpdateProfilePicture); err != nil {
			return s, func() tea.Msg { return pictureDoneMsg{auth: auth, err: err} }
		}
		return s.showPictureForm(l)
	}
	return s, nil
}

func (s settingsModel) toggleTheme() tea.Cmd {
	dark := !s.st.dark
	prefs := s.app.Prefs
	return func() tea.Msg {
		return themeMsg{dark: dark, err: prefs.SetDarkMode(dark)}
	}
}

func (s settingsModel) showLanguageForm(l *i18n.Localizer) (settingsModel, tea.Cmd) {
	*s.language = l.Tag().String()
	s.formType = "language"

	var options []huh.Option[string]
	for _, tag := range s.app.Languages() {
		options = append(options, huh.NewOption(languageName(l, tag), tag))
	}
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title(l.T("language")).Options(options...).Value(s.language),
		),
	).WithShowHelp(true)
	return s, s.form.Init()
}

func (s settingsModel) showPictureForm(l *i18n.Localizer) (settingsModel, tea.Cmd) {
	*s.picture = ""
	s.formType = "picture"

	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewFilePicker().
				Title(l.T("changeProfilePicture")).
				CurrentDirectory(dir).
				AllowedTypes(pictureTypes).
				Picking(true).
				Value(s.picture),
		),
	).WithShowHelp(true)
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateAborted:
		s.form = nil
		return s, nil
	case huh.StateCompleted:
		s.form = nil
		switch s.formType {
		case "language":
			tag := *s.language
			return s, func() tea.Msg { return languageMsg{tag: tag} }
		case "picture":
			if *s.picture == "" {
				return s, nil
			}
			s.uploads++
			return s, s.upload(*s.picture)
		}
	}
	return s, cmd
}

func (s settingsModel) upload(path string) tea.Cmd {
	a := s.app
	auth := a.Machine.Auth()
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return pictureDoneMsg{auth: auth, uploaded: true, err: err}
		}
		defer f.Close()
		u, err := a.API.UpdateProfilePicture(context.Background(), auth, path, f)
		return pictureDoneMsg{auth: auth, uploaded: true, user: u, err: err}
	}
}

func languageName(l *i18n.Localizer, tag string) string {
	switch tag {
	case "en":
		return label(l, "english", tag)
	case "fa":
		return label(l, "persian", tag)
	}
	return tag
}

func (s settingsModel) view(l *i18n.Localizer, now time.Time) string {
	w := s.width - 4

	if s.form != nil {
		title := l.T("language")
		if s.formType == "picture" {
			title = l.T("changeProfilePicture")
		}
		return s.st.activePanel.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, s.st.title.Render(title), "", s.form.View()),
		)
	}

	profile := s.renderProfile(l, now, w)
	appearance := s.renderAppearance(l, w)
	return lipgloss.JoinVertical(lipgloss.Left, profile, appearance)
}

func (s settingsModel) renderProfile(l *i18n.Localizer, now time.Time, w int) string {
	u, _ := s.app.Machine.User()

	row := func(k, v string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(16).Render(k), v)
	}

	email := u.Email
	if email == "" {
		email = s.st.muted.Render(l.T("noEmailProvided"))
	}
	name := s.st.highlight.Render(u.Name)
	if u.IsAdmin {
		name += " " + s.st.accent.Render("["+l.T("admin")+"]")
	}
	if u.IsGuest() {
		name += " " + s.st.warning.Render("["+l.T("help.guest")+"]")
	}

	rows := []string{
		s.st.title.Render(l.T("profileInformation")),
		"",
		row(l.T("name"), name),
		row(l.T("email"), email),
	}
	if u.ProfilePictureURL != "" {
		rows = append(rows, row(l.T("profile"), s.st.muted.Render(u.ProfilePictureURL)))
	}
	if line := s.tokenLine(l, now); line != "" {
		rows = append(rows, "", "  "+line)
	}
	rows = append(rows, "", s.st.muted.Render("  p: "+l.T("changeProfilePicture")))

	return s.st.panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (s settingsModel) tokenLine(l *i18n.Localizer, now time.Time) string {
	token := s.app.Machine.Auth().Token
	if token == "" {
		return ""
	}
	claims, err := session.TokenInfo(token)
	if err != nil || claims.ExpiresAt.IsZero() {
		return ""
	}
	if claims.Expired(now) {
		return s.st.errorText.Render(l.T("tokenExpired"))
	}
	return s.st.muted.Render(l.T("tokenExpires", "time", claims.ExpiresAt.Local().Format(timeLayout)))
}

func (s settingsModel) renderAppearance(l *i18n.Localizer, w int) string {
	mode := l.T("switchToDarkMode")
	if s.st.dark {
		mode = l.T("switchToLightMode")
	}
	rows := []string{
		s.st.title.Render(l.T("appearanceSettings")),
		s.st.muted.Render(l.T("appearanceSettingsDescription")),
		"",
		fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(16).Render(l.T("darkMode")), s.st.highlight.Render(onOff(s.st.dark))),
		fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(16).Render(l.T("language")), s.st.highlight.Render(languageName(l, l.Tag().String()))),
		"",
		s.st.muted.Render("  t: " + mode + "  g: " + l.T("language")),
	}
	return s.st.panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
