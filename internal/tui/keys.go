package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/sadopc/taskdesk/internal/i18n"
)

type keyMap struct {
	Back     key.Binding
	Forward  key.Binding
	TabApp   key.Binding
	TabSet   key.Binding
	Tab404   key.Binding
	Logout   key.Binding
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Toggle   key.Binding
	Refresh  key.Binding
	Export   key.Binding
	Guest    key.Binding
	Dismiss  key.Binding
	Help     key.Binding
	Enter    key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
	Theme    key.Binding
	Language key.Binding
	Picture  key.Binding
}

var keys = newKeyMap(nil)

// newKeyMap builds the bindings with help text from l. A nil localizer
// keeps the English defaults.
func newKeyMap(l *i18n.Localizer) keyMap {
	desc := func(k, fallback string) string {
		if l != nil && l.Has("help."+k) {
			return l.T("help." + k)
		}
		return fallback
	}
	return keyMap{
		Back: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", desc("back", "back")),
		),
		Forward: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", desc("forward", "forward")),
		),
		TabApp: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", desc("app", "tasks")),
		),
		TabSet: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", desc("settings", "settings")),
		),
		Tab404: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", desc("notFound", "test 404")),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", desc("logout", "logout")),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", desc("new", "new")),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", desc("edit", "edit")),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", desc("delete", "delete")),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", desc("toggle", "toggle")),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", desc("refresh", "refresh")),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", desc("export", "export")),
		),
		Guest: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", desc("guest", "guest")),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", desc("dismiss", "dismiss")),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", desc("help", "help")),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", desc("select", "select")),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", desc("navigate", "up")),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", desc("navigate", "down")),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", desc("quit", "quit")),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", desc("theme", "theme")),
		),
		Language: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", desc("language", "language")),
		),
		Picture: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", desc("picture", "picture")),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TabApp, k.TabSet, k.Back, k.Forward, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Edit, k.Delete, k.Toggle, k.Refresh, k.Export},
		{k.TabApp, k.TabSet, k.Tab404, k.Back, k.Forward},
		{k.Theme, k.Language, k.Picture, k.Logout},
		{k.Up, k.Down, k.Enter, k.Dismiss, k.Help, k.Quit},
	}
}
