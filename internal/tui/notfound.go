package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskdesk/internal/i18n"
)

func renderNotFound(st *styles, l *i18n.Localizer, path string, w int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		st.errorText.Bold(true).Render("404"),
		st.title.Render(l.T("notFound.title")),
		st.muted.Render(path),
		"",
		lipgloss.NewStyle().Width(max(20, min(w-8, 70))).Align(lipgloss.Center).Render(l.T("notFound.message")),
		"",
		st.highlight.Render("enter: "+l.T("notFound.goHomeButton")),
	)
	return st.panel.Width(w - 4).Align(lipgloss.Center).Render(content)
}
