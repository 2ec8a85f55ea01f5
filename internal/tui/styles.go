package tui

import "github.com/charmbracelet/lipgloss"

// palette is one color scheme. The dark one is the default.
type palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color
	Fg        lipgloss.Color
	Subtle    lipgloss.Color
	Highlight lipgloss.Color
}

var (
	darkPalette = palette{
		Primary:   lipgloss.Color("#6C63FF"),
		Secondary: lipgloss.Color("#2EC4B6"),
		Accent:    lipgloss.Color("#FF6B6B"),
		Muted:     lipgloss.Color("#666666"),
		Success:   lipgloss.Color("#2ECC71"),
		Warning:   lipgloss.Color("#F39C12"),
		Error:     lipgloss.Color("#E74C3C"),
		Info:      lipgloss.Color("#7AA2F7"),
		Fg:        lipgloss.Color("#C0CAF5"),
		Subtle:    lipgloss.Color("#414868"),
		Highlight: lipgloss.Color("#7AA2F7"),
	}
	lightPalette = palette{
		Primary:   lipgloss.Color("#4B44CC"),
		Secondary: lipgloss.Color("#1A8F85"),
		Accent:    lipgloss.Color("#D64545"),
		Muted:     lipgloss.Color("#8A8A8A"),
		Success:   lipgloss.Color("#1E8E4E"),
		Warning:   lipgloss.Color("#B86E00"),
		Error:     lipgloss.Color("#C0392B"),
		Info:      lipgloss.Color("#2E5DB8"),
		Fg:        lipgloss.Color("#24283B"),
		Subtle:    lipgloss.Color("#C8CCE0"),
		Highlight: lipgloss.Color("#2E5DB8"),
	}
)

// categoryColors gives each category a stable bar color.
var categoryColors = []lipgloss.Color{"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#9B59B6", "#3498DB"}

type styles struct {
	dark bool
	pal  palette

	// Tabs
	activeTab   lipgloss.Style
	inactiveTab lipgloss.Style

	// Panels
	panel       lipgloss.Style
	activePanel lipgloss.Style
	card        lipgloss.Style

	// Text
	title     lipgloss.Style
	subtitle  lipgloss.Style
	accent    lipgloss.Style
	success   lipgloss.Style
	warning   lipgloss.Style
	errorText lipgloss.Style
	info      lipgloss.Style
	muted     lipgloss.Style
	highlight lipgloss.Style
	strike    lipgloss.Style

	// Header/footer
	header lipgloss.Style
	footer lipgloss.Style

	// List items
	selectedItem lipgloss.Style
	normalItem   lipgloss.Style
}

func newStyles(dark bool) *styles {
	s := &styles{}
	s.apply(dark)
	return s
}

// apply rebuilds every style in place so models holding the pointer pick up
// the new scheme.
func (s *styles) apply(dark bool) {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	s.dark = dark
	s.pal = p

	s.activeTab = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(p.Primary).
		Padding(0, 2)
	s.inactiveTab = lipgloss.NewStyle().
		Foreground(p.Muted).
		Padding(0, 2)

	s.panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Subtle).
		Padding(1, 2)
	s.activePanel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	s.card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Subtle).
		Padding(0, 1).
		Align(lipgloss.Center)

	s.title = lipgloss.NewStyle().Bold(true).Foreground(p.Fg)
	s.subtitle = lipgloss.NewStyle().Foreground(p.Muted)
	s.accent = lipgloss.NewStyle().Foreground(p.Accent)
	s.success = lipgloss.NewStyle().Foreground(p.Success)
	s.warning = lipgloss.NewStyle().Foreground(p.Warning)
	s.errorText = lipgloss.NewStyle().Foreground(p.Error)
	s.info = lipgloss.NewStyle().Foreground(p.Info)
	s.muted = lipgloss.NewStyle().Foreground(p.Muted)
	s.highlight = lipgloss.NewStyle().Foreground(p.Highlight)
	s.strike = lipgloss.NewStyle().Foreground(p.Muted).Strikethrough(true)

	s.header = lipgloss.NewStyle().Padding(0, 1)
	s.footer = lipgloss.NewStyle().Foreground(p.Muted).Padding(0, 1)

	s.selectedItem = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	s.normalItem = lipgloss.NewStyle().Foreground(p.Fg)
}

func (s *styles) categoryColor(i int) lipgloss.Color {
	return categoryColors[i%len(categoryColors)]
}
