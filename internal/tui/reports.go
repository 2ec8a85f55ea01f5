package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskdesk/internal/i18n"
	"github.com/sadopc/taskdesk/internal/model"
	"github.com/sadopc/taskdesk/internal/tasks"
)

// categoryChart draws one bar per category in use.
type categoryChart struct {
	st *styles
}

func newCategoryChart(st *styles) categoryChart {
	return categoryChart{st: st}
}

func (c categoryChart) bars(stats tasks.Stats, l *i18n.Localizer) []barchart.BarData {
	bars := make([]barchart.BarData, 0, len(stats.ByCategory))
	for i, cc := range stats.ByCategory {
		name := label(l, categoryKey(cc.Category), string(cc.Category))
		bars = append(bars, barchart.BarData{
			Label: truncate(name, 8),
			Values: []barchart.BarValue{{
				Name:  name,
				Value: float64(cc.Count),
				Style: lipgloss.NewStyle().Foreground(c.st.categoryColor(colorIndex(cc.Category, i))),
			}},
		})
	}
	return bars
}

// colorIndex keeps a category's color stable as other categories come and go.
func colorIndex(cat model.Category, fallback int) int {
	for i, known := range model.Categories {
		if known == cat {
			return i
		}
	}
	return len(model.Categories) + fallback
}

func (c categoryChart) view(stats tasks.Stats, l *i18n.Localizer, w int) string {
	title := c.st.title.Render(l.T("taskCategories"))

	if len(stats.ByCategory) == 0 {
		return c.st.panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			c.st.muted.Render(l.T("noTasksWithCategories")),
		))
	}

	chartWidth := max(20, min(w-8, 10*len(stats.ByCategory)))
	chart := barchart.New(chartWidth, 8)
	chart.PushAll(c.bars(stats, l))
	chart.Draw()

	most := l.T("notAvailable")
	if stats.MostUsed != "" {
		most = fmt.Sprintf("%s (%s)",
			label(l, categoryKey(stats.MostUsed), string(stats.MostUsed)),
			l.T("tasksCount", "count", fmt.Sprint(stats.MostUsedCount)),
		)
	}
	summary := c.st.muted.Render(l.T("mostUsedCategory")+": ") + c.st.highlight.Render(most)

	return c.st.panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		title, "", chart.View(), "", c.renderLegend(stats, l), summary,
	))
}

func (c categoryChart) renderLegend(stats tasks.Stats, l *i18n.Localizer) string {
	var items []string
	for i, cc := range stats.ByCategory {
		dot := lipgloss.NewStyle().Foreground(c.st.categoryColor(colorIndex(cc.Category, i))).Render("●")
		items = append(items, fmt.Sprintf("%s %s %d", dot, label(l, categoryKey(cc.Category), string(cc.Category)), cc.Count))
	}
	return strings.Join(items, "  ")
}
