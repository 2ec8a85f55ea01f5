package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskdesk/internal/i18n"
	"github.com/sadopc/taskdesk/internal/tasks"
)

// dashboardModel renders the aggregate cards and the category chart above
// the task list.
type dashboardModel struct {
	coll   *tasks.Collection
	st     *styles
	width  int
	height int

	chart categoryChart
}

func newDashboardModel(c *tasks.Collection, st *styles) dashboardModel {
	return dashboardModel{coll: c, st: st, chart: newCategoryChart(st)}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) view(l *i18n.Localizer, now time.Time) string {
	stats := d.coll.Stats(now)
	w := d.width - 4

	cards := d.renderCards(stats, l, w)
	if d.height < 30 {
		return cards
	}
	chart := d.chart.view(stats, l, w)
	return lipgloss.JoinVertical(lipgloss.Left, cards, chart)
}

func (d dashboardModel) renderCards(stats tasks.Stats, l *i18n.Localizer, w int) string {
	type card struct {
		label string
		value int
		style lipgloss.Style
	}
	cards := []card{
		{l.T("totalTasks"), stats.Total, d.st.highlight},
		{l.T("completedTasks"), stats.Completed, d.st.success},
		{l.T("pendingTasks"), stats.Pending, d.st.warning},
		{l.T("dueThisWeek"), stats.DueThisWeek, d.st.info},
		{l.T("urgentTasks"), stats.Urgent, d.st.accent},
	}

	cardWidth := max(12, w/len(cards)-2)
	rendered := make([]string, len(cards))
	for i, c := range cards {
		body := lipgloss.JoinVertical(lipgloss.Center,
			c.style.Bold(true).Render(strconv.Itoa(c.value)),
			d.st.muted.Render(truncate(c.label, cardWidth-2)),
		)
		rendered[i] = d.st.card.Width(cardWidth).Render(body)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
