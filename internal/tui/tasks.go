package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskdesk/internal/api"
	"github.com/sadopc/taskdesk/internal/export"
	"github.com/sadopc/taskdesk/internal/i18n"
	"github.com/sadopc/taskdesk/internal/model"
	"github.com/sadopc/taskdesk/internal/tasks"
)

type formKind string

const (
	formNone   formKind = ""
	formNew    formKind = "new"
	formEdit   formKind = "edit"
	formDelete formKind = "delete"
	formExport formKind = "export"
)

// taskFields holds the task form values as pointers (survive value copies).
type taskFields struct {
	title       *string
	description *string
	start       *string
	end         *string
	status      *model.Status
	category    *model.Category
	assigned    *string
	completed   *bool
	confirm     *bool
	format      *export.Format
	path        *string
}

func newTaskFields() taskFields {
	var (
		title, desc, start, end, assigned, path string
		status                                  = model.DefaultStatus
		category                                = model.DefaultCategory
		completed, confirm                      bool
		format                                  = export.FormatCSV
	)
	return taskFields{
		title:       &title,
		description: &desc,
		start:       &start,
		end:         &end,
		status:      &status,
		category:    &category,
		assigned:    &assigned,
		completed:   &completed,
		confirm:     &confirm,
		format:      &format,
		path:        &path,
	}
}

func (f taskFields) load(d model.Draft) {
	*f.title = d.Title
	*f.description = d.Description
	*f.start = formatTime(d.StartTime)
	*f.end = formatTime(d.EndTime)
	*f.status = d.Status
	*f.category = d.Category
	*f.assigned = strings.Join(d.AssignedUsers, ", ")
	*f.completed = d.Completed
}

// draft reads the form back. base carries fields the form does not edit.
func (f taskFields) draft(base model.Draft) (model.Draft, error) {
	d := base
	d.Title = strings.TrimSpace(*f.title)
	d.Description = strings.TrimSpace(*f.description)
	d.Status = *f.status
	d.Category = *f.category
	d.Completed = *f.completed
	d.AssignedUsers = api.SplitList(*f.assigned)

	var err error
	if d.StartTime, err = parseTime(*f.start); err != nil {
		return d, err
	}
	if d.EndTime, err = parseTime(*f.end); err != nil {
		return d, err
	}
	return d, nil
}

type tasksModel struct {
	coll   *tasks.Collection
	st     *styles
	width  int
	height int

	cursor int

	form      *huh.Form
	formKind  formKind
	editingID string
	formErr   string // blocking alert shown above the form
	fields    taskFields
}

func newTasksModel(c *tasks.Collection, st *styles) tasksModel {
	return tasksModel{coll: c, st: st, fields: newTaskFields()}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m tasksModel) formActive() bool {
	return m.form != nil
}

func (m tasksModel) selected() (model.Task, bool) {
	items := m.coll.Items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return model.Task{}, false
	}
	return items[m.cursor], true
}

func (m tasksModel) refresh() tea.Cmd {
	c := m.coll
	return func() tea.Msg {
		return opDoneMsg{err: c.Refresh(context.Background()), fallback: "errorFetchingTasks"}
	}
}

func (m tasksModel) update(msg tea.Msg, l *i18n.Localizer) (tasksModel, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg, l)
	}
	if n := m.coll.Len(); m.cursor >= n {
		m.cursor = max(0, n-1)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, keys.Down):
		if m.cursor < m.coll.Len()-1 {
			m.cursor++
		}
	case key.Matches(km, keys.Refresh):
		return m, m.refresh()
	case key.Matches(km, keys.New):
		return m.showTaskForm(formNew, model.Task{Status: model.DefaultStatus, Category: model.DefaultCategory}, l)
	case key.Matches(km, keys.Edit), key.Matches(km, keys.Enter):
		if t, ok := m.selected(); ok {
			return m.showTaskForm(formEdit, t, l)
		}
	case key.Matches(km, keys.Delete):
		if t, ok := m.selected(); ok {
			return m.showDeleteForm(t, l)
		}
	case key.Matches(km, keys.Toggle):
		if t, ok := m.selected(); ok {
			return m, m.toggle(t)
		}
	case key.Matches(km, keys.Export):
		return m.showExportForm(l)
	}
	return m, nil
}

func (m tasksModel) toggle(t model.Task) tea.Cmd {
	c := m.coll
	return func() tea.Msg {
		_, err := c.ToggleCompletion(context.Background(), t.ID)
		return opDoneMsg{err: err, fallback: "errorUpdatingTask", success: "taskUpdatedSuccess"}
	}
}

func (m tasksModel) showTaskForm(kind formKind, t model.Task, l *i18n.Localizer) (tasksModel, tea.Cmd) {
	m.fields.load(t.Draft())
	m.formKind = kind
	m.editingID = t.ID
	m.formErr = ""

	statusOptions := make([]huh.Option[model.Status], len(model.Statuses))
	for i, s := range model.Statuses {
		statusOptions[i] = huh.NewOption(label(l, statusKey(s), string(s)), s)
	}
	catOptions := make([]huh.Option[model.Category], len(model.Categories))
	for i, c := range model.Categories {
		catOptions[i] = huh.NewOption(label(l, categoryKey(c), string(c)), c)
	}
	required := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(l.T("errorRequired"))
		}
		return nil
	}
	validTime := func(s string) error {
		if _, err := parseTime(s); err != nil {
			return errors.New(l.T("errorInvalidTime"))
		}
		return nil
	}

	fields := []huh.Field{
		huh.NewInput().Title(l.T("title")).Validate(required).Value(m.fields.title),
		huh.NewText().Title(l.T("description")).Lines(3).Validate(required).Value(m.fields.description),
		huh.NewInput().Title(l.T("startTime")).Placeholder(timeLayout).Validate(validTime).Value(m.fields.start),
		huh.NewInput().Title(l.T("endTime")).Placeholder(timeLayout).Validate(validTime).Value(m.fields.end),
		huh.NewSelect[model.Status]().Title(l.T("status")).Options(statusOptions...).Value(m.fields.status),
		huh.NewSelect[model.Category]().Title(l.T("category")).Options(catOptions...).Value(m.fields.category),
		huh.NewInput().Title(l.T("assignedUsers")).Value(m.fields.assigned),
	}
	if kind == formEdit {
		fields = append(fields, huh.NewConfirm().Title(l.T("completed")).Value(m.fields.completed))
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
	return m, m.form.Init()
}

func (m tasksModel) showDeleteForm(t model.Task, l *i18n.Localizer) (tasksModel, tea.Cmd) {
	*m.fields.confirm = false
	m.formKind = formDelete
	m.editingID = t.ID
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(l.T("deleteTaskConfirm", "title", t.Title)).
				Affirmative(l.T("deleteTask")).
				Negative(l.T("cancel")).
				Value(m.fields.confirm),
		),
	).WithShowHelp(true)
	return m, m.form.Init()
}

func (m tasksModel) showExportForm(l *i18n.Localizer) (tasksModel, tea.Cmd) {
	*m.fields.format = export.FormatCSV
	*m.fields.path = ""
	m.formKind = formExport

	options := make([]huh.Option[export.Format], len(export.Formats))
	for i, f := range export.Formats {
		options[i] = huh.NewOption(strings.ToUpper(string(f)), f)
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[export.Format]().Title(l.T("exportFormat")).Options(options...).Value(m.fields.format),
			huh.NewInput().Title(l.T("exportPath")).
				PlaceholderFunc(func() string { return export.DefaultPath(*m.fields.format, time.Now()) }, m.fields.format).
				Value(m.fields.path),
		).Title(l.T("exportTasks")),
	).WithShowHelp(true)
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg, l *i18n.Localizer) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.form = nil
			m.formKind = formNone
			m.formErr = ""
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.form = nil
		m.formKind = formNone
		return m, nil
	case huh.StateCompleted:
		kind := m.formKind
		if kind == formNew || kind == formEdit {
			// The draft stays in the form until it passes the presence check.
			d, _ := m.fields.draft(model.NewDraft())
			if err := d.Validate(); err != nil {
				m.form.State = huh.StateNormal
				m.formErr = l.T("errorRequired")
				return m, nil
			}
		}
		m.formErr = ""
		m.form = nil
		m.formKind = formNone
		return m, m.submit(kind, l)
	}
	return m, cmd
}

func (m tasksModel) submit(kind formKind, l *i18n.Localizer) tea.Cmd {
	c := m.coll
	id := m.editingID

	switch kind {
	case formNew:
		d, err := m.fields.draft(model.NewDraft())
		if err != nil {
			return opCmd(err, "errorInvalidTime", "")
		}
		return func() tea.Msg {
			_, err := c.Add(context.Background(), d)
			return opDoneMsg{err: err, fallback: "errorCreatingTask", success: "taskCreatedSuccess"}
		}

	case formEdit:
		t, ok := c.Get(id)
		if !ok {
			return opCmd(tasks.ErrTaskNotFound, "errorUpdatingTask", "")
		}
		d, err := m.fields.draft(t.Draft())
		if err != nil {
			return opCmd(err, "errorInvalidTime", "")
		}
		return func() tea.Msg {
			_, err := c.Replace(context.Background(), t.WithDraft(d))
			return opDoneMsg{err: err, fallback: "errorUpdatingTask", success: "taskUpdatedFullSuccess"}
		}

	case formDelete:
		if !*m.fields.confirm {
			return nil
		}
		return func() tea.Msg {
			return opDoneMsg{err: c.Remove(context.Background(), id), fallback: "errorDeletingTask", success: "taskDeletedSuccess"}
		}

	case formExport:
		f, path := *m.fields.format, strings.TrimSpace(*m.fields.path)
		if path == "" {
			path = export.DefaultPath(f, time.Now())
		}
		return func() tea.Msg {
			items := c.Items()
			return exportDoneMsg{path: path, count: len(items), err: export.ToFile(path, f, items)}
		}
	}
	return nil
}

func opCmd(err error, fallback, success string) tea.Cmd {
	return func() tea.Msg { return opDoneMsg{err: err, fallback: fallback, success: success} }
}

func (m tasksModel) view(l *i18n.Localizer, now time.Time) string {
	w := m.width - 4

	if m.form != nil {
		title := l.T("addNewTask")
		switch m.formKind {
		case formEdit:
			title = l.T("editTask")
		case formDelete:
			title = l.T("deleteTask")
		case formExport:
			title = l.T("exportTasks")
		}
		parts := []string{m.st.title.Render(title), ""}
		if m.formErr != "" {
			parts = append(parts, m.st.errorText.Render(m.formErr), "")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, append(parts, m.form.View())...)
		return m.st.activePanel.Width(w).Render(content)
	}

	title := m.st.title.Render(l.T("yourTasks"))
	items := m.coll.Items()
	if len(items) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			m.st.muted.Render(l.T("noTasksYet")),
		)
		return m.st.panel.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	titleWidth := max(12, min(40, w-48))
	header := m.st.muted.Render(fmt.Sprintf("  %-3s %-*s %-12s %-10s %s", "", titleWidth, l.T("title"), l.T("status"), l.T("category"), l.T("endTime")))
	rows = append(rows, header)

	// Keep the cursor visible when the list is taller than the panel.
	visible := max(3, m.height-12)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(len(items), start+visible)

	for i := start; i < end; i++ {
		rows = append(rows, m.renderRow(items[i], i == m.cursor, titleWidth, l, now))
	}

	rows = append(rows, "")
	rows = append(rows, m.st.muted.Render("  n: new  e: edit  d: delete  space: toggle  r: refresh  x: export"))

	return m.st.panel.Width(w).Render(strings.Join(rows, "\n"))
}

func (m tasksModel) renderRow(t model.Task, selected bool, titleWidth int, l *i18n.Localizer, now time.Time) string {
	cursor := "  "
	style := m.st.normalItem
	if selected {
		cursor = "> "
		style = m.st.selectedItem
	}
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}

	name := truncate(t.Title, titleWidth)
	row := fmt.Sprintf("%s%s %-*s %-12s %-10s %s",
		cursor, check, titleWidth, name,
		label(l, statusKey(t.Status), string(t.Status)),
		label(l, categoryKey(t.Category), string(t.Category)),
		formatTime(t.EndTime),
	)
	if t.Completed && !selected {
		row = m.st.strike.Render(row)
	} else {
		row = style.Render(row)
	}
	if t.Urgent(now) {
		row += " " + m.st.accent.Render(l.T("urgent"))
	}
	return row
}
