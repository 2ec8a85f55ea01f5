package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/taskdesk/internal/app"
	"github.com/sadopc/taskdesk/internal/export"
	"github.com/sadopc/taskdesk/internal/i18n"
	"github.com/sadopc/taskdesk/internal/model"
	"github.com/sadopc/taskdesk/internal/tasks"
)

// timeLayout is how --start and --end are given.
const timeLayout = "2006-01-02 15:04"

func newTasksCommand(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "Manage tasks",
		// No RunE: shows subcommand list when called without arguments
	}
	cmd.AddCommand(
		newTasksListCommand(rt),
		newTasksAddCommand(rt),
		newTasksEditCommand(rt),
		newTasksToggleCommand(rt),
		newTasksRmCommand(rt),
		newTasksStatsCommand(rt),
		newTasksExportCommand(rt),
	)
	return cmd
}

// loadTasks signs in and fetches the list.
func (r *Runtime) loadTasks(ctx context.Context) (*app.App, *i18n.Localizer, error) {
	a, l, err := r.signedIn()
	if err != nil {
		return nil, nil, err
	}
	if err := a.Tasks.Refresh(ctx); err != nil {
		return nil, nil, fail(a, l, err, "errorFetchingTasks")
	}
	return a, l, nil
}

func newTasksListCommand(rt *Runtime) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `Display the task list, newest first.

Completed tasks are hidden unless --all is given.

Output format is tab-separated with columns:
  ID, STATUS, CATEGORY, END, TITLE`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, l, err := rt.loadTasks(cmd.Context())
			if err != nil {
				return err
			}
			items := a.Tasks.Items()
			if !all {
				open := items[:0]
				for _, t := range items {
					if !t.Completed {
						open = append(open, t)
					}
				}
				items = open
			}
			if len(items) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), l.T("noTasksYet"))
				return nil
			}
			return printTasks(cmd.OutOrStdout(), items, time.Now())
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed tasks")
	return cmd
}

func printTasks(w io.Writer, items []model.Task, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tCATEGORY\tEND\tTITLE")
	for _, t := range items {
		title := t.Title
		if t.Urgent(now) {
			title += " [!]"
		}
		end := "-"
		if t.EndTime != nil {
			end = t.EndTime.Local().Format(timeLayout)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Category, end, title)
	}
	return tw.Flush()
}

// draftFlags are the task fields shared by add and edit.
type draftFlags struct {
	Title       string
	Description string
	Start       string
	End         string
	Status      string
	Category    string
	Assign      []string
	Urgent      bool
	Completed   bool
}

func (f *draftFlags) register(cmd *cobra.Command, withCompleted bool) {
	fl := cmd.Flags()
	fl.StringVar(&f.Title, "title", "", "task title")
	fl.StringVarP(&f.Description, "description", "d", "", "task description")
	fl.StringVar(&f.Start, "start", "", "start time ("+timeLayout+")")
	fl.StringVar(&f.End, "end", "", "end time ("+timeLayout+")")
	fl.StringVar(&f.Status, "status", "", "status (To Do, In Progress, Done, Blocked)")
	fl.StringVar(&f.Category, "category", "", "category (Work, Personal, Study, Shopping, Other)")
	fl.StringSliceVar(&f.Assign, "assign", nil, "assigned user or group (repeatable)")
	fl.BoolVar(&f.Urgent, "urgent", false, "mark as urgent")
	if withCompleted {
		fl.BoolVar(&f.Completed, "completed", false, "mark as completed")
	}
}

// apply copies the flags that were set onto d.
func (f *draftFlags) apply(cmd *cobra.Command, d *model.Draft) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		d.Title = f.Title
	}
	if changed("description") {
		d.Description = f.Description
	}
	if changed("start") {
		t, err := parseTime(f.Start)
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		d.StartTime = t
	}
	if changed("end") {
		t, err := parseTime(f.End)
		if err != nil {
			return fmt.Errorf("--end: %w", err)
		}
		d.EndTime = t
	}
	if changed("status") {
		s, err := parseStatus(f.Status)
		if err != nil {
			return err
		}
		d.Status = s
	}
	if changed("category") {
		c, err := parseCategory(f.Category)
		if err != nil {
			return err
		}
		d.Category = c
	}
	if changed("assign") {
		d.AssignedUsers = f.Assign
	}
	if changed("urgent") {
		urgent := f.Urgent
		d.IsUrgent = &urgent
	}
	if changed("completed") {
		d.Completed = f.Completed
	}
	return nil
}

func parseTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("want %s: %w", timeLayout, err)
	}
	return &t, nil
}

// parseStatus accepts a status in any case, with or without spaces.
func parseStatus(s string) (model.Status, error) {
	want := normalize(s)
	for _, st := range model.Statuses {
		if normalize(string(st)) == want {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func parseCategory(s string) (model.Category, error) {
	want := normalize(s)
	for _, c := range model.Categories {
		if normalize(string(c)) == want {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func normalize(s string) string {
	return strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s))
}

func newTasksAddCommand(rt *Runtime) *cobra.Command {
	var f draftFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Long: `Create a task. --title and --description are required.

Examples:
  taskdesk tasks add --title "Buy milk" -d "2 liters" --category Shopping
  taskdesk tasks add --title Report -d Q3 --end "2024-10-01 17:00" --assign ann --assign ops`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := model.NewDraft()
			if err := f.apply(cmd, &d); err != nil {
				return err
			}
			a, l, err := rt.signedIn()
			if err != nil {
				return err
			}
			t, err := a.Tasks.Add(cmd.Context(), d)
			if err != nil {
				return fail(a, l, err, "errorCreatingTask")
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s #%s\n", l.T("taskCreatedSuccess"), t.ID)
			return nil
		},
	}
	f.register(cmd, false)
	return cmd
}

func newTasksEditCommand(rt *Runtime) *cobra.Command {
	var f draftFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a task",
		Long: `Update a task. Only the flags given are changed.

Example:
  taskdesk tasks edit 12 --status "In Progress" --end "2024-10-02 09:00"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, l, err := rt.loadTasks(cmd.Context())
			if err != nil {
				return err
			}
			t, ok := a.Tasks.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", tasks.ErrTaskNotFound, args[0])
			}
			d := t.Draft()
			if err := f.apply(cmd, &d); err != nil {
				return err
			}
			if _, err := a.Tasks.Replace(cmd.Context(), t.WithDraft(d)); err != nil {
				return fail(a, l, err, "errorUpdatingTask")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), l.T("taskUpdatedFullSuccess"))
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

func newTasksToggleCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between completed and open",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, l, err := rt.loadTasks(cmd.Context())
			if err != nil {
				return err
			}
			t, err := a.Tasks.ToggleCompletion(cmd.Context(), args[0])
			if err != nil {
				return fail(a, l, err, "errorUpdatingTask")
			}
			state := l.T("markAsIncomplete")
			if t.Completed {
				state = l.T("markAsComplete")
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (#%s: %s)\n", l.T("taskUpdatedSuccess"), t.ID, state)
			return nil
		},
	}
}

func newTasksRmCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, l, err := rt.loadTasks(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Tasks.Remove(cmd.Context(), args[0]); err != nil {
				return fail(a, l, err, "errorDeletingTask")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), l.T("taskDeletedSuccess"))
			return nil
		},
	}
}

func newTasksStatsCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard aggregates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, l, err := rt.loadTasks(cmd.Context())
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), a.Tasks.Stats(time.Now()), l)
			return nil
		},
	}
}

func printStats(w io.Writer, s tasks.Stats, l *i18n.Localizer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := []struct {
		key string
		n   int
	}{
		{"totalTasks", s.Total},
		{"completedTasks", s.Completed},
		{"pendingTasks", s.Pending},
		{"dueThisWeek", s.DueThisWeek},
		{"urgentTasks", s.Urgent},
	}
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s:\t%d\n", l.T(r.key), r.n)
	}
	most := l.T("notAvailable")
	if s.MostUsed != "" {
		most = fmt.Sprintf("%s (%s)", s.MostUsed, l.T("tasksCount", "count", strconv.Itoa(s.MostUsedCount)))
	}
	_, _ = fmt.Fprintf(tw, "%s:\t%s\n", l.T("mostUsedCategory"), most)
	_ = tw.Flush()

	if len(s.ByCategory) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "\n%s\n", l.T("taskCategories"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range s.ByCategory {
		_, _ = fmt.Fprintf(tw, "  %s\t%d\n", c.Category, c.Count)
	}
	_ = tw.Flush()
}

func newTasksExportCommand(rt *Runtime) *cobra.Command {
	var opts struct {
		Format string
		Out    string
	}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the task list to a file",
		Long: `Write the task list as CSV, JSON or YAML.

--out - writes to standard output. Without --out the file goes to the home
directory, named after the current date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(opts.Format)
			if err != nil {
				return err
			}
			a, l, err := rt.loadTasks(cmd.Context())
			if err != nil {
				return err
			}
			items := a.Tasks.Items()

			if opts.Out == "-" {
				return export.Write(cmd.OutOrStdout(), f, items)
			}
			path := opts.Out
			if path == "" {
				path = export.DefaultPath(f, time.Now())
			}
			if err := export.ToFile(path, f, items); err != nil {
				return fmt.Errorf("%s: %w", l.T("errorExport"), err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), l.T("exportedTasks", "count", strconv.Itoa(len(items)), "path", path))
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Format, "format", "f", string(export.FormatCSV), "csv, json or yaml")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file, - for stdout")
	return cmd
}
