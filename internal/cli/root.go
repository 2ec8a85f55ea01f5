// Package cli provides the command-line interface for taskdesk.
package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/taskdesk/internal/app"
	"github.com/sadopc/taskdesk/internal/config"
	"github.com/sadopc/taskdesk/internal/tui"
)

// Command group IDs.
const (
	groupSession = "session"
	groupTask    = "task"
	groupSetup   = "setup"
)

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

func launchTUI(a *app.App) error {
	p := tea.NewProgram(tui.NewApp(a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Execute runs the command line with the default configuration locations.
func Execute(version string) error {
	rt := NewRuntime(version, config.NewLoader())
	defer rt.Close()
	return NewRootCommand(rt).Execute()
}

// NewRootCommand creates the root command. Running it without a
// subcommand launches the TUI.
func NewRootCommand(rt *Runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskdesk",
		Short: "Task manager for the terminal",
		Long: `taskdesk is a terminal client for a task management API.

Without a subcommand it starts the interactive UI. The subcommands cover
the same operations for scripts.`,
		Version: rt.version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := rt.App()
			if err != nil {
				return err
			}
			return launchTUIFunc(a)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&rt.opts.ConfigPath, "config", "", "config file (default "+config.FileName+" in the config directory)")
	flags.StringVar(&rt.opts.APIURL, "api-url", "", "API base URL")
	flags.StringVar(&rt.opts.Path, "path", "", "initial location, e.g. /settings")
	flags.StringVar(&rt.opts.LogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddGroup(
		&cobra.Group{ID: groupSession, Title: "Session:"},
		&cobra.Group{ID: groupTask, Title: "Tasks:"},
		&cobra.Group{ID: groupSetup, Title: "Setup:"},
	)

	for _, cmd := range []*cobra.Command{newLoginCommand(rt), newLogoutCommand(rt), newWhoamiCommand(rt), newProfileCommand(rt)} {
		cmd.GroupID = groupSession
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{newTasksCommand(rt), newTUICommand(rt)} {
		cmd.GroupID = groupTask
		root.AddCommand(cmd)
	}
	configCmd := newConfigCommand(rt)
	configCmd.GroupID = groupSetup
	root.AddCommand(configCmd)

	return root
}

// newTUICommand creates the tui command (same as running taskdesk without arguments).
func newTUICommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch interactive TUI",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := rt.App()
			if err != nil {
				return err
			}
			return launchTUIFunc(a)
		},
	}
}
