package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sadopc/taskdesk/internal/i18n"
	"github.com/sadopc/taskdesk/internal/session"
)

// credentials are collected by flags or the prompt.
type credentials struct {
	Identifier string
	Password   string
}

// promptCredentialsFunc asks for whatever is missing. It is a variable so tests can replace it.
var promptCredentialsFunc = promptCredentials

func promptCredentials(l *i18n.Localizer, c *credentials) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(l.T("emailOrUsername")).
				Placeholder(l.T("emailOrUsernamePlaceholder")).
				Value(&c.Identifier),
			huh.NewInput().
				Title(l.T("password")).
				EchoMode(huh.EchoModePassword).
				Value(&c.Password),
		).Title(l.T("login")),
	).Run()
}

func newLoginCommand(rt *Runtime) *cobra.Command {
	var opts struct {
		credentials
		Guest bool
	}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Long: `Sign in with a username or email and a password.

Missing credentials are asked for interactively. With --guest a local-only
guest session is started instead; nothing is sent to the server and the
guest session ends with the process.

Examples:
  taskdesk login --user ann
  taskdesk login --guest`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.App()
			if err != nil {
				return err
			}
			l, err := a.Localizer()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if opts.Guest {
				if err := a.Machine.GuestLogin(a.API.GuestLogin(l.T("guestUser"))); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(w, l.T("loggedInAsGuest"))
				return nil
			}

			if strings.TrimSpace(opts.Identifier) == "" || opts.Password == "" {
				if err := promptCredentialsFunc(l, &opts.credentials); err != nil {
					return err
				}
			}
			if strings.TrimSpace(opts.Identifier) == "" || opts.Password == "" {
				return errors.New(l.T("errorLoginFieldsMissing"))
			}

			res, err := a.API.Login(cmd.Context(), strings.TrimSpace(opts.Identifier), opts.Password)
			if err != nil {
				return fail(a, l, err, "loginFailed")
			}
			if err := a.Machine.Login(res); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			_, _ = fmt.Fprintf(w, "%s (%s)\n", l.T("loggedInSuccess"), res.User.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Identifier, "user", "u", "", "username or email")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "password (prompted when empty)")
	cmd.Flags().BoolVar(&opts.Guest, "guest", false, "start a local-only guest session")
	cmd.MarkFlagsMutuallyExclusive("guest", "user")
	cmd.MarkFlagsMutuallyExclusive("guest", "password")

	return cmd
}

func newLogoutCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rt.App()
			if err != nil {
				return err
			}
			l, err := a.Localizer()
			if err != nil {
				return err
			}
			if err := a.Machine.Logout(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), l.T("loggedOut"))
			return nil
		},
	}
}

func newWhoamiCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, l, err := rt.signedIn()
			if err != nil {
				return err
			}
			u, _ := a.Machine.User()
			w := cmd.OutOrStdout()

			_, _ = fmt.Fprintf(w, "%s: %s\n", l.T("name"), u.Name)
			email := u.Email
			if email == "" {
				email = l.T("noEmailProvided")
			}
			_, _ = fmt.Fprintf(w, "%s: %s\n", l.T("email"), email)
			_, _ = fmt.Fprintf(w, "ID: %s\n", u.ID)
			if u.IsAdmin {
				_, _ = fmt.Fprintln(w, l.T("admin"))
			}
			if u.IsGuest() {
				_, _ = fmt.Fprintln(w, l.T("guestNotification.tasksNotSaved"))
			}

			if token := a.Machine.Auth().Token; token != "" {
				claims, err := session.TokenInfo(token)
				switch {
				case err != nil, claims.ExpiresAt.IsZero():
				case claims.Expired(time.Now()):
					_, _ = fmt.Fprintln(w, l.T("tokenExpired"))
				default:
					_, _ = fmt.Fprintln(w, l.T("tokenExpires", "time", claims.ExpiresAt.Local().Format(time.DateTime)))
				}
			}
			return nil
		},
	}
}
