package cli

import (
	"errors"
	"fmt"

	"github.com/sadopc/taskdesk/internal/app"
	"github.com/sadopc/taskdesk/internal/config"
	"github.com/sadopc/taskdesk/internal/i18n"
	"github.com/sadopc/taskdesk/internal/logging"
	"github.com/sadopc/taskdesk/internal/session"
)

// globalOptions are the persistent flags of the root command.
type globalOptions struct {
	ConfigPath string
	APIURL     string
	Path       string
	LogLevel   string
}

// Runtime builds the App once the flags are parsed and closes it when the
// command is done.
type Runtime struct {
	version string
	loader  *config.Loader
	opts    globalOptions

	app      *app.App
	closeLog func() error
}

func NewRuntime(version string, loader *config.Loader) *Runtime {
	return &Runtime{version: version, loader: loader}
}

// Config loads the configuration with flag overrides applied.
func (r *Runtime) Config() (config.Config, error) {
	cfg, err := r.loader.Load(r.opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if r.opts.APIURL != "" {
		cfg.APIBaseURL = r.opts.APIURL
	}
	if r.opts.LogLevel != "" {
		cfg.LogLevel = r.opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// App opens the client on first use.
func (r *Runtime) App() (*app.App, error) {
	if r.app != nil {
		return r.app, nil
	}
	cfg, err := r.Config()
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logging.Open(cfg.LogFile, cfg.Level())
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	a, err := app.New(cfg, app.Options{
		Version: r.version,
		Path:    r.opts.Path,
		Logger:  log,
	})
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	r.app = a
	r.closeLog = closeLog
	return a, nil
}

func (r *Runtime) Close() error {
	var errs []error
	if r.app != nil {
		errs = append(errs, r.app.Close())
		r.app = nil
	}
	if r.closeLog != nil {
		errs = append(errs, r.closeLog())
		r.closeLog = nil
	}
	return errors.Join(errs...)
}

// noticeError carries the user-facing message for a failed operation.
type noticeError struct {
	msg string
	err error
}

func (e *noticeError) Error() string { return e.msg }
func (e *noticeError) Unwrap() error { return e.err }

// fail routes err through the same handling as the terminal UI: a 401
// signs out, and the returned error reads like the notification.
func fail(a *app.App, l *i18n.Localizer, err error, fallbackKey string) error {
	if err == nil {
		return nil
	}
	n := a.Fail(err, l, fallbackKey)
	if n == nil {
		return err
	}
	return &noticeError{msg: n.Message, err: err}
}

var errNotSignedIn = fmt.Errorf("%w: run `taskdesk login` first", session.ErrSignedOut)

// signedIn opens the app and checks there is a session.
func (r *Runtime) signedIn() (*app.App, *i18n.Localizer, error) {
	a, err := r.App()
	if err != nil {
		return nil, nil, err
	}
	l, err := a.Localizer()
	if err != nil {
		return nil, nil, err
	}
	if !a.Machine.IsAuthenticated() {
		return nil, nil, errNotSignedIn
	}
	return a, l, nil
}
