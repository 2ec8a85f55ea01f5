// Package app wires the session machine, task collection and their
// collaborators from a configuration.
package app

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sadopc/taskdesk/internal/api"
	"github.com/sadopc/taskdesk/internal/config"
	"github.com/sadopc/taskdesk/internal/i18n"
	"github.com/sadopc/taskdesk/internal/session"
	"github.com/sadopc/taskdesk/internal/store"
	"github.com/sadopc/taskdesk/internal/tasks"
)

// Options adjusts New beyond the configuration.
type Options struct {
	Version string
	// Path is the initial location, like a URL typed into the address bar.
	// Empty means the location saved by the previous run.
	Path       string
	Logger     zerolog.Logger
	HTTPClient *http.Client
	// LookupEnv reads locale variables; os.LookupEnv when nil.
	LookupEnv func(string) (string, bool)
}

// App is the running client.
type App struct {
	Config  config.Config
	Log     zerolog.Logger
	Store   *store.Store
	Prefs   *store.SessionStore
	API     *api.Client
	History *session.MemoryHistory
	Machine *session.Machine
	Tasks   *tasks.Collection
	Version string

	lookupEnv func(string) (string, bool)

	mu     sync.Mutex
	bundle *i18n.Bundle
	loc    *i18n.Localizer
}

// New opens storage, builds the gateway and starts the session machine.
func New(cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger

	db, err := store.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	ua := "taskdesk"
	if opts.Version != "" {
		ua += "/" + opts.Version
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.APITimeout}
	}
	client, err := api.New(cfg.APIBaseURL,
		api.WithHTTPClient(httpClient),
		api.WithLogger(log.With().Str("component", "api").Logger()),
		api.WithUserAgent(ua),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	prefs := store.NewSessionStore(db.Storage(client.BaseURL()))

	path := opts.Path
	if path == "" {
		saved, ok, err := prefs.Location()
		if err != nil {
			log.Warn().Err(err).Msg("read saved location")
		}
		if ok {
			path = saved
		} else {
			path = cfg.StartLocation()
		}
	}

	history := session.NewMemoryHistory(path)
	machine := session.NewMachine(prefs, history, log.With().Str("component", "session").Logger())
	collection := tasks.New(client, machine, log.With().Str("component", "tasks").Logger())

	history.OnChange(func(p string) {
		if err := prefs.SetLocation(p); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("save location")
		}
	})
	machine.OnAuthChange(func(authenticated bool) {
		if !authenticated {
			collection.Clear()
		}
	})

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	a := &App{
		Config:    cfg,
		Log:       log,
		Store:     db,
		Prefs:     prefs,
		API:       client,
		History:   history,
		Machine:   machine,
		Tasks:     collection,
		Version:   opts.Version,
		lookupEnv: lookup,
	}
	machine.Start()
	return a, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}

// Localizer loads the catalogs on first use and returns the translator for
// the preferred language: stored preference, then config, then the
// environment.
func (a *App) Localizer() (*i18n.Localizer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loc != nil {
		return a.loc, nil
	}

	bundle, err := i18n.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalogs: %w", err)
	}
	stored, _, err := a.Prefs.Language()
	if err != nil {
		a.Log.Warn().Err(err).Msg("read language preference")
	}
	tag := bundle.Match(stored, a.Config.Language, i18n.EnvLocale(a.lookupEnv))
	a.bundle = bundle
	a.loc = bundle.Localizer(tag)
	a.Log.Debug().Str("language", tag.String()).Msg("catalog loaded")
	return a.loc, nil
}

// SetLanguage stores the preference and switches the translator.
func (a *App) SetLanguage(tag string) (*i18n.Localizer, error) {
	if _, err := a.Localizer(); err != nil {
		return nil, err
	}
	if err := a.Prefs.SetLanguage(tag); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loc = a.bundle.Localizer(a.bundle.Match(tag))
	return a.loc, nil
}

// Languages lists the selectable languages.
func (a *App) Languages() []string {
	if _, err := a.Localizer(); err != nil {
		return nil
	}
	var out []string
	for _, t := range a.bundle.Supported() {
		out = append(out, t.String())
	}
	return out
}

// IsUnauthorized reports whether err means the stored session is no
// longer accepted by the server.
func IsUnauthorized(err error) bool {
	return errors.Is(err, api.ErrUnauthorized)
}
