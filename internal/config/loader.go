package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Loader merges defaults <- config file <- .env <- environment. Later
// layers win. Flags are applied by the caller on top.
type Loader struct {
	dir       string
	envFile   string
	lookupEnv func(string) (string, bool)
}

func NewLoader() *Loader {
	return &Loader{
		dir:       DefaultDir(),
		envFile:   ".env",
		lookupEnv: os.LookupEnv,
	}
}

// NewLoaderWithDir creates a Loader reading from custom locations.
// This is useful for testing.
func NewLoaderWithDir(dir, envFile string, lookupEnv func(string) (string, bool)) *Loader {
	return &Loader{dir: dir, envFile: envFile, lookupEnv: lookupEnv}
}

// Dir is the directory holding config.toml and the default data files.
func (l *Loader) Dir() string { return l.dir }

// Load returns the merged configuration. An explicit path must exist; the
// default config file and .env file are optional.
func (l *Loader) Load(path string) (Config, error) {
	cfg := Default(l.dir)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(l.dir, FileName)
	}
	file, err := loadFile(path)
	switch {
	case err == nil:
		if err := file.apply(&cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, err
	}

	dotenv := map[string]string{}
	if l.envFile != "" {
		dotenv, err = godotenv.Read(l.envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", l.envFile, err)
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := l.lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileConfig
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

func (f *fileConfig) apply(cfg *Config) error {
	set(&cfg.APIBaseURL, f.API.BaseURL)
	set(&cfg.StoragePath, f.Storage.Path)
	set(&cfg.LogLevel, f.Log.Level)
	set(&cfg.LogFile, f.Log.File)
	set(&cfg.Language, f.UI.Language)
	set(&cfg.StartPath, f.UI.StartPath)
	if f.API.Timeout != nil {
		d, err := parseTimeout(*f.API.Timeout)
		if err != nil {
			return err
		}
		cfg.APITimeout = d
	}
	return nil
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

var envKeys = []struct {
	name  string
	field func(*Config) *string
}{
	{"API_BASE_URL", func(c *Config) *string { return &c.APIBaseURL }},
	{"STORAGE_PATH", func(c *Config) *string { return &c.StoragePath }},
	{"LOG_LEVEL", func(c *Config) *string { return &c.LogLevel }},
	{"LOG_FILE", func(c *Config) *string { return &c.LogFile }},
	{"UI_LANGUAGE", func(c *Config) *string { return &c.Language }},
	{"UI_START_PATH", func(c *Config) *string { return &c.StartPath }},
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, k := range envKeys {
		if v, ok := lookup(EnvPrefix + k.name); ok {
			*k.field(cfg) = v
		}
	}
	if v, ok := lookup(EnvPrefix + "API_TIMEOUT"); ok {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%sAPI_TIMEOUT: %w", EnvPrefix, err)
		}
		cfg.APITimeout = d
	}
	return nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("api.timeout: %w", err)
	}
	return d, nil
}
