// Package config loads taskdesk settings from defaults, a TOML file, a .env
// file and the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

const (
	// FileName is the config file looked up in the config directory.
	FileName = "config.toml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TASKDESK_"

	DefaultBaseURL = "http://127.0.0.1:8000"
)

// Config is the effective configuration.
type Config struct {
	APIBaseURL  string
	APITimeout  time.Duration
	StoragePath string
	LogLevel    string
	LogFile     string
	Language    string
	StartPath   string
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) Config {
	return Config{
		APIBaseURL:  DefaultBaseURL,
		StoragePath: filepath.Join(dir, "taskdesk.db"),
		LogLevel:    zerolog.InfoLevel.String(),
		LogFile:     filepath.Join(dir, "taskdesk.log"),
	}
}

// DefaultDir returns $XDG_CONFIG_HOME/taskdesk, falling back to
// ~/.config/taskdesk.
func DefaultDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "taskdesk")
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url %q must be an absolute http(s) url", c.APIBaseURL)
	}
	if c.APITimeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Language != "" {
		if _, err := language.Parse(c.Language); err != nil {
			return fmt.Errorf("ui.language: %w", err)
		}
	}
	if c.StoragePath == "" {
		return fmt.Errorf("storage.path must not be empty")
	}
	return nil
}

// Level returns the parsed log level, info when unset.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// StartLocation returns the configured initial path with a leading slash.
func (c Config) StartLocation() string {
	if c.StartPath == "" || strings.HasPrefix(c.StartPath, "/") {
		return c.StartPath
	}
	return "/" + c.StartPath
}

// fileConfig mirrors config.toml. Pointers tell "unset" from zero values.
type fileConfig struct {
	API struct {
		BaseURL *string `toml:"base_url"`
		Timeout *string `toml:"timeout"`
	} `toml:"api"`
	Storage struct {
		Path *string `toml:"path"`
	} `toml:"storage"`
	Log struct {
		Level *string `toml:"level"`
		File  *string `toml:"file"`
	} `toml:"log"`
	UI struct {
		Language  *string `toml:"language"`
		StartPath *string `toml:"start_path"`
	} `toml:"ui"`
}

// TOML renders c in config file form.
func (c Config) TOML() (string, error) {
	var f fileConfig
	timeout := ""
	if c.APITimeout > 0 {
		timeout = c.APITimeout.String()
	}
	f.API.BaseURL = &c.APIBaseURL
	f.API.Timeout = &timeout
	f.Storage.Path = &c.StoragePath
	f.Log.Level = &c.LogLevel
	f.Log.File = &c.LogFile
	f.UI.Language = &c.Language
	f.UI.StartPath = &c.StartPath

	data, err := toml.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}
