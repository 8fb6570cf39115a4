// Package config loads the persisted gchat.yml settings. Precedence is
// command-line flags > config file > built-in defaults; the flag layer is
// applied in cmd where flag change state is known.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"gchat/pkg/orchestrate"
)

// Config is the persisted configuration surface.
type Config struct {
	ChatFile       string  `yaml:"chat_file"`
	Model          string  `yaml:"model"`
	TokenLevel     int     `yaml:"token_level"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	NegotiateFiles *bool   `yaml:"negotiate_files"` // nil = true
	AutoEscalate   *bool   `yaml:"auto_escalate"`   // nil = true
	Quiet          bool    `yaml:"quiet"`
	Verbose        bool    `yaml:"verbose"`
}

// Default returns the built-in defaults, matching the original tool's
// settings (gchat.md, 4096-token budget, ten-minute timeout).
func Default() *Config {
	return &Config{
		ChatFile:       "./gchat.md",
		Model:          "", // grok client default
		TokenLevel:     orchestrate.DefaultLevel,
		Temperature:    1.0,
		TimeoutSeconds: 600,
	}
}

// NegotiateFilesEnabled resolves the tri-state flag, defaulting to on.
func (c *Config) NegotiateFilesEnabled() bool {
	return c.NegotiateFiles == nil || *c.NegotiateFiles
}

// AutoEscalateEnabled resolves the tri-state flag, defaulting to on.
func (c *Config) AutoEscalateEnabled() bool {
	return c.AutoEscalate == nil || *c.AutoEscalate
}

// Locate returns the config file to use: the explicit path if given, else
// ./gchat.yml, else $HOME/.config/gchat/gchat.yml. Empty means none found.
func Locate(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat("gchat.yml"); err == nil {
		return "gchat.yml"
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "gchat", "gchat.yml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load reads path over the defaults. An empty path or a missing file is not
// an error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
