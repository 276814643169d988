// Package config provides configuration management for the starshell CLI.
package config

import (
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/starshell/internal/history"
)

// Config holds all CLI configuration options.
type Config struct {
	HistoryFile  string        `koanf:"history_file"`
	HistoryLimit int           `koanf:"history_limit"` // 0 keeps every entry
	PS1          string        `koanf:"ps1"`
	PS2          string        `koanf:"ps2"`
	Startup      []string      `koanf:"startup"`
	NoColor      bool          `koanf:"no_color"`
	Verbose      bool          `koanf:"verbose"`
	LogLevel     string        `koanf:"log_level"`
	Banner       bool          `koanf:"banner"`
	Dialect      DialectConfig `koanf:"dialect"`
}

// DialectConfig toggles optional Starlark language features.
type DialectConfig struct {
	Set             bool `koanf:"set"`
	While           bool `koanf:"while"`
	TopLevelControl bool `koanf:"top_level_control"`
	GlobalReassign  bool `koanf:"global_reassign"`
	Recursion       bool `koanf:"recursion"`
}

// FileOptions converts the dialect into parser options.
func (d DialectConfig) FileOptions() *syntax.FileOptions {
	return &syntax.FileOptions{
		Set:             d.Set,
		While:           d.While,
		TopLevelControl: d.TopLevelControl,
		GlobalReassign:  d.GlobalReassign,
		Recursion:       d.Recursion,
	}
}

// Default configuration values.
const (
	DefaultConfigFile   = "starshell.yaml"
	DefaultHistoryLimit = history.DefaultLimit
	DefaultPS1          = ">>> "
	DefaultPS2          = "... "
)

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		HistoryLimit: DefaultHistoryLimit,
		PS1:          DefaultPS1,
		PS2:          DefaultPS2,
		Banner:       true,
		Dialect: DialectConfig{
			Set:             true,
			While:           true,
			TopLevelControl: true,
			GlobalReassign:  true,
			Recursion:       true,
		},
	}
}

// HistoryPath returns the configured history file or the per-user default.
func (c *Config) HistoryPath() string {
	if c.HistoryFile != "" {
		return c.HistoryFile
	}
	return history.DefaultPath()
}
