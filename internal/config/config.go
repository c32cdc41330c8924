// Package config defines the war room configuration, loaded through viper
// from a YAML config file and WARROOM_-prefixed environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete war room configuration
type Config struct {
	Session Session `mapstructure:"session"`
	Expert  Expert  `mapstructure:"expert"`
	Voting  Voting  `mapstructure:"voting"`
	Archive Archive `mapstructure:"archive"`
	Logging Logging `mapstructure:"logging"`
}

// Session controls deliberation shape
type Session struct {
	// Mode is the deliberation mode: "standard" or "blitz" (single-round,
	// reduced prompts for time-critical decisions)
	Mode string `mapstructure:"mode"`
	// Rounds is the number of deliberation rounds (default: 1)
	Rounds int `mapstructure:"rounds"`
	// Escalated widens the roster with escalation-only seats for every phase
	Escalated bool `mapstructure:"escalated"`
	// Quorum is the minimum expert responses for a phase to complete.
	// Clamped to the active roster size.
	Quorum int `mapstructure:"quorum"`
	// RosterFile is an optional YAML file overriding the default roster
	RosterFile string `mapstructure:"roster_file"`
}

// Expert controls responder invocation
type Expert struct {
	// TimeoutSeconds bounds each responder call (default: 120)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// Retries is the number of additional attempts after a failed call
	// before recording an abstention (default: 2)
	Retries int `mapstructure:"retries"`
	// BackoffMs is the base backoff between attempts, doubled per retry
	// (default: 500)
	BackoffMs int `mapstructure:"backoff_ms"`
	// Command is the external responder CLI; empty selects the built-in
	// stub responder (dry runs)
	Command string `mapstructure:"command"`
	// Args are the responder CLI arguments; {role}, {model}, {phase} and
	// {round} placeholders are expanded per call
	Args []string `mapstructure:"args"`
}

// Voting controls aggregation
type Voting struct {
	// Finalists is how many top-ranked candidates pass to synthesis (2 or 3)
	Finalists int `mapstructure:"finalists"`
}

// Archive controls session persistence
type Archive struct {
	// Root is the directory session archives are written under
	Root string `mapstructure:"root"`
}

// Logging controls the session debug log
type Logging struct {
	// Level is one of DEBUG, INFO, WARN, ERROR
	Level string `mapstructure:"level"`
}

// Timeout returns the per-call responder timeout as a duration.
func (e Expert) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// Backoff returns the base retry backoff as a duration.
func (e Expert) Backoff() time.Duration {
	return time.Duration(e.BackoffMs) * time.Millisecond
}

// ValidModes returns the list of valid deliberation modes.
func ValidModes() []string {
	return []string{"standard", "blitz"}
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Session: Session{
			Mode:   "standard",
			Rounds: 1,
			Quorum: 2,
		},
		Expert: Expert{
			TimeoutSeconds: 120,
			Retries:        2,
			BackoffMs:      500,
		},
		Voting: Voting{
			Finalists: 2,
		},
		Archive: Archive{
			Root: defaultArchiveRoot(),
		},
		Logging: Logging{
			Level: "INFO",
		},
	}
}

// SetDefaults registers all defaults with viper so they apply even when no
// config file exists
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("session.mode", defaults.Session.Mode)
	viper.SetDefault("session.rounds", defaults.Session.Rounds)
	viper.SetDefault("session.escalated", defaults.Session.Escalated)
	viper.SetDefault("session.quorum", defaults.Session.Quorum)
	viper.SetDefault("session.roster_file", defaults.Session.RosterFile)

	viper.SetDefault("expert.timeout_seconds", defaults.Expert.TimeoutSeconds)
	viper.SetDefault("expert.retries", defaults.Expert.Retries)
	viper.SetDefault("expert.backoff_ms", defaults.Expert.BackoffMs)
	viper.SetDefault("expert.command", defaults.Expert.Command)
	viper.SetDefault("expert.args", defaults.Expert.Args)

	viper.SetDefault("voting.finalists", defaults.Voting.Finalists)

	viper.SetDefault("archive.root", defaults.Archive.Root)

	viper.SetDefault("logging.level", defaults.Logging.Level)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults if
// loading fails
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "warroom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".warroom"
	}
	return filepath.Join(home, ".config", "warroom")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func defaultArchiveRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".warroom/sessions"
	}
	return filepath.Join(home, ".warroom", "sessions")
}
