package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/warroom-dev/warroom/internal/errors"
	"github.com/warroom-dev/warroom/internal/expert"
	"github.com/warroom-dev/warroom/internal/logging"
)

// Validate checks the configuration for values that would make a
// deliberation impossible. It returns the first violation found.
func (c *Config) Validate() error {
	if !isValidMode(c.Session.Mode) {
		return errors.NewValidationError("session.mode",
			fmt.Sprintf("must be one of %v", ValidModes())).WithValue(c.Session.Mode)
	}
	if c.Session.Rounds < 1 {
		return errors.NewValidationError("session.rounds", "must be at least 1").
			WithValue(fmt.Sprintf("%d", c.Session.Rounds))
	}
	if c.Session.Quorum < 1 {
		return errors.NewValidationError("session.quorum", "must be at least 1").
			WithValue(fmt.Sprintf("%d", c.Session.Quorum))
	}
	if c.Expert.TimeoutSeconds < 1 {
		return errors.NewValidationError("expert.timeout_seconds", "must be at least 1").
			WithValue(fmt.Sprintf("%d", c.Expert.TimeoutSeconds))
	}
	if c.Expert.Retries < 0 {
		return errors.NewValidationError("expert.retries", "must not be negative").
			WithValue(fmt.Sprintf("%d", c.Expert.Retries))
	}
	if c.Expert.BackoffMs < 0 {
		return errors.NewValidationError("expert.backoff_ms", "must not be negative").
			WithValue(fmt.Sprintf("%d", c.Expert.BackoffMs))
	}
	if c.Voting.Finalists < 2 || c.Voting.Finalists > 3 {
		return errors.NewValidationError("voting.finalists", "must be 2 or 3").
			WithValue(fmt.Sprintf("%d", c.Voting.Finalists))
	}
	if c.Archive.Root == "" {
		return errors.NewValidationError("archive.root", "must not be empty")
	}
	if c.Logging.Level != "" && !isValidLevel(c.Logging.Level) {
		return errors.NewValidationError("logging.level",
			fmt.Sprintf("must be one of %v", logging.ValidLevels())).WithValue(c.Logging.Level)
	}
	return nil
}

func isValidMode(mode string) bool {
	for _, m := range ValidModes() {
		if m == mode {
			return true
		}
	}
	return false
}

// isValidLevel accepts any case; the logger normalizes on use.
func isValidLevel(level string) bool {
	for _, l := range logging.ValidLevels() {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}

// LoadRoster returns the roster for this configuration: the contents of
// session.roster_file when set, otherwise the built-in default bench.
// The roster is validated before being returned.
func (c *Config) LoadRoster() (expert.Roster, error) {
	roster := expert.DefaultRoster()

	if c.Session.RosterFile != "" {
		data, err := os.ReadFile(c.Session.RosterFile)
		if err != nil {
			return expert.Roster{}, errors.NewValidationError("session.roster_file", err.Error()).
				WithValue(c.Session.RosterFile)
		}
		roster = expert.Roster{}
		if err := yaml.Unmarshal(data, &roster); err != nil {
			return expert.Roster{}, errors.NewValidationError("session.roster_file",
				fmt.Sprintf("invalid YAML: %v", err)).WithValue(c.Session.RosterFile)
		}
	}

	if err := roster.Validate(); err != nil {
		return expert.Roster{}, err
	}
	return roster, nil
}
