package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/warroom-dev/warroom/internal/config"
	"github.com/warroom-dev/warroom/internal/expert"
	"github.com/warroom-dev/warroom/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "warroom",
	Short: "Multi-expert deliberation engine",
	Long: `Warroom runs structured deliberation sessions: a bench of expert
roles works a problem through intelligence, assessment, course-of-action
development, red-teaming, ranked voting and synthesis. Contributions are
anonymized in a content-addressed DAG and attributed only when the
session closes.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/warroom/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/warroom")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("WARROOM")
	// Replace dots with underscores for nested keys in env vars
	// e.g., WARROOM_SESSION_MODE for session.mode
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// openArchive opens the session archive the configuration points at.
func openArchive(cfg *config.Config) (*session.Store, error) {
	return session.NewStore(cfg.Archive.Root)
}

// buildResponder selects the expert backend: the configured external CLI,
// or the built-in deterministic stub when none is set (dry runs).
func buildResponder(cfg *config.Config) expert.Responder {
	if cfg.Expert.Command == "" {
		return expert.NewStubResponder()
	}
	return expert.NewCLIResponder(cfg.Expert.Command, cfg.Expert.Args...)
}
