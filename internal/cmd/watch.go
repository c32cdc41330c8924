package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warroom-dev/warroom/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <session-id>",
	Short: "Watch a session's progress in a live dashboard",
	Long: `Open a read-only terminal dashboard over a session.

The dashboard polls the archive and shows phase progress, anonymized
contributions as they land, and the final decision once the session
closes. It can watch a session driven by another process.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	archive, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}

	// Fail fast on unknown sessions before taking over the terminal.
	if _, err := archive.Load(args[0]); err != nil {
		return err
	}

	app := tui.New(archive, args[0])
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
