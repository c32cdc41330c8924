package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List archived sessions",
	Long:  `List every session in the archive, newest first, with its status and current phase.`,
	RunE:  runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	archive, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}

	infos, err := archive.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	fmt.Println(strings.Repeat("─", 70))
	fmt.Println("War Room Sessions")
	fmt.Println(strings.Repeat("─", 70))

	if len(infos) == 0 {
		fmt.Println("\nNo sessions found.")
		fmt.Println("Run 'warroom start <problem>' to begin a deliberation.")
		return nil
	}

	for _, info := range infos {
		fmt.Printf("\n%s\n", info.SessionID)
		fmt.Printf("  created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("  status:  %s (%s)\n", info.Status, info.CurrentPhase)
		fmt.Printf("  problem: %s\n", firstLine(info.Problem))
	}
	return nil
}
