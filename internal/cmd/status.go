package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/warroom-dev/warroom/internal/dag"
	"github.com/warroom-dev/warroom/internal/orchestrator"
)

var statusCmd = &cobra.Command{
	Use:   "status <session-id>",
	Short: "Show the progress of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	archive, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}

	record, err := archive.Load(args[0])
	if err != nil {
		return err
	}
	summary := orchestrator.SummarizeRecord(record)

	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("Session %s\n", summary.SessionID)
	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("Status:   %s\n", summary.Status)
	fmt.Printf("Phase:    %s\n", summary.CurrentPhase)
	fmt.Printf("Mode:     %s\n", summary.Mode)
	fmt.Printf("Problem:  %s\n", firstLine(summary.Problem))
	fmt.Printf("Nodes:    %d\n", summary.Nodes)
	if summary.RootHash != "" {
		integrity := "verified"
		if !dag.VerifyRootHash(record.MerkleDAG) {
			integrity = "MISMATCH"
		}
		fmt.Printf("Root:     %s (%s)\n", summary.RootHash, integrity)
	}
	if summary.FailureReason != "" {
		fmt.Printf("Failure:  %s\n", summary.FailureReason)
	}
	if summary.SelectedApproach != "" {
		fmt.Printf("Selected: %s\n", summary.SelectedApproach)
	}

	if len(summary.Phases) > 0 {
		fmt.Println("\nPhases:")
		for _, p := range summary.Phases {
			line := fmt.Sprintf("  %-18s %s", p.Phase, p.Status)
			if p.Abstentions > 0 {
				line += fmt.Sprintf("  (%d abstained)", p.Abstentions)
			}
			fmt.Println(line)
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		return s[:idx]
	}
	return s
}
