package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/warroom-dev/warroom/internal/session"
)

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export the decision summary of a completed session",
	Long: `Export a completed session's decision as a publication-ready summary.

Only completed sessions can be exported. The output is a read-only
projection (title, body, labels); publishing it anywhere is the caller's
business, warroom performs no network calls.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var exportJSON bool

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().BoolVar(&exportJSON, "json", false, "emit the summary as JSON")
}

func runExport(cmd *cobra.Command, args []string) error {
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
	summary, err := session.ExportDecisionSummary(record)
	if err != nil {
		return err
	}

	if exportJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("# %s\n\n", summary.Title)
	fmt.Println(summary.Body)
	fmt.Printf("Labels: %s\n", strings.Join(summary.Labels, ", "))
	return nil
}
