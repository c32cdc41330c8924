package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/warroom-dev/warroom/internal/errors"
	"github.com/warroom-dev/warroom/internal/session"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <session-id>",
	Short: "Cancel an in-flight session",
	Long: `Request cancellation of an in-flight session.

Sessions driven by another process are cancelled cooperatively: the lock
holder observes the request at its next phase boundary. Sessions whose
driving process has died are marked cancelled directly so the archive does
not report them as in progress forever.`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	archive, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}

	sessionID := args[0]
	record, err := archive.Load(sessionID)
	if err != nil {
		return err
	}
	if record.Closed() {
		return errors.NewSessionError("session already reached a terminal state", errors.ErrSessionClosed).
			WithSessionID(sessionID)
	}

	// A live lock means another process is driving the session; it owns
	// the cancellation. Without one the session was abandoned by a crash
	// and can be marked cancelled here.
	lockPath := filepath.Join(archive.SessionDir(sessionID), session.LockFileName)
	if lock, err := session.ReadLock(lockPath); err == nil && lock.Alive() {
		return fmt.Errorf("session is driven by PID %d on %s; interrupt that process to cancel", lock.PID, lock.Hostname)
	}

	record.Status = session.StatusCancelled
	if err := archive.Save(record); err != nil {
		return fmt.Errorf("failed to persist cancellation: %w", err)
	}
	fmt.Printf("session %s cancelled\n", sessionID)
	return nil
}
