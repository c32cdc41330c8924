package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/warroom-dev/warroom/internal/event"
	"github.com/warroom-dev/warroom/internal/logging"
	"github.com/warroom-dev/warroom/internal/orchestrator"
)

var startCmd = &cobra.Command{
	Use:   "start <problem statement>",
	Short: "Start a new deliberation session",
	Long: `Start a new deliberation session for the given problem statement.

The session runs to completion in the foreground: every expert on the
roster is consulted per phase, ballots are collected and tallied, and the
final decision is written to the session archive. Progress is printed as
phases complete. Interrupting with Ctrl-C cancels the session at the next
phase boundary.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStart,
}

var (
	startMode          string
	startRounds        int
	startEscalated     bool
	startOverride      string
	startJustification string
)

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringVar(&startMode, "mode", "", "deliberation mode: standard or blitz")
	startCmd.Flags().IntVar(&startRounds, "rounds", 0, "number of deliberation rounds")
	startCmd.Flags().BoolVar(&startEscalated, "escalated", false, "widen the roster with escalation-only seats")
	startCmd.Flags().StringVar(&startOverride, "override", "", "supreme commander override: approach label to select instead of the vote winner")
	startCmd.Flags().StringVar(&startJustification, "justification", "", "written justification for the override (required with --override)")
}

// cancelOnInterrupt blocks until an interrupt arrives, then requests
// cancellation of the running session. The session id is handed over on a
// channel so the interrupt path never races the bus handler that learns
// it. An interrupt before any session has started does nothing.
func cancelOnInterrupt(interrupts <-chan os.Signal, started <-chan string, cancel func(string) error) {
	<-interrupts
	select {
	case id := <-started:
		fmt.Println("\ncancelling at next phase boundary...")
		_ = cancel(id)
	default:
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if startMode != "" {
		cfg.Session.Mode = startMode
	}
	if startRounds > 0 {
		cfg.Session.Rounds = startRounds
	}
	if startEscalated {
		cfg.Session.Escalated = true
	}

	archive, err := openArchive(cfg)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	logger, err := logging.NewLogger("", cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	bus := event.NewBus()
	bus.Subscribe("phase.completed", func(ev event.Event) {
		e := ev.(event.PhaseCompletedEvent)
		fmt.Printf("phase %-16s round %d  responses %d  abstentions %d\n",
			e.Phase, e.Round, e.Responses, e.Abstentions)
	})
	bus.Subscribe("expert.abstained", func(ev event.Event) {
		e := ev.(event.ExpertAbstainedEvent)
		fmt.Printf("  %s abstained in %s after %d attempts\n", e.Role, e.Phase, e.Attempts)
	})
	bus.Subscribe("votes.tallied", func(ev event.Event) {
		e := ev.(event.VotesTalliedEvent)
		fmt.Printf("votes tallied: %d ballots, finalists %s\n", e.Ballots, strings.Join(e.Finalists, ", "))
	})

	orch := orchestrator.New(cfg, archive, buildResponder(cfg), bus, logger)

	// Ctrl-C requests cancellation at the next phase boundary; a second
	// interrupt kills the process the usual way.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)

	started := make(chan string, 1)
	bus.Subscribe("session.started", func(ev event.Event) {
		e := ev.(event.SessionStartedEvent)
		started <- e.SessionID
		fmt.Printf("session %s started: %d experts\n", e.SessionID, e.Experts)
	})
	go cancelOnInterrupt(interrupts, started, orch.Cancel)

	problem := strings.Join(args, " ")
	var opts []orchestrator.StartOption
	if startOverride != "" {
		opts = append(opts, orchestrator.WithOverride(startOverride, startJustification))
	}

	id, err := orch.StartSession(cmd.Context(), problem, opts...)
	if err != nil {
		if id != "" {
			fmt.Printf("session %s ended: %v\n", id, err)
		}
		return err
	}

	record, err := archive.Load(id)
	if err != nil {
		return fmt.Errorf("failed to reload session: %w", err)
	}
	fmt.Printf("\nsession %s completed\n", id)
	fmt.Printf("selected approach: %s\n", record.FinalDecision.SelectedApproach)
	fmt.Printf("root hash: %s\n", record.MerkleDAG.RootHash)
	fmt.Printf("archive: %s\n", archive.SessionDir(id))
	return nil
}
