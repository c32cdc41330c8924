package session

import (
	"fmt"
	"strings"

	"github.com/warroom-dev/warroom/internal/errors"
)

// Summary is a read-only projection of a completed session suitable for
// publication to an external knowledge base. The engine itself never
// performs network calls; callers decide where the summary goes.
type Summary struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

// ExportDecisionSummary builds a publication summary from a completed
// session record. It fails for sessions in any other state.
func ExportDecisionSummary(record *Record) (*Summary, error) {
	if record.Status != StatusCompleted {
		return nil, errors.NewSessionError(
			fmt.Sprintf("cannot export a %s session", record.Status),
			errors.ErrSessionNotConcluded,
		).WithSessionID(record.SessionID)
	}
	if record.FinalDecision == nil {
		return nil, errors.NewSessionError("completed session has no final decision", errors.ErrSessionCorrupted).
			WithSessionID(record.SessionID)
	}

	decision := record.FinalDecision

	var b strings.Builder
	fmt.Fprintf(&b, "## Decision\n\n%s\n\n", decision.SelectedApproach)
	fmt.Fprintf(&b, "## Rationale\n\n%s\n", decision.Rationale)

	if len(decision.DissentingViews) > 0 {
		b.WriteString("\n## Dissenting Views\n\n")
		for _, view := range decision.DissentingViews {
			fmt.Fprintf(&b, "- %s\n", view)
		}
	}
	if len(decision.WatchPoints) > 0 {
		b.WriteString("\n## Watch Points\n\n")
		for _, wp := range decision.WatchPoints {
			fmt.Fprintf(&b, "- %s\n", wp)
		}
	}

	fmt.Fprintf(&b, "\n---\n\nSession `%s` | %d experts consulted | root hash `%s`\n",
		record.SessionID,
		record.Metrics.ExpertsConsulted,
		record.MerkleDAG.RootHash,
	)

	labels := []string{"war-room", "decision"}
	if decision.Overridden {
		labels = append(labels, "commander-override")
	}
	if record.Configuration.Escalated {
		labels = append(labels, "escalated")
	}

	return &Summary{
		Title:  summaryTitle(record.Problem),
		Body:   b.String(),
		Labels: labels,
	}, nil
}

// summaryTitle derives a single-line title from the problem statement.
func summaryTitle(problem string) string {
	title := strings.TrimSpace(problem)
	if idx := strings.IndexAny(title, "\r\n"); idx >= 0 {
		title = title[:idx]
	}
	const maxTitle = 120
	if len(title) > maxTitle {
		title = title[:maxTitle-3] + "..."
	}
	if title == "" {
		title = "War room decision"
	}
	return "Decision: " + title
}
