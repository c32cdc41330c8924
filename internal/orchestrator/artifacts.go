package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/warroom-dev/warroom/internal/dag"
	"github.com/warroom-dev/warroom/internal/session"
	"github.com/warroom-dev/warroom/internal/voting"
)

// artifactHeader is the YAML front matter of every phase artifact.
type artifactHeader struct {
	SessionID   string    `yaml:"session_id"`
	Phase       string    `yaml:"phase"`
	Round       int       `yaml:"round"`
	Status      string    `yaml:"status"`
	GeneratedAt time.Time `yaml:"generated_at"`
}

func renderArtifact(header artifactHeader, body string) ([]byte, error) {
	front, err := yaml.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("rendering artifact front matter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(front)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return []byte(b.String()), nil
}

func phaseSummaryBody(phase Phase, contributions []dag.AnonymizedNode, abstentions []session.Abstention) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", phase)
	for _, n := range contributions {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", n.AnonymousLabel, n.Content)
	}
	if len(abstentions) > 0 {
		b.WriteString("## Abstentions\n\n")
		for _, a := range abstentions {
			fmt.Fprintf(&b, "- %s after %d attempts: %s\n", a.Role, a.Attempts, a.Reason)
		}
	}
	return b.String()
}

func tallyBody(result *voting.Result, ballots []voting.Ballot) string {
	var b strings.Builder
	b.WriteString("# Vote Tally\n\n")
	b.WriteString("| Approach | Points |\n|---|---|\n")
	for _, s := range result.Ranking {
		fmt.Fprintf(&b, "| %s | %d |\n", s.ApproachID, s.Points)
	}
	fmt.Fprintf(&b, "\nFinalists: %s\n\n## Ballots\n\n", strings.Join(result.Finalists, ", "))
	for _, ballot := range ballots {
		fmt.Fprintf(&b, "- %s: %s\n", ballot.Label, strings.Join(ballot.Ranking, " > "))
	}
	return b.String()
}

func decisionBody(decision *session.FinalDecision, rootHash string) string {
	var b strings.Builder
	b.WriteString("# Final Decision\n\n")
	fmt.Fprintf(&b, "**Selected approach:** %s\n\n", decision.SelectedApproach)
	if decision.Overridden {
		b.WriteString("*Selected by supreme commander override.*\n\n")
	}
	fmt.Fprintf(&b, "## Rationale\n\n%s\n", decision.Rationale)
	if len(decision.DissentingViews) > 0 {
		b.WriteString("\n## Dissenting Views\n\n")
		for _, v := range decision.DissentingViews {
			fmt.Fprintf(&b, "- %s\n", v)
		}
	}
	if len(decision.WatchPoints) > 0 {
		b.WriteString("\n## Watch Points\n\n")
		for _, w := range decision.WatchPoints {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	fmt.Fprintf(&b, "\nRoot hash: `%s`\n", rootHash)
	return b.String()
}
