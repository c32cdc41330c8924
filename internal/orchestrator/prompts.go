package orchestrator

import (
	"fmt"
	"strings"

	"github.com/warroom-dev/warroom/internal/dag"
	"github.com/warroom-dev/warroom/internal/voting"
)

// Prompts are rendered fresh per phase and round. Prior contributions are
// always presented through the anonymized view so no expert sees who wrote
// what until the session is unsealed.

func contributionPrompt(phase Phase, problem string, round int, prior []dag.AnonymizedNode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "War room deliberation, round %d, phase %s.\n\n", round, phase)
	fmt.Fprintf(&b, "Problem statement:\n%s\n", problem)

	switch phase {
	case PhaseIntelligence:
		b.WriteString("\nProvide your situation analysis: relevant facts, constraints, unknowns and risks. Do not propose solutions yet.\n")
	case PhaseAssessment:
		b.WriteString("\nAssess the intelligence picture below. Identify the decisive factors and the assumptions most likely to be wrong.\n")
	case PhaseCOADevelopment:
		b.WriteString("\nPropose one concrete course of action. State what would be done, in what order, and the conditions under which you would abandon it.\n")
	case PhaseRedTeam:
		b.WriteString("\nAttack the candidate courses of action below. For each, give the most plausible failure mode and how an adversary or reality would exploit it.\n")
	case PhasePremortem:
		b.WriteString("\nAssume the leading approach was executed and failed badly. Write the post-incident summary: what went wrong and what early signal was missed.\n")
	}

	appendPrior(&b, prior)
	return b.String()
}

func votingPrompt(problem string, candidates []dag.AnonymizedNode) string {
	var b strings.Builder
	b.WriteString("War room voting phase.\n\n")
	fmt.Fprintf(&b, "Problem statement:\n%s\n\n", problem)
	b.WriteString("Rank ALL of the following candidate approaches from most to least preferred. Reply with the candidate labels in your preferred order, one per line.\n\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "%s:\n%s\n\n", c.AnonymousLabel, c.Content)
	}
	return b.String()
}

func synthesisPrompt(problem, selected string, result *voting.Result, prior []dag.AnonymizedNode) string {
	var b strings.Builder
	b.WriteString("War room synthesis phase.\n\n")
	fmt.Fprintf(&b, "Problem statement:\n%s\n\n", problem)
	fmt.Fprintf(&b, "The ranked vote selected %s. Full ranking:\n", selected)
	for _, s := range result.Ranking {
		fmt.Fprintf(&b, "  %s: %d points\n", s.ApproachID, s.Points)
	}
	b.WriteString("\nWrite the decision rationale: why this approach, what the dissenting views were, and what to watch for during execution.\n")
	appendPrior(&b, prior)
	return b.String()
}

func appendPrior(b *strings.Builder, prior []dag.AnonymizedNode) {
	if len(prior) == 0 {
		return
	}
	b.WriteString("\nPrior contributions (anonymized):\n\n")
	for _, n := range prior {
		fmt.Fprintf(b, "%s [%s, round %d]:\n%s\n\n", n.AnonymousLabel, n.Phase, n.Round, n.Content)
	}
}

// parseBallot extracts a ranked ballot from free-form responder output.
// Candidates are matched by label; the ranking is the order of each
// label's first occurrence in the text. Labels the responder never
// mentions are simply absent from the ballot.
func parseBallot(content string, candidates []string) []string {
	type hit struct {
		label string
		index int
	}
	var hits []hit
	for _, label := range candidates {
		if idx := labelIndex(content, label); idx >= 0 {
			hits = append(hits, hit{label: label, index: idx})
		}
	}
	// Insertion sort by index keeps equal positions in candidate order.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].index < hits[j-1].index; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	ranking := make([]string, 0, len(hits))
	for _, h := range hits {
		ranking = append(ranking, h.label)
	}
	return ranking
}

// labelIndex finds the first occurrence of label in content that stands
// on its own, so "Response A" never matches inside "Response AB" once a
// phase has issued double-letter labels. Returns -1 when absent.
func labelIndex(content, label string) int {
	for from := 0; from <= len(content)-len(label); {
		idx := strings.Index(content[from:], label)
		if idx < 0 {
			return -1
		}
		idx += from
		end := idx + len(label)
		if (idx == 0 || !isWordByte(content[idx-1])) &&
			(end == len(content) || !isWordByte(content[end])) {
			return idx
		}
		from = idx + 1
	}
	return -1
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
