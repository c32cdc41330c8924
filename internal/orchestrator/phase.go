package orchestrator

// Phase is one step of the deliberation state machine. The machine is
// linear: each phase runs to completion before the next may start, and no
// transitions are defined out of Closed.
type Phase string

const (
	// PhaseIntelligence gathers situation analysis from every expert.
	PhaseIntelligence Phase = "intelligence"
	// PhaseAssessment evaluates the intelligence picture.
	PhaseAssessment Phase = "assessment"
	// PhaseCOADevelopment develops candidate courses of action.
	PhaseCOADevelopment Phase = "coa-development"
	// PhaseRedTeam attacks the candidate courses of action.
	PhaseRedTeam Phase = "red-team"
	// PhaseVoting collects ranked ballots over the candidates.
	PhaseVoting Phase = "voting"
	// PhasePremortem imagines the selected approach having failed.
	PhasePremortem Phase = "premortem"
	// PhaseSynthesis composes the final decision.
	PhaseSynthesis Phase = "synthesis"
	// PhaseClosed is terminal: decision written, DAG unsealed and
	// root-hashed.
	PhaseClosed Phase = "closed"

	// PhaseSynthesisOverride tags the DAG node recording a supreme
	// commander override. It is not a state of the machine.
	PhaseSynthesisOverride Phase = "synthesis-override"
)

func (p Phase) String() string { return string(p) }

// ContributionPhases returns the fan-out phases that precede voting for a
// deliberation mode. Blitz mode collapses deliberation to a single
// intelligence pass for time-critical decisions.
func ContributionPhases(mode string) []Phase {
	if mode == "blitz" {
		return []Phase{PhaseIntelligence}
	}
	return []Phase{PhaseIntelligence, PhaseAssessment, PhaseCOADevelopment, PhaseRedTeam}
}

// CandidatePhase returns the phase whose contributions become the voting
// candidates for a mode.
func CandidatePhase(mode string) Phase {
	if mode == "blitz" {
		return PhaseIntelligence
	}
	return PhaseCOADevelopment
}

// Sequence returns the full phase order for a mode, ending in Closed.
func Sequence(mode string) []Phase {
	phases := ContributionPhases(mode)
	phases = append(phases, PhaseVoting)
	if mode != "blitz" {
		phases = append(phases, PhasePremortem)
	}
	return append(phases, PhaseSynthesis, PhaseClosed)
}
