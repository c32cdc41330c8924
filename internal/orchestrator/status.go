package orchestrator

import (
	"time"

	"github.com/warroom-dev/warroom/internal/session"
)

// PhaseStatus is one phase's progress line in a status summary.
type PhaseStatus struct {
	Phase       string `json:"phase"`
	Status      string `json:"status"`
	Abstentions int    `json:"abstentions"`
	Artifacts   int    `json:"artifacts"`
}

// StatusSummary is the read-only progress view returned by Status and
// rendered by the CLI and watch surfaces.
type StatusSummary struct {
	SessionID        string         `json:"session_id"`
	CreatedAt        time.Time      `json:"created_at"`
	Status           session.Status `json:"status"`
	CurrentPhase     string         `json:"current_phase"`
	Problem          string         `json:"problem_statement"`
	Mode             string         `json:"mode"`
	Phases           []PhaseStatus  `json:"phases"`
	Nodes            int            `json:"nodes"`
	RootHash         string         `json:"root_hash,omitempty"`
	Unsealed         bool           `json:"unsealed"`
	FailureReason    string         `json:"failure_reason,omitempty"`
	SelectedApproach string         `json:"selected_approach,omitempty"`
}

// SummarizeRecord projects a session record into a status summary, phases
// listed in machine order with unreached phases omitted.
func SummarizeRecord(record *session.Record) *StatusSummary {
	summary := &StatusSummary{
		SessionID:     record.SessionID,
		CreatedAt:     record.CreatedAt,
		Status:        record.Status,
		CurrentPhase:  record.CurrentPhase,
		Problem:       record.Problem,
		Mode:          record.Configuration.Mode,
		Nodes:         len(record.MerkleDAG.Nodes),
		RootHash:      record.MerkleDAG.RootHash,
		Unsealed:      record.MerkleDAG.Unsealed,
		FailureReason: record.FailureReason,
	}
	if record.FinalDecision != nil {
		summary.SelectedApproach = record.FinalDecision.SelectedApproach
	}
	for _, phase := range Sequence(record.Configuration.Mode) {
		rec, ok := record.Phases[phase.String()]
		if !ok {
			continue
		}
		summary.Phases = append(summary.Phases, PhaseStatus{
			Phase:       phase.String(),
			Status:      rec.Status,
			Abstentions: len(rec.Abstentions),
			Artifacts:   len(rec.Artifacts),
		})
	}
	return summary
}
