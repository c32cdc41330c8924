// Package session defines the persisted session record and its file-backed
// archive. A session record is the top-level object written to
// <archive-root>/<session-id>/session.json at every phase boundary; the
// archive is always left in a consistent, loadable state because every
// write is atomic and phase-boundary-aligned.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/warroom-dev/warroom/internal/dag"
	"github.com/warroom-dev/warroom/internal/expert"
)

// Status is the lifecycle state of a session record.
type Status string

const (
	// StatusInProgress marks a session still moving through phases.
	StatusInProgress Status = "in_progress"
	// StatusCompleted marks a session closed with a final decision.
	StatusCompleted Status = "completed"
	// StatusCancelled marks a session cancelled at a phase boundary.
	StatusCancelled Status = "cancelled"
	// StatusFailed marks a session terminated by an integrity or
	// configuration failure.
	StatusFailed Status = "failed"
)

// Configuration is the immutable shape of a deliberation, captured at
// session start.
type Configuration struct {
	Mode      string        `json:"mode"`
	Rounds    int           `json:"rounds"`
	Escalated bool          `json:"escalated"`
	Quorum    int           `json:"quorum"`
	Roster    expert.Roster `json:"roster"`
}

// Abstention records an expert that exhausted its retries for a phase.
type Abstention struct {
	Role     string `json:"role"`
	Attempts int    `json:"attempts"`
	Reason   string `json:"reason"`
}

// PhaseRecord holds the outcome of one phase.
type PhaseRecord struct {
	Status      string       `json:"status"`
	Artifacts   []string     `json:"artifacts,omitempty"`
	Abstentions []Abstention `json:"abstentions,omitempty"`
}

// FinalDecision is the synthesized outcome of a deliberation.
type FinalDecision struct {
	SelectedApproach string   `json:"selected_approach"`
	Rationale        string   `json:"rationale"`
	DissentingViews  []string `json:"dissenting_views,omitempty"`
	WatchPoints      []string `json:"watch_points,omitempty"`
	// Overridden is set when the supreme commander superseded the vote.
	Overridden bool `json:"overridden,omitempty"`
}

// Metrics summarizes resource usage across the whole deliberation.
type Metrics struct {
	TotalTokens      int     `json:"total_tokens"`
	TotalCostUSD     float64 `json:"total_cost_usd"`
	DurationSeconds  float64 `json:"duration_seconds"`
	ExpertsConsulted int     `json:"experts_consulted"`
}

// Record is the full persisted session.
type Record struct {
	SessionID     string                  `json:"session_id"`
	CreatedAt     time.Time               `json:"created_at"`
	Status        Status                  `json:"status"`
	Problem       string                  `json:"problem_statement"`
	Configuration Configuration           `json:"configuration"`
	MerkleDAG     dag.Snapshot            `json:"merkle_dag"`
	Phases        map[string]*PhaseRecord `json:"phases"`
	CurrentPhase  string                  `json:"current_phase"`
	FinalDecision *FinalDecision          `json:"final_decision,omitempty"`
	FailureReason string                  `json:"failure_reason,omitempty"`
	Metrics       Metrics                 `json:"metrics"`
	// CrossReference is filled if the decision is later published to an
	// external knowledge base.
	CrossReference string `json:"cross_reference,omitempty"`
}

// NewRecord creates an in-progress record for a fresh session.
func NewRecord(problem string, cfg Configuration) *Record {
	return &Record{
		SessionID:     uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Status:        StatusInProgress,
		Problem:       problem,
		Configuration: cfg,
		Phases:        make(map[string]*PhaseRecord),
	}
}

// Phase returns the record for a phase, creating it on first touch.
func (r *Record) Phase(name string) *PhaseRecord {
	if r.Phases == nil {
		r.Phases = make(map[string]*PhaseRecord)
	}
	p, ok := r.Phases[name]
	if !ok {
		p = &PhaseRecord{Status: "in_progress"}
		r.Phases[name] = p
	}
	return p
}

// Closed reports whether the record is in a terminal state.
func (r *Record) Closed() bool {
	return r.Status != StatusInProgress
}
