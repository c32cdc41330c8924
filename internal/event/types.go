// Package event defines event types for decoupling components of the war
// room engine. These events enable communication between the orchestrator,
// the CLI surface and observers without direct dependencies.
package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "phase.started", "expert.responded")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Session Lifecycle Events
// -----------------------------------------------------------------------------

// SessionStartedEvent is emitted when a deliberation session begins.
type SessionStartedEvent struct {
	baseEvent
	SessionID string // Unique identifier for the session
	Problem   string // Problem statement under deliberation
	Experts   int    // Number of experts on the roster
	Escalated bool   // Whether the widened roster is in effect
}

// NewSessionStartedEvent creates a SessionStartedEvent.
func NewSessionStartedEvent(sessionID, problem string, experts int, escalated bool) SessionStartedEvent {
	return SessionStartedEvent{
		baseEvent: newBaseEvent("session.started"),
		SessionID: sessionID,
		Problem:   problem,
		Experts:   experts,
		Escalated: escalated,
	}
}

// SessionClosedEvent is emitted when a session reaches its terminal state
// with a recorded final decision.
type SessionClosedEvent struct {
	baseEvent
	SessionID        string // Unique identifier for the session
	SelectedApproach string // Approach chosen by voting or override
	RootHash         string // Tamper-evident fingerprint of the DAG
}

// NewSessionClosedEvent creates a SessionClosedEvent.
func NewSessionClosedEvent(sessionID, selectedApproach, rootHash string) SessionClosedEvent {
	return SessionClosedEvent{
		baseEvent:        newBaseEvent("session.closed"),
		SessionID:        sessionID,
		SelectedApproach: selectedApproach,
		RootHash:         rootHash,
	}
}

// SessionCancelledEvent is emitted when the caller cancels a session at a
// phase boundary.
type SessionCancelledEvent struct {
	baseEvent
	SessionID string // Unique identifier for the session
	Phase     string // Phase at which cancellation took effect
}

// NewSessionCancelledEvent creates a SessionCancelledEvent.
func NewSessionCancelledEvent(sessionID, phase string) SessionCancelledEvent {
	return SessionCancelledEvent{
		baseEvent: newBaseEvent("session.cancelled"),
		SessionID: sessionID,
		Phase:     phase,
	}
}

// SessionFailedEvent is emitted when a session terminates with an
// integrity or configuration failure.
type SessionFailedEvent struct {
	baseEvent
	SessionID string // Unique identifier for the session
	Phase     string // Phase in which the failure occurred
	Reason    string // Failure reason persisted to the archive
}

// NewSessionFailedEvent creates a SessionFailedEvent.
func NewSessionFailedEvent(sessionID, phase, reason string) SessionFailedEvent {
	return SessionFailedEvent{
		baseEvent: newBaseEvent("session.failed"),
		SessionID: sessionID,
		Phase:     phase,
		Reason:    reason,
	}
}

// -----------------------------------------------------------------------------
// Phase Events
// -----------------------------------------------------------------------------

// PhaseStartedEvent is emitted when the orchestrator enters a phase.
type PhaseStartedEvent struct {
	baseEvent
	SessionID string // Session the phase belongs to
	Phase     string // Phase name
	Round     int    // Deliberation round
	Experts   int    // Number of experts invoked for this phase
}

// NewPhaseStartedEvent creates a PhaseStartedEvent.
func NewPhaseStartedEvent(sessionID, phase string, round, experts int) PhaseStartedEvent {
	return PhaseStartedEvent{
		baseEvent: newBaseEvent("phase.started"),
		SessionID: sessionID,
		Phase:     phase,
		Round:     round,
		Experts:   experts,
	}
}

// PhaseCompletedEvent is emitted when all responses for a phase have been
// collected (including abstentions) and the quorum check passed.
type PhaseCompletedEvent struct {
	baseEvent
	SessionID   string // Session the phase belongs to
	Phase       string // Phase name
	Round       int    // Deliberation round
	Responses   int    // Contributions recorded in the DAG
	Abstentions int    // Experts that exhausted their retries
}

// NewPhaseCompletedEvent creates a PhaseCompletedEvent.
func NewPhaseCompletedEvent(sessionID, phase string, round, responses, abstentions int) PhaseCompletedEvent {
	return PhaseCompletedEvent{
		baseEvent:   newBaseEvent("phase.completed"),
		SessionID:   sessionID,
		Phase:       phase,
		Round:       round,
		Responses:   responses,
		Abstentions: abstentions,
	}
}

// -----------------------------------------------------------------------------
// Expert Events
// -----------------------------------------------------------------------------

// ExpertRespondedEvent is emitted when an expert contribution is written
// to the DAG. It carries the anonymous label, never the true identity.
type ExpertRespondedEvent struct {
	baseEvent
	SessionID string // Session the contribution belongs to
	Phase     string // Phase the contribution was produced in
	Label     string // Rotating anonymous label
	NodeID    string // Content-addressed node identifier
}

// NewExpertRespondedEvent creates an ExpertRespondedEvent.
func NewExpertRespondedEvent(sessionID, phase, label, nodeID string) ExpertRespondedEvent {
	return ExpertRespondedEvent{
		baseEvent: newBaseEvent("expert.responded"),
		SessionID: sessionID,
		Phase:     phase,
		Label:     label,
		NodeID:    nodeID,
	}
}

// ExpertAbstainedEvent is emitted when an expert exhausts its retries for
// a phase and is recorded as an abstention.
type ExpertAbstainedEvent struct {
	baseEvent
	SessionID string // Session the abstention belongs to
	Phase     string // Phase the expert failed to contribute to
	Role      string // Expert role (abstentions are not anonymized)
	Attempts  int    // Number of attempts made before giving up
}

// NewExpertAbstainedEvent creates an ExpertAbstainedEvent.
func NewExpertAbstainedEvent(sessionID, phase, role string, attempts int) ExpertAbstainedEvent {
	return ExpertAbstainedEvent{
		baseEvent: newBaseEvent("expert.abstained"),
		SessionID: sessionID,
		Phase:     phase,
		Role:      role,
		Attempts:  attempts,
	}
}

// -----------------------------------------------------------------------------
// Voting Events
// -----------------------------------------------------------------------------

// VotesTalliedEvent is emitted when the aggregation engine produces a
// ranking for a round.
type VotesTalliedEvent struct {
	baseEvent
	SessionID string   // Session the tally belongs to
	Round     int      // Deliberation round
	Ballots   int      // Number of ballots aggregated
	Ranking   []string // Approach IDs in descending score order
	Finalists []string // Top candidates passed to synthesis
}

// NewVotesTalliedEvent creates a VotesTalliedEvent.
func NewVotesTalliedEvent(sessionID string, round, ballots int, ranking, finalists []string) VotesTalliedEvent {
	return VotesTalliedEvent{
		baseEvent: newBaseEvent("votes.tallied"),
		SessionID: sessionID,
		Round:     round,
		Ballots:   ballots,
		Ranking:   ranking,
		Finalists: finalists,
	}
}

// OverrideAppliedEvent is emitted when the supreme commander overrides the
// top-ranked outcome.
type OverrideAppliedEvent struct {
	baseEvent
	SessionID  string // Session the override belongs to
	ApproachID string // Approach selected by the override
	NodeID     string // DAG node recording the override justification
}

// NewOverrideAppliedEvent creates an OverrideAppliedEvent.
func NewOverrideAppliedEvent(sessionID, approachID, nodeID string) OverrideAppliedEvent {
	return OverrideAppliedEvent{
		baseEvent:  newBaseEvent("override.applied"),
		SessionID:  sessionID,
		ApproachID: approachID,
		NodeID:     nodeID,
	}
}
