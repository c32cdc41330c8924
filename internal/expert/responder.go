// Package expert defines the responder capability the orchestrator invokes
// to obtain contributions from reasoning agents, plus the roster types that
// describe which roles participate in a deliberation.
//
// Responders are modeled as a single interface with role and phase
// parameters rather than a hierarchy per provider, keeping the orchestrator
// provider-agnostic and letting tests substitute a deterministic stub.
package expert

import (
	"context"

	"github.com/warroom-dev/warroom/internal/errors"
)

// Request carries everything a responder needs to produce a contribution.
type Request struct {
	// Role is the expert role being consulted (e.g. "intel-officer").
	Role string
	// Model identifies the underlying reasoning model for the role.
	Model string
	// Prompt is the fully rendered instruction for this phase.
	Prompt string
	// Phase names the deliberation phase the contribution belongs to.
	Phase string
	// Round is the deliberation round number, starting at 1.
	Round int
}

// Response is a responder's contribution.
type Response struct {
	// Content is the contribution text, stored verbatim in the DAG.
	Content string
	// TokensUsed is the responder's own usage estimate; zero when the
	// provider reports nothing.
	TokensUsed int
}

// Responder produces one contribution per call. Implementations must honor
// ctx cancellation and deadlines, and return an error wrapping
// errors.ErrResponderUnavailable when the underlying service cannot be
// reached or times out.
type Responder interface {
	Respond(ctx context.Context, req Request) (Response, error)
}

// Unavailable wraps cause as a retryable responder failure for req.
// Helper for implementations.
func Unavailable(req Request, cause error) error {
	return errors.NewResponderError("call failed", errors.Join(errors.ErrResponderUnavailable, cause)).
		WithRole(req.Role).
		WithPhase(req.Phase)
}
