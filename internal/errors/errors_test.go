package errors

import (
	"fmt"
	"testing"
	"time"
)

func TestSessionError_Formatting(t *testing.T) {
	err := NewSessionError("failed to load session", ErrSessionNotFound).WithSessionID("abc123")

	want := "session error [session=abc123]: failed to load session: session not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !Is(err, ErrSessionNotFound) {
		t.Error("expected errors.Is to match ErrSessionNotFound")
	}
}

func TestNodeError_TruncatesLongIDs(t *testing.T) {
	longID := "0123456789abcdef0123456789abcdef"
	err := NewNodeError("append rejected", ErrDuplicateNode).WithNodeID(longID)

	want := "node error [node=0123456789ab]: append rejected: duplicate node with conflicting lineage"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestResponderError_Context(t *testing.T) {
	err := NewResponderError("call failed", ErrResponderUnavailable).
		WithRole("intel-officer").
		WithPhase("intelligence").
		WithAttempt(2)

	got := err.Error()
	want := "responder error [role=intel-officer, phase=intelligence, attempt=2]: call failed: expert responder unavailable"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorsAs(t *testing.T) {
	var base error = fmt.Errorf("wrapped: %w", NewVotingError("tally failed", ErrNoBallots).WithRound(2))

	var votingErr *VotingError
	if !As(base, &votingErr) {
		t.Fatal("expected errors.As to extract *VotingError")
	}
	if votingErr.Round != 2 {
		t.Errorf("Round = %d, want 2", votingErr.Round)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"responder error", NewResponderError("down", ErrResponderUnavailable), true},
		{"timeout error", NewTimeoutError("expert call", 30*time.Second), true},
		{"bare unavailable sentinel", ErrResponderUnavailable, true},
		{"node error", NewNodeError("conflict", ErrDuplicateNode), false},
		{"validation error", NewValidationError("roster", "empty"), false},
		{"plain error", New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	if !IsUserFacing(NewSessionError("bad", nil)) {
		t.Error("session errors should be user-facing")
	}
	if IsUserFacing(NewResponderError("down", nil)) {
		t.Error("responder errors should not be user-facing")
	}
}

func TestValidationError_WrapsInvalidConfig(t *testing.T) {
	err := NewValidationError("experts", "at least one expert is required").WithValue("[]")
	if !Is(err, ErrInvalidConfig) {
		t.Error("validation errors should match ErrInvalidConfig")
	}
	want := `validation error [field=experts, value="[]"]: at least one expert is required`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.severity.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestSeverityOf(t *testing.T) {
	if got := SeverityOf(NewResponderError("down", nil)); got != SeverityWarning {
		t.Errorf("SeverityOf(responder) = %v, want warning", got)
	}
	if got := SeverityOf(New("plain")); got != SeverityError {
		t.Errorf("SeverityOf(plain) = %v, want error", got)
	}
}
