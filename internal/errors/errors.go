// Package errors provides centralized error definitions and error handling
// utilities for the war room deliberation engine. It defines domain-specific
// errors, semantic error types, error constructors with context wrapping, and
// error classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - SessionError: errors related to session lifecycle and persistence
//   - NodeError: errors related to the deliberation node store
//   - ResponderError: errors related to expert responder calls
//   - VotingError: errors related to ballot aggregation and overrides
//
// Semantic errors represent common conditions:
//   - ValidationError: invalid input or configuration
//   - TimeoutError: operation timed out
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewNodeError("append rejected", errors.ErrDuplicateNode).WithNodeID(id)
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrDuplicateNode) { ... }
//
//	var nodeErr *errors.NodeError
//	if errors.As(err, &nodeErr) { ... }
//
//	if errors.IsRetryable(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Session-related sentinel errors
var (
	// ErrSessionNotFound indicates that a session could not be found.
	ErrSessionNotFound = New("session not found")
	// ErrSessionLocked indicates that a session is locked by another process.
	ErrSessionLocked = New("session is locked")
	// ErrSessionCorrupted indicates that session data is corrupted.
	ErrSessionCorrupted = New("session data corrupted")
	// ErrSessionClosed indicates an operation against a closed session.
	ErrSessionClosed = New("session is closed")
	// ErrSessionNotConcluded indicates that the session has no final decision yet.
	ErrSessionNotConcluded = New("session has no final decision")
	// ErrSessionCancelled indicates that the session was cancelled by the caller.
	ErrSessionCancelled = New("session cancelled")
)

// Node-store sentinel errors
var (
	// ErrDuplicateNode indicates an identical node id with conflicting lineage.
	ErrDuplicateNode = New("duplicate node with conflicting lineage")
	// ErrNodeNotFound indicates that a node could not be found in the store.
	ErrNodeNotFound = New("node not found")
	// ErrAlreadyUnsealed indicates a second unseal of the same store.
	ErrAlreadyUnsealed = New("store already unsealed")
)

// Responder sentinel errors
var (
	// ErrResponderUnavailable indicates the expert service could not be reached.
	ErrResponderUnavailable = New("expert responder unavailable")
	// ErrExpertAbstained indicates an expert exhausted its retries for a phase.
	ErrExpertAbstained = New("expert abstained")
)

// Voting sentinel errors
var (
	// ErrMissingJustification indicates an override without written justification.
	ErrMissingJustification = New("override requires a written justification")
	// ErrNoBallots indicates aggregation was attempted with no ballots.
	ErrNoBallots = New("no ballots to aggregate")
	// ErrQuorumNotMet indicates too few responses for a phase to complete.
	ErrQuorumNotMet = New("quorum not met")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = New("invalid configuration")
)

// -----------------------------------------------------------------------------
// Severity
// -----------------------------------------------------------------------------

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// SessionError represents errors related to session lifecycle and persistence.
type SessionError struct {
	baseError
	SessionID string
}

// NewSessionError creates a new SessionError.
func NewSessionError(message string, cause error) *SessionError {
	return &SessionError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithSessionID adds a session ID to the error context.
func (e *SessionError) WithSessionID(id string) *SessionError {
	e.SessionID = id
	return e
}

// WithSeverity sets the error severity.
func (e *SessionError) WithSeverity(s Severity) *SessionError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *SessionError) Error() string {
	prefix := "session error"
	if e.SessionID != "" {
		prefix = fmt.Sprintf("session error [session=%s]", e.SessionID)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SessionError) Is(target error) bool {
	if _, ok := target.(*SessionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// NodeError represents errors from the deliberation node store.
type NodeError struct {
	baseError
	NodeID string
}

// NewNodeError creates a new NodeError.
func NewNodeError(message string, cause error) *NodeError {
	return &NodeError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithNodeID adds a node ID to the error context.
func (e *NodeError) WithNodeID(id string) *NodeError {
	e.NodeID = id
	return e
}

// Error returns the formatted error message.
func (e *NodeError) Error() string {
	prefix := "node error"
	if e.NodeID != "" {
		prefix = fmt.Sprintf("node error [node=%s]", shortID(e.NodeID))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *NodeError) Is(target error) bool {
	if _, ok := target.(*NodeError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ResponderError represents a failed expert responder call.
// Responder errors are retryable by default.
type ResponderError struct {
	baseError
	Role    string
	Phase   string
	Attempt int
}

// NewResponderError creates a new ResponderError.
func NewResponderError(message string, cause error) *ResponderError {
	return &ResponderError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: false,
		},
	}
}

// WithRole adds the expert role to the error context.
func (e *ResponderError) WithRole(role string) *ResponderError {
	e.Role = role
	return e
}

// WithPhase adds the phase to the error context.
func (e *ResponderError) WithPhase(phase string) *ResponderError {
	e.Phase = phase
	return e
}

// WithAttempt records which attempt failed.
func (e *ResponderError) WithAttempt(n int) *ResponderError {
	e.Attempt = n
	return e
}

// Error returns the formatted error message.
func (e *ResponderError) Error() string {
	var parts []string
	if e.Role != "" {
		parts = append(parts, fmt.Sprintf("role=%s", e.Role))
	}
	if e.Phase != "" {
		parts = append(parts, fmt.Sprintf("phase=%s", e.Phase))
	}
	if e.Attempt > 0 {
		parts = append(parts, fmt.Sprintf("attempt=%d", e.Attempt))
	}

	prefix := "responder error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("responder error [%s]", strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ResponderError) Is(target error) bool {
	if _, ok := target.(*ResponderError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// VotingError represents errors from ballot aggregation or overrides.
type VotingError struct {
	baseError
	Round int
}

// NewVotingError creates a new VotingError.
func NewVotingError(message string, cause error) *VotingError {
	return &VotingError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithRound adds the round number to the error context.
func (e *VotingError) WithRound(round int) *VotingError {
	e.Round = round
	return e
}

// Error returns the formatted error message.
func (e *VotingError) Error() string {
	prefix := "voting error"
	if e.Round > 0 {
		prefix = fmt.Sprintf("voting error [round=%d]", e.Round)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *VotingError) Is(target error) bool {
	if _, ok := target.(*VotingError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or configuration.
type ValidationError struct {
	baseError
	Field string
	Value string
}

// NewValidationError creates a new ValidationError for a named field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			cause:      ErrInvalidConfig,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
		Field: field,
	}
}

// WithValue records the offending value.
func (e *ValidationError) WithValue(v string) *ValidationError {
	e.Value = v
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("validation error [field=%s, value=%q]: %s", e.Field, e.Value, e.message)
	}
	return fmt.Sprintf("validation error [field=%s]: %s", e.Field, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that exceeded its deadline.
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    fmt.Sprintf("%s timed out after %s", operation, duration),
			cause:      ErrTimeout,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: false,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// classifier is implemented by errors that carry classification metadata.
type classifier interface {
	Severity() Severity
	IsRetryable() bool
	IsUserFacing() bool
}

// IsRetryable reports whether err is transient and the operation may succeed
// on retry. Responder and timeout errors are retryable; integrity and
// configuration errors are not.
func IsRetryable(err error) bool {
	var c classifier
	if errors.As(err, &c) {
		return c.IsRetryable()
	}
	return errors.Is(err, ErrResponderUnavailable) || errors.Is(err, ErrTimeout)
}

// IsUserFacing reports whether err is safe to display to end users.
func IsUserFacing(err error) bool {
	var c classifier
	if errors.As(err, &c) {
		return c.IsUserFacing()
	}
	return false
}

// SeverityOf returns the severity of err, defaulting to SeverityError for
// unclassified errors.
func SeverityOf(err error) Severity {
	var c classifier
	if errors.As(err, &c) {
		return c.Severity()
	}
	return SeverityError
}

// shortID truncates a content hash for display.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
