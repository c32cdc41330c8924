package expert

import (
	"context"
	"fmt"
	"sync"
)

// StubResponder is a deterministic in-process responder used in tests and
// dry runs. Responses can be scripted per role and phase, and failures can
// be injected to exercise retry and abstention paths.
type StubResponder struct {
	mu sync.Mutex

	// scripted maps "role/phase" to a canned response.
	scripted map[string]string
	// failures maps "role/phase" to the number of calls that should fail
	// before one succeeds. A negative count fails forever.
	failures map[string]int
	// calls counts invocations per "role/phase".
	calls map[string]int
	// delay, when set, makes every call block until ctx expires,
	// simulating an unresponsive service.
	hang map[string]bool
}

// NewStubResponder creates a stub that echoes a generic contribution for
// any role until scripted otherwise.
func NewStubResponder() *StubResponder {
	return &StubResponder{
		scripted: make(map[string]string),
		failures: make(map[string]int),
		calls:    make(map[string]int),
		hang:     make(map[string]bool),
	}
}

// Script sets the canned response for a role in a phase.
func (s *StubResponder) Script(role, phase, content string) *StubResponder {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripted[key(role, phase)] = content
	return s
}

// FailTimes makes the next n calls for a role in a phase fail before
// succeeding. Pass a negative n to fail every call.
func (s *StubResponder) FailTimes(role, phase string, n int) *StubResponder {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key(role, phase)] = n
	return s
}

// Hang makes calls for a role in a phase block until the context expires.
func (s *StubResponder) Hang(role, phase string) *StubResponder {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hang[key(role, phase)] = true
	return s
}

// Calls returns how many times a role was invoked for a phase.
func (s *StubResponder) Calls(role, phase string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key(role, phase)]
}

// Respond implements Responder.
func (s *StubResponder) Respond(ctx context.Context, req Request) (Response, error) {
	k := key(req.Role, req.Phase)

	s.mu.Lock()
	s.calls[k]++
	hang := s.hang[k]
	remaining := s.failures[k]
	if remaining != 0 {
		if remaining > 0 {
			s.failures[k] = remaining - 1
		}
		s.mu.Unlock()
		return Response{}, Unavailable(req, context.DeadlineExceeded)
	}
	content, ok := s.scripted[k]
	s.mu.Unlock()

	if hang {
		<-ctx.Done()
		return Response{}, Unavailable(req, ctx.Err())
	}

	if !ok {
		content = fmt.Sprintf("[%s] %s contribution for round %d", req.Role, req.Phase, req.Round)
	}
	return Response{Content: content, TokensUsed: len(content) / 4}, nil
}

func key(role, phase string) string {
	return role + "/" + phase
}
