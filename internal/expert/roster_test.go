package expert

import (
	"context"
	"testing"
	"time"

	"github.com/warroom-dev/warroom/internal/errors"
)

func TestDefaultRoster_Valid(t *testing.T) {
	if err := DefaultRoster().Validate(); err != nil {
		t.Errorf("default roster failed validation: %v", err)
	}
}

func TestRoster_Validate(t *testing.T) {
	tests := []struct {
		name   string
		roster Roster
		ok     bool
	}{
		{
			name:   "empty",
			roster: Roster{},
			ok:     false,
		},
		{
			name: "missing model",
			roster: Roster{Roles: []Role{
				{Name: "intel-officer"},
			}},
			ok: false,
		},
		{
			name: "unnamed role",
			roster: Roster{Roles: []Role{
				{Model: "recon-large"},
			}},
			ok: false,
		},
		{
			name: "duplicate names",
			roster: Roster{Roles: []Role{
				{Name: "red-team", Model: "a"},
				{Name: "red-team", Model: "b"},
			}},
			ok: false,
		},
		{
			name: "two commanders",
			roster: Roster{Roles: []Role{
				{Name: "a", Model: "m", SupremeCommander: true},
				{Name: "b", Model: "m", SupremeCommander: true},
			}},
			ok: false,
		},
		{
			name: "minimal valid",
			roster: Roster{Roles: []Role{
				{Name: "solo", Model: "m"},
			}},
			ok: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.roster.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !errors.Is(err, errors.ErrInvalidConfig) {
					t.Errorf("error %v does not wrap ErrInvalidConfig", err)
				}
			}
		})
	}
}

func TestRoster_ActiveWidensOnEscalation(t *testing.T) {
	roster := DefaultRoster()

	normal := roster.Active(false)
	escalated := roster.Active(true)

	if len(escalated) <= len(normal) {
		t.Errorf("escalated roster (%d) not wider than normal (%d)", len(escalated), len(normal))
	}
	for _, role := range normal {
		if role.EscalationOnly {
			t.Errorf("escalation-only role %q active without escalation", role.Name)
		}
	}
}

func TestRoster_Commander(t *testing.T) {
	commander, ok := DefaultRoster().Commander()
	if !ok {
		t.Fatal("default roster has no supreme commander")
	}
	if !commander.SupremeCommander {
		t.Error("Commander returned a non-commander role")
	}

	if _, ok := (Roster{Roles: []Role{{Name: "a", Model: "m"}}}).Commander(); ok {
		t.Error("Commander found on a roster without one")
	}
}

func TestStubResponder_ScriptedAndDefault(t *testing.T) {
	stub := NewStubResponder().Script("red-team", "redteam", "the plan fails under load")

	scripted, err := stub.Respond(context.Background(), Request{Role: "red-team", Phase: "redteam", Round: 1})
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if scripted.Content != "the plan fails under load" {
		t.Errorf("Content = %q, want scripted text", scripted.Content)
	}

	fallback, err := stub.Respond(context.Background(), Request{Role: "intel-officer", Phase: "redteam", Round: 1})
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if fallback.Content == "" {
		t.Error("default response is empty")
	}
}

func TestStubResponder_FailTimesThenSucceeds(t *testing.T) {
	stub := NewStubResponder().FailTimes("intel-officer", "intelligence", 2)
	req := Request{Role: "intel-officer", Phase: "intelligence", Round: 1}

	for i := 0; i < 2; i++ {
		if _, err := stub.Respond(context.Background(), req); !errors.Is(err, errors.ErrResponderUnavailable) {
			t.Fatalf("call %d error = %v, want ErrResponderUnavailable", i+1, err)
		}
	}
	if _, err := stub.Respond(context.Background(), req); err != nil {
		t.Errorf("third call failed: %v", err)
	}
	if stub.Calls("intel-officer", "intelligence") != 3 {
		t.Errorf("Calls = %d, want 3", stub.Calls("intel-officer", "intelligence"))
	}
}

func TestStubResponder_HangHonorsContext(t *testing.T) {
	stub := NewStubResponder().Hang("logistics-officer", "assessment")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := stub.Respond(ctx, Request{Role: "logistics-officer", Phase: "assessment", Round: 1})
	if !errors.Is(err, errors.ErrResponderUnavailable) {
		t.Errorf("error = %v, want ErrResponderUnavailable", err)
	}
	if time.Since(start) > time.Second {
		t.Error("hang did not honor context deadline")
	}
}

func TestUnavailable_IsRetryable(t *testing.T) {
	err := Unavailable(Request{Role: "red-team", Phase: "voting"}, context.DeadlineExceeded)
	if !errors.IsRetryable(err) {
		t.Error("responder unavailability should be retryable")
	}
	if !errors.Is(err, errors.ErrResponderUnavailable) {
		t.Error("error does not wrap ErrResponderUnavailable")
	}
}
