package expert

import (
	"fmt"

	"github.com/warroom-dev/warroom/internal/errors"
)

// Role describes one seat on the deliberation roster.
type Role struct {
	// Name is the unique role identifier (e.g. "red-team").
	Name string `json:"name" yaml:"name"`
	// Model is the reasoning model backing this role.
	Model string `json:"model" yaml:"model"`
	// EscalationOnly marks roles consulted only when the session is
	// escalated.
	EscalationOnly bool `json:"escalation_only,omitempty" yaml:"escalation_only,omitempty"`
	// SupremeCommander marks the single role allowed to override the
	// voted outcome.
	SupremeCommander bool `json:"supreme_commander,omitempty" yaml:"supreme_commander,omitempty"`
}

// Roster is the ordered set of roles participating in a session.
type Roster struct {
	Roles []Role `json:"roles" yaml:"roles"`
}

// DefaultRoster returns the standard war room bench. The escalation-only
// seats widen the deliberation when the session is flagged as escalated.
func DefaultRoster() Roster {
	return Roster{Roles: []Role{
		{Name: "intel-officer", Model: "recon-large"},
		{Name: "operations-chief", Model: "recon-large"},
		{Name: "red-team", Model: "adversary-medium"},
		{Name: "logistics-officer", Model: "recon-small"},
		{Name: "supreme-commander", Model: "command-large", SupremeCommander: true},
		{Name: "cyber-specialist", Model: "adversary-medium", EscalationOnly: true},
		{Name: "legal-advisor", Model: "recon-small", EscalationOnly: true},
	}}
}

// Validate rejects rosters that cannot run a deliberation: no roles,
// duplicate names, missing models, or more than one supreme commander.
func (r Roster) Validate() error {
	if len(r.Roles) == 0 {
		return errors.NewValidationError("roster", "at least one expert role is required")
	}

	seen := make(map[string]bool, len(r.Roles))
	commanders := 0
	for i, role := range r.Roles {
		if role.Name == "" {
			return errors.NewValidationError("roster", fmt.Sprintf("role %d has no name", i))
		}
		if role.Model == "" {
			return errors.NewValidationError("roster", fmt.Sprintf("role %q has no model", role.Name)).WithValue(role.Name)
		}
		if seen[role.Name] {
			return errors.NewValidationError("roster", "duplicate role name").WithValue(role.Name)
		}
		seen[role.Name] = true
		if role.SupremeCommander {
			commanders++
		}
	}
	if commanders > 1 {
		return errors.NewValidationError("roster", fmt.Sprintf("%d supreme commanders configured, at most 1 allowed", commanders))
	}
	return nil
}

// Active returns the roles consulted in every phase. Escalation-only seats
// are included only when escalated is set.
func (r Roster) Active(escalated bool) []Role {
	active := make([]Role, 0, len(r.Roles))
	for _, role := range r.Roles {
		if role.EscalationOnly && !escalated {
			continue
		}
		active = append(active, role)
	}
	return active
}

// Commander returns the supreme commander seat, if one is configured.
func (r Roster) Commander() (Role, bool) {
	for _, role := range r.Roles {
		if role.SupremeCommander {
			return role, true
		}
	}
	return Role{}, false
}

// Lookup returns the role with the given name.
func (r Roster) Lookup(name string) (Role, bool) {
	for _, role := range r.Roles {
		if role.Name == name {
			return role, true
		}
	}
	return Role{}, false
}
