// Package rules provides rule-based threat detection.
package rules

import (
	"github.com/logwarden/internal/domain"
)

// Registry holds the validated, active rule set. It is immutable after
// a successful NewRegistry and safe to share read-only across runs.
type Registry struct {
	ordered []*Rule
	byKind  map[domain.RuleKind][]*Rule
}

// NewRegistry validates the rules and builds the registry. Validation
// failures abort the whole load: no partial registry is ever returned,
// and the error names the offending rule.
func NewRegistry(rules []*Rule) (*Registry, error) {
	seen := make(map[string]struct{}, len(rules))
	byKind := make(map[domain.RuleKind][]*Rule)

	for _, r := range rules {
		if err := validateRule(r); err != nil {
			return nil, err
		}
		if _, dup := seen[r.ID]; dup {
			return nil, domain.NewInvalidRuleError(r.ID, "duplicate rule id")
		}
		seen[r.ID] = struct{}{}
		byKind[r.Kind] = append(byKind[r.Kind], r)
	}

	ordered := make([]*Rule, len(rules))
	copy(ordered, rules)

	return &Registry{ordered: ordered, byKind: byKind}, nil
}

func validateRule(r *Rule) error {
	if r.ID == "" {
		return domain.NewInvalidRuleError("", "missing rule id")
	}
	if !r.Kind.IsValid() {
		return domain.NewInvalidRuleError(r.ID, "unknown kind "+string(r.Kind))
	}
	if !r.Severity.IsValid() {
		return domain.NewInvalidRuleError(r.ID, "unknown severity")
	}

	switch r.Kind {
	case domain.KindBruteForce:
		if r.Threshold < 1 {
			return domain.NewInvalidRuleError(r.ID, "threshold must be at least 1")
		}
		if r.Window <= 0 {
			return domain.NewInvalidRuleError(r.ID, "window must be positive")
		}
		if len(r.FailureStatuses) == 0 {
			return domain.NewInvalidRuleError(r.ID, "failure status set is empty")
		}
	default:
		if len(r.Patterns) == 0 {
			return domain.NewInvalidRuleError(r.ID, "pattern set is empty")
		}
	}
	return nil
}

// All returns the rules in load order.
func (g *Registry) All() []*Rule {
	return g.ordered
}

// RulesFor returns the rules of the given kind, in load order.
func (g *Registry) RulesFor(kind domain.RuleKind) []*Rule {
	return g.byKind[kind]
}

// Len returns the number of active rules.
func (g *Registry) Len() int {
	return len(g.ordered)
}
