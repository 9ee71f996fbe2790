// Package rules provides rule-based threat detection.
package rules

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/logwarden/internal/domain"
)

// ruleFile is the YAML document shape for rule configuration.
type ruleFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

// ruleSpec is one rule entry in the rule file. Pattern rules set
// patterns; brute-force rules set threshold, window, and
// failure_statuses.
type ruleSpec struct {
	ID              string   `yaml:"id"`
	Kind            string   `yaml:"kind"`
	Severity        string   `yaml:"severity"`
	Patterns        []string `yaml:"patterns,omitempty"`
	Threshold       int      `yaml:"threshold,omitempty"`
	Window          string   `yaml:"window,omitempty"`
	FailureStatuses []int    `yaml:"failure_statuses,omitempty"`
}

// LoadFile reads a YAML rule file and returns the configured rules,
// compiled and ready for the registry.
func LoadFile(path string) ([]*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	return ParseRuleConfig(data)
}

// ParseRuleConfig parses YAML rule configuration. Pattern compilation
// failures and malformed durations are reported as invalid-rule errors
// naming the offending rule; the whole parse fails on the first one.
func ParseRuleConfig(data []byte) ([]*Rule, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rule config: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("parse rule config: no rules defined")
	}

	rules := make([]*Rule, 0, len(file.Rules))
	for _, spec := range file.Rules {
		rule, err := buildRule(spec)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func buildRule(spec ruleSpec) (*Rule, error) {
	severity, err := domain.ParseSeverity(spec.Severity)
	if err != nil {
		return nil, domain.NewInvalidRuleError(spec.ID, err.Error())
	}

	rule := &Rule{
		ID:       spec.ID,
		Kind:     domain.RuleKind(spec.Kind),
		Severity: severity,
	}

	for _, src := range spec.Patterns {
		p, err := CompilePattern(src)
		if err != nil {
			return nil, domain.NewInvalidRuleError(spec.ID, fmt.Sprintf("bad pattern %q: %v", src, err))
		}
		rule.Patterns = append(rule.Patterns, p)
	}

	if rule.Kind == domain.KindBruteForce {
		rule.Threshold = spec.Threshold
		if spec.Window != "" {
			window, err := time.ParseDuration(spec.Window)
			if err != nil {
				return nil, domain.NewInvalidRuleError(spec.ID, fmt.Sprintf("bad window %q: %v", spec.Window, err))
			}
			rule.Window = window
		}
		rule.FailureStatuses = spec.FailureStatuses
		if len(rule.FailureStatuses) == 0 {
			rule.FailureStatuses = DefaultFailureStatuses()
		}
	}

	return rule, nil
}
