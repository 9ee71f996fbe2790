// Package rules provides rule-based threat detection over access-log
// events. Rules carry either a compiled pattern set (SQL injection,
// scanning) or a frequency threshold (brute force); detectors evaluate
// events against them and emit findings.
package rules

import (
	"regexp"
	"time"

	"github.com/logwarden/internal/domain"
)

// Pattern is one compiled detection signature. Patterns are compiled
// case-insensitively at load time, never per event.
type Pattern struct {
	// Source is the pattern as written in the rule configuration,
	// reported in finding evidence.
	Source string

	re *regexp.Regexp
}

// Find returns the first match of the pattern in subject, or "" when
// the pattern does not match.
func (p Pattern) Find(subject string) string {
	return p.re.FindString(subject)
}

// CompilePattern compiles a configured pattern case-insensitively.
func CompilePattern(source string) (Pattern, error) {
	re, err := regexp.Compile("(?i)" + source)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Source: source, re: re}, nil
}

// mustPattern is for built-in rules whose patterns are known to compile.
func mustPattern(source string) Pattern {
	p, err := CompilePattern(source)
	if err != nil {
		panic(err)
	}
	return p
}

// Rule is a named detection definition. A rule is immutable after the
// registry accepts it; multiple rules may share a kind and each rule
// produces its own findings.
type Rule struct {
	// ID is the unique identifier for this rule.
	ID string

	// Kind selects the detection strategy.
	Kind domain.RuleKind

	// Severity is assigned to every finding this rule produces.
	Severity domain.Severity

	// Patterns are the compiled signatures for pattern rules.
	// Empty for brute-force rules.
	Patterns []Pattern

	// Threshold is the failed-attempt count that triggers a
	// brute-force finding. Zero for pattern rules.
	Threshold int

	// Window is the sliding-window duration for brute-force rules.
	Window time.Duration

	// FailureStatuses is the set of HTTP status codes that count as a
	// failed authentication attempt.
	FailureStatuses []int
}

// IsFailureStatus reports whether the status code qualifies as a
// failed attempt for this rule.
func (r *Rule) IsFailureStatus(status int) bool {
	for _, s := range r.FailureStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Default rule parameters, used when no rule file is supplied.
const (
	DefaultBruteForceThreshold = 5
	DefaultBruteForceWindow    = time.Minute
)

// DefaultFailureStatuses are the status codes treated as failed
// authentication attempts by the built-in brute-force rule.
func DefaultFailureStatuses() []int {
	return []int{401, 403}
}

// DefaultRules returns the built-in detection rule set: SQL keyword and
// tautology signatures, scanner user-agent fingerprints, and a
// failed-login frequency rule.
func DefaultRules() []*Rule {
	return []*Rule{
		{
			ID:       "sqli_keywords",
			Kind:     domain.KindSQLInjection,
			Severity: domain.SeverityHigh,
			Patterns: []Pattern{
				mustPattern(`\bunion\b.*\bselect\b`),
				mustPattern(`\bselect\b.*\bfrom\b`),
				mustPattern(`\bdrop\s+table\b`),
				mustPattern(`\binsert\s+into\b`),
				mustPattern(`\bupdate\b.*\bset\b`),
				mustPattern(`\border\s+by\s+\d+`),
			},
		},
		{
			ID:       "sqli_tautology",
			Kind:     domain.KindSQLInjection,
			Severity: domain.SeverityCritical,
			Patterns: []Pattern{
				mustPattern(`or\s+'1'='1'`),
				mustPattern(`or\s+1=1`),
				mustPattern(`'\s*or\s*'`),
				mustPattern(`--\s*$`),
			},
		},
		{
			ID:       "scanner_agents",
			Kind:     domain.KindScanning,
			Severity: domain.SeverityMedium,
			Patterns: []Pattern{
				mustPattern(`nmap`),
				mustPattern(`dirb`),
				mustPattern(`nikto`),
				mustPattern(`sqlmap`),
				mustPattern(`masscan`),
				mustPattern(`gobuster`),
			},
		},
		{
			ID:              "auth_brute_force",
			Kind:            domain.KindBruteForce,
			Severity:        domain.SeverityHigh,
			Threshold:       DefaultBruteForceThreshold,
			Window:          DefaultBruteForceWindow,
			FailureStatuses: DefaultFailureStatuses(),
		},
	}
}
