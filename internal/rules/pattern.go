// Package rules provides rule-based threat detection.
package rules

import (
	"fmt"
	"strings"

	"github.com/logwarden/internal/domain"
)

// Detector evaluates a single event against one rule and emits a
// finding or nil. Pattern detectors are stateless; the frequency
// detector keeps per-address window state. Detectors are not safe for
// concurrent use unless partitioned by source address.
type Detector interface {
	Evaluate(ev *domain.LogEvent) *domain.Finding
}

// NewDetector builds the detector for a rule based on its kind. The
// rule must already have passed registry validation.
func NewDetector(rule *Rule) Detector {
	if rule.Kind == domain.KindBruteForce {
		return NewFrequencyDetector(rule)
	}
	return &PatternMatcher{rule: rule}
}

// PatternMatcher tests events against a rule's compiled pattern set.
// SQL injection and scanning rules share this implementation; they
// differ only in patterns and severity.
type PatternMatcher struct {
	rule *Rule
}

// Evaluate searches the request fields for the rule's patterns.
// The first matching pattern produces the finding; matching stops
// there, so a rule emits at most one finding per event.
func (m *PatternMatcher) Evaluate(ev *domain.LogEvent) *domain.Finding {
	subject := subjectOf(ev)

	for _, p := range m.rule.Patterns {
		match := p.Find(subject)
		if match == "" {
			continue
		}
		return &domain.Finding{
			SourceAddr: ev.SourceAddr,
			RuleID:     m.rule.ID,
			Kind:       m.rule.Kind,
			Severity:   m.rule.Severity,
			Evidence:   fmt.Sprintf("pattern %s matched %q", p.Source, match),
			DetectedAt: ev.Timestamp,
		}
	}
	return nil
}

// subjectOf is the searchable text of an event: path, query, and user
// agent, the fields available from the request line and headers.
func subjectOf(ev *domain.LogEvent) string {
	var b strings.Builder
	b.Grow(len(ev.Path) + len(ev.Query) + len(ev.UserAgent) + 2)
	b.WriteString(ev.Path)
	b.WriteByte(' ')
	b.WriteString(ev.Query)
	b.WriteByte(' ')
	b.WriteString(ev.UserAgent)
	return b.String()
}
