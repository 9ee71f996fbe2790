// Package domain contains the core domain models and types.
// These models represent the detection contracts and are independent
// of any infrastructure concerns.
package domain

import (
	"fmt"
	"time"
)

// Severity is the ordered rank of a finding's importance.
// The zero value is SeverityLow; the total order is
// Low < Medium < High < Critical.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityLow:      "Low",
	SeverityMedium:   "Medium",
	SeverityHigh:     "High",
	SeverityCritical: "Critical",
}

// String returns the human-readable severity name.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// IsValid checks if the severity value is one of the allowed values.
func (s Severity) IsValid() bool {
	_, ok := severityNames[s]
	return ok
}

// MarshalText renders the severity name for JSON and YAML output.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("unknown severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a severity name into its ordered value.
func ParseSeverity(name string) (Severity, error) {
	for sev, n := range severityNames {
		if n == name {
			return sev, nil
		}
	}
	return SeverityLow, fmt.Errorf("unknown severity %q", name)
}

// RuleKind identifies the detection strategy a rule uses.
type RuleKind string

const (
	// KindBruteForce counts failed authentication attempts per source
	// address inside a sliding time window.
	KindBruteForce RuleKind = "brute_force"

	// KindSQLInjection matches SQL injection signatures in the request.
	KindSQLInjection RuleKind = "sql_injection"

	// KindScanning matches scanner fingerprints such as tool user agents.
	KindScanning RuleKind = "scan_pattern"
)

// IsValid checks if the kind is one of the known detection kinds.
func (k RuleKind) IsValid() bool {
	switch k {
	case KindBruteForce, KindSQLInjection, KindScanning:
		return true
	default:
		return false
	}
}

// LogEvent is one parsed access-log record. Events are immutable once
// produced; detectors must never modify them.
type LogEvent struct {
	// Timestamp is the request time from the log line.
	Timestamp time.Time `json:"timestamp"`

	// SourceAddr is the client network address, the grouping key for
	// all findings.
	SourceAddr string `json:"source_addr"`

	// Method is the HTTP method from the request line, if present.
	Method string `json:"method,omitempty"`

	// Path is the request path without the query string.
	Path string `json:"path,omitempty"`

	// Query is the raw query string, without the leading "?".
	Query string `json:"query,omitempty"`

	// UserAgent is the User-Agent header value, if present.
	UserAgent string `json:"user_agent,omitempty"`

	// RemoteUser is the authenticated user, if the log carries one.
	RemoteUser string `json:"remote_user,omitempty"`

	// Status is the HTTP status code returned to the client.
	Status int `json:"status"`

	// Raw is the original log line, retained as evidence.
	Raw string `json:"raw"`
}

// Finding is one detected malicious event, attributed to a rule and a
// source address. Findings are created once and never mutated.
type Finding struct {
	// SourceAddr is the offending client address.
	SourceAddr string `json:"source_addr"`

	// RuleID identifies the rule that produced this finding.
	RuleID string `json:"rule_id"`

	// Kind is the detection kind of the producing rule.
	Kind RuleKind `json:"kind"`

	// Severity is the rule's configured severity.
	Severity Severity `json:"severity"`

	// Evidence describes what triggered the finding: the matched text
	// for pattern rules, the attempt count and time span for
	// frequency rules.
	Evidence string `json:"evidence"`

	// DetectedAt is the timestamp of the triggering event.
	DetectedAt time.Time `json:"detected_at"`
}

// AddressSummary holds all findings for one source address in detection
// order, with the maximum severity observed.
type AddressSummary struct {
	Address     string    `json:"address"`
	MaxSeverity Severity  `json:"max_severity"`
	Findings    []Finding `json:"findings"`
}

// Report is the final output of one analysis run: one summary per
// source address, ordered by first detection. Read-only once produced.
type Report struct {
	// Addresses lists flagged addresses in first-seen order.
	Addresses []AddressSummary `json:"addresses"`

	// TotalFindings is the number of findings across all addresses.
	TotalFindings int `json:"total_findings"`

	// EventCount is the number of events the engine evaluated.
	EventCount int `json:"event_count"`

	// SkippedLines counts input lines that could not be parsed.
	SkippedLines int `json:"skipped_lines"`

	// Partial is true when the run was cancelled before consuming the
	// whole event sequence.
	Partial bool `json:"partial,omitempty"`
}

// AnalysisRequest represents an incoming log analysis request.
type AnalysisRequest struct {
	// Log is the raw access-log content to analyze.
	Log string `json:"log" binding:"required"`
}

// AnalysisResponse wraps the report with request metadata.
type AnalysisResponse struct {
	// Success indicates whether the analysis completed.
	Success bool `json:"success"`

	// Report contains the detection report if successful.
	Report *Report `json:"report,omitempty"`

	// Error contains error details if the analysis failed.
	Error string `json:"error,omitempty"`

	// ProcessedAt is the timestamp when the analysis finished.
	ProcessedAt time.Time `json:"processed_at"`
}
