// Package domain contains the core domain models and types.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure cases.
var (
	// ErrMalformedLine indicates a log line that does not match the
	// combined log format. Per-line, non-fatal: skipped and counted.
	ErrMalformedLine = errors.New("malformed log line")

	// ErrBadTimestamp indicates a log line whose timestamp could not be
	// parsed. Treated the same as a malformed line.
	ErrBadTimestamp = errors.New("unparsable log timestamp")

	// ErrInvalidRule indicates a rule that failed validation.
	// Fatal: the whole registry load is rejected.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrEmptyInput indicates the submitted log content is empty or
	// whitespace only.
	ErrEmptyInput = errors.New("log content is empty")

	// ErrInputTooLarge indicates the log content exceeds the maximum
	// allowed size.
	ErrInputTooLarge = errors.New("log content exceeds maximum size")

	// ErrCancelled indicates a run was stopped before consuming all
	// events. Findings produced so far are still valid.
	ErrCancelled = errors.New("analysis cancelled")

	// ErrInvalidConfig indicates invalid application configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// InvalidRuleError identifies which rule failed validation and why.
type InvalidRuleError struct {
	// RuleID is the identifier of the offending rule.
	RuleID string

	// Reason describes the validation failure.
	Reason string
}

// Error implements the error interface.
func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid rule %q: %s", e.RuleID, e.Reason)
}

// Unwrap makes the error match ErrInvalidRule via errors.Is.
func (e *InvalidRuleError) Unwrap() error {
	return ErrInvalidRule
}

// NewInvalidRuleError creates an InvalidRuleError for the given rule.
func NewInvalidRuleError(ruleID, reason string) *InvalidRuleError {
	return &InvalidRuleError{RuleID: ruleID, Reason: reason}
}
