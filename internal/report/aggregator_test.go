// Package report provides unit tests for the severity aggregator.
package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logwarden/internal/domain"
)

var detectedAt = time.Date(2023, time.October, 10, 12, 0, 0, 0, time.UTC)

func finding(addr string, kind domain.RuleKind, sev domain.Severity) domain.Finding {
	return domain.Finding{
		SourceAddr: addr,
		RuleID:     string(kind) + "_rule",
		Kind:       kind,
		Severity:   sev,
		Evidence:   "test evidence",
		DetectedAt: detectedAt,
	}
}

func TestAggregate_GroupsByAddressFirstSeen(t *testing.T) {
	findings := []domain.Finding{
		finding("10.0.0.2", domain.KindScanning, domain.SeverityMedium),
		finding("10.0.0.1", domain.KindSQLInjection, domain.SeverityHigh),
		finding("10.0.0.2", domain.KindBruteForce, domain.SeverityHigh),
		finding("10.0.0.3", domain.KindScanning, domain.SeverityLow),
	}

	rep := Aggregate(findings)

	require.Len(t, rep.Addresses, 3)
	assert.Equal(t, "10.0.0.2", rep.Addresses[0].Address, "first-seen order")
	assert.Equal(t, "10.0.0.1", rep.Addresses[1].Address)
	assert.Equal(t, "10.0.0.3", rep.Addresses[2].Address)
	assert.Equal(t, 4, rep.TotalFindings)

	require.Len(t, rep.Addresses[0].Findings, 2)
	assert.Equal(t, domain.KindScanning, rep.Addresses[0].Findings[0].Kind, "detection order within address")
	assert.Equal(t, domain.KindBruteForce, rep.Addresses[0].Findings[1].Kind)
}

func TestAggregate_MaxSeverity(t *testing.T) {
	findings := []domain.Finding{
		finding("10.0.0.1", domain.KindScanning, domain.SeverityLow),
		finding("10.0.0.1", domain.KindSQLInjection, domain.SeverityCritical),
		finding("10.0.0.1", domain.KindBruteForce, domain.SeverityHigh),
	}

	rep := Aggregate(findings)

	require.Len(t, rep.Addresses, 1)
	assert.Equal(t, domain.SeverityCritical, rep.Addresses[0].MaxSeverity)
}

func TestAggregate_Empty(t *testing.T) {
	rep := Aggregate(nil)
	assert.Empty(t, rep.Addresses)
	assert.Zero(t, rep.TotalFindings)
}

func TestAggregate_Deterministic(t *testing.T) {
	findings := []domain.Finding{
		finding("10.0.0.5", domain.KindBruteForce, domain.SeverityHigh),
		finding("10.0.0.4", domain.KindScanning, domain.SeverityMedium),
		finding("10.0.0.5", domain.KindSQLInjection, domain.SeverityCritical),
		finding("10.0.0.6", domain.KindScanning, domain.SeverityLow),
		finding("10.0.0.4", domain.KindBruteForce, domain.SeverityHigh),
	}

	first, err := json.Marshal(Aggregate(findings))
	require.NoError(t, err)
	second, err := json.Marshal(Aggregate(findings))
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical finding sequences must serialize identically")
}

func TestSeverityOrdering(t *testing.T) {
	// The aggregator relies on the total order of the severity enum.
	assert.True(t, domain.SeverityLow < domain.SeverityMedium)
	assert.True(t, domain.SeverityMedium < domain.SeverityHigh)
	assert.True(t, domain.SeverityHigh < domain.SeverityCritical)
}
