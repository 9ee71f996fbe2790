// Package report merges findings into the final per-address report.
package report

import (
	"github.com/logwarden/internal/domain"
)

// Aggregate groups findings by source address, preserving detection
// order within each address, and computes the maximum severity per
// address. Addresses appear in first-seen order, which makes the
// report deterministic for a given finding sequence.
func Aggregate(findings []domain.Finding) *domain.Report {
	index := make(map[string]int)
	addresses := make([]domain.AddressSummary, 0)

	for _, f := range findings {
		pos, ok := index[f.SourceAddr]
		if !ok {
			pos = len(addresses)
			index[f.SourceAddr] = pos
			addresses = append(addresses, domain.AddressSummary{
				Address:     f.SourceAddr,
				MaxSeverity: f.Severity,
			})
		}

		summary := &addresses[pos]
		summary.Findings = append(summary.Findings, f)
		if f.Severity > summary.MaxSeverity {
			summary.MaxSeverity = f.Severity
		}
	}

	return &domain.Report{
		Addresses:     addresses,
		TotalFindings: len(findings),
	}
}
