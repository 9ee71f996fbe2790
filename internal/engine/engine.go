// Package engine runs the detection pipeline: it dispatches each log
// event to every active detector and collects the findings.
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/logwarden/internal/domain"
	"github.com/logwarden/internal/metrics"
	"github.com/logwarden/internal/rules"
)

// Engine evaluates events against the rule registry. One engine holds
// the per-address frequency state for one logical event stream; create
// a fresh engine per batch run, or keep one alive and feed it stream
// continuations.
type Engine struct {
	detectors []rules.Detector
	logger    *zap.Logger
}

// New builds an engine with one detector per registry rule, in
// registry order. Frequency detectors start with empty window state.
func New(registry *rules.Registry, logger *zap.Logger) *Engine {
	ruleSet := registry.All()
	detectors := make([]rules.Detector, 0, len(ruleSet))
	for _, rule := range ruleSet {
		detectors = append(detectors, rules.NewDetector(rule))
	}
	return &Engine{
		detectors: detectors,
		logger:    logger.Named("engine"),
	}
}

// Run evaluates the events strictly in the order supplied. The caller
// decides the order; the engine never re-sorts, because frequency
// detection is order-sensitive. Pattern detectors are order-commutative
// with respect to each other.
//
// On context cancellation Run stops and returns the findings produced
// so far together with domain.ErrCancelled. Per-address state is left
// intact, so a later Run on the same engine with the remainder of the
// stream resumes correctly.
func (e *Engine) Run(ctx context.Context, events []domain.LogEvent) ([]domain.Finding, error) {
	var findings []domain.Finding

	for i := range events {
		select {
		case <-ctx.Done():
			e.logger.Warn("run cancelled",
				zap.Int("events_processed", i),
				zap.Int("findings", len(findings)),
			)
			return findings, domain.ErrCancelled
		default:
		}

		ev := &events[i]
		for _, det := range e.detectors {
			finding := det.Evaluate(ev)
			if finding == nil {
				continue
			}
			metrics.FindingsTotal.WithLabelValues(string(finding.Kind)).Inc()
			e.logger.Debug("finding emitted",
				zap.String("rule_id", finding.RuleID),
				zap.String("source_addr", finding.SourceAddr),
				zap.String("severity", finding.Severity.String()),
			)
			findings = append(findings, *finding)
		}
	}

	return findings, nil
}

// Reset clears all stateful detector windows, for periodic sweeps in
// long-running deployments.
func (e *Engine) Reset() {
	for _, det := range e.detectors {
		if fd, ok := det.(*rules.FrequencyDetector); ok {
			fd.Reset()
		}
	}
}
