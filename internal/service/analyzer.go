// Package service contains the analysis orchestration layer.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/logwarden/internal/domain"
	"github.com/logwarden/internal/engine"
	"github.com/logwarden/internal/metrics"
	"github.com/logwarden/internal/parser"
	"github.com/logwarden/internal/report"
	"github.com/logwarden/internal/rules"
	"github.com/logwarden/pkg/logio"
)

// Analyzer orchestrates the detection pipeline: split the submitted
// content into lines, parse them into events, run the detection
// engine, and aggregate findings into the report.
type Analyzer struct {
	registry *rules.Registry
	splitter *logio.Splitter
	maxSize  int
	logger   *zap.Logger
}

// Config contains size limits for the Analyzer.
type Config struct {
	// MaxLogSize is the maximum submitted content size in bytes.
	MaxLogSize int

	// MaxLineLength is the per-line truncation limit.
	MaxLineLength int
}

// NewAnalyzer creates an Analyzer over a shared read-only registry.
func NewAnalyzer(registry *rules.Registry, cfg Config, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		registry: registry,
		splitter: logio.NewSplitter(cfg.MaxLineLength),
		maxSize:  cfg.MaxLogSize,
		logger:   logger.Named("analyzer"),
	}
}

// Analyze processes one submitted access log:
//  1. Validate input size
//  2. Split into lines, parse each line, counting malformed ones
//  3. Run all detectors over the events in input order
//  4. Aggregate findings into the per-address report
//
// A fresh engine is built per call so brute-force window state never
// leaks between submissions. Cancellation mid-run still yields a
// report from the findings produced so far, flagged partial.
func (a *Analyzer) Analyze(ctx context.Context, req *domain.AnalysisRequest) (*domain.AnalysisResponse, error) {
	start := time.Now()
	defer func() {
		metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	}()

	if logio.IsEmpty(req.Log) {
		return errorResponse(domain.ErrEmptyInput), nil
	}
	if len(req.Log) > a.maxSize {
		a.logger.Warn("log too large", zap.Int("size", len(req.Log)), zap.Int("max", a.maxSize))
		return errorResponse(domain.ErrInputTooLarge), nil
	}

	lines, err := a.splitter.SplitString(req.Log)
	if err != nil {
		return nil, err
	}

	events, skipped := a.parseLines(lines)
	a.logger.Debug("input parsed",
		zap.Int("lines", len(lines)),
		zap.Int("events", len(events)),
		zap.Int("skipped", skipped),
	)

	eng := engine.New(a.registry, a.logger)
	findings, runErr := eng.Run(ctx, events)
	if runErr != nil && !errors.Is(runErr, domain.ErrCancelled) {
		return nil, runErr
	}

	rep := report.Aggregate(findings)
	rep.EventCount = len(events)
	rep.SkippedLines = skipped
	rep.Partial = errors.Is(runErr, domain.ErrCancelled)

	a.logger.Info("analysis completed",
		zap.Int("events", rep.EventCount),
		zap.Int("findings", rep.TotalFindings),
		zap.Int("flagged_addresses", len(rep.Addresses)),
		zap.Int("skipped_lines", rep.SkippedLines),
		zap.Bool("partial", rep.Partial),
		zap.Duration("duration", time.Since(start)),
	)

	return &domain.AnalysisResponse{
		Success:     true,
		Report:      rep,
		ProcessedAt: time.Now(),
	}, nil
}

// parseLines converts lines into events, skipping and counting the
// malformed ones. Parse failures never abort the run.
func (a *Analyzer) parseLines(lines []string) ([]domain.LogEvent, int) {
	events := make([]domain.LogEvent, 0, len(lines))
	skipped := 0

	for _, line := range lines {
		ev, err := parser.Parse(line)
		if err != nil {
			skipped++
			metrics.LinesSkipped.Inc()
			a.logger.Debug("skipping unparsable line", zap.Error(err))
			continue
		}
		metrics.LinesParsed.Inc()
		events = append(events, ev)
	}
	return events, skipped
}

func errorResponse(err error) *domain.AnalysisResponse {
	return &domain.AnalysisResponse{
		Success:     false,
		Error:       err.Error(),
		ProcessedAt: time.Now(),
	}
}
