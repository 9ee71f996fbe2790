// Package metrics exposes prometheus collectors for the analysis
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LinesParsed counts access-log lines successfully parsed.
	LinesParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logwarden_lines_parsed_total",
		Help: "Access-log lines successfully parsed into events.",
	})

	// LinesSkipped counts malformed lines skipped during parsing.
	LinesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logwarden_lines_skipped_total",
		Help: "Malformed access-log lines skipped during parsing.",
	})

	// FindingsTotal counts emitted findings by detection kind.
	FindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logwarden_findings_total",
		Help: "Findings emitted, labelled by detection kind.",
	}, []string{"kind"})

	// AnalysisDuration observes end-to-end analysis latency.
	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "logwarden_analysis_duration_seconds",
		Help:    "Time spent analyzing one submitted log.",
		Buckets: prometheus.DefBuckets,
	})
)
