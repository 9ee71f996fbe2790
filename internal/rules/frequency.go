// Package rules provides rule-based threat detection.
package rules

import (
	"fmt"
	"sort"
	"time"

	"github.com/logwarden/internal/domain"
)

// FrequencyDetector detects brute-force behavior by tracking, per
// source address, the timestamps of recent failed authentication
// attempts and firing when the count inside the sliding window reaches
// the rule's threshold.
//
// The window is anchored to the latest event seen for the address,
// never to wall clock, so batch analysis of historical logs behaves
// the same as it would have live. Input order is not assumed: inserts
// are positional and out-of-order timestamps are handled.
type FrequencyDetector struct {
	rule    *Rule
	windows map[string][]time.Time
}

// NewFrequencyDetector creates a detector with empty window state.
func NewFrequencyDetector(rule *Rule) *FrequencyDetector {
	return &FrequencyDetector{
		rule:    rule,
		windows: make(map[string][]time.Time),
	}
}

// Evaluate processes one event. Non-qualifying events (status not in
// the rule's failure set) are ignored without touching state. A
// qualifying event is inserted into the address window in timestamp
// order, entries more than one window older than the latest timestamp
// held for the address are evicted, and a finding is emitted if the
// window has reached the threshold.
//
// After a finding the window is trimmed to its newest entries so the
// same burst cannot fire again on every subsequent failure.
func (d *FrequencyDetector) Evaluate(ev *domain.LogEvent) *domain.Finding {
	if !d.rule.IsFailureStatus(ev.Status) {
		return nil
	}

	w := d.windows[ev.SourceAddr]

	// Ordered insert; ties on equal timestamps all count.
	i := sort.Search(len(w), func(i int) bool { return w[i].After(ev.Timestamp) })
	w = append(w, time.Time{})
	copy(w[i+1:], w[i:])
	w[i] = ev.Timestamp

	// Evict everything more than one window older than the latest
	// event seen for this address. Anchoring to the window maximum
	// rather than the inserted timestamp keeps every retained entry
	// within one window span even when input arrives out of order,
	// so a late straggler can never stretch a burst past the window.
	cutoff := w[len(w)-1].Add(-d.rule.Window)
	start := 0
	for start < len(w) && w[start].Before(cutoff) {
		start++
	}
	w = w[start:]

	if len(w) < d.rule.Threshold {
		d.windows[ev.SourceAddr] = w
		return nil
	}

	first, last := w[0], w[len(w)-1]
	finding := &domain.Finding{
		SourceAddr: ev.SourceAddr,
		RuleID:     d.rule.ID,
		Kind:       d.rule.Kind,
		Severity:   d.rule.Severity,
		Evidence: fmt.Sprintf("%d failed attempts in %s (%s - %s)",
			len(w), last.Sub(first), first.Format(time.RFC3339), last.Format(time.RFC3339)),
		DetectedAt: ev.Timestamp,
	}

	// Burst suppression: keep only the tail of the burst so the rule
	// needs fresh failures before it can fire again for this address.
	keep := d.rule.Threshold - 2
	if keep < 0 {
		keep = 0
	}
	if keep > len(w) {
		keep = len(w)
	}
	trimmed := make([]time.Time, keep)
	copy(trimmed, w[len(w)-keep:])
	d.windows[ev.SourceAddr] = trimmed

	return finding
}

// Reset drops all per-address window state. Intended for periodic
// sweeps in long-running deployments; a fresh detector per batch run
// makes it unnecessary there.
func (d *FrequencyDetector) Reset() {
	d.windows = make(map[string][]time.Time)
}

// windowLen reports the current window size for an address. Test hook.
func (d *FrequencyDetector) windowLen(addr string) int {
	return len(d.windows[addr])
}
