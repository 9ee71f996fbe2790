// Package rules provides unit tests for the brute-force frequency detector.
package rules

import (
	"testing"
	"time"

	"github.com/logwarden/internal/domain"
)

func bruteForceRule(threshold int, window time.Duration) *Rule {
	return &Rule{
		ID:              "auth_brute_force",
		Kind:            domain.KindBruteForce,
		Severity:        domain.SeverityHigh,
		Threshold:       threshold,
		Window:          window,
		FailureStatuses: []int{401, 403},
	}
}

var baseTime = time.Date(2023, time.October, 10, 12, 0, 0, 0, time.UTC)

func failedAttempt(addr string, offset time.Duration) *domain.LogEvent {
	return &domain.LogEvent{
		Timestamp:  baseTime.Add(offset),
		SourceAddr: addr,
		Method:     "POST",
		Path:       "/login",
		Status:     401,
	}
}

func TestFrequencyDetector_ThresholdCorrectness(t *testing.T) {
	det := NewFrequencyDetector(bruteForceRule(5, 60*time.Second))

	var findings []*domain.Finding
	for _, sec := range []int{0, 10, 20, 30, 40} {
		if f := det.Evaluate(failedAttempt("10.0.0.1", time.Duration(sec)*time.Second)); f != nil {
			findings = append(findings, f)
		}
	}

	if len(findings) != 1 {
		t.Fatalf("got %d findings, want exactly 1", len(findings))
	}
	f := findings[0]
	if !f.DetectedAt.Equal(baseTime.Add(40 * time.Second)) {
		t.Errorf("DetectedAt = %v, want trigger at t=40s", f.DetectedAt)
	}
	if f.SourceAddr != "10.0.0.1" {
		t.Errorf("SourceAddr = %q, want 10.0.0.1", f.SourceAddr)
	}
	if f.Kind != domain.KindBruteForce {
		t.Errorf("Kind = %q, want %q", f.Kind, domain.KindBruteForce)
	}
}

func TestFrequencyDetector_BurstSuppression(t *testing.T) {
	det := NewFrequencyDetector(bruteForceRule(5, 60*time.Second))

	for _, sec := range []int{0, 10, 20, 30} {
		if f := det.Evaluate(failedAttempt("10.0.0.1", time.Duration(sec)*time.Second)); f != nil {
			t.Fatalf("unexpected finding before threshold at t=%ds", sec)
		}
	}
	if f := det.Evaluate(failedAttempt("10.0.0.1", 40*time.Second)); f == nil {
		t.Fatal("expected finding at t=40s")
	}

	// The 6th failure continues the same burst: suppressed.
	if f := det.Evaluate(failedAttempt("10.0.0.1", 45*time.Second)); f != nil {
		t.Fatal("6th failure at t=45s re-triggered the same burst")
	}

	// The 7th failure refills the trimmed window to the threshold.
	if f := det.Evaluate(failedAttempt("10.0.0.1", 50*time.Second)); f == nil {
		t.Fatal("expected second finding at t=50s after window refilled")
	}
}

func TestFrequencyDetector_OutOfWindowExpiry(t *testing.T) {
	det := NewFrequencyDetector(bruteForceRule(2, 60*time.Second))

	if f := det.Evaluate(failedAttempt("10.0.0.1", 0)); f != nil {
		t.Fatal("unexpected finding on first failure")
	}
	if f := det.Evaluate(failedAttempt("10.0.0.1", 65*time.Second)); f != nil {
		t.Fatal("expected no finding: first failure expired before the second arrived")
	}
	if got := det.windowLen("10.0.0.1"); got != 1 {
		t.Errorf("window size = %d after expiry, want 1", got)
	}
}

func TestFrequencyDetector_OutOfOrderTimestamps(t *testing.T) {
	det := NewFrequencyDetector(bruteForceRule(3, 60*time.Second))

	// Events arrive out of timestamp order; the positional insert
	// still assembles the window correctly.
	if f := det.Evaluate(failedAttempt("10.0.0.1", 30*time.Second)); f != nil {
		t.Fatal("unexpected finding")
	}
	if f := det.Evaluate(failedAttempt("10.0.0.1", 10*time.Second)); f != nil {
		t.Fatal("unexpected finding")
	}
	if f := det.Evaluate(failedAttempt("10.0.0.1", 20*time.Second)); f == nil {
		t.Fatal("expected finding once three failures landed within the window")
	}
}

func TestFrequencyDetector_IdenticalTimestampsAllCount(t *testing.T) {
	det := NewFrequencyDetector(bruteForceRule(3, 60*time.Second))

	det.Evaluate(failedAttempt("10.0.0.1", 5*time.Second))
	det.Evaluate(failedAttempt("10.0.0.1", 5*time.Second))
	if f := det.Evaluate(failedAttempt("10.0.0.1", 5*time.Second)); f == nil {
		t.Fatal("ties on identical timestamps must all count toward the threshold")
	}
}

func TestFrequencyDetector_NonQualifyingIgnored(t *testing.T) {
	det := NewFrequencyDetector(bruteForceRule(2, 60*time.Second))

	ok := &domain.LogEvent{
		Timestamp:  baseTime,
		SourceAddr: "10.0.0.1",
		Status:     200,
	}
	if f := det.Evaluate(ok); f != nil {
		t.Fatal("successful request produced a finding")
	}
	if got := det.windowLen("10.0.0.1"); got != 0 {
		t.Errorf("non-qualifying event mutated window state: size = %d", got)
	}
}

func TestFrequencyDetector_AddressesIndependent(t *testing.T) {
	det := NewFrequencyDetector(bruteForceRule(3, 60*time.Second))

	det.Evaluate(failedAttempt("10.0.0.1", 0))
	det.Evaluate(failedAttempt("10.0.0.2", 1*time.Second))
	det.Evaluate(failedAttempt("10.0.0.1", 2*time.Second))
	det.Evaluate(failedAttempt("10.0.0.2", 3*time.Second))

	if f := det.Evaluate(failedAttempt("10.0.0.1", 4*time.Second)); f == nil {
		t.Fatal("expected finding for 10.0.0.1")
	}
	if f := det.Evaluate(failedAttempt("10.0.0.2", 5*time.Second)); f == nil {
		t.Fatal("expected independent finding for 10.0.0.2")
	}
}

func TestFrequencyDetector_WindowInvariant(t *testing.T) {
	rule := bruteForceRule(100, 60*time.Second)
	det := NewFrequencyDetector(rule)

	offsets := []int{0, 90, 30, 120, 45, 200, 150}
	for _, sec := range offsets {
		det.Evaluate(failedAttempt("10.0.0.1", time.Duration(sec)*time.Second))

		w := det.windows["10.0.0.1"]
		if len(w) == 0 {
			continue
		}
		latest := w[len(w)-1]
		for _, ts := range w {
			if latest.Sub(ts) > rule.Window {
				t.Fatalf("window holds %v, more than %v before latest entry %v", ts, rule.Window, latest)
			}
		}
	}
}

func TestFrequencyDetector_StaleFailureDoesNotStretchWindow(t *testing.T) {
	det := NewFrequencyDetector(bruteForceRule(2, 60*time.Second))

	if f := det.Evaluate(failedAttempt("10.0.0.1", 200*time.Second)); f != nil {
		t.Fatal("unexpected finding on first failure")
	}

	// A failure arriving late, timestamped long before the one already
	// held, must not pair with it: the two span far more than the
	// window.
	if f := det.Evaluate(failedAttempt("10.0.0.1", 30*time.Second)); f != nil {
		t.Fatalf("stale failure produced a finding spanning 170s with a 60s window: %s", f.Evidence)
	}
	if got := det.windowLen("10.0.0.1"); got != 1 {
		t.Errorf("window size = %d, want 1 (stale entry evicted)", got)
	}
}

func TestFrequencyDetector_Reset(t *testing.T) {
	det := NewFrequencyDetector(bruteForceRule(5, 60*time.Second))

	det.Evaluate(failedAttempt("10.0.0.1", 0))
	det.Evaluate(failedAttempt("10.0.0.2", 0))
	det.Reset()

	if det.windowLen("10.0.0.1") != 0 || det.windowLen("10.0.0.2") != 0 {
		t.Error("Reset did not clear per-address state")
	}
}
