// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRejectSyntacticIncrementsLabeledCounter(t *testing.T) {
	m := NewMetrics()
	m.RejectSyntactic()
	m.RejectSyntactic()

	got := testutil.ToFloat64(m.SignaturesRejected.WithLabelValues("syntactic"))
	if got != 2 {
		t.Errorf("expected syntactic rejection count 2, got %v", got)
	}
}

func TestRejectSemanticAndCapabilityUseDistinctLabels(t *testing.T) {
	m := NewMetrics()
	m.RejectSemantic()
	m.RejectCapability()
	m.RejectCapability()

	if got := testutil.ToFloat64(m.SignaturesRejected.WithLabelValues("semantic")); got != 1 {
		t.Errorf("expected semantic rejection count 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.SignaturesRejected.WithLabelValues("capability")); got != 2 {
		t.Errorf("expected capability rejection count 2, got %v", got)
	}
}

func TestQuietSkipDoesNotAffectOtherLabels(t *testing.T) {
	m := NewMetrics()
	m.QuietSkip()

	if got := testutil.ToFloat64(m.SignaturesRejected.WithLabelValues("quiet_skip")); got != 1 {
		t.Errorf("expected quiet_skip count 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.SignaturesRejected.WithLabelValues("syntactic")); got != 0 {
		t.Errorf("expected syntactic count 0, got %v", got)
	}
}

func TestCollectGatheredMetricCount(t *testing.T) {
	m := NewMetrics()
	m.SignaturesParsed.Inc()
	m.SignaturesCloned.Inc()

	count := testutil.CollectAndCount(m)
	// Parsed, Duplicate, Cloned, OptionParseDuration always report;
	// Rejected and KeywordSilentErrors only report labels that were
	// touched, so a fresh Metrics with two plain counters incremented
	// yields exactly four series.
	if count != 4 {
		t.Errorf("expected 4 collected series, got %d", count)
	}
}
