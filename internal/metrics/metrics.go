// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics exposes Prometheus collectors for the rule parser:
// how many signatures were parsed, rejected, dropped as duplicates or
// cloned bidirectionally, and how long option parsing takes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all rule-parser Prometheus collectors.
type Metrics struct {
	SignaturesParsed     prometheus.Counter
	SignaturesRejected   *prometheus.CounterVec
	SignaturesDuplicate  prometheus.Counter
	SignaturesCloned     prometheus.Counter
	KeywordSilentErrors  *prometheus.CounterVec
	OptionParseDuration  prometheus.Histogram
}

// NewMetrics creates a new, unregistered set of rule-parser collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		SignaturesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ruleparse_signatures_parsed_total",
			Help: "Total number of signatures successfully parsed and added to the ruleset.",
		}),
		SignaturesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ruleparse_signatures_rejected_total",
			Help: "Total number of signatures rejected during parsing, by error kind.",
		}, []string{"kind"}),
		SignaturesDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ruleparse_signatures_duplicate_dropped_total",
			Help: "Total number of signatures dropped because an existing (gid,sid) had an equal or higher revision.",
		}),
		SignaturesCloned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ruleparse_signatures_cloned_total",
			Help: "Total number of bidirectional signatures expanded into two unidirectional clones.",
		}),
		KeywordSilentErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ruleparse_keyword_silent_errors_total",
			Help: "Total number of silent-once keyword Setup failures, by keyword name.",
		}, []string{"keyword"}),
		OptionParseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ruleparse_option_parse_duration_seconds",
			Help:    "Time spent parsing a signature's option segment.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.SignaturesParsed.Describe(ch)
	m.SignaturesRejected.Describe(ch)
	m.SignaturesDuplicate.Describe(ch)
	m.SignaturesCloned.Describe(ch)
	m.KeywordSilentErrors.Describe(ch)
	m.OptionParseDuration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.SignaturesParsed.Collect(ch)
	m.SignaturesRejected.Collect(ch)
	m.SignaturesDuplicate.Collect(ch)
	m.SignaturesCloned.Collect(ch)
	m.KeywordSilentErrors.Collect(ch)
	m.OptionParseDuration.Collect(ch)
}

// RegisterMetrics registers the collector set with the default registry.
func (m *Metrics) RegisterMetrics() {
	prometheus.MustRegister(m)
}

// RejectSyntactic records a signature rejected while lexing, splitting
// its options, or parsing its header (other than a capability failure).
func (m *Metrics) RejectSyntactic() { m.SignaturesRejected.WithLabelValues("syntactic").Inc() }

// RejectSemantic records a signature rejected during option parsing or
// by the validation passes (buffer mix, direction conflict,
// keyword/table mismatch).
func (m *Metrics) RejectSemantic() { m.SignaturesRejected.WithLabelValues("semantic").Inc() }

// RejectCapability records a signature rejected for requiring an
// engine capability that is not present.
func (m *Metrics) RejectCapability() { m.SignaturesRejected.WithLabelValues("capability").Inc() }

// QuietSkip records a signature dropped silently because a requires
// predicate was not satisfied. It shares the rejection counter vec but
// under its own "quiet_skip" label, since it is not an operator-visible
// error.
func (m *Metrics) QuietSkip() { m.SignaturesRejected.WithLabelValues("quiet_skip").Inc() }

// KeywordSilentError records the first silent-once Setup failure of a
// keyword, which rejects that signature; later silent-once failures of
// the same keyword drop their signatures silently and are not counted.
func (m *Metrics) KeywordSilentError(keyword string) {
	m.KeywordSilentErrors.WithLabelValues(keyword).Inc()
}

// ObserveOptionParseDuration records how long a signature's option
// segment took to parse.
func (m *Metrics) ObserveOptionParseDuration(seconds float64) {
	m.OptionParseDuration.Observe(seconds)
}
