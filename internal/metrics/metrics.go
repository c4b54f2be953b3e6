// Package metrics defines the Prometheus instrumentation for the debate
// engine and its external collaborators.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every collector the engine records into. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	turnsGenerated   *prometheus.CounterVec
	claimsVerified   prometheus.Counter
	liesDetected     *prometheus.CounterVec
	debatesCompleted *prometheus.CounterVec
	phaseDuration    *prometheus.HistogramVec
	externalDuration *prometheus.HistogramVec
	votesRecorded    *prometheus.CounterVec
}

// New registers all collectors on reg and returns the bundle. Pass
// prometheus.DefaultRegisterer in production, a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		turnsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agora",
			Name:      "turns_generated_total",
			Help:      "Debate turns generated and persisted, by turn type.",
		}, []string{"turn_type"}),
		claimsVerified: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "agora",
			Name:      "claims_verified_total",
			Help:      "Factual claims run through verification.",
		}),
		liesDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agora",
			Name:      "lies_detected_total",
			Help:      "Claim verdicts flagged as lies, by alert severity.",
		}, []string{"severity"}),
		debatesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agora",
			Name:      "debates_completed_total",
			Help:      "Debates driven to the terminal phase, by outcome.",
		}, []string{"outcome"}),
		phaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agora",
			Name:      "phase_duration_seconds",
			Help:      "Wall time spent in each debate phase.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}, []string{"phase"}),
		externalDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agora",
			Name:      "external_call_duration_seconds",
			Help:      "Latency of calls to external collaborators.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"collaborator", "operation"}),
		votesRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agora",
			Name:      "votes_recorded_total",
			Help:      "Audience votes recorded, by side.",
		}, []string{"side"}),
	}
}

// TurnGenerated counts one persisted turn.
func (m *Metrics) TurnGenerated(turnType string) {
	if m == nil {
		return
	}
	m.turnsGenerated.WithLabelValues(turnType).Inc()
}

// ClaimsVerified counts n verified claims.
func (m *Metrics) ClaimsVerified(n int) {
	if m == nil {
		return
	}
	m.claimsVerified.Add(float64(n))
}

// LieDetected counts one lie alert.
func (m *Metrics) LieDetected(severity string) {
	if m == nil {
		return
	}
	m.liesDetected.WithLabelValues(severity).Inc()
}

// DebateCompleted counts one terminal debate. outcome is "success" or
// "failure".
func (m *Metrics) DebateCompleted(outcome string) {
	if m == nil {
		return
	}
	m.debatesCompleted.WithLabelValues(outcome).Inc()
}

// PhaseDone records the wall time a phase took.
func (m *Metrics) PhaseDone(phase string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.phaseDuration.WithLabelValues(phase).Observe(elapsed.Seconds())
}

// ExternalCall records the latency of one collaborator call.
func (m *Metrics) ExternalCall(collaborator, operation string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.externalDuration.WithLabelValues(collaborator, operation).Observe(elapsed.Seconds())
}

// VoteRecorded counts one audience vote.
func (m *Metrics) VoteRecorded(side string) {
	if m == nil {
		return
	}
	m.votesRecorded.WithLabelValues(side).Inc()
}
