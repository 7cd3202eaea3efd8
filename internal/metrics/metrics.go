// Package metrics defines the prometheus collectors for the answer
// generation pipeline. Failure reasons are labeled so that conditions
// that would otherwise only surface as log lines (a question vanishing
// mid-retry, a fallback write failing) stay observable.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure reason labels for GenerationFailures.
const (
	ReasonQuestionMissing = "question_missing"
	ReasonPersistence     = "persistence"
	ReasonExhausted       = "exhausted"
	ReasonFallbackWrite   = "fallback_write"
	ReasonInvalidInput    = "invalid_input"
)

var (
	// GenerationsStored counts successfully stored answers, labeled by
	// whether the stored answer was generated or the fixed fallback.
	GenerationsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "answer_generations_stored_total",
		Help: "Answers persisted for questions, by kind (generated or fallback).",
	}, []string{"kind"})

	// GenerationFailures counts failed generation attempts and terminal
	// failures by reason.
	GenerationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "answer_generation_failures_total",
		Help: "Answer generation failures by reason.",
	}, []string{"reason"})

	// GenerationAttempts counts individual attempts inside the retry loop.
	GenerationAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "answer_generation_attempts_total",
		Help: "Individual answer generation attempts, including retries.",
	})

	// ProviderCallDuration observes the latency of calls to the external
	// generation provider, labeled by outcome (ok, degraded).
	ProviderCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "generation_provider_call_duration_seconds",
		Help:    "Duration of outbound generation provider calls.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"outcome"})
)
