package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		commandRepairs,
		extractionFailures,
		sessionTurnsDropped,
		sessionClears,
	)
}

var (
	commandRepairs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_command_repairs_total",
			Help: "Normalizer repairs applied to model output, by rule.",
		},
		[]string{"rule"},
	)

	extractionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_extraction_failures_total",
			Help: "Model replies with no usable JSON object, by kind.",
		},
		[]string{"kind"}, // "no_json" | "malformed"
	)

	sessionTurnsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_session_turns_dropped_total",
			Help: "Turns dropped by history window truncation.",
		},
	)

	sessionClears = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_session_clears_total",
			Help: "History clears triggered by users.",
		},
	)
)

func CommandRepaired(rule string) { commandRepairs.WithLabelValues(rule).Inc() }

func ExtractionFailed(kind string) { extractionFailures.WithLabelValues(kind).Inc() }

func SessionTurnsDropped(n int) { sessionTurnsDropped.Add(float64(n)) }

func SessionCleared() { sessionClears.Inc() }
