package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		gatewayCalls,
		gatewayLatencyMs,
		gatewayPromptTokens,
	)
}

var (
	gatewayCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_gateway_calls_total",
			Help: "Model gateway calls per provider and outcome.",
		},
		[]string{"provider", "success"},
	)

	gatewayLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_gateway_latency_ms",
			Help:    "Model gateway call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 20000},
		},
		[]string{"provider"},
	)

	gatewayPromptTokens = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_gateway_prompt_tokens",
			Help:    "Best-effort prompt token counts per provider.",
			Buckets: []float64{64, 128, 256, 512, 1024, 2048, 4096},
		},
		[]string{"provider"},
	)
)

func ObserveGatewayCall(provider string, latencyMs int64, success bool) {
	gatewayCalls.WithLabelValues(norm(provider), strconv.FormatBool(success)).Inc()
	gatewayLatencyMs.WithLabelValues(norm(provider)).Observe(float64(latencyMs))
}

func ObservePromptTokens(provider string, tokens int) {
	if tokens > 0 {
		gatewayPromptTokens.WithLabelValues(norm(provider)).Observe(float64(tokens))
	}
}

func norm(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
