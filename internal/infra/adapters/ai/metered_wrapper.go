package ai

import (
	"context"
	"time"

	"map-ai-relay/internal/domain/ports/adapter"
	"map-ai-relay/internal/infra/metrics"
)

// Compile-time check
var _ adapter.TextGenerator = (*meteredGenerator)(nil)

type meteredGenerator struct {
	inner adapter.TextGenerator
	sem   chan struct{}
}

// NewMeteredGenerator wraps a generator with call metrics and an optional
// concurrency cap (maxConcurrent <= 0 leaves calls unbounded).
func NewMeteredGenerator(inner adapter.TextGenerator, maxConcurrent int) adapter.TextGenerator {
	var sem chan struct{}
	if maxConcurrent > 0 {
		sem = make(chan struct{}, maxConcurrent)
	}
	return &meteredGenerator{inner: inner, sem: sem}
}

func (m *meteredGenerator) Name() string { return m.inner.Name() }

func (m *meteredGenerator) Generate(ctx context.Context, prompt string, opts adapter.GenerateOptions) (string, error) {
	if m.sem != nil {
		m.sem <- struct{}{}
		defer func() { <-m.sem }()
	}

	if n, err := m.inner.CountTokens(prompt); err == nil {
		metrics.ObservePromptTokens(m.inner.Name(), n)
	}

	start := time.Now()
	text, err := m.inner.Generate(ctx, prompt, opts)
	metrics.ObserveGatewayCall(m.inner.Name(), time.Since(start).Milliseconds(), err == nil)
	return text, err
}

func (m *meteredGenerator) CountTokens(prompt string) (int, error) {
	return m.inner.CountTokens(prompt)
}
