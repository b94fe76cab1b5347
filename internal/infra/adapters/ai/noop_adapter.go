package ai

import (
	"context"
	"time"

	"map-ai-relay/internal/domain/ports/adapter"
)

var _ adapter.TextGenerator = (*NoopAdapter)(nil)

// NoopAdapter implements adapter.TextGenerator for local/dev runs. It returns
// a canned chat command instead of calling a real provider.
type NoopAdapter struct {
	Reply string
}

func NewNoopAdapter() *NoopAdapter {
	return &NoopAdapter{Reply: `{"action":"chat","reply":"(dev) noop generator reply"}`}
}

func (a *NoopAdapter) Name() string { return "noop" }

func (a *NoopAdapter) Generate(ctx context.Context, _ string, _ adapter.GenerateOptions) (string, error) {
	// Simulate slight processing time and respect ctx
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return a.Reply, nil
}

func (a *NoopAdapter) CountTokens(string) (int, error) { return 0, nil }
