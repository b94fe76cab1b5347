package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"map-ai-relay/internal/domain"
	"map-ai-relay/internal/domain/model"
	"map-ai-relay/internal/domain/ports/adapter"
	"map-ai-relay/internal/domain/ports/repository"
	"map-ai-relay/internal/extract"
	"map-ai-relay/internal/infra/logging"
	"map-ai-relay/internal/infra/metrics"
)

// clearTriggers short-circuit the pipeline: history is wiped and the gateway
// is never invoked.
var clearTriggers = []string{"履歴クリア", "履歴をクリア", "clear history"}

const clearedReply = "会話履歴をクリアしました。"

// GatewayLimiter caps gateway calls per session. Nil limiter disables the cap.
type GatewayLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

type ChatUseCase interface {
	// Send runs the full pipeline: history lookup, prompt assembly, gateway
	// call, extraction, normalization, history append.
	Send(ctx context.Context, sessionID, message string, state map[string]any) (*model.Command, error)
}

type ChatOptions struct {
	// Strict gates non-chat commands behind explicit confirmation.
	Strict      bool
	MaxTokens   int
	RateLimit   int
	RateWindow  time.Duration
	RateLimiter GatewayLimiter
}

type chatUC struct {
	sessions repository.SessionRepository
	gen      adapter.TextGenerator
	ex       extract.Extractor
	opts     ChatOptions
	log      *zerolog.Logger
}

func NewChatUseCase(
	sessions repository.SessionRepository,
	gen adapter.TextGenerator,
	ex extract.Extractor,
	opts ChatOptions,
	logger *zerolog.Logger,
) *chatUC {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	return &chatUC{sessions: sessions, gen: gen, ex: ex, opts: opts, log: logger}
}

func (c *chatUC) Send(ctx context.Context, sessionID, message string, state map[string]any) (*model.Command, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.ErrInvalidArgument
	}

	if isClearTrigger(message) {
		if err := c.sessions.Clear(ctx, sessionID); err != nil {
			return nil, err
		}
		metrics.SessionCleared()
		return &model.Command{Action: model.ActionChat, Reply: clearedReply}, nil
	}

	if c.opts.RateLimiter != nil && c.opts.RateLimit > 0 {
		ok, err := c.opts.RateLimiter.Allow(ctx, "rate_limit:"+sessionID+":gateway", c.opts.RateLimit, c.opts.RateWindow)
		if err != nil {
			logging.With(ctx, c.log).Warn().Err(err).Msg("rate limiter unavailable, allowing call")
		} else if !ok {
			return nil, domain.ErrRateLimited
		}
	}

	turns, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	prompt := renderTemplate(chatPromptTemplate, map[string]any{
		"history": formatHistory(turns),
		"state":   formatState(state),
		"message": message,
	})

	raw, err := c.gen.Generate(ctx, prompt, adapter.GenerateOptions{
		Temperature: 0,
		JSONOnly:    true,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	// Missing or unparsable JSON is reported, never repaired.
	obj, err := c.ex.Extract(raw)
	if err != nil {
		recordExtraction(err)
		logging.With(ctx, c.log).Warn().Err(err).Str("raw", raw).Msg("chat extraction failed")
		return nil, err
	}

	cmd := NormalizeCommand(obj, message, state, c.opts.Strict)

	// History mutation happens only after the pipeline succeeded, so a
	// failed request leaves the session exactly as it was.
	if err := c.sessions.Append(ctx, sessionID,
		model.NewTurn(model.RoleUser, message),
		model.NewTurn(model.RoleAssistant, cmd.Reply),
	); err != nil {
		return nil, err
	}
	return cmd, nil
}

func isClearTrigger(message string) bool {
	for _, trigger := range clearTriggers {
		if strings.Contains(message, trigger) {
			return true
		}
	}
	return false
}
