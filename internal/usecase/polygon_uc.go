package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"map-ai-relay/internal/domain"
	"map-ai-relay/internal/domain/model"
	"map-ai-relay/internal/domain/ports/adapter"
	"map-ai-relay/internal/extract"
	"map-ai-relay/internal/infra/logging"
)

// Compile-time check
var _ PolygonUseCase = (*polygonUC)(nil)

type PolygonUseCase interface {
	// Interpret turns free text into a polygon spec object. The model is
	// trusted for creative field population; this layer only guarantees the
	// result is a JSON object.
	Interpret(ctx context.Context, text string) (map[string]any, error)
}

type polygonUC struct {
	gen adapter.TextGenerator
	ex  extract.Extractor
	log *zerolog.Logger
}

func NewPolygonUseCase(gen adapter.TextGenerator, ex extract.Extractor, logger *zerolog.Logger) *polygonUC {
	return &polygonUC{gen: gen, ex: ex, log: logger}
}

func (u *polygonUC) Interpret(ctx context.Context, text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrInvalidArgument
	}

	prompt := renderTemplate(polygonPromptTemplate, map[string]any{"text": text})
	raw, err := u.gen.Generate(ctx, prompt, adapter.GenerateOptions{
		Temperature: 0,
		JSONOnly:    true,
		MaxTokens:   512,
	})
	if err != nil {
		return nil, err
	}

	obj, err := u.ex.Extract(raw)
	if err != nil {
		recordExtraction(err)
		logging.With(ctx, u.log).Warn().Err(err).Str("raw", raw).Msg("polygon extraction failed")
		return nil, err
	}

	// Best-effort structural check; the raw object is still returned as-is.
	if spec, err := model.PolygonSpecFromMap(obj); err == nil {
		if err := spec.Validate(); err != nil {
			logging.With(ctx, u.log).Warn().Err(err).Msg("polygon spec failed validation, passing through")
		}
	}
	return obj, nil
}
