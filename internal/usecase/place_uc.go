package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"map-ai-relay/internal/domain"
	"map-ai-relay/internal/domain/model"
	"map-ai-relay/internal/domain/ports/adapter"
	"map-ai-relay/internal/extract"
	"map-ai-relay/internal/infra/logging"
	"map-ai-relay/internal/infra/metrics"
)

// Compile-time check
var _ PlaceUseCase = (*placeUC)(nil)

type PlaceUseCase interface {
	// Resolve turns a place name into coordinates. A wrong coordinate is
	// worse than an error, so any non-finite model output fails hard.
	Resolve(ctx context.Context, place string) (model.Coordinates, error)
}

type placeUC struct {
	gen adapter.TextGenerator
	ex  extract.Extractor
	log *zerolog.Logger
}

func NewPlaceUseCase(gen adapter.TextGenerator, ex extract.Extractor, logger *zerolog.Logger) *placeUC {
	return &placeUC{gen: gen, ex: ex, log: logger}
}

func (u *placeUC) Resolve(ctx context.Context, place string) (model.Coordinates, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return model.Coordinates{}, domain.ErrInvalidArgument
	}

	prompt := renderTemplate(placePromptTemplate, map[string]any{"place": place})
	raw, err := u.gen.Generate(ctx, prompt, adapter.GenerateOptions{
		Temperature: 0,
		JSONOnly:    true,
		MaxTokens:   128,
	})
	if err != nil {
		return model.Coordinates{}, err
	}

	obj, err := u.ex.Extract(raw)
	if err != nil {
		recordExtraction(err)
		logging.With(ctx, u.log).Warn().Err(err).Str("raw", raw).Msg("place extraction failed")
		return model.Coordinates{}, err
	}
	return NormalizePlace(obj)
}

// recordExtraction classifies an extractor failure for metrics.
func recordExtraction(err error) {
	var malformed *domain.MalformedJSONError
	switch {
	case errors.Is(err, domain.ErrNoJSONFound):
		metrics.ExtractionFailed("no_json")
	case errors.As(err, &malformed):
		metrics.ExtractionFailed("malformed")
	}
}
