// Package extract pulls a JSON object out of free-form model output.
package extract

import (
	"encoding/json"
	"strings"

	"map-ai-relay/internal/domain"
)

// Extractor locates and parses a JSON object inside arbitrary text.
// The brace-slicing default is deliberately lenient; a stricter grammar-based
// implementation can be swapped in without touching callers.
type Extractor interface {
	Extract(text string) (map[string]any, error)
}

var _ Extractor = (*BraceExtractor)(nil)

// BraceExtractor takes the span from the first '{' to the last '}' and lets
// json.Unmarshal do the real validation. The slice is a coarse pre-filter,
// not a balanced-brace scanner: text containing two independent objects
// over-captures and fails parse. Accepted limitation.
type BraceExtractor struct{}

func NewBraceExtractor() *BraceExtractor { return &BraceExtractor{} }

func (BraceExtractor) Extract(text string) (map[string]any, error) {
	cleaned := stripFences(text)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < 0 || end < start {
		return nil, domain.ErrNoJSONFound
	}

	raw := cleaned[start : end+1]
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, &domain.MalformedJSONError{Raw: raw, Err: err}
	}
	return obj, nil
}

// stripFences removes a surrounding markdown code fence. Models told to emit
// JSON-only still wrap replies in ```json fences now and then.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(s)
}
