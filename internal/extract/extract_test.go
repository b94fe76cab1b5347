//go:build !integration

package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map-ai-relay/internal/domain"
)

func TestExtractRoundTrip(t *testing.T) {
	obj, err := NewBraceExtractor().Extract(`blah {"a":1} blah`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, obj)
}

func TestExtractNoBraces(t *testing.T) {
	_, err := NewBraceExtractor().Extract("the model apologizes instead of answering")
	assert.ErrorIs(t, err, domain.ErrNoJSONFound)
}

func TestExtractReversedBraces(t *testing.T) {
	_, err := NewBraceExtractor().Extract("} nothing here {")
	assert.ErrorIs(t, err, domain.ErrNoJSONFound)
}

func TestExtractCodeFence(t *testing.T) {
	text := "```json\n{\"action\":\"fly\",\"prompt\":\"Tokyo\"}\n```"
	obj, err := NewBraceExtractor().Extract(text)
	require.NoError(t, err)
	assert.Equal(t, "fly", obj["action"])
}

func TestExtractNestedBracesInStrings(t *testing.T) {
	obj, err := NewBraceExtractor().Extract(`{"reply":"use {rows} x {cols}","action":"chat"}`)
	require.NoError(t, err)
	assert.Equal(t, "use {rows} x {cols}", obj["reply"])
}

func TestExtractMalformedKeepsRaw(t *testing.T) {
	_, err := NewBraceExtractor().Extract(`prefix {"a": } suffix`)
	var malformed *domain.MalformedJSONError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, `{"a": }`, malformed.Raw)
}

func TestExtractTwoObjectsOverCaptures(t *testing.T) {
	// First-{ to last-} spans both objects and fails parse even though a
	// valid object exists earlier. Documented behavior.
	_, err := NewBraceExtractor().Extract(`{"a":1} and {"b":2}`)
	var malformed *domain.MalformedJSONError
	assert.True(t, errors.As(err, &malformed))
}

func TestExtractTopLevelArraySlicesInnerObject(t *testing.T) {
	// The slice lands on the inner object, so an array wrapper degrades to
	// its first-to-last object span rather than failing outright.
	obj, err := NewBraceExtractor().Extract(`[{"a":1}]`)
	require.NoError(t, err)
	assert.Equal(t, float64(1), obj["a"])
}
