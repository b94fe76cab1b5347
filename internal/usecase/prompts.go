package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"map-ai-relay/internal/domain/model"
)

//go:embed prompt_place.txt
var placePromptTemplate string

//go:embed prompt_polygon.txt
var polygonPromptTemplate string

//go:embed prompt_chat.txt
var chatPromptTemplate string

func renderTemplate(tpl string, values map[string]any) string {
	for key, value := range values {
		tpl = strings.ReplaceAll(tpl, "{"+key+"}", fmt.Sprint(value))
	}
	return tpl
}

func formatHistory(turns []model.Turn) string {
	if len(turns) == 0 {
		return "(no previous messages)"
	}

	var builder strings.Builder
	for _, t := range turns {
		builder.WriteString(fmt.Sprintf("%s: %s\n", t.Role, t.Content))
	}
	return builder.String()
}

func formatState(state map[string]any) string {
	if state == nil {
		return "(empty)"
	}
	b, err := json.Marshal(state)
	if err != nil {
		return "(empty)"
	}
	return string(b)
}
