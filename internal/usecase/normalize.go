package usecase

import (
	"math"
	"strings"

	"map-ai-relay/internal/domain"
	"map-ai-relay/internal/domain/model"
	"map-ai-relay/internal/infra/metrics"
)

// DefaultReply acknowledges the user when the model returned an empty reply.
const DefaultReply = "了解しました。"

// confirmTexts back strict mode when the model did not describe the pending
// action itself.
var confirmTexts = map[model.Action]string{
	model.ActionGenerate: "新しい図形を生成します。よろしいですか？",
	model.ActionFly:      "指定の場所へ移動します。よろしいですか？",
	model.ActionUndo:     "直前の操作を取り消します。よろしいですか？",
	model.ActionClear:    "すべての図形を削除します。よろしいですか？",
	model.ActionRotate:   "視点を回転します。よろしいですか？",
	model.ActionModify:   "図形の見た目を変更します。よろしいですか？",
}

// NormalizeCommand coerces an untrusted, parsed model object into a
// schema-valid Command. message and priorState are the caller's original
// inputs; they feed the deterministic fallbacks. Repair is preferred over
// error whenever a safe default exists, so this never fails.
func NormalizeCommand(obj map[string]any, message string, priorState map[string]any, strict bool) *model.Command {
	cmd := &model.Command{}

	// Rule 1: reply is always a non-empty string.
	cmd.Reply = strings.TrimSpace(asString(obj["reply"]))
	if cmd.Reply == "" {
		cmd.Reply = DefaultReply
		metrics.CommandRepaired("reply_default")
	}

	// Rule 2: action must come from the closed set; otherwise re-derive it
	// from the user's own words.
	action := model.Action(strings.ToLower(strings.TrimSpace(asString(obj["action"]))))
	if !action.Valid() {
		action = DeriveAction(message)
		metrics.CommandRepaired("action_derived")
	}
	cmd.Action = action

	// Rule 3: generate/fly always carry an actionable prompt.
	if action.NeedsPrompt() {
		cmd.Prompt = strings.TrimSpace(asString(obj["prompt"]))
		if cmd.Prompt == "" {
			cmd.Prompt = message
			metrics.CommandRepaired("prompt_substituted")
		}
	}

	// Rule 4: structural edits only ever ride on an unambiguous modify.
	if action == model.ActionModify {
		cmd.State = normalizeState(asObject(obj["state"]), priorState)
	}

	// Rule 5: strict mode gates every non-chat action behind confirmation
	// and strips side-effecting payload from chat.
	if strict {
		if action == model.ActionChat {
			cmd.Prompt = ""
			cmd.State = nil
		} else {
			cmd.NeedsConfirm = true
			cmd.ConfirmText = strings.TrimSpace(asString(obj["confirm_text"]))
			if cmd.ConfirmText == "" {
				cmd.ConfirmText = confirmTexts[action]
			}
		}
	}

	return cmd
}

// normalizeState picks the model state when present, else the caller's prior
// state, else an empty polygon collection, and guarantees "polygons" is an
// array.
func normalizeState(modelState, priorState map[string]any) map[string]any {
	state := modelState
	if state == nil {
		state = priorState
	}
	if state == nil {
		return map[string]any{"polygons": []any{}}
	}

	if _, ok := state["polygons"].([]any); !ok {
		var prior []any
		if priorState != nil {
			prior, _ = priorState["polygons"].([]any)
		}
		if prior == nil {
			prior = []any{}
		}
		// Shallow copy so the repair does not mutate the caller's map.
		fixed := make(map[string]any, len(state))
		for k, v := range state {
			fixed[k] = v
		}
		fixed["polygons"] = prior
		metrics.CommandRepaired("polygons_coerced")
		return fixed
	}
	return state
}

// NormalizePlace validates a place-resolution object. A wrong coordinate is
// worse than an error, so there is no fallback synthesis here.
func NormalizePlace(obj map[string]any) (model.Coordinates, error) {
	lat, okLat := asFloat(obj["lat"])
	lng, okLng := asFloat(obj["lng"])
	if !okLat || !okLng {
		return model.Coordinates{}, domain.ErrInvalidCoordinates
	}
	return model.Coordinates{Lat: lat, Lng: lng}, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
