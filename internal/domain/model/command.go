package model

// Action is the closed set of instructions the map client understands.
// The normalizer guarantees a Command.Action is always one of these; an
// arbitrary model-supplied string never passes through.
type Action string

const (
	ActionChat     Action = "chat"
	ActionGenerate Action = "generate"
	ActionFly      Action = "fly"
	ActionUndo     Action = "undo"
	ActionClear    Action = "clear"
	ActionRotate   Action = "rotate"
	ActionModify   Action = "modify"
)

// Actions lists all recognized tags in a stable order.
var Actions = []Action{
	ActionChat, ActionGenerate, ActionFly,
	ActionUndo, ActionClear, ActionRotate, ActionModify,
}

func (a Action) Valid() bool {
	switch a {
	case ActionChat, ActionGenerate, ActionFly, ActionUndo, ActionClear, ActionRotate, ActionModify:
		return true
	}
	return false
}

// NeedsPrompt reports whether the variant requires a non-empty prompt.
func (a Action) NeedsPrompt() bool {
	return a == ActionGenerate || a == ActionFly
}

// Command is the normalized instruction returned to the map client.
//
// Variant invariants, enforced by the normalizer:
//   - Reply is always non-empty.
//   - Prompt is set only for generate/fly, and then never empty.
//   - State is set only for modify, and then State["polygons"] is always
//     an array.
//   - NeedsConfirm/ConfirmText appear only in strict mode and never on chat.
type Command struct {
	Action       Action         `json:"action"`
	Reply        string         `json:"reply"`
	Prompt       string         `json:"prompt,omitempty"`
	State        map[string]any `json:"state,omitempty"`
	NeedsConfirm bool           `json:"needs_confirm,omitempty"`
	ConfirmText  string         `json:"confirm_text,omitempty"`
}

// Coordinates is the result of a place resolution.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
