package usecase

import (
	"strings"

	"map-ai-relay/internal/domain/model"
)

// IntentRule maps a predicate over the raw user message to an action. Rules
// are evaluated in order; the first match wins. The table is exported so the
// order and coverage stay independently verifiable.
type IntentRule struct {
	Action model.Action
	Match  func(message string) bool
}

// IntentRules backs the action fallback: when the model omits or mistypes
// the action field, the action is re-derived from the user's own words.
// Priority: rotate > undo > clear > fly > modify > generate.
var IntentRules = []IntentRule{
	{model.ActionRotate, containsAny("回転", "回して", "まわして", "rotate", "spin")},
	{model.ActionUndo, containsAny("元に戻", "戻して", "取り消", "アンドゥ", "undo", "revert")},
	{model.ActionClear, containsAny("全部消", "全て消", "クリア", "リセット", "clear", "delete all", "reset")},
	{model.ActionFly, containsAny("飛んで", "行って", "行きたい", "移動", "連れて", "fly", "go to", "take me")},
	{model.ActionModify, containsAny(
		"色", "カラー", "color",
		"透明", "不透明", "opacity",
		"高さ", "高く", "低く", "height", "taller", "lower",
		"大きさ", "大きく", "小さく", "サイズ", "size", "bigger", "smaller",
	)},
}

// DeriveAction resolves an action from the user message, falling back to
// generate when nothing matches.
func DeriveAction(message string) model.Action {
	lower := strings.ToLower(message)
	for _, rule := range IntentRules {
		if rule.Match(lower) {
			return rule.Action
		}
	}
	return model.ActionGenerate
}

func containsAny(keywords ...string) func(string) bool {
	return func(message string) bool {
		for _, kw := range keywords {
			if strings.Contains(message, kw) {
				return true
			}
		}
		return false
	}
}
