//go:build !integration

package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

// --- Session / history window ---

func TestTrimTurnsKeepsMostRecent(t *testing.T) {
	turns := make([]Turn, 0, 25)
	for i := 0; i < 25; i++ {
		turns = append(turns, NewTurn(RoleUser, fmt.Sprintf("m%d", i)))
	}

	trimmed := TrimTurns(turns)
	if len(trimmed) != HistoryWindow {
		t.Fatalf("expected %d turns, got %d", HistoryWindow, len(trimmed))
	}
	if trimmed[0].Content != "m5" {
		t.Errorf("expected oldest surviving turn to be m5, got %s", trimmed[0].Content)
	}
	if trimmed[len(trimmed)-1].Content != "m24" {
		t.Errorf("expected newest turn to be m24, got %s", trimmed[len(trimmed)-1].Content)
	}
}

func TestTrimTurnsNoopUnderWindow(t *testing.T) {
	turns := []Turn{NewTurn(RoleUser, "hi"), NewTurn(RoleAssistant, "hello")}
	if got := TrimTurns(turns); len(got) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got))
	}
}

func TestSessionAppendAppliesWindow(t *testing.T) {
	s := NewSession("s1")
	for i := 0; i < 30; i++ {
		s.Append(NewTurn(RoleUser, fmt.Sprintf("u%d", i)), NewTurn(RoleAssistant, fmt.Sprintf("a%d", i)))
	}
	if len(s.Turns) != HistoryWindow {
		t.Fatalf("expected %d turns, got %d", HistoryWindow, len(s.Turns))
	}
	// Relative order preserved: user turn precedes its assistant turn.
	if s.Turns[len(s.Turns)-2].Content != "u29" || s.Turns[len(s.Turns)-1].Content != "a29" {
		t.Errorf("unexpected tail: %q, %q", s.Turns[len(s.Turns)-2].Content, s.Turns[len(s.Turns)-1].Content)
	}
}

func TestSessionRecent(t *testing.T) {
	s := NewSession("s1")
	s.Append(NewTurn(RoleUser, "a"), NewTurn(RoleAssistant, "b"), NewTurn(RoleUser, "c"))
	recent := s.Recent(2)
	if len(recent) != 2 || recent[0].Content != "b" {
		t.Fatalf("unexpected recent turns: %+v", recent)
	}
}

// --- Command contract ---

func TestActionValid(t *testing.T) {
	for _, a := range Actions {
		if !a.Valid() {
			t.Errorf("expected %q to be valid", a)
		}
	}
	for _, bad := range []Action{"", "delete", "CHAT", "move"} {
		if bad.Valid() {
			t.Errorf("expected %q to be invalid", bad)
		}
	}
}

func TestCommandJSONOmitsUnsetVariantFields(t *testing.T) {
	b, err := json.Marshal(&Command{Action: ActionChat, Reply: "こんにちは"})
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"prompt", "state", "needs_confirm", "confirm_text"} {
		if strings.Contains(string(b), field) {
			t.Errorf("chat command must not serialize %q: %s", field, b)
		}
	}

	b, err = json.Marshal(&Command{Action: ActionGenerate, Reply: "ok", Prompt: "a tower"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "state") {
		t.Errorf("generate command must not serialize state: %s", b)
	}
}

// --- PolygonSpec validation ---

func TestPolygonSpecValidate(t *testing.T) {
	spec := &PolygonSpec{Shape: ShapeCircle, RadiusM: 100, Opacity: 0.5}
	if err := spec.Validate(); err != nil {
		t.Fatalf("expected valid spec, got %v", err)
	}

	if err := (&PolygonSpec{Shape: "blob"}).Validate(); err == nil {
		t.Error("expected unknown shape to fail")
	}
	if err := (&PolygonSpec{Shape: ShapeNgon, Sides: 2}).Validate(); err == nil {
		t.Error("expected 2-sided ngon to fail")
	}
	if err := (&PolygonSpec{Shape: ShapeRect, Opacity: 1.5}).Validate(); err == nil {
		t.Error("expected opacity > 1 to fail")
	}
}

func TestGridValidateBounds(t *testing.T) {
	grid := &Grid{Rows: 2, Cols: 3, Zones: []Zone{{Row: 1, Col: 2, Opacity: 0.4}}}
	if err := grid.Validate(); err != nil {
		t.Fatalf("expected valid grid, got %v", err)
	}

	if err := (&Grid{Rows: 0, Cols: 3}).Validate(); err == nil {
		t.Error("expected zero rows to fail")
	}
	if err := (&Grid{Rows: 2, Cols: 2, Zones: []Zone{{Row: 2, Col: 0}}}).Validate(); err == nil {
		t.Error("expected out-of-bounds zone row to fail")
	}
	if err := (&Grid{Rows: 2, Cols: 2, Zones: []Zone{{Row: 0, Col: -1}}}).Validate(); err == nil {
		t.Error("expected negative zone col to fail")
	}
}

func TestPolygonSpecFromMap(t *testing.T) {
	spec, err := PolygonSpecFromMap(map[string]any{
		"shape": "ngon", "sides": float64(6), "color": "#ff0000",
		"grid": map[string]any{"rows": float64(2), "cols": float64(2)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if spec.Shape != ShapeNgon || spec.Sides != 6 || spec.Grid == nil || spec.Grid.Rows != 2 {
		t.Errorf("unexpected decode: %+v", spec)
	}
}
