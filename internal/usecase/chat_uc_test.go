//go:build !integration

package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"map-ai-relay/internal/domain"
	"map-ai-relay/internal/domain/model"
	"map-ai-relay/internal/domain/ports/adapter"
	"map-ai-relay/internal/extract"
	"map-ai-relay/internal/infra/memstore"
)

// ---- Fakes ----

type fakeGenerator struct {
	reply string
	err   error
	calls int
	last  string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ adapter.GenerateOptions) (string, error) {
	f.calls++
	f.last = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) CountTokens(string) (int, error) { return 0, nil }

func (f *fakeGenerator) Name() string { return "fake" }

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return false, nil
}

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

func newChatUC(gen *fakeGenerator, opts ChatOptions) (*chatUC, *memstore.SessionRepo) {
	repo := memstore.NewSessionRepo()
	uc := NewChatUseCase(repo, gen, extract.NewBraceExtractor(), opts, newLogger())
	return uc, repo
}

// ---- Tests ----

func TestChatHappyPathAppendsBothTurns(t *testing.T) {
	gen := &fakeGenerator{reply: `{"action":"chat","reply":"こんにちは！"}`}
	uc, repo := newChatUC(gen, ChatOptions{})

	cmd, err := uc.Send(context.Background(), "s1", "やあ", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Action != model.ActionChat || cmd.Reply != "こんにちは！" {
		t.Errorf("unexpected command: %+v", cmd)
	}

	turns, _ := repo.Get(context.Background(), "s1")
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != model.RoleUser || turns[0].Content != "やあ" {
		t.Errorf("unexpected user turn: %+v", turns[0])
	}
	if turns[1].Role != model.RoleAssistant || turns[1].Content != "こんにちは！" {
		t.Errorf("unexpected assistant turn: %+v", turns[1])
	}
}

func TestChatEmptyMessageRejected(t *testing.T) {
	gen := &fakeGenerator{reply: `{}`}
	uc, _ := newChatUC(gen, ChatOptions{})

	if _, err := uc.Send(context.Background(), "s1", "   ", nil); err != domain.ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if gen.calls != 0 {
		t.Error("gateway must not be invoked for empty message")
	}
}

func TestChatClearTriggerSkipsGateway(t *testing.T) {
	gen := &fakeGenerator{reply: `{"action":"chat","reply":"x"}`}
	uc, repo := newChatUC(gen, ChatOptions{})
	ctx := context.Background()

	// Seed some history first.
	if _, err := uc.Send(ctx, "s1", "東京に飛んで", nil); err != nil {
		t.Fatal(err)
	}
	gen.calls = 0

	cmd, err := uc.Send(ctx, "s1", "履歴クリア", nil)
	if err != nil {
		t.Fatal(err)
	}
	if gen.calls != 0 {
		t.Error("gateway must not be invoked on clear trigger")
	}
	if cmd.Action != model.ActionChat {
		t.Errorf("expected chat command, got %s", cmd.Action)
	}
	turns, _ := repo.Get(ctx, "s1")
	if len(turns) != 0 {
		t.Errorf("expected empty history, got %d turns", len(turns))
	}
}

func TestChatExtractionFailureLeavesHistoryUntouched(t *testing.T) {
	gen := &fakeGenerator{reply: "sorry, I cannot answer that"}
	uc, repo := newChatUC(gen, ChatOptions{})

	_, err := uc.Send(context.Background(), "s1", "何か作って", nil)
	if err != domain.ErrNoJSONFound {
		t.Fatalf("expected ErrNoJSONFound, got %v", err)
	}
	turns, _ := repo.Get(context.Background(), "s1")
	if len(turns) != 0 {
		t.Errorf("failed request must not mutate history, got %d turns", len(turns))
	}
}

func TestChatGatewayErrorPropagates(t *testing.T) {
	gen := &fakeGenerator{err: &domain.GatewayError{Status: 503, Body: "overloaded"}}
	uc, _ := newChatUC(gen, ChatOptions{})

	_, err := uc.Send(context.Background(), "s1", "test", nil)
	gw, ok := err.(*domain.GatewayError)
	if !ok || gw.Status != 503 {
		t.Fatalf("expected gateway error to pass through, got %v", err)
	}
}

func TestChatRateLimited(t *testing.T) {
	gen := &fakeGenerator{reply: `{"action":"chat","reply":"x"}`}
	uc, _ := newChatUC(gen, ChatOptions{RateLimiter: denyLimiter{}, RateLimit: 1, RateWindow: time.Minute})

	if _, err := uc.Send(context.Background(), "s1", "test", nil); err != domain.ErrRateLimited {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if gen.calls != 0 {
		t.Error("gateway must not be invoked when rate limited")
	}
}

func TestChatHistoryFlowsIntoPrompt(t *testing.T) {
	gen := &fakeGenerator{reply: `{"action":"chat","reply":"second"}`}
	uc, _ := newChatUC(gen, ChatOptions{})
	ctx := context.Background()

	if _, err := uc.Send(ctx, "s1", "first message", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Send(ctx, "s1", "and now?", nil); err != nil {
		t.Fatal(err)
	}
	if want := "first message"; !strings.Contains(gen.last, want) {
		t.Errorf("expected prompt to carry history %q:\n%s", want, gen.last)
	}
}

func TestChatWindowBoundsPromptHistory(t *testing.T) {
	gen := &fakeGenerator{reply: `{"action":"chat","reply":"ok"}`}
	uc, repo := newChatUC(gen, ChatOptions{})
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		if _, err := uc.Send(ctx, "s1", fmt.Sprintf("message %d", i), nil); err != nil {
			t.Fatal(err)
		}
	}
	turns, _ := repo.Get(ctx, "s1")
	if len(turns) != model.HistoryWindow {
		t.Fatalf("expected window of %d, got %d", model.HistoryWindow, len(turns))
	}
}
