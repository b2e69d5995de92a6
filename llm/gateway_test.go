package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/healthlang/ilera/schema"
)

type stubProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(ctx context.Context, req Request) (schema.ModelResult, error) {
	s.calls++
	if s.err != nil {
		return schema.ModelResult{}, s.err
	}
	return schema.ModelResult{Text: s.text, Provider: s.name}, nil
}

func TestPrimarySucceeds(t *testing.T) {
	primary := &stubProvider{name: "groq", text: "answer"}
	backup := &stubProvider{name: "openai", text: "other"}
	g := NewGateway([]Provider{primary, backup}, time.Second)

	res, ok := g.Generate(context.Background(), Request{Prompt: "q"})
	if !ok {
		t.Fatal("expected success")
	}
	if res.Provider != "groq" || res.Text != "answer" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if backup.calls != 0 {
		t.Fatal("backup should not be called when primary succeeds")
	}
}

func TestFallbackOrder(t *testing.T) {
	first := &stubProvider{name: "groq", err: errors.New("rate limited")}
	second := &stubProvider{name: "openai", text: "from backup"}
	g := NewGateway([]Provider{first, second}, time.Second)

	res, ok := g.Generate(context.Background(), Request{Prompt: "q"})
	if !ok {
		t.Fatal("expected success via fallback")
	}
	if res.Provider != "openai" {
		t.Fatalf("provider = %s, want openai", res.Provider)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("calls: first=%d second=%d", first.calls, second.calls)
	}
}

func TestAllProvidersFail(t *testing.T) {
	g := NewGateway([]Provider{
		&stubProvider{name: "a", err: errors.New("down")},
		&stubProvider{name: "b", err: errors.New("down")},
	}, time.Second)

	res, ok := g.Generate(context.Background(), Request{Prompt: "q"})
	if ok {
		t.Fatal("expected degraded result")
	}
	if res.Text != DegradedMessage {
		t.Fatalf("text = %q, want degraded message", res.Text)
	}
}

func TestBuildPromptIncludesContext(t *testing.T) {
	system, prompt := BuildPrompt("[WHO] Malaria facts.", "what is malaria?")
	if system == "" {
		t.Fatal("system prompt empty")
	}
	if !strings.Contains(prompt, "Context:\n[WHO] Malaria facts.") {
		t.Fatalf("context missing from prompt: %q", prompt)
	}
	if !strings.Contains(prompt, "Question: what is malaria?") {
		t.Fatalf("question missing from prompt: %q", prompt)
	}
}

func TestBuildPromptWithoutContext(t *testing.T) {
	_, prompt := BuildPrompt("", "hello")
	if strings.Contains(prompt, "Context:") {
		t.Fatalf("empty context should be omitted: %q", prompt)
	}
}

func TestTrimToTokensBounds(t *testing.T) {
	long := strings.Repeat("malaria prevention guidance ", 2000)
	trimmed := trimToTokens(long, 100)
	if len(trimmed) >= len(long) {
		t.Fatal("long text was not trimmed")
	}
	if trimToTokens("short", 100) != "short" {
		t.Fatal("short text must pass through unchanged")
	}
}
