package orchestrator

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/healthlang/ilera/assembler"
	"github.com/healthlang/ilera/cache"
	"github.com/healthlang/ilera/formatter"
	"github.com/healthlang/ilera/llm"
	"github.com/healthlang/ilera/safety"
	"github.com/healthlang/ilera/schema"
)

type fakeBranch struct {
	items []schema.ContextItem
	calls int32
	panic bool
}

func (f *fakeBranch) Search(ctx context.Context, q string) []schema.ContextItem {
	atomic.AddInt32(&f.calls, 1)
	if f.panic {
		panic("branch exploded")
	}
	return f.items
}

func (f *fakeBranch) Gather(ctx context.Context, q string) []schema.ContextItem {
	return f.Search(ctx, q)
}

type fakeGenerator struct {
	text  string
	ok    bool
	calls int32
}

func (f *fakeGenerator) Generate(ctx context.Context, req llm.Request) (schema.ModelResult, bool) {
	atomic.AddInt32(&f.calls, 1)
	if !f.ok {
		return schema.ModelResult{Text: llm.DegradedMessage, Provider: "none"}, false
	}
	return schema.ModelResult{Text: f.text, Provider: "stub"}, true
}

func newOrchestrator(gen *fakeGenerator, docs, tools, search *fakeBranch) *Orchestrator {
	o := &Orchestrator{
		Cache:         cache.New(100, time.Hour),
		Assembler:     &assembler.Assembler{},
		Gateway:       gen,
		Safety:        safety.NewClassifier(),
		Formatter:     &formatter.Formatter{},
		BranchTimeout: time.Second,
	}
	if docs != nil {
		o.Documents = docs
	}
	if tools != nil {
		o.Tools = tools
	}
	if search != nil {
		o.Search = search
	}
	return o
}

func TestProcessQuerySuccess(t *testing.T) {
	docs := &fakeBranch{items: []schema.ContextItem{
		{Content: "Malaria is mosquito-borne.", Source: "WHO", Score: 0.9, Origin: schema.OriginDocumentStore},
	}}
	tools := &fakeBranch{items: []schema.ContextItem{
		{Content: "Malaria topic summary.", Source: "tools:health-topics", Score: 0.8, Origin: schema.OriginExternalTool},
	}}
	gen := &fakeGenerator{text: "Malaria is caused by Plasmodium parasites.", ok: true}
	o := newOrchestrator(gen, docs, tools, nil)

	resp := o.ProcessQuery(context.Background(), schema.QueryRequest{Text: "what is malaria?", SourceLang: "en"})
	if !resp.Success {
		t.Fatalf("expected success: %+v", resp)
	}
	if resp.RequestID == "" {
		t.Fatal("request id missing")
	}
	if !strings.Contains(resp.ResponseText, "Plasmodium") {
		t.Fatalf("answer missing: %q", resp.ResponseText)
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("sources = %v", resp.Sources)
	}
	// tool sources sort ahead of document sources
	if resp.Sources[0] != "tools:health-topics" {
		t.Fatalf("source order: %v", resp.Sources)
	}
	if resp.SafetyLevel != "none" {
		t.Fatalf("safety = %s", resp.SafetyLevel)
	}
}

func TestCacheShortCircuits(t *testing.T) {
	docs := &fakeBranch{}
	gen := &fakeGenerator{text: "answer", ok: true}
	o := newOrchestrator(gen, docs, nil, nil)

	req := schema.QueryRequest{Text: "What is Diabetes?", SourceLang: "en"}
	first := o.ProcessQuery(context.Background(), req)

	// same query differing only in case and spacing
	second := o.ProcessQuery(context.Background(), schema.QueryRequest{Text: " what is   diabetes? ", SourceLang: "en"})
	if gen.calls != 1 {
		t.Fatalf("generator calls = %d, want 1", gen.calls)
	}
	if second.ResponseText != first.ResponseText {
		t.Fatal("cached response text differs")
	}
	if second.RequestID == first.RequestID {
		t.Fatal("cached responses must carry fresh request ids")
	}
}

func boolPtr(b bool) *bool { return &b }

func TestCacheBypass(t *testing.T) {
	gen := &fakeGenerator{text: "fresh answer", ok: true}
	o := newOrchestrator(gen, &fakeBranch{}, nil, nil)

	req := schema.QueryRequest{Text: "what is malaria?", SourceLang: "en", UseCache: boolPtr(false)}
	o.ProcessQuery(context.Background(), req)
	o.ProcessQuery(context.Background(), req)
	if gen.calls != 2 {
		t.Fatalf("generator calls = %d, want 2 with caching off", gen.calls)
	}

	// uncached responses must not be stored either
	cached := o.ProcessQuery(context.Background(), schema.QueryRequest{Text: "what is malaria?", SourceLang: "en"})
	if gen.calls != 3 {
		t.Fatalf("bypassed run leaked into the cache, generator calls = %d", gen.calls)
	}
	if !cached.Success {
		t.Fatalf("unexpected response: %+v", cached)
	}
}

func TestSourcesOmittedWhenDisabled(t *testing.T) {
	docs := &fakeBranch{items: []schema.ContextItem{
		{Content: "Malaria is mosquito-borne.", Source: "WHO", Score: 0.9, Origin: schema.OriginDocumentStore},
	}}
	gen := &fakeGenerator{text: "answer", ok: true}
	o := newOrchestrator(gen, docs, nil, nil)

	resp := o.ProcessQuery(context.Background(), schema.QueryRequest{
		Text: "what is malaria?", SourceLang: "en", IncludeSources: boolPtr(false),
	})
	if len(resp.Sources) != 0 {
		t.Fatalf("sources should be omitted: %v", resp.Sources)
	}
	if strings.Contains(resp.ResponseText, "Sources:") {
		t.Fatalf("sources section should be omitted:\n%s", resp.ResponseText)
	}

	// the with-sources variant must not be served from the without-sources key
	with := o.ProcessQuery(context.Background(), schema.QueryRequest{Text: "what is malaria?", SourceLang: "en"})
	if len(with.Sources) != 1 || with.Sources[0] != "WHO" {
		t.Fatalf("sources missing on default request: %v", with.Sources)
	}
}

func TestHistoryRecordCarriesResponseFields(t *testing.T) {
	docs := &fakeBranch{items: []schema.ContextItem{
		{Content: "context", Source: "WHO", Score: 0.9, Origin: schema.OriginDocumentStore},
	}}
	gen := &fakeGenerator{text: "answer", ok: true}
	rec := &captureRecorder{done: make(chan schema.HistoryRecord, 1)}
	o := newOrchestrator(gen, docs, nil, nil)
	o.History = rec

	o.ProcessQuery(context.Background(), schema.QueryRequest{Text: "what is malaria?", SourceLang: "en", UserID: "u-1"})
	select {
	case got := <-rec.done:
		if got.UserID != "u-1" {
			t.Fatalf("user id = %q", got.UserID)
		}
		if !strings.Contains(got.ResponseText, "answer") {
			t.Fatalf("response text missing: %q", got.ResponseText)
		}
		if len(got.Sources) != 1 || got.Sources[0] != "WHO" {
			t.Fatalf("sources = %v", got.Sources)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("history record never arrived")
	}
}

type captureRecorder struct {
	done chan schema.HistoryRecord
}

func (c *captureRecorder) Record(ctx context.Context, rec schema.HistoryRecord) { c.done <- rec }
func (c *captureRecorder) Close() error                                         { return nil }

func TestDegradedResponseNotCached(t *testing.T) {
	gen := &fakeGenerator{ok: false}
	o := newOrchestrator(gen, &fakeBranch{}, nil, nil)

	req := schema.QueryRequest{Text: "what is lupus?"}
	resp := o.ProcessQuery(context.Background(), req)
	if resp.Success {
		t.Fatal("expected degraded response")
	}
	if resp.Error == "" {
		t.Fatal("error field must be set on degraded responses")
	}
	if !strings.Contains(resp.ResponseText, "Sorry, I encountered an error") {
		t.Fatalf("degraded message missing: %q", resp.ResponseText)
	}

	o.ProcessQuery(context.Background(), req)
	if gen.calls != 2 {
		t.Fatalf("degraded response was cached, generator calls = %d", gen.calls)
	}
}

func TestBranchPanicContained(t *testing.T) {
	docs := &fakeBranch{panic: true}
	tools := &fakeBranch{items: []schema.ContextItem{
		{Content: "tool context", Source: "tools:fda", Score: 0.7, Origin: schema.OriginExternalTool},
	}}
	gen := &fakeGenerator{text: "still answered", ok: true}
	o := newOrchestrator(gen, docs, tools, nil)

	resp := o.ProcessQuery(context.Background(), schema.QueryRequest{Text: "drug interactions"})
	if !resp.Success {
		t.Fatalf("panicking branch must not fail the query: %+v", resp)
	}
	if len(resp.Sources) != 1 || resp.Sources[0] != "tools:fda" {
		t.Fatalf("surviving branch context lost: %v", resp.Sources)
	}
}

func TestLiveSearchGating(t *testing.T) {
	search := &fakeBranch{items: []schema.ContextItem{
		{Content: "news", Source: "tavily:answer", Score: 1, Origin: schema.OriginLiveSearch},
	}}
	gen := &fakeGenerator{text: "a", ok: true}
	o := newOrchestrator(gen, &fakeBranch{}, nil, search)

	o.ProcessQuery(context.Background(), schema.QueryRequest{Text: "what are symptoms of diabetes"})
	if atomic.LoadInt32(&search.calls) != 0 {
		t.Fatal("live search ran for a non-recency query")
	}

	o.ProcessQuery(context.Background(), schema.QueryRequest{Text: "latest who guidance on malaria"})
	if atomic.LoadInt32(&search.calls) != 1 {
		t.Fatal("live search did not run for a recency query")
	}
}

func TestEmergencyQueryGetsEmergencyDisclaimer(t *testing.T) {
	gen := &fakeGenerator{text: "Call your local emergency number now.", ok: true}
	o := newOrchestrator(gen, &fakeBranch{}, nil, nil)

	resp := o.ProcessQuery(context.Background(), schema.QueryRequest{Text: "my father has chest pain and difficulty breathing"})
	if resp.SafetyLevel != "emergency" {
		t.Fatalf("safety = %s, want emergency", resp.SafetyLevel)
	}
	if !strings.Contains(resp.ResponseText, "This may be an emergency situation. Seek immediate medical attention.") {
		t.Fatalf("emergency disclaimer missing:\n%s", resp.ResponseText)
	}
}

func TestEmptyContextStillAnswers(t *testing.T) {
	gen := &fakeGenerator{text: "general advice", ok: true}
	o := newOrchestrator(gen, &fakeBranch{}, &fakeBranch{}, nil)

	resp := o.ProcessQuery(context.Background(), schema.QueryRequest{Text: "how do vaccines work"})
	if !resp.Success {
		t.Fatalf("empty context must still produce an answer: %+v", resp)
	}
	if len(resp.Sources) != 0 {
		t.Fatalf("unexpected sources: %v", resp.Sources)
	}
}
