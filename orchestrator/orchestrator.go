package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/healthlang/ilera/assembler"
	"github.com/healthlang/ilera/cache"
	"github.com/healthlang/ilera/common/logger"
	"github.com/healthlang/ilera/formatter"
	"github.com/healthlang/ilera/history"
	"github.com/healthlang/ilera/llm"
	"github.com/healthlang/ilera/metrics"
	"github.com/healthlang/ilera/safety"
	"github.com/healthlang/ilera/schema"
	"github.com/healthlang/ilera/websearch"
)

// DocumentSearcher is the vector retrieval branch.
type DocumentSearcher interface {
	Search(ctx context.Context, query string) []schema.ContextItem
}

// ToolGatherer is the external medical tools branch.
type ToolGatherer interface {
	Gather(ctx context.Context, query string) []schema.ContextItem
}

// LiveSearcher is the web search branch.
type LiveSearcher interface {
	Search(ctx context.Context, query string) []schema.ContextItem
}

// Generator produces the answer text. The bool reports real success;
// false means the degraded message was substituted.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (schema.ModelResult, bool)
}

// Orchestrator wires the full query pipeline: cache, parallel context
// gathering, assembly, generation, safety, formatting, history.
type Orchestrator struct {
	Cache      cache.Cache
	Documents  DocumentSearcher
	Tools      ToolGatherer
	Search     LiveSearcher
	Assembler  *assembler.Assembler
	Gateway    Generator
	Safety     *safety.Classifier
	Formatter  *formatter.Formatter
	History    history.Recorder
	Log        logger.Logger

	// per-branch gathering timeout
	BranchTimeout time.Duration
}

type branchResult struct {
	branch string
	items  []schema.ContextItem
}

// ProcessQuery runs the pipeline. It never returns an error: total
// generation failure surfaces as a degraded response with
// Success=false.
func (o *Orchestrator) ProcessQuery(ctx context.Context, req schema.QueryRequest) schema.QueryResponse {
	start := time.Now()
	requestID := uuid.New().String()

	if req.SourceLang == "" {
		req.SourceLang = "en"
	}
	if req.TargetLang == "" {
		req.TargetLang = req.SourceLang
	}

	useCache := req.CacheEnabled() && o.Cache != nil
	key := cache.Fingerprint(req)
	if useCache {
		if cached, ok := o.Cache.Get(key); ok {
			metrics.IncCache("hit")
			cached.RequestID = requestID
			cached.ProcessingTimeMS = time.Since(start).Milliseconds()
			o.logf().WithField("request_id", requestID).Info("cache hit")
			return cached
		}
		metrics.IncCache("miss")
	}

	items := o.gather(ctx, req.Text)
	assembled := o.Assembler.Assemble(items)

	system, prompt := llm.BuildPrompt(assembled.ContextText(), req.Text)
	result, ok := o.Gateway.Generate(ctx, llm.Request{System: system, Prompt: prompt})
	if ok {
		metrics.IncProvider(result.Provider, "success")
	} else {
		metrics.IncProvider(result.Provider, "degraded")
	}

	assessment := o.Safety.Classify(req.Text, result.Text)
	metrics.IncSafety(assessment.Level.String())

	sources := assembled.Sources
	if !req.SourcesEnabled() {
		sources = nil
	}
	text := o.Formatter.Format(ctx, result.Text, sources, assessment,
		req.TargetLang, req.Translate, req.SourceLang)

	resp := schema.QueryResponse{
		RequestID:        requestID,
		OriginalQuery:    req.Text,
		ResponseText:     text,
		SafetyLevel:      assessment.Level.String(),
		Sources:          sources,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
		Success:          ok,
	}
	if !ok {
		resp.Error = "all generation providers failed"
	}

	// degraded answers are not worth replaying from cache
	if ok && useCache {
		o.Cache.Set(key, resp)
	}

	o.RecordQuery(req, resp)
	metrics.ObserveQuery(start)
	return resp
}

// RecordQuery persists the query fire-and-forget; it never blocks the
// response path.
func (o *Orchestrator) RecordQuery(req schema.QueryRequest, resp schema.QueryResponse) {
	if o.History == nil {
		return
	}
	rec := schema.HistoryRecord{
		RequestID:    resp.RequestID,
		UserID:       req.UserID,
		Query:        req.Text,
		ResponseText: resp.ResponseText,
		Lang:         req.SourceLang,
		SafetyLevel:  resp.SafetyLevel,
		Sources:      resp.Sources,
		Success:      resp.Success,
		LatencyMS:    resp.ProcessingTimeMS,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.History.Record(ctx, rec)
	}()
}

// gather fans out to the configured branches and collects whatever
// came back before each branch's deadline. A panicking branch
// contributes nothing.
func (o *Orchestrator) gather(ctx context.Context, query string) []schema.ContextItem {
	timeout := o.BranchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	type branch struct {
		name string
		run  func(context.Context) []schema.ContextItem
	}
	var branches []branch
	if o.Tools != nil {
		branches = append(branches, branch{"tools", func(c context.Context) []schema.ContextItem { return o.Tools.Gather(c, query) }})
	}
	if o.Documents != nil {
		branches = append(branches, branch{"documents", func(c context.Context) []schema.ContextItem { return o.Documents.Search(c, query) }})
	}
	if o.Search != nil && websearch.NeedsLiveSearch(query) {
		branches = append(branches, branch{"search", func(c context.Context) []schema.ContextItem { return o.Search.Search(c, query) }})
	}

	var wg sync.WaitGroup
	resCh := make(chan branchResult, len(branches))
	for _, b := range branches {
		bb := b
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					o.logf().Errorf("branch %s panicked: %v", bb.name, r)
				}
			}()
			bctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			startBranch := time.Now()
			items := bb.run(bctx)
			metrics.ObserveBranch(bb.name, startBranch, len(items))
			resCh <- branchResult{branch: bb.name, items: items}
		}()
	}
	wg.Wait()
	close(resCh)

	var items []schema.ContextItem
	for res := range resCh {
		items = append(items, res.items...)
	}
	return items
}

func (o *Orchestrator) logf() logger.Logger {
	if o.Log != nil {
		return o.Log
	}
	return logger.NewWithComponent("orchestrator")
}
