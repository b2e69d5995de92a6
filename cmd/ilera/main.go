package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/healthlang/ilera/assembler"
	"github.com/healthlang/ilera/cache"
	"github.com/healthlang/ilera/common/httpx"
	"github.com/healthlang/ilera/common/logger"
	"github.com/healthlang/ilera/config"
	"github.com/healthlang/ilera/embedding"
	"github.com/healthlang/ilera/formatter"
	"github.com/healthlang/ilera/history"
	"github.com/healthlang/ilera/llm"
	"github.com/healthlang/ilera/mcpserver"
	"github.com/healthlang/ilera/orchestrator"
	"github.com/healthlang/ilera/retriever"
	"github.com/healthlang/ilera/safety"
	"github.com/healthlang/ilera/server"
	"github.com/healthlang/ilera/toolclient"
	"github.com/healthlang/ilera/translate"
	"github.com/healthlang/ilera/vectordb"
	"github.com/healthlang/ilera/websearch"
)

func main() {
	log := logger.NewWithComponent("main")

	configPath := flag.String("config", config.GetEnv("CONFIG_PATH", ""), "path to YAML config file")
	mcpMode := flag.Bool("mcp", false, "serve over stdio as an MCP server instead of HTTP")
	flag.Parse()

	config.LoadEnv()
	cfg, providerChain, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, cleanup, err := buildPipeline(ctx, cfg, providerChain, log)
	if err != nil {
		log.Fatalf("build pipeline: %v", err)
	}
	defer cleanup()

	if *mcpMode {
		log.Info("serving MCP over stdio")
		if err := mcpserver.ServeStdio(orch); err != nil {
			log.Fatalf("mcp server: %v", err)
		}
		return
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(orch).Router(),
	}
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("shutdown: %v", err)
	}
}

func buildPipeline(ctx context.Context, cfg *config.Config, providerChain []config.LLMConfig, log logger.Logger) (*orchestrator.Orchestrator, func(), error) {
	hc := httpx.NewFromConfig(cfg.HTTP)
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	// generation chain
	providers := make([]llm.Provider, 0, len(providerChain))
	for _, pc := range providerChain {
		p, err := llm.NewProvider(pc)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		providers = append(providers, p)
	}
	attemptTimeout := 30 * time.Second
	if len(providerChain) > 0 && providerChain[0].TimeoutMS > 0 {
		attemptTimeout = time.Duration(providerChain[0].TimeoutMS) * time.Millisecond
	}
	gateway := llm.NewGateway(providers, attemptTimeout)

	// document retrieval is optional: without an embedding provider and
	// vector store the branch simply stays dark
	var docs orchestrator.DocumentSearcher
	if cfg.Embedding.Provider != "" && cfg.VectorDB.Provider != "" {
		embed, err := embedding.NewProvider(cfg.Embedding)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		store, err := vectordb.NewStore(ctx, &cfg.VectorDB)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = store.Close() })
		docs = &retriever.DocumentRetriever{
			Embed:     embed,
			Store:     store,
			MaxDocs:   cfg.Retrieval.MaxDocs,
			Threshold: cfg.Retrieval.Threshold,
			Log:       logger.NewWithComponent("retriever"),
		}
	} else {
		log.Warn("document retrieval disabled: embedding or vectordb not configured")
	}

	var tools orchestrator.ToolGatherer
	if cfg.Tools.BaseURL != "" {
		tools = toolclient.New(cfg.Tools, hc)
	}

	var search orchestrator.LiveSearcher
	if provider, err := websearch.NewProvider(cfg.Search, hc); err != nil {
		log.Warnf("live search disabled: %v", err)
	} else {
		search = websearch.NewClient(provider, cfg.Search.MaxResults)
	}

	var recorder history.Recorder = history.NopRecorder{}
	if cfg.History.Enabled {
		sqlRec, err := history.NewSQLiteRecorder(cfg.History.Path)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = sqlRec.Close() })
		recorder = sqlRec
	}

	branchTimeout := time.Duration(cfg.Tools.TimeoutMS) * time.Millisecond

	return &orchestrator.Orchestrator{
		Cache:     cache.New(cfg.Cache.MaxSize, time.Duration(cfg.Cache.TTLSeconds)*time.Second),
		Documents: docs,
		Tools:     tools,
		Search:    search,
		Assembler: &assembler.Assembler{
			CharBudget: cfg.Assembly.CharBudget,
			SourceCap:  cfg.Assembly.SourceCap,
		},
		Gateway: gateway,
		Safety:  safety.NewClassifier(),
		Formatter: &formatter.Formatter{
			Translator: &translate.LLMTranslator{Gateway: gateway},
			Log:        logger.NewWithComponent("formatter"),
		},
		History:       recorder,
		Log:           logger.NewWithComponent("orchestrator"),
		BranchTimeout: branchTimeout,
	}, cleanup, nil
}
