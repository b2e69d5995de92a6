package websearch

import (
	"context"
	"fmt"

	"github.com/healthlang/ilera/common/httpx"
	"github.com/healthlang/ilera/common/logger"
	"github.com/healthlang/ilera/config"
	"github.com/healthlang/ilera/schema"
)

// Provider runs one live web search. Implementations return their
// native errors; the Client wrapper absorbs them.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]schema.ContextItem, error)
}

// NewProvider creates a search provider from configuration.
func NewProvider(cfg config.SearchConfig, hc *httpx.Client) (Provider, error) {
	if hc == nil {
		hc = httpx.NewFromConfig(&httpx.Config{TimeoutMS: cfg.TimeoutMS})
	}
	switch cfg.Provider {
	case "tavily":
		return newTavilyProvider(cfg, hc)
	case "duckduckgo", "":
		return newDuckDuckGoProvider(cfg, hc), nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", cfg.Provider)
	}
}

// Client wraps a provider with the empty-on-failure contract.
type Client struct {
	provider   Provider
	maxResults int
	log        logger.Logger
}

// NewClient wraps a provider for pipeline use.
func NewClient(p Provider, maxResults int) *Client {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &Client{
		provider:   p,
		maxResults: maxResults,
		log:        logger.NewWithComponent("websearch"),
	}
}

// Search returns live results, or an empty slice when the provider is
// unset or fails.
func (c *Client) Search(ctx context.Context, query string) []schema.ContextItem {
	if c.provider == nil {
		return nil
	}
	items, err := c.provider.Search(ctx, query, c.maxResults)
	if err != nil {
		c.log.Warnf("%s search failed: %v", c.provider.Name(), err)
		return nil
	}
	if len(items) > c.maxResults {
		items = items[:c.maxResults]
	}
	return items
}
