package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/healthlang/ilera/common/httpx"
	"github.com/healthlang/ilera/config"
	"github.com/healthlang/ilera/schema"
)

const defaultTavilyURL = "https://api.tavily.com/search"

type tavilyProvider struct {
	apiKey string
	apiURL string
	hc     *httpx.Client
}

func newTavilyProvider(cfg config.SearchConfig, hc *httpx.Client) (*tavilyProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("tavily api key is required")
	}
	apiURL := cfg.Endpoint
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultTavilyURL
	}
	return &tavilyProvider{apiKey: cfg.APIKey, apiURL: apiURL, hc: hc}, nil
}

func (p *tavilyProvider) Name() string { return "tavily" }

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (p *tavilyProvider) Search(ctx context.Context, query string, maxResults int) ([]schema.ContextItem, error) {
	payload, err := json.Marshal(tavilyRequest{
		APIKey:        p.apiKey,
		Query:         query,
		SearchDepth:   "basic",
		MaxResults:    maxResults,
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("tavily request failed with status %d", resp.StatusCode)
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode tavily response: %w", err)
	}

	items := make([]schema.ContextItem, 0, len(decoded.Results)+1)
	if ans := strings.TrimSpace(decoded.Answer); ans != "" {
		items = append(items, schema.ContextItem{
			Content: ans,
			Source:  "tavily:answer",
			Score:   1.0,
			Origin:  schema.OriginLiveSearch,
		})
	}
	for _, r := range decoded.Results {
		content := strings.TrimSpace(r.Content)
		if content == "" {
			continue
		}
		items = append(items, schema.ContextItem{
			Content: content,
			Source:  r.Title,
			URL:     r.URL,
			Score:   r.Score,
			Origin:  schema.OriginLiveSearch,
		})
	}
	return items, nil
}
