package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/healthlang/ilera/common/httpx"
	"github.com/healthlang/ilera/config"
	"github.com/healthlang/ilera/schema"
)

// duckDuckGoProvider uses the Instant Answer API. Keyless, so it is
// the default when no search API key is configured.
type duckDuckGoProvider struct {
	endpoint string
	hc       *httpx.Client
}

func newDuckDuckGoProvider(cfg config.SearchConfig, hc *httpx.Client) *duckDuckGoProvider {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.duckduckgo.com/"
	}
	return &duckDuckGoProvider{endpoint: endpoint, hc: hc}
}

func (p *duckDuckGoProvider) Name() string { return "duckduckgo" }

func (p *duckDuckGoProvider) Search(ctx context.Context, query string, maxResults int) ([]schema.ContextItem, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := p.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("duckduckgo api returned status %d", resp.StatusCode)
	}

	var ddgResp struct {
		AbstractText   string `json:"AbstractText"`
		AbstractSource string `json:"AbstractSource"`
		AbstractURL    string `json:"AbstractURL"`
		RelatedTopics  []struct {
			Text     string `json:"Text"`
			FirstURL string `json:"FirstURL"`
		} `json:"RelatedTopics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ddgResp); err != nil {
		return nil, err
	}

	items := make([]schema.ContextItem, 0, maxResults)
	if ddgResp.AbstractText != "" {
		items = append(items, schema.ContextItem{
			Content: ddgResp.AbstractText,
			Source:  ddgResp.AbstractSource,
			URL:     ddgResp.AbstractURL,
			Score:   0.6,
			Origin:  schema.OriginLiveSearch,
		})
	}
	for _, topic := range ddgResp.RelatedTopics {
		if len(items) >= maxResults {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		title := topic.Text
		if len(title) > 100 {
			title = title[:100]
		}
		items = append(items, schema.ContextItem{
			Content: topic.Text,
			Source:  title,
			URL:     topic.FirstURL,
			Score:   0.4,
			Origin:  schema.OriginLiveSearch,
		})
	}
	return items, nil
}
