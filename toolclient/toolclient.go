package toolclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/healthlang/ilera/common/httpx"
	"github.com/healthlang/ilera/common/logger"
	"github.com/healthlang/ilera/config"
	"github.com/healthlang/ilera/schema"
)

// Tool endpoints on the medical tools API.
const (
	EndpointHealthTopics   = "/api/health-topics"
	EndpointPubMed         = "/api/pubmed"
	EndpointFDA            = "/api/fda"
	EndpointClinicalTrials = "/api/clinical-trials"
	EndpointICD10          = "/api/icd10"
	EndpointMedRxiv        = "/api/medrxiv"
	EndpointBookshelf      = "/api/bookshelf"
)

// containerKeys are the wrapper keys a tool response may nest its item
// list under. A bare JSON array is also accepted.
var containerKeys = []string{
	"data", "results", "items", "entries", "articles", "records", "papers", "topics",
}

// Client talks to the medical tools API. Every public method follows
// the empty-on-failure contract: timeouts, non-2xx statuses, and
// malformed bodies all produce an empty slice, never an error.
type Client struct {
	baseURL  string
	apiKey   string
	maxItems int
	hc       *httpx.Client
	log      logger.Logger
}

// New creates a tool client from configuration.
func New(cfg config.ToolsConfig, hc *httpx.Client) *Client {
	if hc == nil {
		hc = httpx.NewFromConfig(&httpx.Config{TimeoutMS: cfg.TimeoutMS})
	}
	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = 3
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		maxItems: maxItems,
		hc:       hc,
		log:      logger.NewWithComponent("toolclient"),
	}
}

// Gather queries the endpoints relevant to a general medical question
// and flattens the answers into context items. Empty slice on total
// failure.
func (c *Client) Gather(ctx context.Context, query string) []schema.ContextItem {
	if c.baseURL == "" {
		return nil
	}
	var items []schema.ContextItem
	items = append(items, c.HealthTopics(ctx, query)...)
	items = append(items, c.PubMedSearch(ctx, query)...)
	items = append(items, c.FDALookup(ctx, query)...)
	return items
}

// HealthTopics searches MedlinePlus-style health topic summaries.
func (c *Client) HealthTopics(ctx context.Context, query string) []schema.ContextItem {
	return c.fetch(ctx, EndpointHealthTopics, url.Values{
		"query":       {query},
		"max_results": {"5"},
	}, "health-topics", 0.8)
}

// PubMedSearch searches recent literature abstracts.
func (c *Client) PubMedSearch(ctx context.Context, query string) []schema.ContextItem {
	return c.fetch(ctx, EndpointPubMed, url.Values{
		"query":       {query},
		"max_results": {"5"},
		"date_range":  {"5"},
	}, "pubmed", 0.7)
}

// FDALookup queries drug label information.
func (c *Client) FDALookup(ctx context.Context, query string) []schema.ContextItem {
	return c.fetch(ctx, EndpointFDA, url.Values{
		"drug_name":   {query},
		"search_type": {"general"},
	}, "fda", 0.7)
}

// ClinicalTrials searches trial registrations.
func (c *Client) ClinicalTrials(ctx context.Context, query string) []schema.ContextItem {
	return c.fetch(ctx, EndpointClinicalTrials, url.Values{
		"query":       {query},
		"status":      {"all"},
		"max_results": {"5"},
	}, "clinical-trials", 0.6)
}

// ICD10Lookup resolves diagnosis codes and their descriptions.
func (c *Client) ICD10Lookup(ctx context.Context, term string) []schema.ContextItem {
	return c.fetch(ctx, EndpointICD10, url.Values{
		"query":       {term},
		"max_results": {"5"},
	}, "icd10", 0.6)
}

// MedRxivSearch searches preprint abstracts.
func (c *Client) MedRxivSearch(ctx context.Context, query string) []schema.ContextItem {
	return c.fetch(ctx, EndpointMedRxiv, url.Values{
		"query":       {query},
		"max_results": {"5"},
	}, "medrxiv", 0.5)
}

// BookshelfSearch searches NCBI Bookshelf reference texts.
func (c *Client) BookshelfSearch(ctx context.Context, query string) []schema.ContextItem {
	return c.fetch(ctx, EndpointBookshelf, url.Values{
		"query":       {query},
		"max_results": {"5"},
	}, "bookshelf", 0.5)
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values, label string, score float64) []schema.ContextItem {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		c.log.Warnf("%s call failed: %v", label, err)
		return nil
	}
	raw := normalizeItems(body)
	items := make([]schema.ContextItem, 0, len(raw))
	for _, it := range raw {
		if len(items) >= c.maxItems {
			break
		}
		title := firstString(it, "title", "name", "term", "brand_name")
		summary := firstString(it, "summary", "description", "abstract", "definition", "snippet")
		if title == "" && summary == "" {
			continue
		}
		content := summary
		if title != "" && summary != "" {
			content = title + ": " + summary
		} else if content == "" {
			content = title
		}
		link := firstString(it, "url", "link")
		if !strings.HasPrefix(link, "http") {
			link = ""
		}
		items = append(items, schema.ContextItem{
			Content: content,
			Source:  "tools:" + label,
			URL:     link,
			Score:   score,
			Origin:  schema.OriginExternalTool,
		})
	}
	return items
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	u := c.baseURL + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// normalizeItems extracts the list of objects from a tool response
// body, whether it is a bare array or wrapped under a container key.
func normalizeItems(body []byte) []map[string]any {
	var arr []map[string]any
	if err := json.Unmarshal(body, &arr); err == nil {
		return arr
	}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil
	}
	for _, key := range containerKeys {
		val, ok := obj[key].([]any)
		if !ok || len(val) == 0 {
			continue
		}
		out := make([]map[string]any, 0, len(val))
		for _, v := range val {
			if m, ok := v.(map[string]any); ok {
				out = append(out, m)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
