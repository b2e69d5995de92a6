package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/healthlang/ilera/common/httpx"
	"github.com/healthlang/ilera/config"
	"github.com/healthlang/ilera/schema"
)

func TestTavilySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["api_key"] != "tvly-test" {
			t.Errorf("missing api key in body")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"answer": "Malaria cases declined in 2025.",
			"results": []map[string]any{
				{"title": "WHO report", "url": "https://who.int/r", "content": "Annual malaria report.", "score": 0.91},
			},
		})
	}))
	defer srv.Close()

	p, err := newTavilyProvider(config.SearchConfig{APIKey: "tvly-test", Endpoint: srv.URL}, httpx.NewFromConfig(nil))
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	items, err := p.Search(context.Background(), "latest malaria news", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Source != "tavily:answer" || items[0].Score != 1.0 {
		t.Fatalf("answer item not first: %+v", items[0])
	}
	if items[1].Origin != schema.OriginLiveSearch {
		t.Fatalf("origin = %s", items[1].Origin)
	}
}

func TestTavilyRequiresKey(t *testing.T) {
	if _, err := NewProvider(config.SearchConfig{Provider: "tavily"}, nil); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestDuckDuckGoSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"AbstractText":   "Malaria is a mosquito-borne disease.",
			"AbstractSource": "Wikipedia",
			"AbstractURL":    "https://en.wikipedia.org/wiki/Malaria",
			"RelatedTopics": []map[string]any{
				{"Text": "Malaria prophylaxis", "FirstURL": "https://duckduckgo.com/x"},
			},
		})
	}))
	defer srv.Close()

	p, err := NewProvider(config.SearchConfig{Provider: "duckduckgo", Endpoint: srv.URL}, nil)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	items, err := p.Search(context.Background(), "malaria", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Source != "Wikipedia" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }
func (failingProvider) Search(ctx context.Context, q string, n int) ([]schema.ContextItem, error) {
	return nil, errors.New("provider down")
}

func TestClientAbsorbsProviderFailure(t *testing.T) {
	c := NewClient(failingProvider{}, 3)
	if items := c.Search(context.Background(), "q"); items != nil {
		t.Fatalf("expected nil on failure, got %+v", items)
	}
}

func TestClientWithNilProvider(t *testing.T) {
	c := NewClient(nil, 3)
	if items := c.Search(context.Background(), "q"); items != nil {
		t.Fatalf("expected nil, got %+v", items)
	}
}

func TestNeedsLiveSearch(t *testing.T) {
	cases := []struct {
		query string
		want  bool
	}{
		{"latest malaria treatment guidelines", true},
		{"any news on the cholera outbreak", true},
		{"what are symptoms of diabetes", false},
		{"kini àtọ̀gbẹ", false},
		{"is there a new vaccine for RSV", true},
		// no medical vocabulary at all: general knowledge, gate to search
		{"who is the president of France", true},
		{"tell me a joke", true},
		{"how do I cook jollof rice", true},
		{"can I take paracetamol for a headache", false},
	}
	for _, tc := range cases {
		if got := NeedsLiveSearch(tc.query); got != tc.want {
			t.Fatalf("NeedsLiveSearch(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}
