package assembler

import (
	"sort"
	"strings"

	"github.com/healthlang/ilera/schema"
)

// Assembler merges the gathering branches into one bounded context
// block. Order is external-tool, then document-store, then live-search;
// within an origin, descending score.
type Assembler struct {
	CharBudget int
	SourceCap  int
}

// Assembled is the merged context handed to generation.
type Assembled struct {
	Items   []schema.ContextItem
	Sources []string
}

var originOrder = map[schema.Origin]int{
	schema.OriginExternalTool:  0,
	schema.OriginDocumentStore: 1,
	schema.OriginLiveSearch:    2,
}

// Assemble merges, dedups, and trims the gathered items.
func (a *Assembler) Assemble(items []schema.ContextItem) Assembled {
	budget := a.CharBudget
	if budget <= 0 {
		budget = 6000
	}
	sourceCap := a.SourceCap
	if sourceCap <= 0 {
		sourceCap = 8
	}

	merged := make([]schema.ContextItem, len(items))
	copy(merged, items)
	sort.SliceStable(merged, func(i, j int) bool {
		oi, oj := originOrder[merged[i].Origin], originOrder[merged[j].Origin]
		if oi != oj {
			return oi < oj
		}
		return merged[i].Score > merged[j].Score
	})

	merged = dedup(merged)

	// whole-item drops once the budget would overflow
	kept := merged[:0]
	used := 0
	for _, it := range merged {
		n := len(it.Content)
		if used+n > budget {
			continue
		}
		used += n
		kept = append(kept, it)
	}

	return Assembled{Items: kept, Sources: sourceList(kept, sourceCap)}
}

// ContextText renders the kept items as the prompt context block.
func (r Assembled) ContextText() string {
	var b strings.Builder
	for i, it := range r.Items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if it.Source != "" {
			b.WriteString("[" + it.Source + "] ")
		}
		b.WriteString(it.Content)
	}
	return b.String()
}

// dedup removes items with equal whitespace-normalized lowercase
// content, keeping the higher-scored occurrence. Input is already in
// final order, so a kept item only ever loses to an earlier duplicate
// with a higher score.
func dedup(items []schema.ContextItem) []schema.ContextItem {
	best := make(map[string]int, len(items))
	out := make([]schema.ContextItem, 0, len(items))
	for _, it := range items {
		key := normalizeContent(it.Content)
		if key == "" {
			continue
		}
		if idx, seen := best[key]; seen {
			if it.Score > out[idx].Score {
				out[idx] = it
			}
			continue
		}
		best[key] = len(out)
		out = append(out, it)
	}
	return out
}

func normalizeContent(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func sourceList(items []schema.ContextItem, limit int) []string {
	seen := make(map[string]bool, len(items))
	var sources []string
	for _, it := range items {
		if it.Source == "" || seen[it.Source] {
			continue
		}
		seen[it.Source] = true
		sources = append(sources, it.Source)
		if len(sources) >= limit {
			break
		}
	}
	return sources
}
