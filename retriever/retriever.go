package retriever

import (
	"context"
	"sort"

	"github.com/healthlang/ilera/common/logger"
	"github.com/healthlang/ilera/embedding"
	"github.com/healthlang/ilera/schema"
	"github.com/healthlang/ilera/vectordb"
)

// DocumentRetriever embeds the query and searches the vector store.
// It never surfaces errors: a failed embedding or store call yields an
// empty result so the rest of the pipeline keeps going.
type DocumentRetriever struct {
	Embed     embedding.Provider
	Store     vectordb.Store
	MaxDocs   int
	Threshold float64
	Log       logger.Logger
}

// Search returns up to MaxDocs items at or above the similarity
// threshold, descending by score.
func (r *DocumentRetriever) Search(ctx context.Context, query string) []schema.ContextItem {
	if r.Embed == nil || r.Store == nil {
		return nil
	}
	maxDocs := r.MaxDocs
	if maxDocs <= 0 {
		maxDocs = 3
	}

	vec, err := r.Embed.GetEmbedding(ctx, query)
	if err != nil {
		r.warnf("embedding failed: %v", err)
		return r.fallback(query)
	}

	// over-fetch a little so threshold filtering still fills maxDocs
	docs, err := r.Store.SearchDocs(ctx, vec, maxDocs*2)
	if err != nil {
		r.warnf("vector search failed: %v", err)
		return r.fallback(query)
	}

	items := make([]schema.ContextItem, 0, len(docs))
	for _, d := range docs {
		if d.Score < r.Threshold {
			continue
		}
		items = append(items, d.ToContextItem())
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	if len(items) > maxDocs {
		items = items[:maxDocs]
	}
	if len(items) == 0 {
		return r.fallback(query)
	}
	return items
}

func (r *DocumentRetriever) warnf(format string, args ...any) {
	if r.Log != nil {
		r.Log.Warnf(format, args...)
	}
}
