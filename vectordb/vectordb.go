package vectordb

import (
	"context"
	"fmt"

	"github.com/healthlang/ilera/config"
	"github.com/healthlang/ilera/schema"
)

// Document is one scored row from the vector store.
type Document struct {
	Content string
	Source  string
	URL     string
	Score   float64
}

// Store searches stored documents by vector similarity.
type Store interface {
	SearchDocs(ctx context.Context, vector []float32, topK int) ([]Document, error)
	Close() error
}

// NewStore creates a vector store from configuration.
func NewStore(ctx context.Context, cfg *config.VectorDBConfig) (Store, error) {
	switch cfg.Provider {
	case "milvus":
		return newMilvusStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported vector store: %s", cfg.Provider)
	}
}

// ToContextItem maps a stored document into the pipeline's context
// representation.
func (d Document) ToContextItem() schema.ContextItem {
	return schema.ContextItem{
		Content: d.Content,
		Source:  d.Source,
		URL:     d.URL,
		Score:   d.Score,
		Origin:  schema.OriginDocumentStore,
	}
}
