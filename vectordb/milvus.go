package vectordb

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/healthlang/ilera/config"
)

const (
	fieldContent = "content"
	fieldSource  = "source"
	fieldURL     = "url"
	fieldVector  = "vector"
)

type milvusStore struct {
	cli        client.Client
	collection string
}

func newMilvusStore(ctx context.Context, cfg *config.VectorDBConfig) (*milvusStore, error) {
	port := cfg.Port
	if port == 0 {
		port = 19530
	}
	cli, err := client.NewClient(ctx, client.Config{
		Address:  fmt.Sprintf("%s:%d", cfg.Host, port),
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus: %w", err)
	}
	return &milvusStore{cli: cli, collection: cfg.Collection}, nil
}

func (s *milvusStore) SearchDocs(ctx context.Context, vector []float32, topK int) ([]Document, error) {
	if topK <= 0 {
		topK = 3
	}
	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("build search param: %w", err)
	}
	results, err := s.cli.Search(ctx, s.collection, nil, "",
		[]string{fieldContent, fieldSource, fieldURL},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldVector, entity.COSINE, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("milvus search: %w", err)
	}

	var docs []Document
	for _, rs := range results {
		contents, _ := rs.Fields.GetColumn(fieldContent).(*entity.ColumnVarChar)
		sources, _ := rs.Fields.GetColumn(fieldSource).(*entity.ColumnVarChar)
		urls, _ := rs.Fields.GetColumn(fieldURL).(*entity.ColumnVarChar)
		for i := 0; i < rs.ResultCount; i++ {
			doc := Document{Score: float64(rs.Scores[i])}
			if contents != nil {
				doc.Content, _ = contents.ValueByIdx(i)
			}
			if sources != nil {
				doc.Source, _ = sources.ValueByIdx(i)
			}
			if urls != nil {
				doc.URL, _ = urls.ValueByIdx(i)
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *milvusStore) Close() error {
	return s.cli.Close()
}
