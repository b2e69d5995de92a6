package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. [%s] %s\n", i+1, err.Field, err.Message))
	}
	return b.String()
}

func (f *File) applyDefaults() {
	if f.Server.Addr == "" {
		f.Server.Addr = ":8080"
	}
	if f.Cache.TTLSeconds <= 0 {
		f.Cache.TTLSeconds = 7200
	}
	if f.Cache.MaxSize <= 0 {
		f.Cache.MaxSize = 2000
	}
	if f.Retrieval.MaxDocs <= 0 {
		f.Retrieval.MaxDocs = 3
	}
	if f.Retrieval.Threshold <= 0 {
		f.Retrieval.Threshold = 0.75
	}
	if f.Retrieval.TimeoutMS <= 0 {
		f.Retrieval.TimeoutMS = 10000
	}
	if f.Tools.TimeoutMS <= 0 {
		f.Tools.TimeoutMS = 30000
	}
	if f.Tools.MaxItems <= 0 {
		f.Tools.MaxItems = 3
	}
	if f.Search.Provider == "" {
		f.Search.Provider = "duckduckgo"
	}
	if f.Search.MaxResults <= 0 {
		f.Search.MaxResults = 3
	}
	if f.Search.TimeoutMS <= 0 {
		f.Search.TimeoutMS = 10000
	}
	if f.Assembly.CharBudget <= 0 {
		f.Assembly.CharBudget = 6000
	}
	if f.Assembly.SourceCap <= 0 {
		f.Assembly.SourceCap = 8
	}
	for i := range f.Providers {
		p := &f.Providers[i]
		if p.Temperature <= 0 {
			p.Temperature = 0.1
		}
		if p.TopP <= 0 {
			p.TopP = 0.9
		}
		if p.MaxTokens <= 0 {
			p.MaxTokens = 2048
		}
		if p.TimeoutMS <= 0 {
			p.TimeoutMS = 30000
		}
	}
}

// Validate checks the assembled configuration.
func (f *File) Validate() error {
	var errs ValidationErrors

	if len(f.Providers) == 0 {
		errs = append(errs, ValidationError{
			Field:   "providers",
			Message: "at least one generation provider is required",
		})
	}
	for i, p := range f.Providers {
		if p.Provider == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("providers[%d].provider", i),
				Message: "provider name is required",
			})
		}
		if p.Model == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("providers[%d].model", i),
				Message: "model is required",
			})
		}
	}

	if f.Embedding.Provider != "" && f.Embedding.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.model",
			Message: "embedding model is required when a provider is set",
		})
	}

	if f.VectorDB.Provider != "" {
		if f.VectorDB.Provider != "milvus" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.provider",
				Message: fmt.Sprintf("unsupported vector store %q", f.VectorDB.Provider),
			})
		}
		if f.VectorDB.Collection == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.collection",
				Message: "collection is required",
			})
		}
	}

	if f.Search.Provider == "tavily" && f.Search.APIKey == "" {
		errs = append(errs, ValidationError{
			Field:   "search.api_key",
			Message: "tavily requires an api key",
		})
	}

	if f.History.Enabled && f.History.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "history.path",
			Message: "history path is required when enabled",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
