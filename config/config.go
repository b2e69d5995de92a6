package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/healthlang/ilera/common/httpx"
)

// Config is the full service configuration, loaded from YAML with
// environment overrides applied afterwards.
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	VectorDB  VectorDBConfig  `json:"vectordb" yaml:"vectordb"`
	Tools     ToolsConfig     `json:"tools" yaml:"tools"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Assembly  AssemblyConfig  `json:"assembly" yaml:"assembly"`
	History   HistoryConfig   `json:"history" yaml:"history"`
	HTTP      *httpx.Config   `json:"http_client,omitempty" yaml:"http_client,omitempty"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	TTLSeconds int `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
	MaxSize    int `json:"max_size,omitempty" yaml:"max_size,omitempty"`
}

// RetrievalConfig controls document retrieval from the vector store.
type RetrievalConfig struct {
	MaxDocs   int     `json:"max_docs,omitempty" yaml:"max_docs,omitempty"`
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	TimeoutMS int     `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// EmbeddingConfig defines the query embedding model.
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: openai
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// VectorDBConfig defines the document vector store.
type VectorDBConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: milvus
	Host       string `json:"host,omitempty" yaml:"host,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database   string `json:"database,omitempty" yaml:"database,omitempty"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
	Username   string `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty"`
}

// ToolsConfig points at the external medical tools API.
type ToolsConfig struct {
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey    string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	TimeoutMS int    `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	MaxItems  int    `json:"max_items,omitempty" yaml:"max_items,omitempty"`
}

// SearchConfig selects and configures the live web search provider.
type SearchConfig struct {
	Provider   string `json:"provider,omitempty" yaml:"provider,omitempty"` // Available options: tavily, duckduckgo
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Endpoint   string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	MaxResults int    `json:"max_results,omitempty" yaml:"max_results,omitempty"`
	TimeoutMS  int    `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// LLMConfig defines one generation provider. The gateway takes an
// ordered list and falls through on failure.
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"` // Available options: groq, openai, gemini
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	TimeoutMS   int     `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// AssemblyConfig bounds the assembled context block.
type AssemblyConfig struct {
	CharBudget int `json:"char_budget,omitempty" yaml:"char_budget,omitempty"`
	SourceCap  int `json:"source_cap,omitempty" yaml:"source_cap,omitempty"`
}

// HistoryConfig controls query history persistence.
type HistoryConfig struct {
	Enabled bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// File is the on-disk document: service config plus the provider chain.
type File struct {
	Config    `yaml:",inline"`
	Providers []LLMConfig `json:"providers,omitempty" yaml:"providers,omitempty"`
}

// Load reads the YAML file at path, applies environment overrides and
// defaults, and validates the result. An empty path yields an
// env-and-defaults-only configuration.
func Load(path string) (*Config, []LLMConfig, error) {
	var f File
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if len(f.Providers) == 0 && f.LLM.Provider != "" {
		f.Providers = []LLMConfig{f.LLM}
	}
	f.applyEnv()
	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return nil, nil, err
	}
	return &f.Config, f.Providers, nil
}
