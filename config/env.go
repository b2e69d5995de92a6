package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file if present. Missing files are fine; real
// environments set variables directly.
func LoadEnv() {
	_ = godotenv.Load()
}

// GetEnv returns an environment variable or a default.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetEnvInt returns an integer environment variable or a default.
func GetEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// GetEnvBool returns a boolean environment variable or a default.
func GetEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// applyEnv lets environment variables override file values. Secrets
// (API keys) normally arrive only this way.
func (f *File) applyEnv() {
	f.Server.Addr = GetEnv("SERVER_ADDR", f.Server.Addr)
	f.Cache.TTLSeconds = GetEnvInt("CACHE_TTL", f.Cache.TTLSeconds)
	f.Cache.MaxSize = GetEnvInt("CACHE_MAX_SIZE", f.Cache.MaxSize)
	f.Retrieval.MaxDocs = GetEnvInt("MAX_RETRIEVAL_DOCS", f.Retrieval.MaxDocs)

	f.Embedding.APIKey = GetEnv("EMBEDDING_API_KEY", f.Embedding.APIKey)
	f.VectorDB.Host = GetEnv("MILVUS_HOST", f.VectorDB.Host)
	f.VectorDB.Password = GetEnv("MILVUS_PASSWORD", f.VectorDB.Password)

	f.Tools.BaseURL = GetEnv("MEDICAL_TOOLS_URL", f.Tools.BaseURL)
	f.Tools.APIKey = GetEnv("MEDICAL_TOOLS_API_KEY", f.Tools.APIKey)

	f.Search.Provider = GetEnv("SEARCH_PROVIDER", f.Search.Provider)
	f.Search.APIKey = GetEnv("SEARCH_API_KEY", f.Search.APIKey)

	f.History.Path = GetEnv("HISTORY_DB_PATH", f.History.Path)

	for i := range f.Providers {
		// GROQ_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY
		key := GetEnv(envKeyFor(f.Providers[i].Provider), "")
		if key != "" {
			f.Providers[i].APIKey = key
		}
	}
}

func envKeyFor(provider string) string {
	switch provider {
	case "groq":
		return "GROQ_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return "LLM_API_KEY"
	}
}
