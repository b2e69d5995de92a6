package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
providers:
  - provider: groq
    model: llama-3.3-70b-versatile
`)
	cfg, chain, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 7200, cfg.Cache.TTLSeconds)
	assert.Equal(t, 2000, cfg.Cache.MaxSize)
	assert.Equal(t, 3, cfg.Retrieval.MaxDocs)
	assert.Equal(t, 0.75, cfg.Retrieval.Threshold)
	assert.Equal(t, "duckduckgo", cfg.Search.Provider)
	assert.Equal(t, 6000, cfg.Assembly.CharBudget)

	require.Len(t, chain, 1)
	assert.Equal(t, 0.1, chain[0].Temperature)
	assert.Equal(t, 0.9, chain[0].TopP)
	assert.Equal(t, 2048, chain[0].MaxTokens)
	assert.Equal(t, 30000, chain[0].TimeoutMS)
}

func TestLoadPromotesSingleLLMBlock(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: openai
  model: gpt-4o-mini
`)
	_, chain, err := Load(path)
	require.NoError(t, err)
	require.Len(t, chain, 1)
	assert.Equal(t, "openai", chain[0].Provider)
	// defaults apply to the promoted provider too
	assert.Equal(t, 2048, chain[0].MaxTokens)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CACHE_TTL", "600")
	t.Setenv("GROQ_API_KEY", "gsk-from-env")
	path := writeConfig(t, `
cache:
  ttl_seconds: 7200
providers:
  - provider: groq
    model: m
    api_key: from-file
`)
	cfg, chain, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Cache.TTLSeconds)
	require.Len(t, chain, 1)
	assert.Equal(t, "gsk-from-env", chain[0].APIKey)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "no providers",
			body: `server: {addr: ":9090"}`,
			want: "at least one generation provider",
		},
		{
			name: "provider missing model",
			body: "providers:\n  - provider: groq",
			want: "model is required",
		},
		{
			name: "vectordb without collection",
			body: "providers:\n  - provider: groq\n    model: m\nvectordb:\n  provider: milvus",
			want: "collection is required",
		},
		{
			name: "tavily without key",
			body: "providers:\n  - provider: groq\n    model: m\nsearch:\n  provider: tavily",
			want: "tavily requires an api key",
		},
		{
			name: "history enabled without path",
			body: "providers:\n  - provider: groq\n    model: m\nhistory:\n  enabled: true",
			want: "history path is required",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
