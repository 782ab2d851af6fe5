package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/secrets"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
}

func emptyConfig() *Config {
	return &Config{
		Embedding: &EmbeddingConfig{},
		Explain:   &ExplainConfig{},
		Serve:     &ServeConfig{},
	}
}

func TestEmbeddingProviderResolution(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		mutate func(*Config)
		want   string
	}{
		{name: "nothing configured", want: ""},
		{name: "local flag wins", env: map[string]string{"OPENAI_API_KEY": "sk"}, mutate: func(c *Config) { c.Embedding.UseLocal = "true" }, want: providerLocal},
		{name: "openai from env", env: map[string]string{"OPENAI_API_KEY": "sk"}, want: providerOpenAI},
		{name: "gemini from env", env: map[string]string{"GEMINI_API_KEY": "g"}, want: providerGemini},
		{name: "explicit provider", mutate: func(c *Config) { c.Embedding.Provider = " Gemini " }, want: providerGemini},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearProviderEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := emptyConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			assert.Equal(t, tt.want, embeddingProvider(cfg))
		})
	}
}

func TestExplainProviderDefaultsToHeuristic(t *testing.T) {
	clearProviderEnv(t)

	assert.Equal(t, providerHeuristic, explainProvider(emptyConfig()))

	t.Setenv("OPENAI_API_KEY", "sk")
	assert.Equal(t, providerOpenAI, explainProvider(emptyConfig()))
}

func TestNewEmbedder(t *testing.T) {
	clearProviderEnv(t)
	ctx := context.Background()

	embedder, err := newEmbedder(ctx, emptyConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, embedder)

	cfg := emptyConfig()
	cfg.Embedding.UseLocal = "TRUE"
	cfg.Embedding.Local = &LocalEmbeddingConfig{URL: "http://127.0.0.1:11434", Timeout: "5s"}
	embedder, err = newEmbedder(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "local", embedder.Name())

	cfg.Embedding.Local.Timeout = "soon"
	_, err = newEmbedder(ctx, cfg, zap.NewNop())
	assert.Error(t, err)

	keyFile := filepath.Join(t.TempDir(), "openai")
	require.NoError(t, os.WriteFile(keyFile, []byte("sk-test\n"), 0o600))
	cfg = emptyConfig()
	cfg.Embedding.OpenAI = &OpenAIEmbeddingConfig{APIKeyFile: keyFile}
	embedder, err = newEmbedder(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "openai", embedder.Name())

	cfg = emptyConfig()
	cfg.Embedding.Provider = "cohere"
	_, err = newEmbedder(ctx, cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewPipelineWithoutProviders(t *testing.T) {
	clearProviderEnv(t)

	pipeline, err := newPipeline(context.Background(), emptyConfig(), zap.NewNop(), pipelineOptions{})
	require.NoError(t, err)
	assert.False(t, pipeline.Configured())
}

func TestUseLocalIsLenient(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "true", want: true},
		{value: "TRUE", want: true},
		{value: "1", want: true},
		{value: "yes", want: false},
		{value: "false", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			clearProviderEnv(t)
			t.Setenv("USE_LOCAL_EMBEDDINGS", tt.value)

			cfg, err := getConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Embedding.LocalEnabled())
		})
	}
}

func TestGeminiEmbeddingKey(t *testing.T) {
	clearProviderEnv(t)

	cfg := emptyConfig()
	cfg.Explain.Gemini = &GeminiExplainConfig{APIKey: "explain-key"}

	key, err := secrets.Load(geminiEmbeddingKeySource(cfg))
	require.NoError(t, err)
	assert.Equal(t, "explain-key", key, "falls back to the explain key")

	keyFile := filepath.Join(t.TempDir(), "gemini")
	require.NoError(t, os.WriteFile(keyFile, []byte("embedding-key\n"), 0o600))
	cfg.Embedding.Gemini = &GeminiEmbeddingConfig{APIKeyFile: keyFile}

	key, err = secrets.Load(geminiEmbeddingKeySource(cfg))
	require.NoError(t, err)
	assert.Equal(t, "embedding-key", key)

	cfg = emptyConfig()
	cfg.Embedding.Gemini = &GeminiEmbeddingConfig{APIKey: "embedding-key"}
	assert.Equal(t, providerGemini, embeddingProvider(cfg))
	assert.Equal(t, providerHeuristic, explainProvider(cfg), "embedding key is not shared with explanations")
}
