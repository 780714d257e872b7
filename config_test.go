package noesis

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "noesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults for omitted fields", func(t *testing.T) {
		path := writeConfig(t, "search:\n  default_limit: 7\n")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 7, cfg.Search.DefaultLimit)
		assert.Equal(t, 16, cfg.Ingestion.PoolSize)
		assert.Equal(t, 0.70, cfg.Ingestion.RelevanceThreshold)
		assert.Equal(t, 0.82, cfg.Ingestion.SimilarityThreshold)
		assert.Equal(t, 5, cfg.Ingestion.NeighborCount)
		assert.Equal(t, 30*time.Second, cfg.AI.RequestTimeout)
		require.NotNil(t, cfg.AI.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", *cfg.AI.EmbeddingHost)
		assert.NotEmpty(t, cfg.Database.Path)
	})

	t.Run("explicit values", func(t *testing.T) {
		path := writeConfig(t, `
database:
  path: ./store
ai:
  embedding_host: http://embed:8080
  classifier_host: ""
  embedding_model: nomic-embed-text
  request_timeout: 5s
  embedding_dimensions: 768
ingestion:
  pool_size: 4
  similarity_threshold: 0.9
  neighbor_count: 3
`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(filepath.Dir(path), "store"), cfg.Database.Path)
		assert.Equal(t, 4, cfg.Ingestion.PoolSize)
		assert.Equal(t, 0.9, cfg.Ingestion.SimilarityThreshold)
		assert.Equal(t, 3, cfg.Ingestion.NeighborCount)

		aiCfg := cfg.AI.ProviderConfig()
		assert.Equal(t, "http://embed:8080", aiCfg.EmbeddingHost)
		assert.Equal(t, "nomic-embed-text", aiCfg.EmbeddingModel)
		assert.Equal(t, 5*time.Second, aiCfg.RequestTimeout)
		assert.Equal(t, 768, aiCfg.EmbeddingDimensions)
		assert.True(t, aiCfg.EmbeddingEnabled())
		assert.False(t, aiCfg.ClassifierEnabled())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "search: [unclosed"))
		assert.Error(t, err)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, "none", cfg.AI.Token)
	assert.Equal(t, "qwen2.5:3b", cfg.AI.ClassifierModel)
}
