package noesis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/noesis/ai"
	"github.com/poiesic/noesis/classify"
	"github.com/poiesic/noesis/ingestion"
	"github.com/poiesic/noesis/search"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration of a noesis installation.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	AI        AIConfig        `yaml:"ai"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Search    SearchConfig    `yaml:"search"`
}

// DatabaseConfig locates the data directory.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AIConfig describes the embedding and classification services. A host
// left out of the file gets the default; a host set to "" disables the
// service.
type AIConfig struct {
	EmbeddingHost       *string       `yaml:"embedding_host"`
	ClassifierHost      *string       `yaml:"classifier_host"`
	EmbeddingModel      string        `yaml:"embedding_model"`
	ClassifierModel     string        `yaml:"classifier_model"`
	Token               string        `yaml:"token"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
	EmbeddingDimensions int           `yaml:"embedding_dimensions"`
}

// IngestionConfig tunes the ingestion pipeline.
type IngestionConfig struct {
	PoolSize            int     `yaml:"pool_size"`
	RelevanceThreshold  float64 `yaml:"relevance_threshold"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	NeighborCount       int     `yaml:"neighbor_count"`
}

// SearchConfig tunes hybrid search.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// LoadConfig reads the YAML file at path and applies defaults. A relative
// database path is resolved against the file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	cfg.Database.Path = expandPath(cfg.Database.Path, filepath.Dir(path))
	return &cfg, nil
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	defaults := ai.DefaultConfig()

	if cfg.Database.Path == "" {
		cfg.Database.Path = defaultDatabasePath()
	}
	if cfg.AI.EmbeddingHost == nil {
		cfg.AI.EmbeddingHost = &defaults.EmbeddingHost
	}
	if cfg.AI.ClassifierHost == nil {
		cfg.AI.ClassifierHost = &defaults.ClassifierHost
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = defaults.EmbeddingModel
	}
	if cfg.AI.ClassifierModel == "" {
		cfg.AI.ClassifierModel = defaults.ClassifierModel
	}
	if cfg.AI.Token == "" {
		cfg.AI.Token = defaults.Token
	}
	if cfg.AI.RequestTimeout == 0 {
		cfg.AI.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.Ingestion.PoolSize == 0 {
		cfg.Ingestion.PoolSize = ingestion.DefaultPoolSize
	}
	if cfg.Ingestion.RelevanceThreshold == 0 {
		cfg.Ingestion.RelevanceThreshold = classify.DefaultRelevanceThreshold
	}
	if cfg.Ingestion.SimilarityThreshold == 0 {
		cfg.Ingestion.SimilarityThreshold = ingestion.DefaultSimilarityThreshold
	}
	if cfg.Ingestion.NeighborCount == 0 {
		cfg.Ingestion.NeighborCount = ingestion.DefaultNeighborCount
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = search.DefaultLimit
	}
}

// ProviderConfig converts the file section into an ai.Config.
func (c *AIConfig) ProviderConfig() *ai.Config {
	cfg := &ai.Config{
		EmbeddingModel:      c.EmbeddingModel,
		ClassifierModel:     c.ClassifierModel,
		Token:               c.Token,
		RequestTimeout:      c.RequestTimeout,
		EmbeddingDimensions: c.EmbeddingDimensions,
	}
	if c.EmbeddingHost != nil {
		cfg.EmbeddingHost = *c.EmbeddingHost
	}
	if c.ClassifierHost != nil {
		cfg.ClassifierHost = *c.ClassifierHost
	}
	return cfg
}

func defaultDatabasePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".noesis")
	}
	return ".noesis"
}

// expandPath resolves "./"-relative paths against configDir and "~/" against
// the home directory.
func expandPath(path, configDir string) string {
	switch {
	case filepath.IsAbs(path):
		return path
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	default:
		return filepath.Join(configDir, path)
	}
}
