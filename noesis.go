// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package noesis wires storage, the AI provider and the processing
// components of a personal thought store together.
package noesis

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/noesis/ai"
	"github.com/poiesic/noesis/ai/openai"
	"github.com/poiesic/noesis/backfill"
	"github.com/poiesic/noesis/classify"
	"github.com/poiesic/noesis/importer"
	"github.com/poiesic/noesis/ingestion"
	"github.com/poiesic/noesis/search"
	"github.com/poiesic/noesis/storage"
	"github.com/poiesic/noesis/storage/badger"
	textindex "github.com/poiesic/noesis/storage/bleve"
)

const (
	dataDir  = "data"
	indexDir = "index"
)

type Database struct {
	backend     *badger.Backend
	thoughts    *badger.ThoughtRepository
	connections *badger.ConnectionRepository
	provider    ai.AIProvider
	config      *Config
	dimensions  int
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	config   *Config
	provider ai.AIProvider
}

// WithConfig applies a loaded configuration: AI services plus the
// ingestion and search tuning used by the factory methods.
func WithConfig(cfg *Config) DatabaseOption {
	return func(o *databaseOptions) {
		if cfg == nil {
			return
		}
		o.config = cfg
		o.aiConfig = cfg.AI.ProviderConfig()
	}
}

// WithAIConfig overrides the AI service settings.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithAIProvider uses provider instead of building one from the AI config.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// NewDatabase opens (or creates) the store rooted at dir: Badger data under
// dir/data and the text index under dir/index.
func NewDatabase(dir string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		config:   DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filepath.Join(dir, dataDir), false)
	if err != nil {
		return nil, err
	}

	index, err := textindex.Open(filepath.Join(dir, indexDir))
	if err != nil {
		backend.Close()
		return nil, err
	}

	thoughts, err := badger.NewThoughtRepository(backend, index)
	if err != nil {
		index.Close()
		backend.Close()
		return nil, err
	}

	connections, err := badger.NewConnectionRepository(backend)
	if err != nil {
		thoughts.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			connections.Close()
			thoughts.Close()
			backend.Close()
			return nil, err
		}
	}

	dimensions := options.config.AI.EmbeddingDimensions
	if options.aiConfig != nil {
		dimensions = options.aiConfig.EmbeddingDimensions
	}

	return &Database{
		backend:     backend,
		thoughts:    thoughts,
		connections: connections,
		provider:    provider,
		config:      options.config,
		dimensions:  dimensions,
		logger:      slog.Default().With("component", "database"),
	}, nil
}

// Close releases the provider, the repositories and the backend. Every
// step runs; the errors are joined.
func (db *Database) Close() error {
	var errs []error
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := db.connections.Close(); err != nil {
		db.logger.Error("error closing connection repository", "err", err)
		errs = append(errs, err)
	}
	if err := db.thoughts.Close(); err != nil {
		db.logger.Error("error closing thought repository", "err", err)
		errs = append(errs, err)
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (db *Database) Thoughts() storage.ThoughtRepository {
	return db.thoughts
}

func (db *Database) Connections() storage.ConnectionRepository {
	return db.connections
}

// NewIngestionPipeline builds a pipeline tuned by the database config.
// opts are applied after the configured ones and win over them.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	cfg := db.config.Ingestion
	finder, err := ingestion.NewConnectionFinder(db.thoughts, db.connections,
		ingestion.WithNeighborCount(cfg.NeighborCount),
		ingestion.WithSimilarityThreshold(cfg.SimilarityThreshold),
	)
	if err != nil {
		return nil, err
	}

	configured := []ingestion.Option{
		ingestion.WithPoolSize(cfg.PoolSize),
		ingestion.WithEmbeddingDimensions(db.dimensions),
		ingestion.WithConnectionFinder(finder),
	}
	if model := db.provider.LanguageModel(); model != nil {
		configured = append(configured, ingestion.WithClassifier(
			classify.NewClassifier(model, classify.WithRelevanceThreshold(cfg.RelevanceThreshold)),
		))
	}
	return ingestion.NewPipeline(db.thoughts, db.connections, db.provider, append(configured, opts...)...)
}

// NewSearcher builds a hybrid searcher tuned by the database config.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	configured := []search.Option{
		search.WithDefaultLimit(db.config.Search.DefaultLimit),
		search.WithEmbeddingDimensions(db.dimensions),
	}
	return search.NewSearcher(db.thoughts, db.provider, append(configured, opts...)...)
}

// NewBackfiller builds a backfiller that hands thoughts to processor,
// usually a pipeline from NewIngestionPipeline.
func (db *Database) NewBackfiller(processor backfill.Processor, config *backfill.Config, progress io.Writer) (*backfill.Backfiller, error) {
	return backfill.NewBackfiller(db.thoughts, processor, config, progress)
}

// NewImporter builds an importer. With a nil pipeline imported thoughts
// are stored only and wait for a backfill.
func (db *Database) NewImporter(pipeline *ingestion.Pipeline) (*importer.Importer, error) {
	if pipeline == nil {
		return importer.NewImporter(db.thoughts, nil)
	}
	return importer.NewImporter(db.thoughts, pipeline)
}
