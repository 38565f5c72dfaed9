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

package vecspool

import (
	"log/slog"

	"github.com/poiesic/vecspool/ai"
	"github.com/poiesic/vecspool/ai/openai"
	"github.com/poiesic/vecspool/build"
	"github.com/poiesic/vecspool/ingestion"
	"github.com/poiesic/vecspool/search"
	"github.com/poiesic/vecspool/storage"
	"github.com/poiesic/vecspool/storage/badger"
)

// Database ties together document storage, build state and the embedding
// provider for one index.
type Database struct {
	backend   *badger.Backend
	docRepo   storage.DocumentRepository
	stateRepo storage.BuildStateRepository
	provider  ai.AIProvider
	aiConfig  *ai.Config
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig sets the embedding configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider supplies an embedding provider instead of creating an
// OpenAI-compatible one from the AI configuration. The Database closes it.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all data in memory; the file path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase opens (or creates) the index stored at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.aiConfig == nil {
		options.aiConfig = ai.DefaultConfig()
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	if err := options.aiConfig.Validate(); err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			docRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:   backend,
		docRepo:   docRepo,
		stateRepo: badger.NewBuildStateRepository(backend),
		provider:  provider,
		aiConfig:  options.aiConfig,
		logger:    options.logger,
	}, nil
}

// Close releases the provider, repositories and backend.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.docRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.docRepo
}

func (db *Database) BuildStateRepository() storage.BuildStateRepository {
	return db.stateRepo
}

func (db *Database) AIConfig() *ai.Config {
	return db.aiConfig
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(db.logger)}, opts...)
	return ingestion.NewPipeline(db.docRepo, opts...)
}

// NewBuilder creates an index builder using the database's embedding
// configuration. A nil config uses build.DefaultConfig().
func (db *Database) NewBuilder(config *build.Config, opts ...build.Option) (*build.Builder, error) {
	opts = append([]build.Option{build.WithLogger(db.logger)}, opts...)
	return build.NewBuilder(db.docRepo, db.stateRepo, db.provider.Embedder(), db.aiConfig, config, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	opts = append([]search.Option{search.WithLogger(db.logger)}, opts...)
	return search.NewSearcher(db.docRepo, db.provider, opts...)
}
