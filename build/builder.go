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

package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/poiesic/vecspool/ai"
	"github.com/poiesic/vecspool/checkpoint"
	"github.com/poiesic/vecspool/core"
	"github.com/poiesic/vecspool/recovery"
	"github.com/poiesic/vecspool/storage"
)

// Result summarizes a completed build.
type Result struct {
	VectorsID string
	Batches   int
	Documents int
	Recovered int // documents whose vectors came from the checkpoint
	Embedded  int // documents embedded during this run
	Elapsed   time.Duration
}

// Builder embeds all stored documents, resuming from a checkpoint left by
// an earlier run with the same embedding configuration.
type Builder struct {
	documents storage.DocumentRepository
	states    storage.BuildStateRepository
	embedder  ai.Embedder
	aiConfig  *ai.Config
	config    *Config
	progress  io.Writer
	logger    *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// WithProgress sets where progress output is written.
// Default is no progress output.
func WithProgress(w io.Writer) Option {
	return func(b *Builder) error {
		b.progress = w
		return nil
	}
}

// NewBuilder creates a new builder. aiConfig identifies the embedding
// configuration and so the checkpoint the build resumes from.
func NewBuilder(
	documents storage.DocumentRepository,
	states storage.BuildStateRepository,
	embedder ai.Embedder,
	aiConfig *ai.Config,
	config *Config,
	opts ...Option,
) (*Builder, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if states == nil {
		return nil, ErrBuildStateRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if aiConfig == nil {
		aiConfig = ai.DefaultConfig()
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	b := &Builder{
		documents: documents,
		states:    states,
		embedder:  embedder,
		aiConfig:  aiConfig,
		config:    config,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.logger = b.logger.With("component", "build")
	return b, nil
}

// VectorsID returns the checkpoint identifier for this builder's embedding
// configuration. The batch size is part of the identifier because recovered
// batches are matched to documents batch by batch.
func (b *Builder) VectorsID() string {
	return checkpoint.VectorsID(b.aiConfig, "batch="+strconv.Itoa(b.config.BatchSize))
}

// Run builds the index. Documents are processed in ID order; each batch
// takes its vectors from the recovery snapshot when the snapshot holds the
// same documents, and from the embedder otherwise. Every batch is appended
// to a fresh checkpoint before the vectors are stored, so an interrupted run
// can be resumed by running again.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	vectorsID := b.VectorsID()
	logger := b.logger.With("vectors_id", vectorsID)
	result := &Result{VectorsID: vectorsID}

	total, err := b.documents.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	// The snapshot must be taken before the checkpoint is recreated below.
	rec, err := recovery.New(b.config.CheckpointDir, vectorsID, checkpoint.Decode, recovery.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecoveryFailed, err)
	}
	defer rec.Close()

	writer, err := checkpoint.Create(b.config.CheckpointDir, vectorsID,
		checkpoint.WithCompression(b.config.Compression),
		checkpoint.WithSync(b.config.SyncCheckpoint))
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	processor, err := NewBatchProcessor(b.embedder, b.config.Concurrency, b.config.MaxRetries, b.config.RetryDelay, logger)
	if err != nil {
		return nil, err
	}
	defer processor.Release()

	logger.Info("starting build", "documents", total, "batch_size", b.config.BatchSize,
		"resuming", rec.Active())

	state := &core.BuildState{VectorsID: vectorsID}
	tracker := NewProgressTracker(b.progress, total, b.config.ReportInterval)
	tracker.Start()

	iterator := NewDocumentIterator(b.documents, b.config.BatchSize)
	err = iterator.ForEach(ctx, func(docs []*core.Document) error {
		ids := make([]core.ID, len(docs))
		for i, doc := range docs {
			ids[i] = doc.Id
		}

		vectors, err := b.recovered(rec, ids, logger)
		if err != nil {
			return err
		}
		recovered := vectors != nil
		if !recovered {
			texts := make([]string, len(docs))
			for i, doc := range docs {
				texts[i] = doc.Text
			}
			if vectors, err = processor.Embed(ctx, texts); err != nil {
				return err
			}
		}

		if err := writer.Write(&core.EmbeddingBatch{Ids: ids, Vectors: vectors}); err != nil {
			return fmt.Errorf("failed to write checkpoint: %w", err)
		}

		for i, doc := range docs {
			doc.Vector = vectors[i]
		}
		if _, err := b.documents.UpdateDocuments(ctx, docs...); err != nil {
			return fmt.Errorf("failed to store vectors: %w", err)
		}

		state.Batches++
		state.Documents += len(docs)
		if err := b.states.SaveBuildState(ctx, state); err != nil {
			return fmt.Errorf("failed to save build state: %w", err)
		}

		if recovered {
			result.Recovered += len(docs)
			tracker.Add(0, len(docs))
		} else {
			result.Embedded += len(docs)
			tracker.Add(len(docs), 0)
		}
		return nil
	})
	if err != nil {
		logger.Error("build interrupted", "batches", state.Batches, "err", err)
		return nil, err
	}
	tracker.Finish()

	// Anything left in the snapshot belongs to documents that no longer exist.
	if err := rec.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecoveryFailed, err)
	}

	state.Completed = true
	if err := b.states.SaveBuildState(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save build state: %w", err)
	}

	if b.config.KeepCheckpoint {
		err = writer.Close()
	} else {
		err = writer.Remove()
	}
	if err != nil {
		return nil, err
	}

	result.Batches = state.Batches
	result.Documents = state.Documents
	result.Elapsed = tracker.Elapsed()
	logger.Info("build complete", "batches", result.Batches, "documents", result.Documents,
		"recovered", result.Recovered, "embedded", result.Embedded, "elapsed", result.Elapsed)
	return result, nil
}

// recovered returns the vectors for ids from the recovery snapshot, or nil
// when they have to be embedded. A snapshot that stops matching the corpus
// is abandoned.
func (b *Builder) recovered(rec *recovery.Reader, ids []core.ID, logger *slog.Logger) ([][]float32, error) {
	if !rec.Active() {
		return nil, nil
	}

	batch, err := rec.Next()
	if err != nil {
		damaged := errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, checkpoint.ErrCorruptFrame)
		if damaged && b.config.TolerateDamagedCheckpoint {
			logger.Warn("checkpoint is damaged after the last intact batch, embedding the rest",
				"recovered_batches", rec.Recovered(), "error", err)
			return nil, rec.Close()
		}
		return nil, fmt.Errorf("%w: %w", ErrRecoveryFailed, err)
	}
	if batch == nil {
		return nil, nil
	}

	if !batch.SameIDs(ids) {
		logger.Warn("checkpoint no longer matches documents, embedding the rest",
			"recovered_batches", rec.Recovered()-1)
		return nil, rec.Close()
	}
	return batch.Vectors, nil
}
