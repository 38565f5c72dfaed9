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

package ingestion

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/vecspool/core"
	"github.com/poiesic/vecspool/storage"
)

const (
	// DefaultBatchSize is the number of lines stored per transaction by IngestReader.
	DefaultBatchSize = 256

	// MaxLineSize is the longest line IngestReader accepts.
	MaxLineSize = 1 << 20
)

// Pipeline validates text and stores it as documents awaiting an index build.
type Pipeline struct {
	repository storage.DocumentRepository
	batchSize  int
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithBatchSize sets how many lines IngestReader stores at once.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(repository storage.DocumentRepository, opts ...Option) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrDocumentRepositoryRequired
	}

	p := &Pipeline{
		repository: repository,
		batchSize:  DefaultBatchSize,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "ingestion")
	return p, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	Metadata  map[string]string // Optional metadata to attach to documents
	Timestamp time.Time         // Optional timestamp (uses current time if zero)
}

// Ingest stores texts as documents. Surrounding whitespace is trimmed and
// texts already present in storage are skipped. All texts are validated
// before any is stored. Returns the newly stored documents.
func (p *Pipeline) Ingest(ctx context.Context, texts []string, opts *IngestOptions) ([]*core.Document, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}
	timestamp := opts.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	docs := make([]*core.Document, len(texts))
	for i, text := range texts {
		docs[i] = &core.Document{
			Text:      strings.TrimSpace(text),
			Timestamp: timestamp,
			Metadata:  opts.Metadata,
		}
		if err := core.ValidateDocument(docs[i]); err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
	}
	if len(docs) == 0 {
		return nil, nil
	}

	added, err := p.repository.AddDocuments(ctx, docs...)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("ingested documents", "received", len(docs), "added", len(added))
	return added, nil
}

// IngestResult summarizes an IngestReader call.
type IngestResult struct {
	Lines int // non-empty lines read
	Added int // documents newly stored
}

// IngestReader stores one document per non-empty line of r.
func (p *Pipeline) IngestReader(ctx context.Context, r io.Reader, opts *IngestOptions) (*IngestResult, error) {
	result := &IngestResult{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	pending := make([]string, 0, p.batchSize)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		added, err := p.Ingest(ctx, pending, opts)
		if err != nil {
			return err
		}
		result.Added += len(added)
		pending = pending[:0]
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		result.Lines++
		pending = append(pending, line)

		if len(pending) == p.batchSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("failed to read input: %w", err)
	}
	if err := flush(); err != nil {
		return result, err
	}

	p.logger.Info("ingestion complete", "lines", result.Lines, "added", result.Added)
	return result, nil
}
