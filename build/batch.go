package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/vecspool/ai"
)

// BatchProcessor generates normalized embeddings for a batch of texts,
// splitting it into sub-batches that are embedded concurrently.
type BatchProcessor struct {
	embedder       ai.Embedder
	pool           *ants.Pool
	workers        int
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// NewBatchProcessor creates a new batch processor.
// workers: number of sub-batches embedded at once
// maxRetries: maximum number of attempts per sub-batch
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(embedder ai.Embedder, workers, maxRetries int, retryBaseDelay time.Duration, logger *slog.Logger) (*BatchProcessor, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}

	return &BatchProcessor{
		embedder:       embedder,
		pool:           pool,
		workers:        workers,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		logger:         logger.With("processor", "embeddings"),
	}, nil
}

// Embed returns one unit-length vector per text, in input order.
func (bp *BatchProcessor) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	chunks := splitRange(len(texts), bp.workers)
	vectors := make([][]float32, len(texts))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		submitErr := bp.pool.Submit(func() {
			defer wg.Done()
			errs[i] = bp.embedChunk(ctx, texts[c.start:c.end], vectors[c.start:c.end])
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return vectors, nil
}

// embedChunk embeds texts with retry and writes normalized vectors into out.
func (bp *BatchProcessor) embedChunk(ctx context.Context, texts []string, out [][]float32) error {
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		bp.logger.Error("error generating embeddings", "texts", len(texts), "err", err)
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(texts) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(texts), len(embeddings))
	}

	for i, v := range embeddings {
		out[i] = NormalizeVector(v)
	}
	return nil
}

// Release frees the worker pool.
func (bp *BatchProcessor) Release() {
	bp.pool.Release()
}

type span struct {
	start, end int
}

// splitRange divides [0, n) into at most parts contiguous, near-equal spans.
func splitRange(n, parts int) []span {
	if parts > n {
		parts = n
	}
	spans := make([]span, 0, parts)
	size, extra := n/parts, n%parts
	start := 0
	for i := 0; i < parts; i++ {
		end := start + size
		if i < extra {
			end++
		}
		spans = append(spans, span{start, end})
		start = end
	}
	return spans
}
