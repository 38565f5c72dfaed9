package build

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/vecspool/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("text %d", i)
	}
	return out
}

func TestBatchProcessor_PreservesOrder(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.Dimensions = 8

	processor, err := NewBatchProcessor(embedder, 4, 3, time.Millisecond, nil)
	require.NoError(t, err)
	defer processor.Release()

	in := texts(11)
	vectors, err := processor.Embed(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, vectors, len(in))

	for i, text := range in {
		assert.InDeltaSlice(t, NormalizeVector(mock.GenerateVector(text, 8)), vectors[i], 1e-6, "vector %d", i)
		assert.InDelta(t, 1.0, magnitude(vectors[i]), 1e-5)
	}
	assert.Equal(t, 4, embedder.CallCount(), "one call per sub-batch")
	assert.Equal(t, 11, embedder.TextCount())
}

func TestBatchProcessor_FewerTextsThanWorkers(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	processor, err := NewBatchProcessor(embedder, 8, 1, time.Millisecond, nil)
	require.NoError(t, err)
	defer processor.Release()

	vectors, err := processor.Embed(context.Background(), texts(3))
	require.NoError(t, err)
	assert.Len(t, vectors, 3)
	assert.Equal(t, 3, embedder.CallCount())
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor, err := NewBatchProcessor(mock.NewMockEmbedder(), 2, 1, time.Millisecond, nil)
	require.NoError(t, err)
	defer processor.Release()

	vectors, err := processor.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestBatchProcessor_Retries(t *testing.T) {
	var calls atomic.Int32
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, in []string) ([][]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("temporary")
		}
		out := make([][]float32, len(in))
		for i := range out {
			out[i] = []float32{1, 2, 2}
		}
		return out, nil
	}

	processor, err := NewBatchProcessor(embedder, 1, 3, time.Millisecond, nil)
	require.NoError(t, err)
	defer processor.Release()

	vectors, err := processor.Embed(context.Background(), texts(2))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{1.0 / 3, 2.0 / 3, 2.0 / 3}, vectors[0], 1e-6)
	assert.Equal(t, int32(2), calls.Load())
}

func TestBatchProcessor_PersistentFailure(t *testing.T) {
	boom := errors.New("service down")
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, boom
	}

	processor, err := NewBatchProcessor(embedder, 2, 2, time.Millisecond, nil)
	require.NoError(t, err)
	defer processor.Release()

	_, err = processor.Embed(context.Background(), texts(4))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, embedder.CallCount(), "two sub-batches, two attempts each")
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}

	processor, err := NewBatchProcessor(embedder, 1, 1, time.Millisecond, nil)
	require.NoError(t, err)
	defer processor.Release()

	_, err = processor.Embed(context.Background(), texts(3))
	assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
}

func TestNewBatchProcessor_RequiresEmbedder(t *testing.T) {
	_, err := NewBatchProcessor(nil, 1, 1, time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestSplitRange(t *testing.T) {
	assert.Equal(t, []span{{0, 4}, {4, 7}, {7, 10}}, splitRange(10, 3))
	assert.Equal(t, []span{{0, 1}, {1, 2}}, splitRange(2, 5))
	assert.Equal(t, []span{{0, 6}}, splitRange(6, 1))
}
