package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentMUS(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := Document{
		Id:         IDFromContent("hello"),
		Text:       "hello",
		Timestamp:  now,
		InsertedAt: now,
		UpdatedAt:  now,
		Vector:     []float32{0.25, -0.5, 1},
		Metadata:   map[string]string{"source": "notes.txt"},
	}

	bs := make([]byte, DocumentMUS.Size(doc))
	n := DocumentMUS.Marshal(doc, bs)
	require.Equal(t, len(bs), n)

	decoded, read, err := DocumentMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, n, read)
	assert.Equal(t, doc.Id, decoded.Id)
	assert.Equal(t, doc.Text, decoded.Text)
	assert.True(t, doc.Timestamp.Equal(decoded.Timestamp))
	assert.Equal(t, doc.Vector, decoded.Vector)
	assert.Equal(t, doc.Metadata, decoded.Metadata)
}

func TestEmbeddingBatchMUS_Truncated(t *testing.T) {
	batch := EmbeddingBatch{
		Ids:     []ID{1, 2, 3},
		Vectors: [][]float32{{1, 2}, {3, 4}, {5, 6}},
	}
	bs := make([]byte, EmbeddingBatchMUS.Size(batch))
	EmbeddingBatchMUS.Marshal(batch, bs)

	decoded, _, err := EmbeddingBatchMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, batch, decoded)

	for _, cut := range []int{0, 1, len(bs) / 2, len(bs) - 1} {
		_, _, err := EmbeddingBatchMUS.Unmarshal(bs[:cut])
		assert.Error(t, err, "cut at %d should fail", cut)
	}
}

func TestEmbeddingBatchMUS_RawFloats(t *testing.T) {
	batch := EmbeddingBatch{
		Ids:     []ID{1},
		Vectors: [][]float32{{0.57735026, -0.57735026, 0.57735026}},
	}

	// ids length, id, vectors length, vector length, then 4 bytes per component.
	assert.Equal(t, 1+1+1+1+3*4, EmbeddingBatchMUS.Size(batch))
}

func TestBuildStateMUS(t *testing.T) {
	now := time.Now().Truncate(time.Microsecond)
	state := BuildState{VectorsID: "ab12", Batches: 3, Documents: 250, Completed: true, UpdatedAt: now}

	bs := make([]byte, BuildStateMUS.Size(state))
	BuildStateMUS.Marshal(state, bs)

	decoded, n, err := BuildStateMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, state.VectorsID, decoded.VectorsID)
	assert.Equal(t, state.Batches, decoded.Batches)
	assert.Equal(t, state.Documents, decoded.Documents)
	assert.True(t, decoded.Completed)
	assert.True(t, now.Equal(decoded.UpdatedAt))

	skipped, err := BuildStateMUS.Skip(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), skipped)
}
