package storage

import (
	"testing"
	"time"

	"github.com/poiesic/vecspool/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalDocument([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalBuildState([]byte{0xff})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalDocument(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := &core.Document{
		Id:         core.IDFromContent("the lighthouse beam cut through fog"),
		Text:       "the lighthouse beam cut through fog",
		Timestamp:  now,
		InsertedAt: now,
		UpdatedAt:  now,
		Vector:     []float32{0.6, 0.8},
	}

	decoded, err := UnmarshalDocument(MarshalDocument(doc))
	require.NoError(t, err)
	assert.Equal(t, doc.Id, decoded.Id)
	assert.Equal(t, doc.Text, decoded.Text)
	assert.Equal(t, doc.Vector, decoded.Vector)
	assert.Empty(t, decoded.Metadata)
	assert.True(t, now.Equal(decoded.UpdatedAt))
}

func TestMarshalUnmarshalBuildState(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	state := &core.BuildState{
		VectorsID: "3f2a9c",
		Batches:   7,
		Documents: 700,
		Completed: true,
		UpdatedAt: now,
	}

	decoded, err := UnmarshalBuildState(MarshalBuildState(state))
	require.NoError(t, err)
	assert.Equal(t, state.VectorsID, decoded.VectorsID)
	assert.Equal(t, state.Batches, decoded.Batches)
	assert.Equal(t, state.Documents, decoded.Documents)
	assert.True(t, decoded.Completed)
	assert.True(t, now.Equal(decoded.UpdatedAt))
}
