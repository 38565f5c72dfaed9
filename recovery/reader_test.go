package recovery

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/vecspool/checkpoint"
	"github.com/poiesic/vecspool/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVectorsID = "0123456789abcdef"

func batch(ids ...core.ID) *core.EmbeddingBatch {
	b := &core.EmbeddingBatch{Ids: ids}
	for _, id := range ids {
		b.Vectors = append(b.Vectors, []float32{float32(id), 1, 0})
	}
	return b
}

// writeCheckpoint writes batches to dir/testVectorsID using the checkpoint codec.
func writeCheckpoint(t *testing.T, dir string, batches ...*core.EmbeddingBatch) {
	t.Helper()
	w, err := checkpoint.Create(dir, testVectorsID)
	require.NoError(t, err)
	for _, b := range batches {
		require.NoError(t, w.Write(b))
	}
	require.NoError(t, w.Close())
}

func drain(t *testing.T, r *Reader) []*core.EmbeddingBatch {
	t.Helper()
	var out []*core.EmbeddingBatch
	for {
		b, err := r.Next()
		require.NoError(t, err)
		if b == nil {
			return out
		}
		out = append(out, b)
	}
}

func TestReader_RecoversAllBatches(t *testing.T) {
	dir := t.TempDir()
	want := []*core.EmbeddingBatch{batch(1, 2), batch(3, 4), batch(5)}
	writeCheckpoint(t, dir, want...)

	r, err := New(dir, testVectorsID, checkpoint.Decode)
	require.NoError(t, err)
	assert.True(t, r.Active())
	assert.FileExists(t, checkpoint.RecoveryPath(dir))

	for i, w := range want {
		got, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, w, got, "batch %d", i)
	}

	got, err := r.Next()
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, r.Active())
	assert.Equal(t, 3, r.Recovered())
	assert.NoFileExists(t, checkpoint.RecoveryPath(dir))

	// The original checkpoint is left in place.
	assert.FileExists(t, checkpoint.Path(dir, testVectorsID))
}

func TestReader_MissingCheckpoint(t *testing.T) {
	dir := t.TempDir()

	r, err := New(dir, testVectorsID, checkpoint.Decode)
	require.NoError(t, err)
	assert.False(t, r.Active())

	got, err := r.Next()
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoFileExists(t, checkpoint.RecoveryPath(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReader_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist")

	r, err := New(dir, testVectorsID, checkpoint.Decode)
	require.NoError(t, err)
	assert.False(t, r.Active())

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestReader_EmptyCheckpoint(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir)

	r, err := New(dir, testVectorsID, checkpoint.Decode)
	require.NoError(t, err)
	assert.True(t, r.Active())

	got, err := r.Next()
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, r.Active())
	assert.NoFileExists(t, checkpoint.RecoveryPath(dir))
}

func TestReader_IdempotentAfterExhaustion(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir, batch(1))

	calls := 0
	decode := func(r io.Reader) (*core.EmbeddingBatch, error) {
		calls++
		return checkpoint.Decode(r)
	}

	r, err := New(dir, testVectorsID, decode)
	require.NoError(t, err)
	assert.Len(t, drain(t, r), 1)
	assert.Equal(t, 2, calls)

	for i := 0; i < 3; i++ {
		got, err := r.Next()
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Equal(t, 2, calls, "decoder must not be called once disabled")
}

func TestReader_SourceNeverModified(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir, batch(1, 2), batch(3))
	source := checkpoint.Path(dir, testVectorsID)

	before, err := os.ReadFile(source)
	require.NoError(t, err)

	r, err := New(dir, testVectorsID, checkpoint.Decode)
	require.NoError(t, err)

	snapshot, err := os.ReadFile(checkpoint.RecoveryPath(dir))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, snapshot), "snapshot must be a byte-for-byte copy")

	drain(t, r)

	after, err := os.ReadFile(source)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReader_SnapshotIsolation(t *testing.T) {
	dir := t.TempDir()
	want := []*core.EmbeddingBatch{batch(1), batch(2), batch(3)}
	writeCheckpoint(t, dir, want...)

	r, err := New(dir, testVectorsID, checkpoint.Decode)
	require.NoError(t, err)

	// Recreate the source the way a resumed build does.
	w, err := checkpoint.Create(dir, testVectorsID)
	require.NoError(t, err)
	require.NoError(t, w.Write(batch(99)))

	assert.Equal(t, want, drain(t, r))
	require.NoError(t, w.Close())
}

func TestReader_ReplacesStaleSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(checkpoint.RecoveryPath(dir), []byte("stale garbage that is not a frame"), 0o644))
	writeCheckpoint(t, dir, batch(7))

	r, err := New(dir, testVectorsID, checkpoint.Decode)
	require.NoError(t, err)
	assert.Equal(t, []*core.EmbeddingBatch{batch(7)}, drain(t, r))
}

func TestReader_DecoderErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir, batch(1))

	boom := errors.New("boom")
	fail := true
	decode := func(r io.Reader) (*core.EmbeddingBatch, error) {
		if fail {
			return nil, boom
		}
		return checkpoint.Decode(r)
	}

	r, err := New(dir, testVectorsID, decode)
	require.NoError(t, err)

	got, err := r.Next()
	assert.Nil(t, got)
	assert.ErrorIs(t, err, boom)
	assert.True(t, r.Active())
	assert.FileExists(t, checkpoint.RecoveryPath(dir))

	// The reader keeps going once the decoder recovers.
	fail = false
	assert.Len(t, drain(t, r), 1)
	assert.False(t, r.Active())
}

func TestReader_UnexpectedEOFIsNotExhaustion(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir, batch(1, 2), batch(3, 4))

	// Cut the last frame short, as a crash mid-write would.
	source := checkpoint.Path(dir, testVectorsID)
	data, err := os.ReadFile(source)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(source, data[:len(data)-3], 0o644))

	r, err := New(dir, testVectorsID, checkpoint.Decode)
	require.NoError(t, err)

	got, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, batch(1, 2), got)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, r.Active())

	require.NoError(t, r.Close())
	assert.NoFileExists(t, checkpoint.RecoveryPath(dir))
}

func TestReader_WrappedEOF(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir, batch(1))

	decode := func(io.Reader) (*core.EmbeddingBatch, error) {
		return nil, fmt.Errorf("end of checkpoint: %w", io.EOF)
	}

	r, err := New(dir, testVectorsID, decode)
	require.NoError(t, err)

	got, err := r.Next()
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, r.Active())
	assert.NoFileExists(t, checkpoint.RecoveryPath(dir))
}

func TestReader_Close(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir, batch(1), batch(2))

	r, err := New(dir, testVectorsID, checkpoint.Decode)
	require.NoError(t, err)

	_, err = r.Next()
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.False(t, r.Active())
	assert.Equal(t, 1, r.Recovered())
	assert.NoFileExists(t, checkpoint.RecoveryPath(dir))

	require.NoError(t, r.Close())
	got, err := r.Next()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNew_RequiresDecoder(t *testing.T) {
	_, err := New(t.TempDir(), testVectorsID, nil)
	assert.ErrorIs(t, err, ErrDecoderRequired)
}

func TestNew_CheckpointIsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(checkpoint.Path(dir, testVectorsID), 0o755))

	_, err := New(dir, testVectorsID, checkpoint.Decode)
	assert.Error(t, err)
	assert.NoFileExists(t, checkpoint.RecoveryPath(dir))
}

func TestNew_CheckpointNamedAsSnapshot(t *testing.T) {
	dir := t.TempDir()
	w, err := checkpoint.Create(dir, checkpoint.RecoveryName)
	require.NoError(t, err)
	require.NoError(t, w.Write(batch(1, 2)))
	require.NoError(t, w.Close())
	before, err := os.ReadFile(checkpoint.RecoveryPath(dir))
	require.NoError(t, err)

	_, err = New(dir, checkpoint.RecoveryName, checkpoint.Decode)
	assert.ErrorIs(t, err, ErrSnapshotIsSource)

	after, err := os.ReadFile(checkpoint.RecoveryPath(dir))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNew_CheckpointLinkedToSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir, batch(1, 2))
	require.NoError(t, os.Rename(checkpoint.Path(dir, testVectorsID), checkpoint.RecoveryPath(dir)))
	require.NoError(t, os.Symlink(checkpoint.RecoveryPath(dir), checkpoint.Path(dir, testVectorsID)))
	before, err := os.ReadFile(checkpoint.RecoveryPath(dir))
	require.NoError(t, err)

	_, err = New(dir, testVectorsID, checkpoint.Decode)
	assert.ErrorIs(t, err, ErrSnapshotIsSource)

	after, err := os.ReadFile(checkpoint.RecoveryPath(dir))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
