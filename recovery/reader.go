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

package recovery

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/vecspool/checkpoint"
	"github.com/poiesic/vecspool/core"
)

// Decoder reads the next batch from r. It returns io.EOF when the stream
// is exhausted at a batch boundary.
type Decoder func(r io.Reader) (*core.EmbeddingBatch, error)

// active holds the open snapshot. A nil *active means the reader is disabled.
type active struct {
	file  *os.File
	spool *bufio.Reader
	path  string
}

// Reader yields the batches of a checkpoint snapshot one at a time.
type Reader struct {
	state     *active
	decode    Decoder
	recovered int
	logger    *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// New prepares a reader for the checkpoint file dir/vectorsID.
//
// When the checkpoint does not exist the returned reader is disabled and
// Next always returns nil, nil. Otherwise the checkpoint is copied to
// checkpoint.RecoveryPath(dir), replacing any earlier snapshot, and the copy
// is opened for reading.
func New(dir, vectorsID string, decode Decoder, opts ...Option) (*Reader, error) {
	if decode == nil {
		return nil, ErrDecoderRequired
	}

	r := &Reader{
		decode: decode,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "recovery")

	source := checkpoint.Path(dir, vectorsID)
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug("no checkpoint to recover", "path", source)
			return r, nil
		}
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}

	path := checkpoint.RecoveryPath(dir)
	if sameFile(source, path, info) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotIsSource, source)
	}
	size, err := copySnapshot(source, path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to open recovery snapshot: %w", err)
	}

	r.state = &active{
		file:  file,
		spool: bufio.NewReader(file),
		path:  path,
	}
	r.logger.Info("recovering from checkpoint", "source", source, "snapshot", path, "bytes", size)
	return r, nil
}

// sameFile reports whether the snapshot path names the checkpoint itself,
// directly or through a link.
func sameFile(source, snapshot string, sourceInfo fs.FileInfo) bool {
	if filepath.Clean(source) == filepath.Clean(snapshot) {
		return true
	}
	info, err := os.Stat(snapshot)
	if err != nil {
		return false
	}
	return os.SameFile(sourceInfo, info)
}

// copySnapshot copies source to dest byte for byte. On failure no partial
// snapshot is left behind.
func copySnapshot(source, dest string) (int64, error) {
	in, err := os.Open(source)
	if err != nil {
		return 0, fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create recovery snapshot: %w", err)
	}

	n, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return 0, fmt.Errorf("failed to copy checkpoint to recovery snapshot: %w", err)
	}
	return n, nil
}

// Next returns the next recovered batch, or nil, nil once the snapshot is
// exhausted or when there was nothing to recover.
//
// Reaching the end of the snapshot closes and deletes it, after which the
// reader stays disabled. Any other decoder error is returned as is and the
// reader remains positioned where the decoder left it.
func (r *Reader) Next() (*core.EmbeddingBatch, error) {
	if r.state == nil {
		return nil, nil
	}

	batch, err := r.decode(r.state.spool)
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.logger.Info("checkpoint recovery complete", "batches", r.recovered)
			return nil, r.release()
		}
		return nil, err
	}

	r.recovered++
	return batch, nil
}

// Close abandons recovery, deleting the snapshot. It is a no-op on a
// disabled reader.
func (r *Reader) Close() error {
	if r.state == nil {
		return nil
	}
	r.logger.Debug("abandoning checkpoint recovery", "batches", r.recovered)
	return r.release()
}

// Active reports whether the reader still holds a snapshot.
func (r *Reader) Active() bool {
	return r.state != nil
}

// Recovered returns the number of batches returned by Next so far.
func (r *Reader) Recovered() int {
	return r.recovered
}

// release closes and removes the snapshot and disables the reader.
// The reader is disabled even when cleanup fails.
func (r *Reader) release() error {
	state := r.state
	r.state = nil

	closeErr := state.file.Close()
	removeErr := os.Remove(state.path)
	if removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove recovery snapshot: %w", removeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close recovery snapshot: %w", closeErr)
	}
	return nil
}
