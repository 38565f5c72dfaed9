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

package checkpoint

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/poiesic/vecspool/core"
)

// Writer appends embedding batches to a checkpoint file, one frame per batch.
type Writer struct {
	mu          sync.Mutex
	path        string
	file        *os.File
	buf         *bufio.Writer
	frame       []byte
	compression Compression
	sync        bool
	batches     int
	closed      bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer) error

// WithSync fsyncs the file after every frame.
func WithSync(sync bool) WriterOption {
	return func(w *Writer) error {
		w.sync = sync
		return nil
	}
}

// WithCompression sets the payload compression for new frames.
func WithCompression(c Compression) WriterOption {
	return func(w *Writer) error {
		switch c {
		case CompressionNone, CompressionLZ4, CompressionZstd:
			w.compression = c
			return nil
		default:
			return fmt.Errorf("%w: %d", ErrUnknownCompression, c)
		}
	}
}

// Create creates or truncates the checkpoint file dir/vectorsID.
// The directory is created if it does not exist.
func Create(dir, vectorsID string, opts ...WriterOption) (*Writer, error) {
	w := &Writer{path: Path(dir, vectorsID)}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkpoint file: %w", err)
	}
	w.file = f
	w.buf = bufio.NewWriter(f)
	return w, nil
}

// Write appends batch as a single frame. The frame is flushed to the file
// before Write returns so a crash never leaves more than one partial frame.
func (w *Writer) Write(batch *core.EmbeddingBatch) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}

	frame, err := AppendFrame(w.frame[:0], batch, w.compression)
	if err != nil {
		return err
	}
	w.frame = frame

	if _, err := w.buf.Write(frame); err != nil {
		return fmt.Errorf("failed to write checkpoint frame: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush checkpoint frame: %w", err)
	}
	if w.sync {
		if err := w.file.Sync(); err != nil {
			return fmt.Errorf("failed to sync checkpoint file: %w", err)
		}
	}
	w.batches++
	return nil
}

// Batches returns the number of frames written.
func (w *Writer) Batches() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.batches
}

// Path returns the checkpoint file path.
func (w *Writer) Path() string {
	return w.path
}

// Close flushes and closes the file. It is safe to call more than once.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Writer) closeLocked() error {
	if w.closed {
		return nil
	}
	w.closed = true
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	if flushErr != nil {
		return fmt.Errorf("failed to flush checkpoint file: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close checkpoint file: %w", closeErr)
	}
	return nil
}

// Remove closes the writer and deletes the checkpoint file.
func (w *Writer) Remove() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	closeErr := w.closeLocked()
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}
	return closeErr
}
