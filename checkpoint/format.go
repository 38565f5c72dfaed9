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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/poiesic/vecspool/core"
)

const (
	magic0 byte = 'V'
	magic1 byte = 'S'

	// maxPayloadSize bounds a single frame so a corrupt length cannot exhaust memory.
	maxPayloadSize = 1 << 30
)

// AppendFrame encodes batch as one frame and appends it to dst.
func AppendFrame(dst []byte, batch *core.EmbeddingBatch, c Compression) ([]byte, error) {
	if err := core.ValidateBatch(batch); err != nil {
		return dst, err
	}

	raw := make([]byte, core.EmbeddingBatchMUS.Size(*batch))
	core.EmbeddingBatchMUS.Marshal(*batch, raw)

	stored, used, err := compress(raw, c)
	if err != nil {
		return dst, err
	}
	if len(stored) > maxPayloadSize {
		return dst, fmt.Errorf("checkpoint frame too large: %d bytes", len(stored))
	}

	dst = append(dst, magic0, magic1, byte(used))
	dst = binary.AppendUvarint(dst, uint64(len(stored)))
	dst = binary.LittleEndian.AppendUint32(dst, crc32.ChecksumIEEE(stored))
	dst = append(dst, stored...)
	return dst, nil
}

// Decode reads one frame from r and returns the batch it holds.
//
// It returns io.EOF when r is exhausted at a frame boundary,
// io.ErrUnexpectedEOF when r ends inside a frame and an error wrapping
// ErrCorruptFrame when the frame is invalid. Decode consumes exactly the
// bytes of one frame.
func Decode(r io.Reader) (*core.EmbeddingBatch, error) {
	var header [3]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		// io.ReadFull reports io.EOF only when nothing was read and
		// passes other read failures through.
		return nil, err
	}
	if header[0] != magic0 || header[1] != magic1 {
		return nil, fmt.Errorf("%w: bad magic %#x%02x", ErrCorruptFrame, header[0], header[1])
	}
	c := Compression(header[2])

	br := asByteReader(r)
	size, err := binary.ReadUvarint(br)
	if err != nil {
		if br.err == nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptFrame, err)
		}
		return nil, truncated(br.err)
	}
	if size > maxPayloadSize {
		return nil, fmt.Errorf("%w: payload length %d exceeds limit", ErrCorruptFrame, size)
	}

	// The buffer grows with the bytes actually read, so a corrupt length
	// cannot force a large allocation before the checksum is verified.
	var body bytes.Buffer
	if _, err := io.CopyN(&body, r, 4+int64(size)); err != nil {
		return nil, truncated(err)
	}
	sum := binary.LittleEndian.Uint32(body.Bytes()[:4])
	stored := body.Bytes()[4:]
	if crc32.ChecksumIEEE(stored) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptFrame)
	}

	raw, err := decompress(stored, c)
	if err != nil {
		return nil, err
	}

	batch, n, err := core.EmbeddingBatchMUS.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptFrame, err)
	}
	if n != len(raw) {
		return nil, fmt.Errorf("%w: %d trailing payload bytes", ErrCorruptFrame, len(raw)-n)
	}
	if err := core.ValidateBatch(&batch); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptFrame, err)
	}
	return &batch, nil
}

// truncated maps end of input inside a frame to io.ErrUnexpectedEOF and
// passes read failures through unchanged.
func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// asByteReader reads one byte at a time from r without buffering ahead,
// so no bytes past the varint are consumed. It records the first read
// failure to tell a short read from a malformed varint.
func asByteReader(r io.Reader) *byteReader {
	br := &byteReader{r: r}
	if b, ok := r.(io.ByteReader); ok {
		br.br = b
	}
	return br
}

type byteReader struct {
	r   io.Reader
	br  io.ByteReader
	buf [1]byte
	err error
}

func (b *byteReader) ReadByte() (byte, error) {
	var c byte
	var err error
	if b.br != nil {
		c, err = b.br.ReadByte()
	} else {
		_, err = io.ReadFull(b.r, b.buf[:])
		c = b.buf[0]
	}
	if err != nil {
		b.err = err
		return 0, err
	}
	return c, nil
}
