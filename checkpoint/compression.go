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
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how a frame payload is stored.
type Compression uint8

const (
	// CompressionNone stores the payload as is.
	CompressionNone Compression = 0
	// CompressionLZ4 stores an LZ4 block (fast, modest ratio).
	CompressionLZ4 Compression = 1
	// CompressionZstd stores a Zstandard frame (slower, better ratio).
	CompressionZstd Compression = 2
)

// String returns the flag spelling of the compression type.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return CompressionNone, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

// EncodeAll/DecodeAll are safe for concurrent use, so one instance of each is shared.
var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

func zstdCodec() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zstdErr != nil {
			return
		}
		zstdDecoder, zstdErr = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxPayloadSize))
	})
	return zstdEncoder, zstdDecoder, zstdErr
}

// compress returns the stored form of data and the compression actually used.
// Data that does not shrink is stored uncompressed.
func compress(data []byte, c Compression) ([]byte, Compression, error) {
	switch c {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionLZ4:
		// The uncompressed size is needed to size the output buffer on decode.
		dst := make([]byte, binary.MaxVarintLen64+lz4.CompressBlockBound(len(data)))
		n := binary.PutUvarint(dst, uint64(len(data)))
		written, err := lz4.CompressBlock(data, dst[n:], nil)
		if err != nil {
			return nil, CompressionNone, err
		}
		if written == 0 || n+written >= len(data) {
			return data, CompressionNone, nil
		}
		return dst[:n+written], CompressionLZ4, nil
	case CompressionZstd:
		enc, _, err := zstdCodec()
		if err != nil {
			return nil, CompressionNone, err
		}
		out := enc.EncodeAll(data, nil)
		if len(out) >= len(data) {
			return data, CompressionNone, nil
		}
		return out, CompressionZstd, nil
	default:
		return nil, CompressionNone, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}
}

// decompress reverses compress. Failures are reported as ErrCorruptFrame.
func decompress(stored []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return stored, nil
	case CompressionLZ4:
		size, n := binary.Uvarint(stored)
		if n <= 0 || size > maxPayloadSize {
			return nil, fmt.Errorf("%w: bad lz4 block size", ErrCorruptFrame)
		}
		out := make([]byte, size)
		written, err := lz4.UncompressBlock(stored[n:], out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptFrame, err)
		}
		if uint64(written) != size {
			return nil, fmt.Errorf("%w: lz4 block size mismatch", ErrCorruptFrame)
		}
		return out, nil
	case CompressionZstd:
		_, dec, err := zstdCodec()
		if err != nil {
			return nil, err
		}
		out, err := dec.DecodeAll(stored, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptFrame, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %w: %d", ErrCorruptFrame, ErrUnknownCompression, c)
	}
}
