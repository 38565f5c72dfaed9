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

// Package checkpoint reads and writes embeddings checkpoint files.
//
// A checkpoint file lives at <dir>/<vectorsID> and is a sequence of frames,
// one per embedding batch, appended as a build progresses. A build that is
// interrupted leaves behind every frame it managed to flush, possibly
// followed by a partial frame.
//
// # Frame Format
//
//	[magic 'V' 'S'][compression:1][payload length:uvarint][crc32:4 LE][payload]
//
// The payload is a MUS-encoded core.EmbeddingBatch, optionally compressed
// with LZ4 or Zstandard. The checksum covers the stored payload bytes.
//
// Decode reads exactly one frame and never reads past its end, so it can be
// called repeatedly on the same reader. It returns io.EOF at a clean frame
// boundary, io.ErrUnexpectedEOF for a partial frame and ErrCorruptFrame for
// a frame that fails validation.
package checkpoint
