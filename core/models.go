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

package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for documents.
// It is derived from document content so re-ingesting the same text is a no-op.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is a unit of text indexed by the vector index.
// Vector is empty until a build has embedded the document.
type Document struct {
	Id         ID
	Text       string
	Timestamp  time.Time         // When the document was authored or observed
	InsertedAt time.Time         // When the document was inserted into the database
	UpdatedAt  time.Time         // When the document was last updated
	Vector     []float32         // Embedding vector (populated by builds)
	Metadata   map[string]string // Optional metadata (e.g., "source", "line")
}

// EmbeddingBatch is one unit of a checkpoint file: the vectors produced for
// a contiguous batch of documents, in document order.
type EmbeddingBatch struct {
	Ids     []ID
	Vectors [][]float32
}

// Len returns the number of embeddings in the batch.
func (b *EmbeddingBatch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Ids)
}

// Dimensions returns the dimension of the first vector, or 0 for an empty batch.
func (b *EmbeddingBatch) Dimensions() int {
	if b == nil || len(b.Vectors) == 0 {
		return 0
	}
	return len(b.Vectors[0])
}

// SameIDs reports whether the batch covers exactly the given IDs in the same order.
func (b *EmbeddingBatch) SameIDs(ids []ID) bool {
	if b.Len() != len(ids) {
		return false
	}
	for i, id := range ids {
		if b.Ids[i] != id {
			return false
		}
	}
	return true
}

// BuildState records the progress of an index build for one embedding configuration.
type BuildState struct {
	VectorsID string // Identifier of the checkpoint file for the build
	Batches   int    // Batches written to the checkpoint so far
	Documents int    // Documents embedded so far
	Completed bool
	UpdatedAt time.Time
}

// SearchResult represents a search result with the full document and relevance score.
type SearchResult struct {
	Document *Document
	Score    float32
}
