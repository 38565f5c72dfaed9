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

import (
	"fmt"
	"time"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Timestamp must not be in the future
//
// NOT validated (populated by builds):
//   - Vector (can be empty until a build embeds the document)
//   - ID (assigned from content on insert)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyText)
	}

	if !IsValidTimestamp(doc.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateBatch validates an EmbeddingBatch.
//
// Validation rules:
//   - Batch must contain at least one embedding
//   - Ids and Vectors must have the same length
//   - All vectors must have the same dimension
func ValidateBatch(batch *EmbeddingBatch) error {
	if batch == nil {
		return fmt.Errorf("%w: batch is nil", ErrInvalidBatch)
	}

	if len(batch.Ids) == 0 && len(batch.Vectors) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidBatch, ErrEmptyBatch)
	}

	if len(batch.Ids) != len(batch.Vectors) {
		return fmt.Errorf("%w: %w (%d ids, %d vectors)", ErrInvalidBatch, ErrLengthMismatch,
			len(batch.Ids), len(batch.Vectors))
	}

	dims := len(batch.Vectors[0])
	for i, v := range batch.Vectors {
		if len(v) != dims {
			return fmt.Errorf("%w: %w at index %d (want %d, got %d)", ErrInvalidBatch, ErrDimensionMismatch,
				i, dims, len(v))
		}
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
