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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidBatch indicates an EmbeddingBatch failed validation.
	ErrInvalidBatch = errors.New("invalid embedding batch")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyBatch indicates a batch has no embeddings.
	ErrEmptyBatch = errors.New("batch cannot be empty")

	// ErrLengthMismatch indicates a batch has a different number of IDs and vectors.
	ErrLengthMismatch = errors.New("id and vector counts differ")

	// ErrDimensionMismatch indicates vectors in a batch have differing dimensions.
	ErrDimensionMismatch = errors.New("vector dimensions differ")
)
