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

package build

import (
	"context"

	"github.com/poiesic/vecspool/core"
	"github.com/poiesic/vecspool/storage"
)

const (
	// DefaultBatchSize is the default number of documents per batch
	DefaultBatchSize = 100
)

// DocumentIterator pages through all stored documents in ascending ID order.
type DocumentIterator struct {
	repo      storage.DocumentRepository
	batchSize int
}

// NewDocumentIterator creates a new document iterator.
// batchSize: number of documents per batch; values <= 0 use DefaultBatchSize
func NewDocumentIterator(repo storage.DocumentRepository, batchSize int) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &DocumentIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn with consecutive batches of documents. Every batch except
// possibly the last holds exactly batchSize documents, so batch boundaries
// are stable across runs over the same corpus.
// Iteration stops on the first error from fn or on context cancellation.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func([]*core.Document) error) error {
	var after core.ID
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		docs, err := it.repo.ListDocuments(ctx, after, it.batchSize)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}

		if err := fn(docs); err != nil {
			return err
		}

		if len(docs) < it.batchSize {
			return nil
		}
		after = docs[len(docs)-1].Id
	}
}
