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

package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/vecspool/core"
	"github.com/poiesic/vecspool/storage"
)

// BuildStateRepository implements storage.BuildStateRepository for BadgerDB.
type BuildStateRepository struct {
	backend *Backend
}

var _ storage.BuildStateRepository = (*BuildStateRepository)(nil)

// NewBuildStateRepository creates a new BuildStateRepository.
func NewBuildStateRepository(backend *Backend) *BuildStateRepository {
	return &BuildStateRepository{
		backend: backend,
	}
}

// SaveBuildState persists the state of a build.
func (r *BuildStateRepository) SaveBuildState(ctx context.Context, state *core.BuildState) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		state.UpdatedAt = time.Now().UTC()
		key := makeBuildStateKey(state.VectorsID)
		if err := tx.Set(key, storage.MarshalBuildState(state)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadBuildState retrieves the build state for a vectors identifier.
// Returns nil, nil if no state exists.
func (r *BuildStateRepository) LoadBuildState(ctx context.Context, vectorsID string) (*core.BuildState, error) {
	var state *core.BuildState
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeBuildStateKey(vectorsID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			state, unmarshalErr = storage.UnmarshalBuildState(val)
			return unmarshalErr
		})
	}, false)

	return state, err
}

// DeleteBuildState removes the build state for a vectors identifier.
func (r *BuildStateRepository) DeleteBuildState(ctx context.Context, vectorsID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeBuildStateKey(vectorsID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
