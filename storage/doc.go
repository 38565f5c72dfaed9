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

// Package storage provides the storage abstraction layer for vecspool.
//
// This package defines repository interfaces that decouple the index store
// from the build and search logic. The only backend shipped is BadgerDB
// (package storage/badger), which also runs in memory for tests.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: operations shared by all repositories (similarity search, transactions)
//   - DocumentRepository: documents and their embedding vectors
//   - BuildStateRepository: progress of index builds, keyed by vectors identifier
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	docs, err := badger.NewDocumentRepository(backend)
//
// Use in tests with in-memory storage:
//
//	docs, states, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
