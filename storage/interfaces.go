package storage

import (
	"context"

	"github.com/poiesic/vecspool/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds documents similar to the given vector.
	// Returns documents with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases resources held by the repository.
	Close() error
}

// DocumentRepository provides operations for managing documents.
type DocumentRepository interface {
	Repository

	// AddDocuments adds one or more documents to storage.
	// IDs are derived from document text; documents whose ID already exists are skipped.
	// Sets InsertedAt and UpdatedAt.
	// Returns only the documents that were newly stored.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// UpdateDocuments updates existing documents.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// DeleteDocuments removes documents by their IDs.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// ListDocuments returns up to limit documents with ID strictly greater
	// than after, in ascending ID order. Pass 0 to start from the beginning.
	ListDocuments(ctx context.Context, after core.ID, limit int) ([]*core.Document, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)
}

// BuildStateRepository persists index build progress.
type BuildStateRepository interface {
	// SaveBuildState persists the state of a build, keyed by its VectorsID.
	SaveBuildState(ctx context.Context, state *core.BuildState) error

	// LoadBuildState retrieves the build state for a vectors identifier.
	// Returns nil, nil if no state exists.
	LoadBuildState(ctx context.Context, vectorsID string) (*core.BuildState, error)

	// DeleteBuildState removes the build state for a vectors identifier.
	// Deleting a missing state is not an error.
	DeleteBuildState(ctx context.Context, vectorsID string) error
}
