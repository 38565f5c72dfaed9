package build

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrBuildStateRepositoryRequired is returned when a build state repository is not provided.
	ErrBuildStateRepositoryRequired = errors.New("build state repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrCheckpointDirRequired is returned when no checkpoint directory is configured.
	ErrCheckpointDirRequired = errors.New("checkpoint directory required")

	// ErrInvalidConfig is returned when a build configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid build configuration")

	// ErrEmbeddingCountMismatch is returned when the embedder returns the wrong number of vectors.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// ErrRecoveryFailed wraps errors reading a previous checkpoint.
	ErrRecoveryFailed = errors.New("checkpoint recovery failed")
)
