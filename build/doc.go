// Package build embeds every stored document and writes the vectors back to
// the index, checkpointing each batch so an interrupted build can resume.
//
// A Builder replays the batches of a previous, unfinished run through a
// recovery.Reader before asking the embedding service for anything. Batches
// are only reused when their document IDs match the batch being built, so a
// changed corpus falls back to embedding from the first divergent batch on.
//
// Supporting pieces (retry with exponential backoff, vector normalization,
// document iteration, concurrent sub-batch embedding and progress
// reporting) are exported for reuse.
package build
