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

package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/vecspool/ai"
	"github.com/poiesic/vecspool/build"
	"github.com/poiesic/vecspool/core"
	"github.com/poiesic/vecspool/storage"
)

const (
	// DefaultMinScore is the lowest cosine similarity a document may have to be returned.
	DefaultMinScore float32 = 0.5

	// VerbatimBoost is added to the score of documents containing every query word.
	VerbatimBoost float32 = 0.3

	// candidateFactor widens the similarity query so boosted documents can
	// overtake ones ranked just above them.
	candidateFactor = 3
)

// Searcher runs semantic search over indexed documents.
type Searcher struct {
	repository storage.DocumentRepository
	embedder   ai.Embedder
	minScore   float32
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinScore sets the similarity threshold.
// Default is DefaultMinScore.
func WithMinScore(score float32) Option {
	return func(s *Searcher) error {
		if score < -1 || score > 1 {
			return ErrInvalidMinScore
		}
		s.minScore = score
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(repository storage.DocumentRepository, provider ai.AIProvider, opts ...Option) (*Searcher, error) {
	if repository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		repository: repository,
		embedder:   provider.Embedder(),
		minScore:   DefaultMinScore,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches for documents similar to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, nil)
}

// FindSimilarWithMonitor searches for documents similar to the query with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if maxHits <= 0 {
		return nil, ErrInvalidMaxHits
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	// Stored vectors are unit length, so the dot product is cosine similarity.
	matches, err := s.repository.FindSimilar(ctx, build.NormalizeVector(embedding), s.minScore, maxHits*candidateFactor)
	if err != nil {
		s.logger.Error("error querying for similar documents", "err", err)
		return nil, err
	}

	ids := make([]core.ID, len(matches))
	for i, match := range matches {
		ids[i] = match.Document.Id
	}
	monitor.AfterSemanticSearch(ids)

	queryWords := tokenizeAndFilter(query)
	for _, match := range matches {
		if containsAllWords(match.Document.Text, queryWords) {
			match.Score += VerbatimBoost
			monitor.VerbatimHit(match.Document)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > maxHits {
		matches = matches[:maxHits]
	}
	monitor.Finish(matches)

	s.logger.Debug("search complete", "query", query, "candidates", len(ids), "results", len(matches))
	return matches, nil
}
