// Package mock provides test double implementations of AI service interfaces.
//
// MockEmbedder returns deterministic vectors derived from a hash of the input
// text, so the same text always embeds to the same vector. Custom behavior can
// be injected through function fields, and call counts are tracked for
// assertions.
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service unavailable")
//	}
//
//	provider := mock.NewMockProviderWithEmbedder(embedder)
package mock
