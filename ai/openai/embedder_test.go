package openai

import (
	"testing"

	"github.com/poiesic/vecspool/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, newLimiter(0))
	assert.Nil(t, newLimiter(-3))

	limiter := newLimiter(0.5)
	require.NotNil(t, limiter)
	assert.Equal(t, 1, limiter.Burst())

	limiter = newLimiter(20)
	require.NotNil(t, limiter)
	assert.Equal(t, 20, limiter.Burst())
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(ai.NewConfig(ai.WithEmbeddingModel("")))
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	// Construction does not contact the service.
	provider, err := NewProvider(ai.NewConfig(ai.WithEmbeddingHost("http://127.0.0.1:1")))
	require.NoError(t, err)
	require.NotNil(t, provider.Embedder())
	assert.NoError(t, provider.Close())
}
