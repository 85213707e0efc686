package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(256)
	ctx := context.Background()

	a, err := e.EmbedOne(ctx, "on 17-may-2018 atm withdrawal of 100 rs")
	require.NoError(t, err)
	b, err := e.EmbedOne(ctx, "on 17-may-2018 atm withdrawal of 100 rs")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 256)
	assert.Equal(t, 256, e.Dimension())
	assert.Equal(t, "hash", e.ModelName())
}

func TestHashEmbedder_BatchMatchesOne(t *testing.T) {
	e := NewHashEmbedder(0)
	ctx := context.Background()
	texts := []string{"salary credit", "atm withdrawal", ""}

	batch, err := e.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, len(texts))

	for i, text := range texts {
		one, err := e.EmbedOne(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, one, batch[i])
	}
	assert.Len(t, batch[0], DefaultHashDimension)
}

func TestHashEmbedder_SharedWordsScoreHigher(t *testing.T) {
	e := NewHashEmbedder(1024)
	ctx := context.Background()

	q, _ := e.EmbedOne(ctx, "atm withdrawal")
	near, _ := e.EmbedOne(ctx, "atm withdrawal at mg road branch")
	far, _ := e.EmbedOne(ctx, "salary credit from employer")

	assert.Greater(t, dot(q, near), dot(q, far))
}

func TestHashEmbedder_CanceledContext(t *testing.T) {
	e := NewHashEmbedder(8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.EmbedBatch(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}
