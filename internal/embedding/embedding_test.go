package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedDeterministic(t *testing.T) {
	a := Embed("oauth refresh token rotation")
	b := Embed("oauth refresh token rotation")
	require.Equal(t, a, b)
}

func TestEmbedUnitNorm(t *testing.T) {
	v := Embed("some problem description")
	var sumSquares float64
	for _, f := range v {
		sumSquares += float64(f) * float64(f)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-4)
}

func TestEmbedDimension(t *testing.T) {
	v := Embed("x")
	assert.Len(t, v, Dimension)
}

func TestCosineIdentity(t *testing.T) {
	v := Embed("identical")
	sim, err := Cosine(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-5)
}

func TestCosineSymmetric(t *testing.T) {
	a := Embed("alpha")
	b := Embed("beta")
	ab, err := Cosine(a, b)
	require.NoError(t, err)
	ba, err := Cosine(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestCosineOpposite(t *testing.T) {
	a := Embed("vector")
	neg := make([]float32, len(a))
	for i, f := range a {
		neg[i] = -f
	}
	sim, err := Cosine(a, neg)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, sim, 1e-5)
}

func TestCosineZeroVector(t *testing.T) {
	a := Embed("vector")
	zero := make([]float32, len(a))
	sim, err := Cosine(a, zero)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := Cosine(make([]float32, 3), make([]float32, 5))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
