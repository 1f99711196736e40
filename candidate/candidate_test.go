package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministicForSameSeed(t *testing.T) {
	a := Generate(42, 10, 1.29, 5, 1.29)
	b := Generate(42, 10, 1.29, 5, 1.29)
	assert.Equal(t, a, b)
}

func TestGenerateDiffersAcrossSeeds(t *testing.T) {
	a := Generate(1, 10, 1.29, 5, 1.29)
	b := Generate(2, 10, 1.29, 5, 1.29)
	assert.NotEqual(t, a.UV, b.UV)
}

func TestGenerateUVWithinRange(t *testing.T) {
	half := 1.29 / 2
	bank := Generate(7, 200, 1.29, 3, 1.0)
	for _, uv := range bank.UV {
		for _, v := range uv {
			assert.GreaterOrEqual(t, v, -half)
			assert.LessOrEqual(t, v, half)
		}
	}
}

func TestGenerateThresholdsEvenlySpaced(t *testing.T) {
	bank := Generate(1, 1, 1.29, 5, 2.0)
	require.Len(t, bank.T, 5)
	assert.InDelta(t, -1.0, bank.T[0], 1e-9)
	assert.InDelta(t, 1.0, bank.T[4], 1e-9)
	step := bank.T[1] - bank.T[0]
	for i := 1; i < len(bank.T); i++ {
		assert.InDelta(t, step, bank.T[i]-bank.T[i-1], 1e-9)
	}
}

func TestGenerateSingleThreshold(t *testing.T) {
	bank := Generate(1, 1, 1.29, 1, 2.0)
	require.Len(t, bank.T, 1)
	assert.InDelta(t, -1.0, bank.T[0], 1e-9)
}

func TestUVRangeInPixels(t *testing.T) {
	assert.InDelta(t, 2.58, UVRangeInPixels(1.29, 2), 1e-9)
}
