package regions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandom(t *testing.T) {
	sizes := map[string]int{"chr1": 10_000, "chr2": 5_000, "chrM": 50}

	set, err := Random(500, 100, sizes, 42)
	require.NoError(t, err)
	require.Len(t, set, 500)
	require.NoError(t, set.Validate(0))

	for _, r := range set {
		assert.NotEqual(t, "chrM", r.Chrom, "chromosome shorter than width must be skipped")
		assert.Equal(t, 100, r.Len())
		assert.LessOrEqual(t, r.End, sizes[r.Chrom])
	}
}

func TestRandom_Deterministic(t *testing.T) {
	sizes := map[string]int{"chr1": 1_000_000, "chr2": 500_000}

	a, err := Random(50, 200, sizes, 7)
	require.NoError(t, err)
	b, err := Random(50, 200, sizes, 7)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRandom_Errors(t *testing.T) {
	sizes := map[string]int{"chr1": 100}

	_, err := Random(0, 10, sizes, 1)
	assert.ErrorIs(t, err, ErrInvalidRegions)
	_, err = Random(10, 0, sizes, 1)
	assert.ErrorIs(t, err, ErrInvalidRegions)
	_, err = Random(10, 1000, sizes, 1)
	assert.ErrorIs(t, err, ErrInvalidRegions)
}
