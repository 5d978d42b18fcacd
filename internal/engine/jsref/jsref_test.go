package jsref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJE43/swipematch/internal/engine"
)

func TestEvaluatorGolden(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	v, err := e.CurrentValue(42, 0, 1, 1019)
	require.NoError(t, err)
	assert.Equal(t, int64(258), v)
}

func TestVerifyMatchesGo(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	seeds := []int64{0, 1, 42, -5, 1 << 31, 1<<32 + 17, 2147483647}
	for _, seed := range seeds {
		for cursor := int64(0); cursor < 50; cursor++ {
			r, err := e.Verify(seed, cursor, 1, 1019)
			require.NoError(t, err)
			assert.True(t, r.Match, "seed=%d cursor=%d go=%d js=%d", seed, cursor, r.Go, r.JS)
		}
	}
}

func TestVerifyInvalidBounds(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	_, err = e.Verify(1, 1, 10, 10)
	assert.ErrorIs(t, err, engine.ErrInvalidBounds)
}
