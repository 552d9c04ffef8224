package warp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitMaskGetSetRoundTrip(t *testing.T) {
	m := newBitMask(3, 3, true)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			assert.True(t, m.Get(x, y))
		}
	}
	m.Set(1, 1, false)
	assert.False(t, m.Get(1, 1))
	assert.True(t, m.Get(0, 0))
}

func TestCreateKernelMaskIsLazyAndIdempotent(t *testing.T) {
	var masks Masks

	require.NoError(t, createKernelMask(&masks, "BandSrcValid", 0, 5, 5, 5, 5, 2))
	require.NotNil(t, masks.BandSrcValid)
	require.NotNil(t, masks.BandSrcValid[0])
	assert.Nil(t, masks.BandSrcValid[1])

	first := masks.BandSrcValid[0]
	first.Set(0, 0, false)
	require.NoError(t, createKernelMask(&masks, "BandSrcValid", 0, 5, 5, 5, 5, 2))
	assert.Same(t, first, masks.BandSrcValid[0], "an already-allocated plane must not be reallocated")
	assert.False(t, first.Get(0, 0), "idempotent creation must not clobber existing contents")
}

func TestCreateKernelMaskEachName(t *testing.T) {
	var masks Masks
	require.NoError(t, createKernelMask(&masks, "UnifiedSrcValid", 0, 4, 4, 8, 8, 1))
	assert.NotNil(t, masks.UnifiedSrcValid)

	require.NoError(t, createKernelMask(&masks, "UnifiedSrcDensity", 0, 4, 4, 8, 8, 1))
	assert.NotNil(t, masks.UnifiedSrcDensity)
	assert.Len(t, masks.UnifiedSrcDensity.Values, 16)

	require.NoError(t, createKernelMask(&masks, "DstValid", 0, 4, 4, 8, 8, 1))
	assert.NotNil(t, masks.DstValid)
	assert.Equal(t, 8, masks.DstValid.W)

	require.NoError(t, createKernelMask(&masks, "DstDensity", 0, 4, 4, 8, 8, 1))
	assert.NotNil(t, masks.DstDensity)
}

func TestCreateKernelMaskUnknownNameFails(t *testing.T) {
	var masks Masks
	err := createKernelMask(&masks, "NotARealMask", 0, 1, 1, 1, 1, 1)
	require.Error(t, err)
	code, _ := CodeOf(err)
	assert.Equal(t, Internal, code)
}
