package raster

import (
	"testing"

	"github.com/geowarp/warp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemDatasetReadWriteRoundTrip(t *testing.T) {
	d := NewMemDataset(4, 4, 1, warp.Byte)
	buf := []byte{1, 2, 3, 4}
	require.NoError(t, d.WriteBand(1, warp.Rect{X0: 0, Y0: 0, W: 2, H: 2}, buf, warp.Byte))

	out := make([]byte, 4)
	require.NoError(t, d.ReadBand(1, warp.Rect{X0: 0, Y0: 0, W: 2, H: 2}, out, warp.Byte))
	assert.Equal(t, buf, out)
}

func TestMemDatasetReadOutOfBoundsZeroFills(t *testing.T) {
	d := NewMemDataset(2, 2, 1, warp.Byte)
	out := make([]byte, 4)
	for i := range out {
		out[i] = 0xff
	}
	require.NoError(t, d.ReadBand(1, warp.Rect{X0: 1, Y0: 1, W: 2, H: 2}, out, warp.Byte))
	assert.Equal(t, byte(0), out[0])
	assert.Equal(t, byte(0), out[3])
}

func TestMemDatasetReadOnlyBandRejectsWrite(t *testing.T) {
	d := NewMemDataset(2, 2, 1, warp.Byte)
	d.SetReadOnly(1)
	assert.False(t, d.BandWritable(1))
	err := d.WriteBand(1, warp.Rect{X0: 0, Y0: 0, W: 1, H: 1}, []byte{1}, warp.Byte)
	assert.Error(t, err)
}

func TestMemDatasetRejectsMismatchedType(t *testing.T) {
	d := NewMemDataset(2, 2, 1, warp.Byte)
	err := d.ReadBand(1, warp.Rect{X0: 0, Y0: 0, W: 1, H: 1}, make([]byte, 4), warp.Float32)
	assert.Error(t, err)
}
