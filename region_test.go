package warp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarpRegionInitDestFloat32Literal(t *testing.T) {
	// spec scenario 5: INIT_DEST="3.5,2.0", Float32, 1 band, 2x2 dest: the
	// imaginary component is discarded for a real working type, so every
	// pixel must equal 3.5 before the kernel runs.
	src := &fakeDataset{bandCount: 1, width: 2, height: 2}
	dst := newMemDatasetF32(2, 2)

	var seenBeforeKernel []float32
	kernel := krFunc(func(call *KernelCall) error {
		ws := call.WorkingType.Size()
		for i := 0; i+ws <= len(call.DstBands[0]); i += ws {
			r, _ := decodeWord(call.WorkingType, call.DstBands[0][i:i+ws])
			seenBeforeKernel = append(seenBeforeKernel, float32(r))
		}
		return nil
	})

	var op Operation
	require.NoError(t, op.Initialize(Options{
		Src: src, Dst: dst,
		WorkingType: Float32, Resampling: Nearest,
		Transformer: noopTransformer,
		Kernel:      kernel,
		Progress:    noopProgress,
		WarpOptions: map[string]string{"INIT_DEST": "3.5,2.0"},
	}))

	require.NoError(t, op.ChunkAndWarp(Rect{X0: 0, Y0: 0, W: 2, H: 2}))
	require.Len(t, seenBeforeKernel, 4)
	for _, v := range seenBeforeKernel {
		assert.Equal(t, float32(3.5), v)
	}
}

func TestWarpRegionInitDestNoDataLiteral(t *testing.T) {
	src := &fakeDataset{bandCount: 1, width: 2, height: 2}
	dst := newMemDatasetF32(2, 2)

	var seen []float32
	kernel := krFunc(func(call *KernelCall) error {
		ws := call.WorkingType.Size()
		r, _ := decodeWord(call.WorkingType, call.DstBands[0][0:ws])
		seen = append(seen, float32(r))
		return nil
	})

	var op Operation
	require.NoError(t, op.Initialize(Options{
		Src: src, Dst: dst,
		WorkingType: Float32, Resampling: Nearest,
		Transformer: noopTransformer,
		Kernel:      kernel,
		Progress:    noopProgress,
		DstNoData:   NoData{Real: []float64{-9999}, Imag: []float64{0}},
		WarpOptions: map[string]string{"INIT_DEST": "NO_DATA"},
	}))

	require.NoError(t, op.ChunkAndWarp(Rect{X0: 0, Y0: 0, W: 2, H: 2}))
	require.Len(t, seen, 1)
	assert.Equal(t, float32(-9999), seen[0])
}

// memDatasetF32 is a minimal float32-backed RasterDataset used only to give
// warpRegion something to read/write back to.
type memDatasetF32 struct {
	width, height int
	band          []byte
}

func newMemDatasetF32(w, h int) *memDatasetF32 {
	return &memDatasetF32{width: w, height: h, band: make([]byte, w*h*4)}
}

func (m *memDatasetF32) BandCount() int             { return 1 }
func (m *memDatasetF32) Size() (int, int)           { return m.width, m.height }
func (m *memDatasetF32) BandType(band int) DataType { return Float32 }
func (m *memDatasetF32) BandWritable(band int) bool { return true }
func (m *memDatasetF32) ReadBand(band int, window Rect, buf []byte, dtype DataType) error {
	copy(buf, m.band)
	return nil
}
func (m *memDatasetF32) WriteBand(band int, window Rect, buf []byte, dtype DataType) error {
	copy(m.band, buf)
	return nil
}
