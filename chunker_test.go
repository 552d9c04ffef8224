package warp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDataset struct {
	width, height int
	band          []byte
}

func newMemDataset(w, h int, fill byte) *memDataset {
	b := make([]byte, w*h)
	for i := range b {
		b[i] = fill
	}
	return &memDataset{width: w, height: h, band: b}
}

func (m *memDataset) BandCount() int             { return 1 }
func (m *memDataset) Size() (int, int)           { return m.width, m.height }
func (m *memDataset) BandType(band int) DataType { return Byte }
func (m *memDataset) BandWritable(band int) bool { return true }
func (m *memDataset) ReadBand(band int, window Rect, buf []byte, dtype DataType) error {
	for row := 0; row < window.H; row++ {
		for col := 0; col < window.W; col++ {
			sx, sy := window.X0+col, window.Y0+row
			if sx < 0 || sx >= m.width || sy < 0 || sy >= m.height {
				buf[row*window.W+col] = 0
				continue
			}
			buf[row*window.W+col] = m.band[sy*m.width+sx]
		}
	}
	return nil
}
func (m *memDataset) WriteBand(band int, window Rect, buf []byte, dtype DataType) error {
	for row := 0; row < window.H; row++ {
		for col := 0; col < window.W; col++ {
			dx, dy := window.X0+col, window.Y0+row
			if dx < 0 || dx >= m.width || dy < 0 || dy >= m.height {
				continue
			}
			m.band[dy*m.width+dx] = buf[row*window.W+col]
		}
	}
	return nil
}

func identityTransformer(_ interface{}, dstToSrc bool, x, y, z []float64, success []bool) bool {
	for i := range success {
		success[i] = true
	}
	return true
}

type recordingKernel struct{ calls int }

func (k *recordingKernel) PerformWarp(call *KernelCall) error {
	k.calls++
	if call.Progress != nil {
		if !call.Progress(call.ProgressArg, call.ProgressBase+call.ProgressScale, "") {
			return WrapAborted("test kernel observed cancellation")
		}
	}
	for b := 0; b < call.BandCount; b++ {
		for row := 0; row < call.DstWindow.H; row++ {
			for col := 0; col < call.DstWindow.W; col++ {
				sx := call.DstWindow.X0 + col - call.SrcWindow.X0
				sy := call.DstWindow.Y0 + row - call.SrcWindow.Y0
				if sx < 0 || sx >= call.SrcWindow.W || sy < 0 || sy >= call.SrcWindow.H {
					continue
				}
				call.DstBands[b][row*call.DstWindow.W+col] = call.SrcBands[b][sy*call.SrcWindow.W+sx]
			}
		}
	}
	return nil
}

func TestChunkAndWarpIdentityNearestByteIdentical(t *testing.T) {
	src := newMemDataset(10, 10, 7)
	dst := newMemDataset(10, 10, 0)

	var op Operation
	kernel := &recordingKernel{}
	require.NoError(t, op.Initialize(Options{
		Src: src, Dst: dst,
		WorkingType: Byte, Resampling: Nearest,
		Transformer: identityTransformer,
		Kernel:      kernel,
		Progress:    noopProgress,
	}))

	require.NoError(t, op.ChunkAndWarp(Rect{X0: 0, Y0: 0, W: 10, H: 10}))
	assert.Equal(t, 1, kernel.calls)
	for _, v := range dst.band {
		assert.Equal(t, byte(7), v)
	}
}

func TestChunkAndWarpSplitsWhenOverBudget(t *testing.T) {
	src := newMemDataset(400, 400, 7)
	dst := newMemDataset(400, 400, 0)

	var op Operation
	kernel := &recordingKernel{}
	require.NoError(t, op.Initialize(Options{
		Src: src, Dst: dst,
		WorkingType: Byte, Resampling: Nearest,
		Transformer: identityTransformer,
		Kernel:      kernel,
		Progress:    noopProgress,
		// 400x400x1 byte = 160000 bytes/side, 320000 bytes total; a budget
		// just above the validation floor forces two levels of splitting,
		// down to four 200x200 chunks of 80000 bytes each.
		MemoryLimit: 100001,
	}))

	require.NoError(t, op.ChunkAndWarp(Rect{X0: 0, Y0: 0, W: 400, H: 400}))
	assert.Equal(t, 4, kernel.calls)
	for _, v := range dst.band {
		assert.Equal(t, byte(7), v)
	}
}

func TestChunkAndWarpProgressIsMonotonic(t *testing.T) {
	src := newMemDataset(4, 4, 1)
	dst := newMemDataset(4, 4, 0)

	var reported []float64
	var op Operation
	require.NoError(t, op.Initialize(Options{
		Src: src, Dst: dst,
		WorkingType: Byte, Resampling: Nearest,
		Transformer: identityTransformer,
		Kernel:      &recordingKernel{},
		MemoryLimit: 100001,
		Progress: func(_ interface{}, complete float64, message string) bool {
			reported = append(reported, complete)
			return true
		},
	}))
	require.NoError(t, op.ChunkAndWarp(Rect{X0: 0, Y0: 0, W: 4, H: 4}))

	for i := 1; i < len(reported); i++ {
		assert.GreaterOrEqual(t, reported[i], reported[i-1])
	}
}

func TestChunkAndWarpUninitializedOperationFails(t *testing.T) {
	var op Operation
	err := op.ChunkAndWarp(Rect{X0: 0, Y0: 0, W: 1, H: 1})
	require.Error(t, err)
	code, _ := CodeOf(err)
	assert.Equal(t, ConfigInvalid, code)
}

func TestChunkAndWarpAbortPropagatesFromProgress(t *testing.T) {
	src := newMemDataset(4, 4, 1)
	dst := newMemDataset(4, 4, 0)

	var op Operation
	require.NoError(t, op.Initialize(Options{
		Src: src, Dst: dst,
		WorkingType: Byte, Resampling: Nearest,
		Transformer: identityTransformer,
		Kernel: krFunc(func(call *KernelCall) error {
			if !call.Progress(call.ProgressArg, call.ProgressBase, "") {
				return WrapAborted("kernel observed cancellation")
			}
			return nil
		}),
		Progress: func(_ interface{}, complete float64, message string) bool { return false },
	}))

	err := op.ChunkAndWarp(Rect{X0: 0, Y0: 0, W: 4, H: 4})
	require.Error(t, err)
	code, _ := CodeOf(err)
	assert.Equal(t, Aborted, code)
}

type krFunc func(call *KernelCall) error

func (f krFunc) PerformWarp(call *KernelCall) error { return f(call) }
