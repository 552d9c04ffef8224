package warp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDataset struct {
	bandCount     int
	width, height int
	bandType      DataType
	writable      map[int]bool
}

func (f *fakeDataset) BandCount() int             { return f.bandCount }
func (f *fakeDataset) Size() (int, int)           { return f.width, f.height }
func (f *fakeDataset) BandType(band int) DataType { return f.bandType }
func (f *fakeDataset) BandWritable(band int) bool { return f.writable == nil || f.writable[band] }
func (f *fakeDataset) ReadBand(band int, window Rect, buf []byte, dtype DataType) error {
	return nil
}
func (f *fakeDataset) WriteBand(band int, window Rect, buf []byte, dtype DataType) error {
	return nil
}

func noopTransformer(_ interface{}, dstToSrc bool, x, y, z []float64, success []bool) bool {
	for i := range success {
		success[i] = true
	}
	return true
}

func noopProgress(_ interface{}, complete float64, message string) bool { return true }

func validOptions() Options {
	src := &fakeDataset{bandCount: 1, width: 100, height: 100}
	dst := &fakeDataset{bandCount: 1, width: 100, height: 100}
	return Options{
		Src:         src,
		Dst:         dst,
		WorkingType: Byte,
		Resampling:  Nearest,
		Transformer: noopTransformer,
		Progress:    noopProgress,
	}
}

func TestInitializeDefaultsBandMappingAndMemoryLimit(t *testing.T) {
	var op Operation
	require.NoError(t, op.Initialize(validOptions()))

	got, ok := op.Options()
	require.True(t, ok)
	assert.Equal(t, []int{1}, got.Bands.Src)
	assert.Equal(t, []int{1}, got.Bands.Dst)
	assert.Equal(t, float64(defaultMemoryLimit), got.MemoryLimit)
}

func TestInitializeRejectsMissingDatasets(t *testing.T) {
	var op Operation
	o := validOptions()
	o.Src = nil
	err := op.Initialize(o)
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ConfigInvalid, code)

	_, ok = op.Options()
	assert.False(t, ok, "failed Initialize must leave the Operation wiped")
}

func TestInitializeDefaultsUnsetWorkingTypeToFirstDstBand(t *testing.T) {
	var op Operation
	o := validOptions()
	o.WorkingType = Unknown
	o.Dst.(*fakeDataset).bandType = Float32
	require.NoError(t, op.Initialize(o))

	got, ok := op.Options()
	require.True(t, ok)
	assert.Equal(t, Float32, got.WorkingType)
}

func TestInitializeRejectsUnsupportedWorkingType(t *testing.T) {
	var op Operation
	o := validOptions()
	o.WorkingType = DataType(999)
	err := op.Initialize(o)
	require.Error(t, err)
	code, _ := CodeOf(err)
	assert.Equal(t, ConfigInvalid, code)
}

func TestInitializeRejectsBandMappingOutOfRange(t *testing.T) {
	var op Operation
	o := validOptions()
	o.Bands = BandMapping{Src: []int{1}, Dst: []int{5}}
	err := op.Initialize(o)
	require.Error(t, err)
}

func TestInitializeRejectsReadOnlyDestinationBand(t *testing.T) {
	var op Operation
	o := validOptions()
	o.Dst.(*fakeDataset).writable = map[int]bool{1: false}
	err := op.Initialize(o)
	require.Error(t, err)
}

func TestInitializeRejectsAsymmetricNoData(t *testing.T) {
	var op Operation
	o := validOptions()
	o.SrcNoData = NoData{Real: []float64{0}}
	err := op.Initialize(o)
	require.Error(t, err)
}

func TestWipeIsIdempotentAndClearsProgress(t *testing.T) {
	var op Operation
	require.NoError(t, op.Initialize(validOptions()))
	op.progressBase, op.progressScale = 0.3, 0.2
	op.Wipe()
	op.Wipe()
	_, ok := op.Options()
	assert.False(t, ok)
	assert.Equal(t, 0.0, op.progressBase)
	assert.Equal(t, 1.0, op.progressScale)
}
