package warp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// aabbTransformer maps every sample point onto the edge of a fixed
// axis-aligned bounding box in source space, letting a test dictate
// computeSourceWindow's minX/maxX/minY/maxY inputs directly instead of
// deriving them from a real coordinate transform.
func aabbTransformer(minX, minY, maxX, maxY float64) TransformFunc {
	return func(_ interface{}, dstToSrc bool, x, y, z []float64, success []bool) bool {
		n := len(x)
		for i := 0; i < n; i++ {
			switch i % 4 {
			case 0:
				x[i], y[i] = minX, minY
			case 1:
				x[i], y[i] = maxX, minY
			case 2:
				x[i], y[i] = minX, maxY
			case 3:
				x[i], y[i] = maxX, maxY
			}
			success[i] = true
		}
		return true
	}
}

func TestComputeSourceWindowLiteralCubicScenario(t *testing.T) {
	// spec scenario 6: cubic resampling, inverse-transform AABB
	// [100.3,200.7]x[50.2,60.9], source size 300x300, expect
	// sx=102, sy=52, sw=101, sh=11.
	o := validOptions()
	o.Src.(*fakeDataset).width, o.Src.(*fakeDataset).height = 300, 300
	o.Resampling = Cubic
	o.Transformer = aabbTransformer(100.3, 50.2, 200.7, 60.9)

	var op Operation
	require.NoError(t, op.Initialize(o))

	win, err := op.computeSourceWindow(Rect{X0: 0, Y0: 0, W: 10, H: 10})
	require.NoError(t, err)
	assert.Equal(t, Rect{X0: 102, Y0: 52, W: 101, H: 11}, win)
}

func TestComputeSourceWindowClampsToSourceBounds(t *testing.T) {
	o := validOptions()
	o.Src.(*fakeDataset).width, o.Src.(*fakeDataset).height = 50, 50
	o.Resampling = Nearest
	o.Transformer = aabbTransformer(-5, -5, 45, 45)

	var op Operation
	require.NoError(t, op.Initialize(o))

	win, err := op.computeSourceWindow(Rect{X0: 0, Y0: 0, W: 10, H: 10})
	require.NoError(t, err)
	assert.LessOrEqual(t, win.X0+win.W, 50)
	assert.LessOrEqual(t, win.Y0+win.H, 50)
	assert.GreaterOrEqual(t, win.X0, 0)
	assert.GreaterOrEqual(t, win.Y0, 0)
}

func TestComputeSourceWindowFailsOnWholeBatchTransformFailure(t *testing.T) {
	o := validOptions()
	o.Transformer = func(_ interface{}, dstToSrc bool, x, y, z []float64, success []bool) bool {
		return false
	}
	var op Operation
	require.NoError(t, op.Initialize(o))

	_, err := op.computeSourceWindow(Rect{X0: 0, Y0: 0, W: 10, H: 10})
	require.Error(t, err)
	code, _ := CodeOf(err)
	assert.Equal(t, TransformFailure, code)
}

func TestComputeSourceWindowFailsWhenTooManyPointsFail(t *testing.T) {
	o := validOptions()
	o.Transformer = func(_ interface{}, dstToSrc bool, x, y, z []float64, success []bool) bool {
		for i := range success {
			success[i] = false
		}
		success[0] = true
		return true
	}
	var op Operation
	require.NoError(t, op.Initialize(o))

	_, err := op.computeSourceWindow(Rect{X0: 0, Y0: 0, W: 10, H: 10})
	require.Error(t, err)
	code, _ := CodeOf(err)
	assert.Equal(t, TransformFailure, code)
}

func TestComputeSourceWindowToleratesFewFailures(t *testing.T) {
	o := validOptions()
	calls := 0
	o.Transformer = func(_ interface{}, dstToSrc bool, x, y, z []float64, success []bool) bool {
		calls++
		for i := range x {
			x[i], y[i] = float64(i), float64(i)
			success[i] = true
		}
		success[0] = false
		return true
	}
	var op Operation
	require.NoError(t, op.Initialize(o))

	_, err := op.computeSourceWindow(Rect{X0: 0, Y0: 0, W: 10, H: 10})
	require.NoError(t, err)
}
