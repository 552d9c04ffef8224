// Package transform provides warp.TransformFunc implementations mapping
// between destination and source pixel space.
package transform

import "github.com/geowarp/warp"

// Affine is a 2D affine coordinate transform, invertible in closed form,
// of the classic GDAL six-coefficient geotransform shape:
//
//	sx = C[0] + dx*C[1] + dy*C[2]
//	sy = C[3] + dx*C[4] + dy*C[5]
//
// Src and Dst carry the same six coefficients for their respective
// pixel-to-georeferenced mappings; TransformFunc composes Dst's forward
// mapping with Src's inverse to go from destination pixel space to source
// pixel space, which is the only direction warp.TransformFunc is ever
// invoked in.
type Affine struct {
	// Src and Dst are pixel-to-georeferenced affine coefficients,
	// [origin_x, px_width, row_skew, origin_y, col_skew, px_height].
	Src, Dst [6]float64

	srcInv [6]float64
	ready  bool
}

// NewIdentity returns an Affine mapping destination pixels directly onto
// source pixels of the same raster, useful for round-trip tests.
func NewIdentity() *Affine {
	a := &Affine{
		Src: [6]float64{0, 1, 0, 0, 0, 1},
		Dst: [6]float64{0, 1, 0, 0, 0, 1},
	}
	a.prepare()
	return a
}

func invert6(c [6]float64) [6]float64 {
	det := c[1]*c[5] - c[2]*c[4]
	if det == 0 {
		det = 1e-30
	}
	inv := [6]float64{}
	inv[1] = c[5] / det
	inv[2] = -c[2] / det
	inv[4] = -c[4] / det
	inv[5] = c[1] / det
	inv[0] = -c[0]*inv[1] - c[3]*inv[2]
	inv[3] = -c[0]*inv[4] - c[3]*inv[5]
	return inv
}

func (a *Affine) prepare() {
	a.srcInv = invert6(a.Src)
	a.ready = true
}

func apply(c [6]float64, x, y float64) (float64, float64) {
	return c[0] + x*c[1] + y*c[2], c[3] + x*c[4] + y*c[5]
}

// TransformFunc satisfies warp.TransformFunc. arg is ignored; z is passed
// through unchanged, since a planar affine transform carries no elevation
// component.
func (a *Affine) TransformFunc(_ interface{}, dstToSrc bool, x, y, z []float64, success []bool) bool {
	if !a.ready {
		a.prepare()
	}
	if !dstToSrc {
		return false
	}
	for i := range x {
		gx, gy := apply(a.Dst, x[i], y[i])
		sx, sy := apply(a.srcInv, gx, gy)
		x[i], y[i] = sx, sy
		success[i] = true
	}
	_ = z
	return true
}

var _ warp.TransformFunc = (&Affine{}).TransformFunc
