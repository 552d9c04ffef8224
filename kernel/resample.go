// Package kernel provides warp.Kernel implementations: the per-pixel
// resampling step invoked once per in-budget chunk with fully resident
// source and destination buffers.
package kernel

import (
	"math"

	"github.com/geowarp/warp"
)

// Resampler is a warp.Kernel performing nearest-neighbour, bilinear or
// cubic convolution resampling over real-valued working types. It reads
// pixels through the call's SrcBands/DstBands byte planes via the working
// type's codec and honors BandSrcValid masks when present: a destination
// pixel whose resampling footprint has no valid source contribution is
// left untouched (whatever the Region Executor's INIT_DEST/read-back
// staged there).
type Resampler struct{}

func (Resampler) PerformWarp(call *warp.KernelCall) error {
	dstW, dstH := call.DstWindow.W, call.DstWindow.H
	srcW, srcH := call.SrcWindow.W, call.SrcWindow.H
	n := dstW * dstH
	if n == 0 {
		return nil
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	ok := make([]bool, n)
	i := 0
	for row := 0; row < dstH; row++ {
		for col := 0; col < dstW; col++ {
			xs[i] = float64(call.DstWindow.X0+col) + 0.5
			ys[i] = float64(call.DstWindow.Y0+row) + 0.5
			i++
		}
	}
	if !call.Transformer(call.TransformerArg, true, xs, ys, zs, ok) {
		return warp.WrapTransformFailure("resampling: inverse transform failed")
	}

	lastReport := -1.0
	for idx := 0; idx < n; idx++ {
		row, col := idx/dstW, idx%dstW
		if !ok[idx] {
			continue
		}
		// Translate into source-window-local fractional coordinates.
		sx := xs[idx] - float64(call.SrcWindow.X0) - 0.5
		sy := ys[idx] - float64(call.SrcWindow.Y0) - 0.5

		for b := 0; b < call.BandCount; b++ {
			v, valid := sampleBand(call, b, sx, sy, srcW, srcH)
			if !valid {
				continue
			}
			word, err := warp.EncodeWorkingWord(call.WorkingType, v, 0)
			if err != nil {
				return err
			}
			ws := call.WorkingType.Size()
			off := (row*dstW + col) * ws
			copy(call.DstBands[b][off:off+ws], word)
		}

		if call.Progress != nil {
			frac := float64(idx+1) / float64(n)
			if frac-lastReport >= 0.01 || idx == n-1 {
				lastReport = frac
				global := call.ProgressBase + frac*call.ProgressScale
				if !call.Progress(call.ProgressArg, global, "") {
					return warp.WrapAborted("resampling: progress callback requested abort")
				}
			}
		}
	}
	return nil
}

// sampleBand resamples one band at source-window-local coordinates
// (sx, sy) using call.Resampling. It returns valid=false if every pixel
// in the footprint is masked invalid by a configured BandSrcValid plane.
func sampleBand(call *warp.KernelCall, band int, sx, sy float64, srcW, srcH int) (float64, bool) {
	switch call.Resampling {
	case warp.Bilinear:
		return bilinear(call, band, sx, sy, srcW, srcH)
	case warp.Cubic:
		return cubic(call, band, sx, sy, srcW, srcH)
	default:
		return nearest(call, band, sx, sy, srcW, srcH)
	}
}

func validAt(call *warp.KernelCall, band, x, y int) bool {
	if call.Masks.BandSrcValid == nil || call.Masks.BandSrcValid[band] == nil {
		return true
	}
	return call.Masks.BandSrcValid[band].Get(x, y)
}

func clampPixel(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func readPixel(call *warp.KernelCall, band, x, y, srcW, srcH int) float64 {
	x = clampPixel(x, 0, srcW-1)
	y = clampPixel(y, 0, srcH-1)
	ws := call.WorkingType.Size()
	off := (y*srcW + x) * ws
	r, _ := warp.DecodeWorkingWord(call.WorkingType, call.SrcBands[band][off:off+ws])
	return r
}

func nearest(call *warp.KernelCall, band int, sx, sy float64, srcW, srcH int) (float64, bool) {
	x := clampPixel(int(math.Floor(sx)), 0, srcW-1)
	y := clampPixel(int(math.Floor(sy)), 0, srcH-1)
	if !validAt(call, band, x, y) {
		return 0, false
	}
	return readPixel(call, band, x, y, srcW, srcH), true
}

func bilinear(call *warp.KernelCall, band int, sx, sy float64, srcW, srcH int) (float64, bool) {
	x0 := int(math.Floor(sx - 0.5))
	y0 := int(math.Floor(sy - 0.5))
	fx := (sx - 0.5) - float64(x0)
	fy := (sy - 0.5) - float64(y0)

	anyValid := false
	var sum, wsum float64
	for dy := 0; dy <= 1; dy++ {
		for dx := 0; dx <= 1; dx++ {
			x, y := x0+dx, y0+dy
			cx, cy := clampPixel(x, 0, srcW-1), clampPixel(y, 0, srcH-1)
			if !validAt(call, band, cx, cy) {
				continue
			}
			wx := 1 - math.Abs(float64(dx)-fx)
			wy := 1 - math.Abs(float64(dy)-fy)
			w := wx * wy
			sum += w * readPixel(call, band, cx, cy, srcW, srcH)
			wsum += w
			anyValid = true
		}
	}
	if !anyValid || wsum == 0 {
		return 0, false
	}
	return sum / wsum, true
}

// cubicWeight is the Catmull-Rom cubic convolution kernel with A = -0.5.
func cubicWeight(t float64) float64 {
	const a = -0.5
	t = math.Abs(t)
	switch {
	case t <= 1:
		return (a+2)*t*t*t - (a+3)*t*t + 1
	case t < 2:
		return a*t*t*t - 5*a*t*t + 8*a*t - 4*a
	default:
		return 0
	}
}

func cubic(call *warp.KernelCall, band int, sx, sy float64, srcW, srcH int) (float64, bool) {
	x0 := int(math.Floor(sx - 0.5))
	y0 := int(math.Floor(sy - 0.5))
	fx := (sx - 0.5) - float64(x0)
	fy := (sy - 0.5) - float64(y0)

	anyValid := false
	var sum, wsum float64
	for dy := -1; dy <= 2; dy++ {
		wy := cubicWeight(float64(dy) - fy)
		for dx := -1; dx <= 2; dx++ {
			wx := cubicWeight(float64(dx) - fx)
			x, y := x0+dx, y0+dy
			cx, cy := clampPixel(x, 0, srcW-1), clampPixel(y, 0, srcH-1)
			if !validAt(call, band, cx, cy) {
				continue
			}
			w := wx * wy
			sum += w * readPixel(call, band, cx, cy, srcW, srcH)
			wsum += w
			anyValid = true
		}
	}
	if !anyValid || wsum == 0 {
		return 0, false
	}
	return sum / wsum, true
}
