package warp

import "math"

const samplePointCount = 84

// computeSourceWindow edge-samples the inverse transform of dst and
// returns the smallest source rectangle, clamped to the source image
// bounds and padded by the resampling half-width, whose pixels may
// influence dst. Mirrors GDALWarpOperation::ComputeSourceWindow.
func (op *Operation) computeSourceWindow(dst Rect) (Rect, error) {
	o := op.opts

	var x, y, z [samplePointCount]float64
	var success [samplePointCount]bool
	n := 0

	// Mirrors GDALWarpOperation::ComputeSourceWindow's float-accumulation
	// loop (0.05 steps, snap to 1.0 past 0.99) literally rather than a
	// cleaner integer linspace: the exact floating point sequence is what
	// determines the resulting bounding box.
	for ratio := 0.0; ratio <= 1.01; ratio += 0.05 {
		t := ratio
		if t > 0.99 {
			t = 1.0
		}

		// top edge
		x[n], y[n], z[n] = t*float64(dst.W)+float64(dst.X0), float64(dst.Y0), 0
		n++
		// bottom edge
		x[n], y[n], z[n] = t*float64(dst.W)+float64(dst.X0), float64(dst.Y0+dst.H), 0
		n++
		// left edge
		x[n], y[n], z[n] = float64(dst.X0), t*float64(dst.H)+float64(dst.Y0), 0
		n++
		// right edge
		x[n], y[n], z[n] = float64(dst.X0+dst.W), t*float64(dst.H)+float64(dst.Y0), 0
		n++
	}

	if n != samplePointCount {
		return Rect{}, newErrorf(Internal, nil, "computeSourceWindow: expected %d sample points, got %d", samplePointCount, n)
	}

	xs, ys, zs, succ := x[:], y[:], z[:], success[:]
	if !o.Transformer(o.TransformerArg, true, xs, ys, zs, succ) {
		msg := "computeSourceWindow failed because the transformer failed"
		op.diag(SeverityFailure, TransformFailure, msg)
		return Rect{}, newError(TransformFailure, msg, nil)
	}

	var minX, minY, maxX, maxY float64
	haveInitial := false
	failed := 0
	for i := 0; i < n; i++ {
		if !succ[i] {
			failed++
			continue
		}
		if !haveInitial {
			minX, maxX = xs[i], xs[i]
			minY, maxY = ys[i], ys[i]
			haveInitial = true
			continue
		}
		minX = math.Min(minX, xs[i])
		minY = math.Min(minY, ys[i])
		maxX = math.Max(maxX, xs[i])
		maxY = math.Max(maxY, ys[i])
	}

	if failed > n-10 {
		msg := "too many points failed to transform, unable to compute output bounds"
		op.diag(SeverityFailure, TransformFailure, msg)
		return Rect{}, newError(TransformFailure, msg, nil)
	}
	if failed > 0 {
		op.diag(SeverityDebug, TransformFailure, "some sample points failed to transform, continuing with survivors")
	}

	r := o.Resampling.halfWidth()

	srcW, srcH := o.Src.Size()

	// The half-width pad is additive on both origin and size, which shrinks
	// the window from one side while extending the other. This matches
	// GDALWarpOperation::ComputeSourceWindow's own asymmetry and is
	// preserved literally rather than "fixed" into symmetric padding.
	sx := int(math.Floor(minX)) + r
	if sx < 0 {
		sx = 0
	}
	sy := int(math.Floor(minY)) + r
	if sy < 0 {
		sy = 0
	}
	sw := int(math.Ceil(maxX)) - sx + r
	if maxSW := srcW - sx; sw > maxSW {
		sw = maxSW
	}
	sh := int(math.Ceil(maxY)) - sy + r
	if maxSH := srcH - sy; sh > maxSH {
		sh = maxSH
	}

	return Rect{X0: sx, Y0: sy, W: sw, H: sh}, nil
}
