package warp

// ChunkAndWarp does a complete warp of the source image to the destination
// image for dst with the current warp options in effect, subdividing the
// region and recursing until the total memory required to process a chunk
// fits within Options.MemoryLimit. Progress is reported to the installed
// progress callback, remapped into [0,1] across the whole call.
//
// Operation must have been successfully Initialized first.
func (op *Operation) ChunkAndWarp(dst Rect) error {
	if op.opts == nil {
		return newError(ConfigInvalid, "ChunkAndWarp called on an uninitialized Operation", nil)
	}
	return op.chunkAndWarp(dst)
}

func (op *Operation) chunkAndWarp(dst Rect) error {
	o := op.opts

	srcWin, err := op.computeSourceWindow(dst)
	if err != nil {
		return err
	}

	srcBits := op.srcPixelCostBits()
	dstBits := op.dstPixelCostBits()

	totalBytes := (float64(srcBits)*float64(srcWin.W)*float64(srcWin.H) +
		float64(dstBits)*float64(dst.W)*float64(dst.H)) / 8.0

	// The 2-pixel guard prevents infinite recursion on degenerate chunks
	// whose mask overhead alone might exceed the budget.
	if totalBytes > o.MemoryLimit && (dst.W > 2 || dst.H > 2) {
		saveBase, saveScale := op.progressBase, op.progressScale
		op.progressScale *= 0.5

		var c1, c2 Rect
		if dst.W > dst.H {
			chunk1 := dst.W / 2
			chunk2 := dst.W - chunk1
			c1 = Rect{X0: dst.X0, Y0: dst.Y0, W: chunk1, H: dst.H}
			c2 = Rect{X0: dst.X0 + chunk1, Y0: dst.Y0, W: chunk2, H: dst.H}
		} else {
			chunk1 := dst.H / 2
			chunk2 := dst.H - chunk1
			c1 = Rect{X0: dst.X0, Y0: dst.Y0, W: dst.W, H: chunk1}
			c2 = Rect{X0: dst.X0, Y0: dst.Y0 + chunk1, W: dst.W, H: chunk2}
		}

		err = op.chunkAndWarp(c1)
		if err == nil {
			op.progressBase += op.progressScale
			err = op.chunkAndWarp(c2)
		}

		op.progressBase, op.progressScale = saveBase, saveScale
		return err
	}

	return op.warpRegion(dst, srcWin)
}

// srcPixelCostBits is the per-source-pixel memory cost model used to size
// chunks against the configured memory budget.
func (op *Operation) srcPixelCostBits() int {
	o := op.opts
	bandCount := o.Bands.Count()
	bits := o.WorkingType.Bits() * bandCount
	if o.SrcDensity != nil {
		bits += 32
	}
	if o.BandSrcValidity != nil || o.SrcNoData.set() {
		bits += bandCount
	}
	if o.SrcValidity != nil {
		bits++
	}
	return bits
}

// dstPixelCostBits is the per-destination-pixel memory cost model used to
// size chunks against the configured memory budget.
func (op *Operation) dstPixelCostBits() int {
	o := op.opts
	bandCount := o.Bands.Count()
	bits := o.WorkingType.Bits() * bandCount
	if o.DstDensity != nil {
		bits += 32
	}
	if o.DstNoData.set() || o.DstValidity != nil {
		bits += bandCount
	}
	return bits
}
