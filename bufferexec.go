package warp

// KernelCall is the transient, one-per-chunk handoff to the warp kernel
// collaborator, mirroring GDALWarpKernel. It fully owns the source-band
// buffers and mask planes it allocates; it only borrows the destination
// buffer from the Region Executor. Its lifetime ends when PerformWarp
// returns.
type KernelCall struct {
	Resampling  ResamplingAlg
	BandCount   int
	WorkingType DataType

	Transformer    TransformFunc
	TransformerArg interface{}

	Progress      ProgressFunc
	ProgressArg   interface{}
	ProgressBase  float64
	ProgressScale float64

	WarpOptions map[string]string

	SrcWindow Rect
	DstWindow Rect

	// SrcBands is band-major: SrcBands[i] is word_size*SrcWindow.W*SrcWindow.H
	// bytes for mapped band i.
	SrcBands [][]byte
	// DstBands[i] aliases a slice of the Region Executor's destination
	// buffer; KernelCall does not own it and must not resize it.
	DstBands [][]byte

	Masks Masks
}

// CreateMask lazily allocates the named mask plane if it does not already
// exist, leaving an existing plane untouched. Generator hooks use this to
// materialize the plane they are about to populate.
func (call *KernelCall) CreateMask(name string, band int) error {
	return createKernelMask(&call.Masks, name, band, call.SrcWindow.W, call.SrcWindow.H, call.DstWindow.W, call.DstWindow.H, call.BandCount)
}

// warpRegionToBuffer is the Buffer Executor / Mask Manager. The
// caller-supplied dstBuf must already be of type bufType == the working
// type configured on Options; a mismatched buffer type is an enforced
// precondition violation, not merely documented behavior.
func (op *Operation) warpRegionToBuffer(dst Rect, dstBuf []byte, bufType DataType, srcWin Rect) error {
	o := op.opts

	if bufType != o.WorkingType {
		return newErrorf(ConfigInvalid, nil, "destination buffer type %v does not match working type %v", bufType, o.WorkingType)
	}
	if o.Kernel == nil {
		return newError(ConfigInvalid, "no warp kernel configured", nil)
	}

	if srcWin.Empty() {
		var err error
		srcWin, err = op.computeSourceWindow(dst)
		if err != nil {
			return err
		}
	}

	bandCount := o.Bands.Count()
	wordSize := o.WorkingType.Size()

	call := &KernelCall{
		Resampling:     o.Resampling,
		BandCount:      bandCount,
		WorkingType:    o.WorkingType,
		Transformer:    o.Transformer,
		TransformerArg: o.TransformerArg,
		Progress:       o.Progress,
		ProgressArg:    o.ProgressArg,
		ProgressBase:   op.progressBase,
		ProgressScale:  op.progressScale,
		WarpOptions:    o.WarpOptions,
		SrcWindow:      srcWin,
		DstWindow:      dst,
		SrcBands:       make([][]byte, bandCount),
		DstBands:       make([][]byte, bandCount),
	}

	srcBandBytes := wordSize * srcWin.W * srcWin.H
	for i := 0; i < bandCount; i++ {
		buf, err := allocBytes(srcBandBytes)
		if err != nil {
			return err
		}
		if err := o.Src.ReadBand(o.Bands.Src[i], srcWin, buf, o.WorkingType); err != nil {
			return newErrorf(IOFailure, err, "reading source band %d at %v", o.Bands.Src[i], srcWin)
		}
		call.SrcBands[i] = buf
	}

	dstBandBytes := wordSize * dst.W * dst.H
	for i := 0; i < bandCount; i++ {
		call.DstBands[i] = dstBuf[i*dstBandBytes : (i+1)*dstBandBytes]
	}

	if o.SrcNoData.set() {
		for i := 0; i < bandCount; i++ {
			if err := call.CreateMask("BandSrcValid", i); err != nil {
				return err
			}
			applyNoDataMask(call.SrcBands[i], o.WorkingType, call.Masks.BandSrcValid[i], o.SrcNoData.Real[i], o.SrcNoData.Imag[i])
		}
	}

	if o.BandSrcValidity != nil {
		if err := o.BandSrcValidity(call); err != nil {
			return err
		}
	}
	if o.SrcValidity != nil {
		if err := o.SrcValidity(call); err != nil {
			return err
		}
	}
	if o.SrcDensity != nil {
		if err := o.SrcDensity(call); err != nil {
			return err
		}
	}
	if o.DstValidity != nil {
		if err := o.DstValidity(call); err != nil {
			return err
		}
	}
	if o.DstDensity != nil {
		if err := o.DstDensity(call); err != nil {
			return err
		}
	}

	if err := o.Kernel.PerformWarp(call); err != nil {
		return err
	}

	// SrcBands and the mask planes are owned by call and become garbage
	// once it goes out of scope; DstBands only ever aliased the caller's
	// buffer and is never freed here.
	return nil
}

// applyNoDataMask clears mask bits at pixels whose buffer value equals
// (real, imag) under dtype-exact comparison: the per-band source no-data
// masker applied after the source buffers are read.
func applyNoDataMask(band []byte, dtype DataType, mask *BitMask, real, imag float64) {
	ws := dtype.Size()
	for y := 0; y < mask.H; y++ {
		for x := 0; x < mask.W; x++ {
			off := (y*mask.W + x) * ws
			r, im := decodeWord(dtype, band[off:off+ws])
			if r == real && im == imag {
				mask.Set(x, y, false)
			}
		}
	}
}
