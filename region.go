package warp

// allocBytes allocates n bytes, converting an allocation panic (as close
// as a pure-Go program gets to VSIMalloc returning NULL) into an
// OutOfMemory failure instead of crashing the process.
func allocBytes(n int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = newErrorf(OutOfMemory, nil, "failed to allocate %d byte buffer: %v", n, r)
		}
	}()
	return make([]byte, n), nil
}

// warpRegion is the Region Executor: it allocates the destination
// buffer for dst, applies the configured initial-fill policy, dispatches
// to the Buffer Executor, and writes the result back to the destination
// dataset.
//
// If Options.WarpOptions["INIT_DEST"] is absent, the destination buffer is
// primed by reading the destination dataset's current content at dst: if
// the destination is a freshly created dataset that has not yet been
// written, that content is undefined. Callers wanting deterministic output
// must set INIT_DEST.
func (op *Operation) warpRegion(dst, srcWin Rect) error {
	o := op.opts
	wordSize := o.WorkingType.Size()
	bandCount := o.Bands.Count()
	bandBytes := wordSize * dst.W * dst.H

	buf, err := allocBytes(bandBytes * bandCount)
	if err != nil {
		return err
	}

	if initDest, ok := o.WarpOptions["INIT_DEST"]; ok {
		for i := 0; i < bandCount; i++ {
			real, imag, perr := resolveInitDest(initDest, i, o.DstNoData)
			if perr != nil {
				return newErrorf(ConfigInvalid, perr, "INIT_DEST %q is not a valid complex literal", initDest)
			}
			plane := buf[i*bandBytes : (i+1)*bandBytes]
			if err := fillPlane(plane, o.WorkingType, real, imag); err != nil {
				return err
			}
		}
	} else {
		for i := 0; i < bandCount; i++ {
			plane := buf[i*bandBytes : (i+1)*bandBytes]
			if err := o.Dst.ReadBand(o.Bands.Dst[i], dst, plane, o.WorkingType); err != nil {
				return newErrorf(IOFailure, err, "reading existing destination band %d at %v", o.Bands.Dst[i], dst)
			}
		}
	}

	if err := op.warpRegionToBuffer(dst, buf, o.WorkingType, srcWin); err != nil {
		return err
	}

	for i := 0; i < bandCount; i++ {
		plane := buf[i*bandBytes : (i+1)*bandBytes]
		if err := o.Dst.WriteBand(o.Bands.Dst[i], dst, plane, o.WorkingType); err != nil {
			return newErrorf(IOFailure, err, "writing destination band %d at %v", o.Bands.Dst[i], dst)
		}
	}

	return nil
}
