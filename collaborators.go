package warp

// RasterDataset is the raster I/O collaborator: band-wise pixel read/write
// at arbitrary windows. Band numbering is 1-based, matching the GDAL
// convention the rest of this package's naming follows.
//
// Implementations live outside this package (see the raster package for a
// reference in-memory and a cloud-object-backed implementation); this
// interface is the whole of the contract the core requires.
type RasterDataset interface {
	// BandCount returns the number of raster bands in the dataset.
	BandCount() int
	// Size returns the dataset's full width and height in pixels.
	Size() (width, height int)
	// BandType returns the pixel type of the given 1-based band.
	BandType(band int) DataType
	// BandWritable reports whether the given 1-based band may be written.
	BandWritable(band int) bool
	// ReadBand reads window from the given 1-based band into buf, which
	// must be exactly window.W*window.H*dtype.Size() bytes.
	ReadBand(band int, window Rect, buf []byte, dtype DataType) error
	// WriteBand writes buf into window on the given 1-based band.
	WriteBand(band int, window Rect, buf []byte, dtype DataType) error
}

// TransformFunc maps n points between destination and source pixel space.
// When dstToSrc is true (the only direction the core invokes), x/y/z are
// destination coordinates on entry and source coordinates on exit. success
// receives one flag per point; a false return value signals a whole-batch
// failure and the contents of x/y/z/success are then undefined.
type TransformFunc func(arg interface{}, dstToSrc bool, x, y, z []float64, success []bool) bool

// ProgressFunc is invoked with a value in [0,1] as the warp of one region
// progresses, plus an optional free-form message and the opaque argument
// supplied alongside it on Options. Returning false requests cancellation;
// the request propagates as an Aborted failure.
type ProgressFunc func(arg interface{}, complete float64, message string) bool

// MaskerFunc clears bits in a validity mask at pixels whose buffer value
// equals (real, imag) under dtype-exact comparison. warpRegionToBuffer does
// not take a MaskerFunc: its per-band source no-data masking is the built-in
// applyNoDataMask.
type MaskerFunc func(real, imag float64, dtype DataType, buf []byte, mask *BitMask) error

// DensityFunc and ValidityFunc are the optional mask-generator hooks of
// Options: each inspects already-populated buffers/masks for a region and
// fills in a density or validity plane. They are invoked by the buffer
// executor if configured; the core itself never synthesizes density or
// validity values beyond no-data masking.
type DensityFunc func(call *KernelCall) error
type ValidityFunc func(call *KernelCall) error

// Kernel is the low-level warp kernel collaborator: given fully resident
// source and destination buffers and masks, it performs per-pixel
// resampling. It does no I/O and knows nothing about datasets.
type Kernel interface {
	PerformWarp(call *KernelCall) error
}
