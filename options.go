package warp

import "fmt"

const (
	defaultMemoryLimit = 64.0 * 1024 * 1024
	minMemoryLimit     = 100000.0
)

// NoData holds a per-band sentinel (real, imag) indicating absent data.
type NoData struct {
	Real []float64
	Imag []float64
}

func (nd NoData) set() bool {
	return nd.Real != nil
}

// Options is the validated, defaulted configuration of a warp Operation.
// It is deep-cloned on Initialize, so the caller may discard or mutate its
// own copy immediately afterwards.
type Options struct {
	Src, Dst RasterDataset

	Bands BandMapping

	WorkingType DataType
	Resampling  ResamplingAlg

	// MemoryLimit is the warp memory budget in bytes. Zero means "use the
	// default" at Initialize time.
	MemoryLimit float64

	SrcNoData NoData
	DstNoData NoData

	BandSrcValidity ValidityFunc
	SrcValidity     ValidityFunc
	SrcDensity      DensityFunc
	DstValidity     ValidityFunc
	DstDensity      DensityFunc

	Transformer    TransformFunc
	TransformerArg interface{}

	// Kernel is the low-level warp kernel collaborator invoked once per
	// in-budget chunk with a fully populated KernelCall.
	Kernel Kernel

	Progress    ProgressFunc
	ProgressArg interface{}

	// WarpOptions is a free-form string-keyed option list. "INIT_DEST" is
	// the one recognized by this package; see initdest.go.
	WarpOptions map[string]string

	Diagnostics Diagnostics
}

func (o Options) clone() Options {
	c := o
	c.Bands = BandMapping{
		Src: append([]int(nil), o.Bands.Src...),
		Dst: append([]int(nil), o.Bands.Dst...),
	}
	if o.SrcNoData.Real != nil {
		c.SrcNoData = NoData{
			Real: append([]float64(nil), o.SrcNoData.Real...),
			Imag: append([]float64(nil), o.SrcNoData.Imag...),
		}
	}
	if o.DstNoData.Real != nil {
		c.DstNoData = NoData{
			Real: append([]float64(nil), o.DstNoData.Real...),
			Imag: append([]float64(nil), o.DstNoData.Imag...),
		}
	}
	if o.WarpOptions != nil {
		c.WarpOptions = make(map[string]string, len(o.WarpOptions))
		for k, v := range o.WarpOptions {
			c.WarpOptions[k] = v
		}
	}
	return c
}

// Operation is the stateful warp operation object: the owner of a
// validated Options copy and of the progress-composition state threaded
// through recursive chunking.
type Operation struct {
	opts *Options

	progressBase  float64
	progressScale float64
}

// Initialize deep-clones newOptions, applies defaults, validates the
// result, and adopts it as this Operation's configuration. Re-initializing
// an already-initialized Operation discards the prior options first. On
// validation failure the clone is discarded and the Operation is left
// wiped.
func (op *Operation) Initialize(newOptions Options) error {
	op.Wipe()

	cloned := newOptions.clone()

	// Default the band mapping when both sides have an equal band count.
	if cloned.Bands.Count() == 0 && cloned.Src != nil && cloned.Dst != nil &&
		cloned.Src.BandCount() == cloned.Dst.BandCount() {
		n := cloned.Src.BandCount()
		src := make([]int, n)
		dst := make([]int, n)
		for i := 0; i < n; i++ {
			src[i] = i + 1
			dst[i] = i + 1
		}
		cloned.Bands = BandMapping{Src: src, Dst: dst}
	}

	// Default an unset working type to the type of the first destination
	// band, matching GDALWarpOperation::Initialize.
	if cloned.WorkingType == Unknown && cloned.Dst != nil && len(cloned.Bands.Dst) > 0 {
		cloned.WorkingType = cloned.Dst.BandType(cloned.Bands.Dst[0])
	}

	if cloned.MemoryLimit == 0 {
		cloned.MemoryLimit = defaultMemoryLimit
	}

	op.opts = &cloned
	op.progressBase = 0.0
	op.progressScale = 1.0

	if err := op.validate(); err != nil {
		op.opts = nil
		return err
	}
	return nil
}

// Wipe discards any owned options. It is idempotent.
func (op *Operation) Wipe() {
	op.opts = nil
	op.progressBase = 0.0
	op.progressScale = 1.0
}

// Options returns a copy of the currently owned options, or the zero value
// and false if the Operation has not been (successfully) initialized.
func (op *Operation) Options() (Options, bool) {
	if op.opts == nil {
		return Options{}, false
	}
	return op.opts.clone(), true
}

func (op *Operation) diag(sev Severity, code Code, msg string) {
	if op.opts != nil {
		op.opts.Diagnostics.emit(sev, code, msg)
	}
}

// validate checks every configuration invariant and emits exactly one
// diagnostic for the first violation found.
func (op *Operation) validate() error {
	o := op.opts

	if o.Src == nil {
		return op.invalid("source dataset is not set")
	}
	if o.Dst == nil {
		return op.invalid("destination dataset is not set")
	}
	if o.MemoryLimit < minMemoryLimit {
		return op.invalid(fmt.Sprintf("memory limit %g is unreasonably small", o.MemoryLimit))
	}
	// GDALWarpOperation::Initialize validates eWorkingDataType with
	// "< 1 && >= TypeCount", which is always false and never rejects
	// anything; this checks for a genuinely unsupported type instead.
	if !o.WorkingType.Valid() {
		return op.invalid(fmt.Sprintf("working data type %v is not a supported value", o.WorkingType))
	}
	if o.Resampling != Nearest && o.Resampling != Bilinear && o.Resampling != Cubic {
		return op.invalid(fmt.Sprintf("resampling algorithm %v is not a supported value", o.Resampling))
	}
	if o.Bands.Count() == 0 {
		return op.invalid("band count is 0, no bands configured")
	}
	if len(o.Bands.Src) != len(o.Bands.Dst) {
		return op.invalid("source and destination band mappings have different lengths")
	}

	srcBandCount := o.Src.BandCount()
	dstBandCount := o.Dst.BandCount()
	for i, b := range o.Bands.Src {
		if b < 1 || b > srcBandCount {
			return op.invalid(fmt.Sprintf("source band mapping[%d] = %d is out of range for dataset", i, b))
		}
	}
	for i, b := range o.Bands.Dst {
		if b < 1 || b > dstBandCount {
			return op.invalid(fmt.Sprintf("destination band mapping[%d] = %d is out of range for dataset", i, b))
		}
		if !o.Dst.BandWritable(b) {
			return op.invalid(fmt.Sprintf("destination band %d appears to be read-only", b))
		}
	}

	if o.SrcNoData.Real != nil && o.SrcNoData.Imag == nil {
		return op.invalid("source no-data real parts set, but imaginary parts are not")
	}
	if o.DstNoData.Real != nil && o.DstNoData.Imag == nil {
		return op.invalid("destination no-data real parts set, but imaginary parts are not")
	}

	if o.Transformer == nil {
		return op.invalid("transformer function is not set")
	}
	if o.Progress == nil {
		return op.invalid("progress callback is not set")
	}

	return nil
}

func (op *Operation) invalid(msg string) error {
	op.diag(SeverityFailure, ConfigInvalid, msg)
	return newError(ConfigInvalid, msg, nil)
}
