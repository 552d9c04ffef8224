package warp

import "fmt"

// DataType is the numeric type used for in-memory pixels.
type DataType int

const (
	// Unknown is an unset/invalid data type.
	Unknown DataType = iota
	// Byte is an 8-bit unsigned integer.
	Byte
	// UInt16 is a 16-bit unsigned integer.
	UInt16
	// Int16 is a 16-bit signed integer.
	Int16
	// UInt32 is a 32-bit unsigned integer.
	UInt32
	// Int32 is a 32-bit signed integer.
	Int32
	// Float32 is a 32-bit IEEE float.
	Float32
	// Float64 is a 64-bit IEEE float.
	Float64
	// CInt16 is a complex pair of Int16.
	CInt16
	// CInt32 is a complex pair of Int32.
	CInt32
	// CFloat32 is a complex pair of Float32.
	CFloat32
	// CFloat64 is a complex pair of Float64.
	CFloat64
)

// String implements Stringer.
func (dt DataType) String() string {
	switch dt {
	case Byte:
		return "Byte"
	case UInt16:
		return "UInt16"
	case Int16:
		return "Int16"
	case UInt32:
		return "UInt32"
	case Int32:
		return "Int32"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case CInt16:
		return "CInt16"
	case CInt32:
		return "CInt32"
	case CFloat32:
		return "CFloat32"
	case CFloat64:
		return "CFloat64"
	default:
		return "Unknown"
	}
}

// Size returns the number of bytes needed for one instance of DataType.
func (dt DataType) Size() int {
	switch dt {
	case Byte:
		return 1
	case Int16, UInt16:
		return 2
	case Int32, UInt32, Float32, CInt16:
		return 4
	case CInt32, Float64, CFloat32:
		return 8
	case CFloat64:
		return 16
	default:
		return 0
	}
}

// Bits returns the number of bits needed for one instance of DataType.
func (dt DataType) Bits() int {
	return dt.Size() * 8
}

// Complex reports whether DataType is one of the complex-valued types.
func (dt DataType) Complex() bool {
	switch dt {
	case CInt16, CInt32, CFloat32, CFloat64:
		return true
	default:
		return false
	}
}

// Valid reports whether dt is a known, supported data type.
func (dt DataType) Valid() bool {
	return dt >= Byte && dt <= CFloat64
}

// ResamplingAlg is a resampling method.
type ResamplingAlg int

const (
	// Nearest is nearest-neighbour resampling.
	Nearest ResamplingAlg = iota
	// Bilinear resampling.
	Bilinear
	// Cubic resampling.
	Cubic
)

// String implements Stringer.
func (ra ResamplingAlg) String() string {
	switch ra {
	case Nearest:
		return "Nearest"
	case Bilinear:
		return "Bilinear"
	case Cubic:
		return "Cubic"
	default:
		return fmt.Sprintf("ResamplingAlg(%d)", int(ra))
	}
}

// halfWidth is the resampling half-width in source pixels: the radius of
// the resampling kernel's support, used to pad the estimated source window.
func (ra ResamplingAlg) halfWidth() int {
	switch ra {
	case Bilinear:
		return 1
	case Cubic:
		return 2
	default:
		return 0
	}
}

// Rect is a pixel-space window, (X0,Y0) to (X0+W, Y0+H).
type Rect struct {
	X0, Y0 int
	W, H   int
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// BandMapping pairs 1-based source and destination band indices: BandMapping
// {Src:[1,2], Dst:[3,1]} reads source band 1 into destination band 3, and
// source band 2 into destination band 1.
type BandMapping struct {
	Src []int
	Dst []int
}

// Count returns the number of mapped bands.
func (bm BandMapping) Count() int {
	return len(bm.Src)
}
