package warp

import (
	"encoding/binary"
	"math"
)

// encodeWord renders (real, imag) as one word_size-byte pixel of dtype, in
// host-native byte order: the working buffers are treated as raw memory,
// not a wire format.
func encodeWord(dtype DataType, real, imag float64) ([]byte, error) {
	buf := make([]byte, dtype.Size())
	switch dtype {
	case Byte:
		v := clampInt(real, 0, 255)
		buf[0] = byte(v)
	case UInt16:
		binary.NativeEndian.PutUint16(buf, uint16(clampInt(real, 0, math.MaxUint16)))
	case Int16:
		binary.NativeEndian.PutUint16(buf, uint16(int16(real)))
	case UInt32:
		binary.NativeEndian.PutUint32(buf, uint32(clampInt(real, 0, math.MaxUint32)))
	case Int32:
		binary.NativeEndian.PutUint32(buf, uint32(int32(real)))
	case Float32:
		binary.NativeEndian.PutUint32(buf, math.Float32bits(float32(real)))
	case Float64:
		binary.NativeEndian.PutUint64(buf, math.Float64bits(real))
	case CInt16:
		binary.NativeEndian.PutUint16(buf[0:2], uint16(int16(real)))
		binary.NativeEndian.PutUint16(buf[2:4], uint16(int16(imag)))
	case CInt32:
		binary.NativeEndian.PutUint32(buf[0:4], uint32(int32(real)))
		binary.NativeEndian.PutUint32(buf[4:8], uint32(int32(imag)))
	case CFloat32:
		binary.NativeEndian.PutUint32(buf[0:4], math.Float32bits(float32(real)))
		binary.NativeEndian.PutUint32(buf[4:8], math.Float32bits(float32(imag)))
	case CFloat64:
		binary.NativeEndian.PutUint64(buf[0:8], math.Float64bits(real))
		binary.NativeEndian.PutUint64(buf[8:16], math.Float64bits(imag))
	default:
		return nil, newErrorf(Internal, nil, "encodeWord: unsupported data type %v", dtype)
	}
	return buf, nil
}

// decodeWord is the inverse of encodeWord: it reads one word_size-byte
// pixel of dtype back into (real, imag).
func decodeWord(dtype DataType, word []byte) (real, imag float64) {
	switch dtype {
	case Byte:
		return float64(word[0]), 0
	case UInt16:
		return float64(binary.NativeEndian.Uint16(word)), 0
	case Int16:
		return float64(int16(binary.NativeEndian.Uint16(word))), 0
	case UInt32:
		return float64(binary.NativeEndian.Uint32(word)), 0
	case Int32:
		return float64(int32(binary.NativeEndian.Uint32(word))), 0
	case Float32:
		return float64(math.Float32frombits(binary.NativeEndian.Uint32(word))), 0
	case Float64:
		return math.Float64frombits(binary.NativeEndian.Uint64(word)), 0
	case CInt16:
		return float64(int16(binary.NativeEndian.Uint16(word[0:2]))), float64(int16(binary.NativeEndian.Uint16(word[2:4])))
	case CInt32:
		return float64(int32(binary.NativeEndian.Uint32(word[0:4]))), float64(int32(binary.NativeEndian.Uint32(word[4:8])))
	case CFloat32:
		return float64(math.Float32frombits(binary.NativeEndian.Uint32(word[0:4]))), float64(math.Float32frombits(binary.NativeEndian.Uint32(word[4:8])))
	case CFloat64:
		return math.Float64frombits(binary.NativeEndian.Uint64(word[0:8])), math.Float64frombits(binary.NativeEndian.Uint64(word[8:16]))
	default:
		return 0, 0
	}
}

// EncodeWorkingWord renders (real, imag) as one dtype-sized pixel word, for
// use by Kernel implementations writing into a KernelCall's DstBands.
func EncodeWorkingWord(dtype DataType, real, imag float64) ([]byte, error) {
	return encodeWord(dtype, real, imag)
}

// DecodeWorkingWord reads one dtype-sized pixel word back into (real,
// imag), for use by Kernel implementations reading a KernelCall's
// SrcBands.
func DecodeWorkingWord(dtype DataType, word []byte) (real, imag float64) {
	return decodeWord(dtype, word)
}

func clampInt(v float64, lo, hi int) int {
	iv := int(v)
	if iv < lo {
		return lo
	}
	if iv > hi {
		return hi
	}
	return iv
}

// fillPlane broadcasts (real, imag) across an entire word_size*pixelCount
// band plane, following the same case ladder as GDALWarpOperation's
// INIT_DEST handling: a byte-wise memset for Byte, a zero memset when both
// components are exactly 0, a real-only broadcast when imag is 0, and a
// full complex broadcast otherwise.
func fillPlane(plane []byte, dtype DataType, real, imag float64) error {
	if dtype == Byte {
		v := clampInt(real, 0, 255)
		for i := range plane {
			plane[i] = byte(v)
		}
		return nil
	}
	if real == 0.0 && imag == 0.0 {
		for i := range plane {
			plane[i] = 0
		}
		return nil
	}
	word, err := encodeWord(dtype, real, imag)
	if err != nil {
		return err
	}
	ws := dtype.Size()
	for off := 0; off+ws <= len(plane); off += ws {
		copy(plane[off:off+ws], word)
	}
	return nil
}
