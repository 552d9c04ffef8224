// Package raster provides warp.RasterDataset implementations: an in-memory
// dataset for tests and small rasters, and a cloud-object-backed dataset that
// reads a raw band-planar object and writes its result as a tiled GeoTIFF in
// object storage.
package raster

import (
	"fmt"

	"github.com/geowarp/warp"
)

// MemDataset is an in-RAM warp.RasterDataset: each band is a flat byte
// plane of width*height*dtype.Size() bytes. It exists for tests and for
// small warps that comfortably fit in memory outright, mirroring the
// Memory driver concept of keeping dataset content as plain heap buffers
// rather than backed by a file or service.
type MemDataset struct {
	width, height int
	dtype         warp.DataType
	planes        [][]byte
	writable      []bool
}

// NewMemDataset allocates a dataset of bandCount bands, each width*height
// pixels of dtype, zero-filled and writable.
func NewMemDataset(width, height, bandCount int, dtype warp.DataType) *MemDataset {
	planes := make([][]byte, bandCount)
	writable := make([]bool, bandCount)
	bandBytes := width * height * dtype.Size()
	for i := range planes {
		planes[i] = make([]byte, bandBytes)
		writable[i] = true
	}
	return &MemDataset{width: width, height: height, dtype: dtype, planes: planes, writable: writable}
}

// SetReadOnly marks the given 1-based band as non-writable, for exercising
// the BandWritable validation path.
func (d *MemDataset) SetReadOnly(band int) {
	d.writable[band-1] = false
}

// Band returns the raw backing plane for a 1-based band, for test setup and
// assertions.
func (d *MemDataset) Band(band int) []byte {
	return d.planes[band-1]
}

func (d *MemDataset) BandCount() int { return len(d.planes) }

func (d *MemDataset) Size() (width, height int) { return d.width, d.height }

// BandType returns the dataset's pixel type; every band shares it, matching
// the single-dtype construction of NewMemDataset.
func (d *MemDataset) BandType(band int) warp.DataType { return d.dtype }

func (d *MemDataset) BandWritable(band int) bool {
	if band < 1 || band > len(d.writable) {
		return false
	}
	return d.writable[band-1]
}

func (d *MemDataset) ReadBand(band int, window warp.Rect, buf []byte, dtype warp.DataType) error {
	if band < 1 || band > len(d.planes) {
		return fmt.Errorf("raster: band %d out of range", band)
	}
	if dtype != d.dtype {
		return fmt.Errorf("raster: dataset band %d is %v, cannot read as %v", band, d.dtype, dtype)
	}
	plane := d.planes[band-1]
	ws := dtype.Size()
	need := window.W * window.H * ws
	if len(buf) != need {
		return fmt.Errorf("raster: read buffer is %d bytes, need %d", len(buf), need)
	}
	for row := 0; row < window.H; row++ {
		srcY := window.Y0 + row
		if srcY < 0 || srcY >= d.height {
			zero(buf[row*window.W*ws : (row+1)*window.W*ws])
			continue
		}
		for col := 0; col < window.W; col++ {
			srcX := window.X0 + col
			dstOff := (row*window.W + col) * ws
			if srcX < 0 || srcX >= d.width {
				zero(buf[dstOff : dstOff+ws])
				continue
			}
			srcOff := (srcY*d.width + srcX) * ws
			copy(buf[dstOff:dstOff+ws], plane[srcOff:srcOff+ws])
		}
	}
	return nil
}

func (d *MemDataset) WriteBand(band int, window warp.Rect, buf []byte, dtype warp.DataType) error {
	if band < 1 || band > len(d.planes) {
		return fmt.Errorf("raster: band %d out of range", band)
	}
	if !d.writable[band-1] {
		return fmt.Errorf("raster: band %d is read-only", band)
	}
	if dtype != d.dtype {
		return fmt.Errorf("raster: dataset band %d is %v, cannot write as %v", band, d.dtype, dtype)
	}
	plane := d.planes[band-1]
	ws := dtype.Size()
	for row := 0; row < window.H; row++ {
		dstY := window.Y0 + row
		if dstY < 0 || dstY >= d.height {
			continue
		}
		for col := 0; col < window.W; col++ {
			dstX := window.X0 + col
			if dstX < 0 || dstX >= d.width {
				continue
			}
			srcOff := (row*window.W + col) * ws
			dstOff := (dstY*d.width + dstX) * ws
			copy(plane[dstOff:dstOff+ws], buf[srcOff:srcOff+ws])
		}
	}
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
