package raster

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/geowarp/warp"
)

// tiffSampleFormat maps a warp.DataType to the TIFF SampleFormat tag value
// (1 = unsigned int, 2 = signed int, 3 = IEEE float). Complex types have no
// native TIFF representation and are rejected by encodeStripedTIFF.
func tiffSampleFormat(dt warp.DataType) (uint16, error) {
	switch dt {
	case warp.Byte, warp.UInt16, warp.UInt32:
		return 1, nil
	case warp.Int16, warp.Int32:
		return 2, nil
	case warp.Float32, warp.Float64:
		return 3, nil
	default:
		return 0, fmt.Errorf("raster: data type %v has no TIFF sample format", dt)
	}
}

type tiffTag struct {
	id       uint16
	datatype uint16
	count    uint32
	value    uint32 // value or, when it doesn't fit, offset into the tag's overflow area
}

const (
	tiffShort = 3
	tiffLong  = 4
)

// encodeStripedTIFF renders a band-planar pixel buffer (as produced by
// CloudDataset's write staging) as a minimal baseline, uncompressed,
// separate-planes TIFF: one IFD, one strip per band. It exists to give
// cogger.Rewrite a valid TIFF to retile into a Cloud Optimized GeoTIFF; it
// carries no georeferencing, since CloudDataset has none to give it.
func encodeStripedTIFF(planar []byte, width, height, bandCount int, dtype warp.DataType) ([]byte, error) {
	sampleFormat, err := tiffSampleFormat(dtype)
	if err != nil {
		return nil, err
	}
	bitsPerSample := uint16(dtype.Size() * 8)
	bandBytes := width * height * dtype.Size()
	if len(planar) != bandBytes*bandCount {
		return nil, fmt.Errorf("raster: buffer is %d bytes, expected %d", len(planar), bandBytes*bandCount)
	}

	var buf bytes.Buffer
	// Header: little-endian, magic 42, IFD immediately follows (offset 8).
	buf.Write([]byte{'I', 'I', 42, 0})
	binary.Write(&buf, binary.LittleEndian, uint32(8))

	tags := []tiffTag{
		{256, tiffLong, 1, uint32(width)},                    // ImageWidth
		{257, tiffLong, 1, uint32(height)},                   // ImageLength
		{258, tiffShort, 1, uint32(bitsPerSample)},           // BitsPerSample (per-sample value, count 1 placeholder; real array written below)
		{259, tiffShort, 1, 1},                               // Compression = none
		{262, tiffShort, 1, 1},                               // PhotometricInterpretation = BlackIsZero
		{277, tiffShort, 1, uint32(bandCount)},               // SamplesPerPixel
		{278, tiffLong, 1, uint32(height)},                   // RowsPerStrip: one strip per band, full height
		{339, tiffShort, 1, uint32(sampleFormat)},            // SampleFormat
		{284, tiffShort, 1, 2},                               // PlanarConfiguration = 2 (separate planes)
	}

	// StripOffsets, StripByteCounts, BitsPerSample and SampleFormat carry
	// bandCount values each (bitsPerSample and sampleFormat are replicated
	// per band for strict baseline TIFF readers). TIFF inlines a tag's
	// value when its whole payload is <=4 bytes, so small arrays go into
	// the value field and larger ones into the overflow area.
	numEntries := len(tags) + 2 // + StripOffsets + StripByteCounts
	ifdStart := buf.Len()
	ifdSize := 2 + numEntries*12 + 4
	overflowStart := ifdStart + ifdSize

	var overflow bytes.Buffer
	writeArray := func(values []uint32, size int) uint32 {
		if len(values)*size <= 4 {
			var inline uint32
			for i, v := range values {
				inline |= v << uint(i*size*8)
			}
			return inline
		}
		off := uint32(overflowStart + overflow.Len())
		for _, v := range values {
			switch size {
			case 2:
				binary.Write(&overflow, binary.LittleEndian, uint16(v))
			default:
				binary.Write(&overflow, binary.LittleEndian, v)
			}
		}
		return off
	}

	bpsVals := make([]uint32, bandCount)
	sfVals := make([]uint32, bandCount)
	for i := range bpsVals {
		bpsVals[i] = uint32(bitsPerSample)
		sfVals[i] = uint32(sampleFormat)
	}
	bpsOff := writeArray(bpsVals, 2)
	sfOff := writeArray(sfVals, 2)
	for i := range tags {
		switch tags[i].id {
		case 258:
			tags[i].count = uint32(bandCount)
			tags[i].value = bpsOff
		case 339:
			tags[i].count = uint32(bandCount)
			tags[i].value = sfOff
		}
	}

	stripCounts := make([]uint32, bandCount)
	for i := range stripCounts {
		stripCounts[i] = uint32(bandBytes)
	}

	binary.Write(&buf, binary.LittleEndian, uint16(numEntries))
	allTags := append(append([]tiffTag{}, tags...), tiffTag{273, tiffLong, uint32(bandCount), 0}, tiffTag{279, tiffLong, uint32(bandCount), 0})
	stripOffsetsIdx := len(allTags) - 2
	stripCountsIdx := len(allTags) - 1

	// stripCounts is known up front (every band is bandBytes long), so
	// write it first; stripOffsets depends on the final overflow length,
	// which is only fixed once every other overflow array (including
	// stripCounts itself) has been appended.
	allTags[stripCountsIdx].value = writeArray(stripCounts, 4)

	// Reserve the stripOffsets array's own space before computing where
	// pixel data begins, since that reservation grows the overflow area.
	stripOffsetsOff := uint32(overflowStart + overflow.Len())
	if bandCount > 1 {
		overflow.Write(make([]byte, bandCount*4))
	}
	allTags[stripOffsetsIdx].value = stripOffsetsOff

	dataBase := uint32(overflowStart + overflow.Len())
	stripOffsets := make([]uint32, bandCount)
	for i := 0; i < bandCount; i++ {
		stripOffsets[i] = dataBase + uint32(i*bandBytes)
	}
	if bandCount == 1 {
		allTags[stripOffsetsIdx].value = dataBase
	} else {
		overflowBytes := overflow.Bytes()
		for i, v := range stripOffsets {
			binary.LittleEndian.PutUint32(overflowBytes[int(stripOffsetsOff)-overflowStart+i*4:], v)
		}
	}

	for _, t := range allTags {
		binary.Write(&buf, binary.LittleEndian, t.id)
		binary.Write(&buf, binary.LittleEndian, t.datatype)
		binary.Write(&buf, binary.LittleEndian, t.count)
		binary.Write(&buf, binary.LittleEndian, t.value)
	}
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // no next IFD

	buf.Write(overflow.Bytes())
	buf.Write(planar)

	return buf.Bytes(), nil
}
