package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"syscall"

	"cloud.google.com/go/storage"
	"github.com/airbusgeo/cogger"
	"github.com/geowarp/warp"
	"github.com/geowarp/warp/internal/blockcache"
	lru "github.com/hashicorp/golang-lru"
	"google.golang.org/api/googleapi"
)

// ParseGSURI splits a "gs://bucket/object" URI into its parts. It returns
// empty strings if uri does not carry the gs:// prefix.
func ParseGSURI(uri string) (bucket, object string) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", ""
	}
	rest := uri[len("gs://"):]
	i := strings.Index(rest, "/")
	if i == -1 {
		return "", ""
	}
	obj := strings.Trim(rest[i:], "/")
	if obj == "" {
		return "", ""
	}
	return rest[:i], obj
}

// CloudDataset is a warp.RasterDataset backed by a single band-planar raw
// raster object in Google Cloud Storage: bands are stored back to back,
// each width*height*dtype.Size() bytes, in row-major order. Reads go
// through a shared internal/blockcache.BlockCache so that sibling chunks
// of one ChunkAndWarp call reissue the same GCS byte range at most once.
// Writes accumulate into an in-memory staging buffer and are rewritten as
// a tiled, COG-flavoured GeoTIFF on Close via cogger.Rewrite.
type CloudDataset struct {
	ctx    context.Context
	client *storage.Client
	bucket string
	object string

	width, height int
	bandCount     int
	dtype         warp.DataType
	writable      bool

	cache  *blockcache.Cache
	bc     *blockcache.BlockCache
	sizes  *lru.Cache
	mu     sync.Mutex
	stage  []byte // nil until first write; holds the full output image
	dirty  bool
}

// CloudDatasetConfig configures a new CloudDataset.
type CloudDatasetConfig struct {
	Client    *storage.Client
	URI       string // gs://bucket/object
	Width     int
	Height    int
	BandCount int
	DataType  warp.DataType
	// Writable marks the dataset as a warp destination; writes are staged
	// in memory and flushed by Close.
	Writable bool
	// BlockSize is the granularity of GCS range reads, in bytes. Defaults
	// to 1MiB.
	BlockSize uint
	// CacheBlocks bounds the number of blocks kept resident. Defaults to
	// 1000.
	CacheBlocks int
}

// OpenCloudDataset opens an existing object in cfg as a read side dataset,
// or stages a fresh one when cfg.Writable is set.
func OpenCloudDataset(ctx context.Context, cfg CloudDatasetConfig) (*CloudDataset, error) {
	bucket, object := ParseGSURI(cfg.URI)
	if bucket == "" || object == "" {
		return nil, fmt.Errorf("raster: %q is not a gs:// URI", cfg.URI)
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = 1 << 20
	}
	if cfg.CacheBlocks == 0 {
		cfg.CacheBlocks = 1000
	}

	cache, err := blockcache.NewCache(cfg.CacheBlocks)
	if err != nil {
		return nil, err
	}
	sizes, err := lru.New(64)
	if err != nil {
		return nil, err
	}

	d := &CloudDataset{
		ctx:       ctx,
		client:    cfg.Client,
		bucket:    bucket,
		object:    object,
		width:     cfg.Width,
		height:    cfg.Height,
		bandCount: cfg.BandCount,
		dtype:     cfg.DataType,
		writable:  cfg.Writable,
		cache:     cache,
		sizes:     sizes,
	}
	d.bc = blockcache.New(d, d.cache, cfg.BlockSize)

	if cfg.Writable {
		d.stage = make([]byte, d.width*d.height*d.bandCount*d.dtype.Size())
	}
	return d, nil
}

// ReadAt implements blockcache.KeyReaderAt against the GCS object, translating
// a 404 or 416 response into ENOENT/EOF.
func (d *CloudDataset) ReadAt(key string, p []byte, off int64) (int, error) {
	if s, ok := d.sizes.Get(key); ok {
		if sz := s.(int64); sz >= 0 && off >= sz {
			return 0, io.EOF
		}
	}

	obj := d.client.Bucket(d.bucket).Object(d.object)
	r, err := obj.NewRangeReader(d.ctx, off, int64(len(p)))
	if err != nil {
		var gerr *googleapi.Error
		if off > 0 && errors.As(err, &gerr) && gerr.Code == 416 {
			return 0, io.EOF
		}
		if off == 0 && errors.Is(err, storage.ErrObjectNotExist) {
			d.sizes.Add(key, int64(-1))
			return 0, syscall.ENOENT
		}
		return 0, fmt.Errorf("raster: range-read gs://%s/%s: %w", d.bucket, d.object, err)
	}
	defer r.Close()
	if sz := r.Attrs.Size; sz > 0 {
		d.sizes.Add(key, sz)
	}
	n, err := io.ReadFull(r, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}

func (d *CloudDataset) bandOffset(band int) int64 {
	return int64(band-1) * int64(d.width) * int64(d.height) * int64(d.dtype.Size())
}

func (d *CloudDataset) BandCount() int { return d.bandCount }

func (d *CloudDataset) Size() (width, height int) { return d.width, d.height }

// BandType returns the dataset's pixel type; the object is single-dtype,
// so every band shares it.
func (d *CloudDataset) BandType(band int) warp.DataType { return d.dtype }

func (d *CloudDataset) BandWritable(band int) bool {
	return d.writable && band >= 1 && band <= d.bandCount
}

func (d *CloudDataset) ReadBand(band int, window warp.Rect, buf []byte, dtype warp.DataType) error {
	if dtype != d.dtype {
		return fmt.Errorf("raster: cloud dataset band %d is %v, cannot read as %v", band, d.dtype, dtype)
	}
	ws := dtype.Size()
	base := d.bandOffset(band)
	rowBytes := window.W * ws
	for row := 0; row < window.H; row++ {
		srcY := window.Y0 + row
		dst := buf[row*rowBytes : (row+1)*rowBytes]
		if srcY < 0 || srcY >= d.height || window.X0 < 0 || window.X0+window.W > d.width {
			// Partial or out-of-bounds row: read pixel-by-pixel, zeroing
			// what falls outside the dataset extent.
			for col := 0; col < window.W; col++ {
				srcX := window.X0 + col
				if srcY < 0 || srcY >= d.height || srcX < 0 || srcX >= d.width {
					zero(dst[col*ws : (col+1)*ws])
					continue
				}
				off := base + (int64(srcY)*int64(d.width)+int64(srcX))*int64(ws)
				if _, err := d.bc.ReadAt(d.object, dst[col*ws:(col+1)*ws], off); err != nil && err != io.EOF {
					return fmt.Errorf("raster: read band %d pixel (%d,%d): %w", band, srcX, srcY, err)
				}
			}
			continue
		}
		off := base + (int64(srcY)*int64(d.width)+int64(window.X0))*int64(ws)
		if _, err := d.bc.ReadAt(d.object, dst, off); err != nil && err != io.EOF {
			return fmt.Errorf("raster: read band %d row %d: %w", band, srcY, err)
		}
	}
	return nil
}

func (d *CloudDataset) WriteBand(band int, window warp.Rect, buf []byte, dtype warp.DataType) error {
	if !d.writable {
		return fmt.Errorf("raster: cloud dataset is not open for writing")
	}
	if dtype != d.dtype {
		return fmt.Errorf("raster: cloud dataset band %d is %v, cannot write as %v", band, d.dtype, dtype)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	ws := dtype.Size()
	base := d.bandOffset(band)
	rowBytes := window.W * ws
	for row := 0; row < window.H; row++ {
		dstY := window.Y0 + row
		if dstY < 0 || dstY >= d.height {
			continue
		}
		src := buf[row*rowBytes : (row+1)*rowBytes]
		for col := 0; col < window.W; col++ {
			dstX := window.X0 + col
			if dstX < 0 || dstX >= d.width {
				continue
			}
			off := base + (int64(dstY)*int64(d.width)+int64(dstX))*int64(ws)
			copy(d.stage[off:off+int64(ws)], src[col*ws:(col+1)*ws])
		}
	}
	d.dirty = true
	return nil
}

// Close flushes a writable, dirty dataset by rewriting the raw staged
// buffer into a tiled GeoTIFF via cogger.Rewrite and uploading the result
// to the configured object. Read-only datasets and untouched writable ones
// are a no-op.
func (d *CloudDataset) Close() error {
	if !d.writable || !d.dirty {
		return nil
	}

	tiff, err := encodeStripedTIFF(d.stage, d.width, d.height, d.bandCount, d.dtype)
	if err != nil {
		return fmt.Errorf("raster: encode intermediate tiff: %w", err)
	}

	w := d.client.Bucket(d.bucket).Object(d.object).NewWriter(d.ctx)
	if err := cogger.Rewrite(w, bytes.NewReader(tiff)); err != nil {
		w.Close()
		return fmt.Errorf("raster: cogger.Rewrite gs://%s/%s: %w", d.bucket, d.object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("raster: close gs://%s/%s: %w", d.bucket, d.object, err)
	}
	d.dirty = false
	return nil
}
