// Copyright 2021 Airbus Defence and Space
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package blockcache caches fixed-size chunks of a remote KeyReaderAt,
// ensuring that concurrent requests for the same block result in a single
// call to the source reader. It backs raster.CloudDataset's band reads,
// where the same source window is frequently re-read by sibling chunks of
// one ChunkAndWarp call.
package blockcache

import (
	"errors"
	"fmt"
	"io"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// KeyReaderAt reads len(p) bytes from the resource identified by key into p
// starting at offset off, following the io.ReaderAt contract keyed by a
// resource name instead of operating on a single fixed file.
type KeyReaderAt interface {
	ReadAt(key string, p []byte, off int64) (int, error)
}

// Cache is a fixed-capacity, LRU-evicted block store keyed by
// (resource key, block id). It wraps github.com/hashicorp/golang-lru
// directly; this package has exactly one caller (raster.CloudDataset) so
// a single cache type is sufficient.
type Cache struct {
	c *lru.Cache
}

// NewCache creates a Cache able to hold up to entries blocks.
func NewCache(entries int) (*Cache, error) {
	c, err := lru.New(entries)
	if err != nil {
		return nil, fmt.Errorf("lru.New: %w", err)
	}
	return &Cache{c: c}, nil
}

func blockKey(key string, id int64) string {
	return fmt.Sprintf("%s#%d", key, id)
}

func (c *Cache) get(key string, id int64) ([]byte, bool) {
	v, ok := c.c.Get(blockKey(key, id))
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (c *Cache) add(key string, id int64, data []byte) {
	c.c.Add(blockKey(key, id), data)
}

// PurgeKey evicts every cached block for the given resource key. The
// underlying LRU has no prefix-scan, so this walks the full key list; it
// is expected to be called rarely (dataset close), not per-chunk.
func (c *Cache) PurgeKey(key string) {
	prefix := key + "#"
	for _, k := range c.c.Keys() {
		if sk, ok := k.(string); ok && len(sk) >= len(prefix) && sk[:len(prefix)] == prefix {
			c.c.Remove(k)
		}
	}
}

// BlockCache exposes a KeyReaderAt that serves primarily from an internal
// Cache, fetching and caching fixed-size blocks from reader on a miss.
// Concurrent reads of the same block on the same key collapse onto a
// single fetch.
type BlockCache struct {
	blockSize int64
	cache     *Cache
	reader    KeyReaderAt

	mu      sync.Mutex
	pending map[string]*sync.WaitGroup
}

// New wraps reader with a Cache of the given blockSize (bytes, default
// 64KiB when 0).
func New(reader KeyReaderAt, cache *Cache, blockSize uint) *BlockCache {
	if blockSize == 0 {
		blockSize = 64 * 1024
	}
	return &BlockCache{
		blockSize: int64(blockSize),
		cache:     cache,
		reader:    reader,
		pending:   make(map[string]*sync.WaitGroup),
	}
}

func (b *BlockCache) Purge() {
	b.cache.c.Purge()
}

func (b *BlockCache) PurgeKey(key string) {
	b.cache.PurgeKey(key)
}

// getBlock returns block number id of key (the blockSize bytes starting at
// byte id*blockSize, fewer at the end of the data), fetching it from reader
// on a cache miss. Concurrent callers for the same
// block wait on one fetch instead of issuing redundant reads.
func (b *BlockCache) getBlock(key string, id int64) ([]byte, error) {
	if data, ok := b.cache.get(key, id); ok {
		return data, nil
	}

	bk := blockKey(key, id)
	b.mu.Lock()
	if wg, inflight := b.pending[bk]; inflight {
		b.mu.Unlock()
		wg.Wait()
		data, _ := b.cache.get(key, id)
		return data, nil
	}
	wg := &sync.WaitGroup{}
	wg.Add(1)
	b.pending[bk] = wg
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, bk)
		b.mu.Unlock()
		wg.Done()
	}()

	buf := make([]byte, b.blockSize)
	n, err := b.reader.ReadAt(key, buf, id*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	buf = buf[:n]
	b.cache.add(key, id, buf)
	return buf, nil
}

// ReadAt implements KeyReaderAt by assembling p from cached blocks,
// fetching any missing ones from the wrapped reader.
func (b *BlockCache) ReadAt(key string, p []byte, off int64) (int, error) {
	written := 0
	for written < len(p) {
		absOff := off + int64(written)
		blockID := absOff / b.blockSize
		blockOff := absOff % b.blockSize

		data, err := b.getBlock(key, blockID)
		if err != nil {
			return written, err
		}
		if blockOff >= int64(len(data)) {
			return written, io.EOF
		}
		n := copy(p[written:], data[blockOff:])
		written += n
		if int64(n) < int64(len(data))-blockOff {
			// copied less than available because p is full
			break
		}
	}
	if written < len(p) {
		return written, io.EOF
	}
	return written, nil
}
