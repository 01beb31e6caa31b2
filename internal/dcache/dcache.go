// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package dcache keeps compiled HLSL on disk, keyed by a hash of the
// manifest and the options it was compiled with.
package dcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/gogpu/shtrans"
	"github.com/gogpu/shtrans/hlsl"
)

// schemaVersion is bumped whenever Entry changes shape.
const schemaVersion uint16 = 2

// Digest is a SHA-256 cache key.
type Digest [32]byte

// String returns the hex form of d.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Key hashes a manifest together with the options that affect its output.
func Key(opts shtrans.Options, manifest []byte) (Digest, error) {
	encoded, err := msgpack.Marshal(&opts)
	if err != nil {
		return Digest{}, fmt.Errorf("failed to encode options: %w", err)
	}
	h := sha256.New()
	fmt.Fprintf(h, "shtrans/%d\x00", schemaVersion)
	h.Write(encoded)
	h.Write([]byte{0})
	h.Write(manifest)

	var d Digest
	h.Sum(d[:0])
	return d, nil
}

// Entry is one cached compilation.
type Entry struct {
	Schema uint16
	Module string
	Code   string
	Info   *hlsl.TranslationInfo
}

// Cache is a directory of msgpack encoded entries. It is safe for
// concurrent use. A nil *Cache caches nothing.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open returns a cache rooted at dir, creating the directory.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) pathFor(key Digest) string {
	hexKey := key.String()
	return filepath.Join(c.dir, hexKey[:2], hexKey+".mp")
}

// Put stores e under key. The file is replaced atomically.
func (c *Cache) Put(key Digest, e *Entry) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	stored := *e
	stored.Schema = schemaVersion
	if err := msgpack.NewEncoder(f).Encode(&stored); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get loads the entry stored under key. Entries written by another schema
// version count as misses.
func (c *Cache) Get(key Digest) (*Entry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	if e.Schema != schemaVersion {
		return nil, false, nil
	}
	return &e, true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
