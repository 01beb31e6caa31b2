// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package typecache deduplicates the type descriptors a compilation builds
// over and over: scalars, vectors, and matrices with a given precision and
// qualifier.
//
// A Cache is reference counted. Initialize and Destroy bracket every
// compilation that uses it, and nested compilations on the same worker share
// one cache. The cache's descriptors live in its own arena and are released
// together when the last reference is dropped, so callers must not keep a
// descriptor past their matching Destroy.
package typecache

import (
	"fmt"
	"sync/atomic"

	"fortio.org/safecast"

	"github.com/gogpu/shtrans/pool"
	"github.com/gogpu/shtrans/types"
)

// ContractError reports misuse of the cache lifecycle. It is raised with
// panic: misuse is a compiler defect, not an input error.
type ContractError struct {
	Op      string
	Message string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("typecache: %s: %s", e.Op, e.Message)
}

func violation(op, format string, args ...any) {
	panic(&ContractError{Op: op, Message: fmt.Sprintf(format, args...)})
}

// key packs the identity of a non-struct type, one byte per field.
type key uint64

func makeKey(b types.BasicType, p types.Precision, q types.Qualifier, primary, secondary uint8) key {
	return key(b) | key(p)<<8 | key(q)<<16 | key(primary)<<24 | key(secondary)<<32
}

// Cache maps packed type signatures to realized descriptors.
type Cache struct {
	opts pool.Options
	refs atomic.Int32

	alloc   *pool.Allocator
	slab    *pool.Objects[types.Type]
	entries map[key]*types.Type
}

// New returns an uninitialized cache whose descriptors will live in an arena
// built with opts.
func New(opts pool.Options) *Cache {
	return &Cache{opts: opts}
}

// Initialize takes a reference, creating the cache storage on the first one.
func (c *Cache) Initialize() {
	if c.refs.Add(1) == 1 {
		c.alloc = pool.New(c.opts)
		c.slab = pool.NewObjects[types.Type](c.alloc)
		c.entries = make(map[key]*types.Type)
	}
}

// Destroy drops a reference. The last one frees every descriptor.
// Destroying a cache with no references panics with *ContractError.
func (c *Cache) Destroy() {
	n := c.refs.Add(-1)
	if n < 0 {
		c.refs.Add(1)
		violation("destroy", "reference count already zero")
	}
	if n == 0 {
		c.alloc.Destroy()
		c.alloc = nil
		c.slab = nil
		c.entries = nil
	}
}

// Refs returns the number of outstanding references.
func (c *Cache) Refs() int {
	return int(c.refs.Load())
}

// Len returns the number of cached descriptors.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Type returns the descriptor for the given signature, constructing it on
// first use. Identical arguments yield the identical pointer for the
// lifetime of the cache. Sizes outside 1..255 panic with *ContractError.
func (c *Cache) Type(b types.BasicType, p types.Precision, q types.Qualifier, primary, secondary int) *types.Type {
	if c.refs.Load() <= 0 {
		violation("get type", "cache used before Initialize or after Destroy")
	}
	s1 := narrow("primary size", primary)
	s2 := narrow("secondary size", secondary)
	k := makeKey(b, p, q, s1, s2)
	if t, ok := c.entries[k]; ok {
		return t
	}
	t := c.slab.New(types.Make(b, p, q, s1, s2)).Realize()
	c.entries[k] = t
	return t
}

// Precise returns a temporary scalar with precision p.
func (c *Cache) Precise(b types.BasicType, p types.Precision) *types.Type {
	return c.Type(b, p, types.QualTemporary, 1, 1)
}

// Sized returns a global type of undefined precision. Note the qualifier
// differs from Precise: Sized(Float, 1, 1) and Precise(Float, PrecisionUndefined)
// are distinct descriptors.
func (c *Cache) Sized(b types.BasicType, primary, secondary int) *types.Type {
	return c.Type(b, types.PrecisionUndefined, types.QualGlobal, primary, secondary)
}

// Qualified returns a type of undefined precision with qualifier q.
func (c *Cache) Qualified(b types.BasicType, q types.Qualifier, primary, secondary int) *types.Type {
	return c.Type(b, types.PrecisionUndefined, q, primary, secondary)
}

// Stats reports the footprint of the cache's arena.
func (c *Cache) Stats() pool.Stats {
	if c.alloc == nil {
		return pool.Stats{}
	}
	return c.alloc.Stats()
}

func narrow(what string, n int) uint8 {
	v, err := safecast.Conv[uint8](n)
	if err != nil || v == 0 {
		violation("get type", "%s %d does not fit the packed key", what, n)
	}
	return v
}
