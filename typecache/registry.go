// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package typecache

import (
	"sync"

	"github.com/gogpu/shtrans/pool"
)

// Registry hands each worker its own cache. A worker is whatever runs one
// compilation at a time: a goroutine in a pool, identified by a small id.
// Compilations on different workers never share a cache; nested
// compilations on one worker do.
type Registry struct {
	opts pool.Options

	mu    sync.Mutex
	slots map[int]*Cache
}

// NewRegistry returns an empty registry whose caches use opts.
func NewRegistry(opts pool.Options) *Registry {
	return &Registry{opts: opts, slots: make(map[int]*Cache)}
}

// Acquire initializes the worker's cache, creating it if needed, and
// returns it. Each Acquire must be matched by one Release.
func (r *Registry) Acquire(worker int) *Cache {
	r.mu.Lock()
	c, ok := r.slots[worker]
	if !ok {
		c = New(r.opts)
		r.slots[worker] = c
	}
	r.mu.Unlock()
	c.Initialize()
	return c
}

// Release drops one reference on the worker's cache and detaches it from the
// worker when the last reference goes. Releasing a worker with no cache
// panics with *ContractError.
func (r *Registry) Release(worker int) {
	r.mu.Lock()
	c, ok := r.slots[worker]
	r.mu.Unlock()
	if !ok {
		violation("release", "worker %d has no cache", worker)
	}
	c.Destroy()
	if c.Refs() == 0 {
		r.mu.Lock()
		delete(r.slots, worker)
		r.mu.Unlock()
	}
}

// Lookup returns the worker's cache without taking a reference.
func (r *Registry) Lookup(worker int) (*Cache, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.slots[worker]
	return c, ok
}

// Len returns the number of workers holding a cache.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}
