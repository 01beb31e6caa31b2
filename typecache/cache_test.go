// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package typecache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/shtrans/pool"
	"github.com/gogpu/shtrans/types"
)

func newCache(t *testing.T) *Cache {
	t.Helper()
	c := New(pool.DefaultOptions())
	c.Initialize()
	t.Cleanup(func() {
		for c.Refs() > 0 {
			c.Destroy()
		}
	})
	return c
}

func TestTypeIdentity(t *testing.T) {
	c := newCache(t)

	a := c.Type(types.Float, types.PrecisionUndefined, types.QualTemporary, 1, 1)
	b := c.Type(types.Float, types.PrecisionUndefined, types.QualTemporary, 1, 1)
	assert.Same(t, a, b)

	vec4 := c.Type(types.Float, types.PrecisionUndefined, types.QualTemporary, 4, 1)
	assert.NotSame(t, a, vec4)
	assert.True(t, vec4.IsVector())
	assert.True(t, vec4.Realized())
	assert.Equal(t, 2, c.Len())
}

func TestTypeDistinctFields(t *testing.T) {
	c := newCache(t)
	base := c.Type(types.Int, types.PrecisionMedium, types.QualGlobal, 2, 1)

	variants := []*types.Type{
		c.Type(types.UInt, types.PrecisionMedium, types.QualGlobal, 2, 1),
		c.Type(types.Int, types.PrecisionHigh, types.QualGlobal, 2, 1),
		c.Type(types.Int, types.PrecisionMedium, types.QualConst, 2, 1),
		c.Type(types.Int, types.PrecisionMedium, types.QualGlobal, 3, 1),
		c.Type(types.Int, types.PrecisionMedium, types.QualGlobal, 2, 2),
	}
	seen := map[*types.Type]bool{base: true}
	for _, v := range variants {
		assert.False(t, seen[v], "descriptor %s reused", v)
		seen[v] = true
	}
}

func TestOverloadDefaults(t *testing.T) {
	c := newCache(t)

	precise := c.Precise(types.Float, types.PrecisionUndefined)
	assert.Equal(t, types.QualTemporary, precise.Qualifier())
	assert.Same(t, precise, c.Type(types.Float, types.PrecisionUndefined, types.QualTemporary, 1, 1))

	sized := c.Sized(types.Float, 1, 1)
	assert.Equal(t, types.QualGlobal, sized.Qualifier())
	assert.NotSame(t, precise, sized)

	qualified := c.Qualified(types.Float, types.QualUniform, 4, 4)
	assert.True(t, qualified.IsMatrix())
	assert.Equal(t, types.QualUniform, qualified.Qualifier())
}

func TestNestedInitialize(t *testing.T) {
	c := New(pool.DefaultOptions())
	c.Initialize()
	outer := c.Sized(types.Bool, 3, 1)

	c.Initialize()
	assert.Equal(t, 2, c.Refs())
	assert.Same(t, outer, c.Sized(types.Bool, 3, 1))
	c.Destroy()

	// The outer compile still sees its descriptors.
	assert.Same(t, outer, c.Sized(types.Bool, 3, 1))
	assert.Equal(t, 1, c.Len())
	c.Destroy()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, pool.Stats{}, c.Stats())
}

func TestLifecycleViolations(t *testing.T) {
	c := New(pool.DefaultOptions())

	assertContract := func(op string, fn func()) {
		t.Helper()
		defer func() {
			r := recover()
			ce, ok := r.(*ContractError)
			require.True(t, ok, "panic value %v", r)
			assert.Equal(t, op, ce.Op)
		}()
		fn()
	}

	assertContract("get type", func() { c.Precise(types.Float, types.PrecisionHigh) })
	assertContract("destroy", func() { c.Destroy() })
	assert.Equal(t, 0, c.Refs())

	c.Initialize()
	assertContract("get type", func() { c.Sized(types.Float, 256, 1) })
	assertContract("get type", func() { c.Sized(types.Float, 0, 1) })
	c.Destroy()
	assertContract("get type", func() { c.Sized(types.Float, 1, 1) })
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(pool.DefaultOptions())

	a := r.Acquire(1)
	again := r.Acquire(1)
	assert.Same(t, a, again)
	assert.Equal(t, 2, a.Refs())

	b := r.Acquire(2)
	assert.NotSame(t, a, b)
	assert.NotSame(t, a.Precise(types.Float, types.PrecisionHigh), b.Precise(types.Float, types.PrecisionHigh))

	r.Release(1)
	_, ok := r.Lookup(1)
	assert.True(t, ok)
	r.Release(1)
	_, ok = r.Lookup(1)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())

	r.Release(2)
	assert.Equal(t, 0, r.Len())
	assert.Panics(t, func() { r.Release(2) })
}

func TestRegistryConcurrentWorkers(t *testing.T) {
	r := NewRegistry(pool.DefaultOptions())
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c := r.Acquire(worker)
				x := c.Sized(types.Float, 4, 1)
				y := c.Sized(types.Float, 4, 1)
				if x != y {
					t.Errorf("worker %d: descriptors differ", worker)
				}
				r.Release(worker)
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, 0, r.Len())
}
