// Package pool provides the compiler's arena allocator.
//
// An [Allocator] hands out sub-regions of preallocated pages and reclaims
// them only in bulk: either by rewinding to a mark ([Allocator.Push] /
// [Allocator.Pop]) or by destroying the whole arena. Every per-compilation
// data structure of the translator lives in one arena, so releasing the
// outermost mark frees a whole compile in one step.
//
// Three views share one mark stack:
//
//   - [Allocator.Allocate] returns raw byte blocks, each preceded by an
//     in-band header recording its size and a back-link to the previous
//     block in the same page.
//   - [Objects] is a typed slab for values that hold Go pointers (type
//     descriptors, structures) and therefore cannot live in raw pages.
//   - [Buffer] is an append-only text sink that grows with
//     [Allocator.Reallocate].
//
// Usage:
//
//	a := pool.New(pool.DefaultOptions())
//	defer a.Destroy()
//
//	a.Push()
//	buf := a.Allocate(64)
//	...
//	a.Pop() // buf is invalid from here on
//
// An Allocator is owned by a single compile and is not safe for concurrent
// use. Lock and Unlock are not a mutex: they assert that no allocation
// happens during controlled teardown.
package pool
