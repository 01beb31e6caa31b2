package pool

import "math/bits"

// Default allocator parameters.
const (
	// DefaultPageSize is the size of one arena page.
	DefaultPageSize = 16 * 1024

	// DefaultAlignment is the alignment of every returned block.
	DefaultAlignment = 16

	// MinPageSize is the smallest accepted page size.
	MinPageSize = 4 * 1024

	// DefaultMaxBytes caps the total bytes obtained from the Go heap.
	DefaultMaxBytes = 1 << 30

	// pointerSize is the minimum alignment.
	pointerSize = bits.UintSize / 8
)

// Options configures an Allocator.
type Options struct {
	// PageSize is the size of one page. Values below MinPageSize are raised.
	PageSize int

	// Alignment of every returned block. Forced to at least the pointer size
	// and rounded up to the next power of two.
	Alignment int

	// Guards surrounds every block with guard bytes that Check verifies.
	Guards bool

	// MaxBytes caps the bytes the arena may hold at once. Allocations that
	// would exceed it fail like an out-of-memory condition. Zero means
	// DefaultMaxBytes.
	MaxBytes int
}

// DefaultOptions returns the options used by the translator.
func DefaultOptions() Options {
	return Options{
		PageSize:  DefaultPageSize,
		Alignment: DefaultAlignment,
		Guards:    false,
		MaxBytes:  DefaultMaxBytes,
	}
}

// normalize applies minimums and power-of-two rounding.
func (o Options) normalize() Options {
	if o.PageSize < MinPageSize {
		o.PageSize = MinPageSize
	}
	if o.Alignment < pointerSize {
		o.Alignment = pointerSize
	}
	o.Alignment = nextPowerOfTwo(o.Alignment)
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	return o
}

// nextPowerOfTwo rounds n up to a power of two.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// alignUp rounds n up to a multiple of align (a power of two).
// ok is false when the result would overflow int.
func alignUp(n, align int) (int, bool) {
	mask := align - 1
	if n > maxInt-mask {
		return 0, false
	}
	return (n + mask) &^ mask, true
}

const maxInt = int(^uint(0) >> 1)
