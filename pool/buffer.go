package pool

// bufferMinCap is the initial capacity of a Buffer.
const bufferMinCap = 256

// Buffer is an append-only byte sink living in an arena. It grows with
// Reallocate, so abandoned generations are reclaimed at the next Pop.
//
// Once an allocation fails every later write reports ErrOutOfMemory.
type Buffer struct {
	alloc *Allocator
	buf   []byte
	n     int
	err   error
}

// NewBuffer creates an empty buffer with room for capacity bytes.
func NewBuffer(a *Allocator, capacity int) *Buffer {
	b := &Buffer{alloc: a}
	if capacity < bufferMinCap {
		capacity = bufferMinCap
	}
	b.buf = a.Allocate(capacity)
	if b.buf == nil {
		b.err = ErrOutOfMemory
	}
	return b
}

// Write appends p. It implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	if !b.grow(len(p)) {
		return 0, b.err
	}
	b.n += copy(b.buf[b.n:], p)
	return len(p), nil
}

// WriteString appends s. It implements io.StringWriter.
func (b *Buffer) WriteString(s string) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	if !b.grow(len(s)) {
		return 0, b.err
	}
	b.n += copy(b.buf[b.n:], s)
	return len(s), nil
}

// WriteByte appends c. It implements io.ByteWriter.
func (b *Buffer) WriteByte(c byte) error {
	_, err := b.Write([]byte{c})
	return err
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int {
	return b.n
}

// Err returns the sticky allocation error, if any.
func (b *Buffer) Err() error {
	return b.err
}

// Bytes returns the written bytes. The slice aliases arena memory and is
// invalid after the allocator releases the mark it was allocated under.
func (b *Buffer) Bytes() []byte {
	return b.buf[:b.n]
}

// String returns a copy of the written bytes that outlives the arena.
func (b *Buffer) String() string {
	return string(b.buf[:b.n])
}

// Truncate discards all but the first n bytes.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > b.n {
		return
	}
	b.n = n
}

func (b *Buffer) grow(extra int) bool {
	need := b.n + extra
	if need < b.n {
		b.err = ErrOutOfMemory
		return false
	}
	if need <= len(b.buf) {
		return true
	}
	newCap := 2 * len(b.buf)
	if newCap < need {
		newCap = need
	}
	nb := b.alloc.Reallocate(b.buf, newCap)
	if nb == nil {
		b.err = ErrOutOfMemory
		return false
	}
	b.buf = nb
	return true
}
