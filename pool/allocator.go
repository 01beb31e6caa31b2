package pool

import (
	"encoding/binary"
	"math/bits"
	"unsafe"

	"fortio.org/safecast"
)

// Block layout inside a page:
//
//	[header: size u64 | prev link u64][pre-guard][payload][post-guard][pad]
//
// The prev link is the offset+1 of the previous header in the same page,
// zero for the first block, so Check can walk a page back to front.
const (
	headerBytes = 16
	guardSize   = 16

	guardBeginValue = 0xfb
	guardEndValue   = 0xfe
	userDataFill    = 0xcd
)

// page is one arena page, or a dedicated block spanning several pages.
type page struct {
	// buf is the aligned usable region.
	buf []byte

	// units is the number of page-size units backing buf. Blocks with more
	// than one unit are freed outright on release instead of recycled.
	units int

	// last is the offset+1 of the most recent header, zero when empty.
	last int
}

type mark struct {
	pages     int
	offset    int
	last      int
	allocated int
	blocks    int
}

// scope is implemented by typed arenas sharing the allocator's mark stack.
type scope interface {
	mark()
	release()
	reset()
}

// Allocator is a stack-discipline arena. See the package documentation.
type Allocator struct {
	opts Options

	// headerSize is header plus pre-guard, rounded to the alignment.
	headerSize int
	// trailerSize is the post-guard size.
	trailerSize int

	inUse  []*page
	free   []*page
	offset int // into inUse[len(inUse)-1]
	marks  []mark
	locked bool

	held      int // bytes backing inUse and free pages
	allocated int // payload bytes handed out since creation or last release
	blocks    int

	scopes []scope
}

// New creates an allocator. Options are normalized: the page size is raised
// to MinPageSize and the alignment forced to a power of two no smaller than
// a pointer.
func New(opts Options) *Allocator {
	opts = opts.normalize()
	a := &Allocator{opts: opts}
	header := headerBytes
	if opts.Guards {
		header += guardSize
		a.trailerSize = guardSize
	}
	a.headerSize, _ = alignUp(header, opts.Alignment)
	return a
}

// Options returns the normalized options.
func (a *Allocator) Options() Options {
	return a.opts
}

// Alignment returns the alignment of every block.
func (a *Allocator) Alignment() int {
	return a.opts.Alignment
}

// Allocate returns a zeroed block of n bytes aligned to Alignment. With
// guards enabled the block is filled with 0xcd instead.
//
// Allocate returns nil when the size computation overflows or the arena
// cannot obtain more memory. It panics with *ContractError while locked.
func (a *Allocator) Allocate(n int) []byte {
	if a.locked {
		contractViolation("allocate", "allocator is locked")
	}
	if n < 0 {
		return nil
	}
	total, ok := a.blockSize(n)
	if !ok {
		return nil
	}

	// Fast path: bump inside the current page.
	if cur := a.current(); cur != nil && total <= len(cur.buf)-a.offset {
		return a.place(cur, n, total)
	}

	if total > a.opts.PageSize {
		p := a.newBlock(total)
		if p == nil {
			return nil
		}
		a.inUse = append(a.inUse, p)
		a.offset = 0
		b := a.place(p, n, total)
		// No slack: the next small request starts a fresh page.
		a.offset = len(p.buf)
		return b
	}

	p := a.takePage()
	if p == nil {
		return nil
	}
	a.inUse = append(a.inUse, p)
	a.offset = 0
	return a.place(p, n, total)
}

// AllocateArray allocates count elements of size bytes each, failing
// instead of wrapping when the product overflows.
func (a *Allocator) AllocateArray(count, size int) []byte {
	if count < 0 || size < 0 {
		return nil
	}
	hi, lo := bits.Mul64(uint64(count), uint64(size))
	if hi != 0 {
		return nil
	}
	n, err := safecast.Conv[int](lo)
	if err != nil {
		return nil
	}
	return a.Allocate(n)
}

// Reallocate resizes a block obtained from this allocator.
//
//   - b == nil behaves as Allocate(n).
//   - n == 0 returns nil without freeing; b stays dereferenceable until the
//     next Pop.
//   - n <= len of the block shrinks the recorded size in place and returns
//     the same address.
//   - otherwise a new block is allocated and the old contents copied; the
//     old block is reclaimed at the next Pop.
func (a *Allocator) Reallocate(b []byte, n int) []byte {
	if b == nil {
		return a.Allocate(n)
	}
	if n == 0 {
		return nil
	}
	if n < 0 {
		return nil
	}
	if cap(b) == 0 {
		// Zero-sized blocks carry no address to locate; nothing to copy.
		return a.Allocate(n)
	}

	p, off := a.locate(b)
	size := a.recordedSize(p, off)
	start := off + a.headerSize
	if n <= size {
		binary.LittleEndian.PutUint64(p.buf[off:off+8], uint64(n))
		if a.opts.Guards {
			fill(p.buf[start+n:start+n+guardSize], guardEndValue)
		}
		return p.buf[start : start+n : start+n]
	}

	nb := a.Allocate(n)
	if nb == nil {
		return nil
	}
	copy(nb, p.buf[start:start+size])
	return nb
}

// Push records the current allocation position. Marks nest.
func (a *Allocator) Push() {
	m := mark{
		pages:     len(a.inUse),
		offset:    a.offset,
		allocated: a.allocated,
		blocks:    a.blocks,
	}
	if cur := a.current(); cur != nil {
		m.last = cur.last
	}
	a.marks = append(a.marks, m)
	for _, s := range a.scopes {
		s.mark()
	}
}

// Pop frees everything allocated since the matching Push. Single pages
// return to the free list; dedicated blocks are dropped. Pop with no
// outstanding mark is a no-op.
func (a *Allocator) Pop() {
	if len(a.marks) == 0 {
		return
	}
	m := a.marks[len(a.marks)-1]
	a.marks = a.marks[:len(a.marks)-1]

	for i := len(a.inUse) - 1; i >= m.pages; i-- {
		p := a.inUse[i]
		a.inUse[i] = nil
		if p.units > 1 {
			a.held -= len(p.buf)
			continue
		}
		p.last = 0
		a.free = append(a.free, p)
	}
	a.inUse = a.inUse[:m.pages]
	a.offset = m.offset
	if cur := a.current(); cur != nil {
		cur.last = m.last
	}
	a.allocated = m.allocated
	a.blocks = m.blocks

	for _, s := range a.scopes {
		s.release()
	}
}

// PopAll releases marks until none remain.
func (a *Allocator) PopAll() {
	for len(a.marks) > 0 {
		a.Pop()
	}
}

// Depth returns the number of outstanding marks.
func (a *Allocator) Depth() int {
	return len(a.marks)
}

// Lock forbids allocation until Unlock. Locking twice panics.
func (a *Allocator) Lock() {
	if a.locked {
		contractViolation("lock", "allocator already locked")
	}
	a.locked = true
}

// Unlock re-enables allocation. Unlocking an unlocked allocator panics.
func (a *Allocator) Unlock() {
	if !a.locked {
		contractViolation("unlock", "allocator not locked")
	}
	a.locked = false
}

// Locked reports whether allocation is currently forbidden.
func (a *Allocator) Locked() bool {
	return a.locked
}

// Destroy releases every page, in use or free, and every attached typed
// arena. The allocator is empty and usable afterwards.
func (a *Allocator) Destroy() {
	a.marks = nil
	a.inUse = nil
	a.free = nil
	a.offset = 0
	a.held = 0
	a.allocated = 0
	a.blocks = 0
	for _, s := range a.scopes {
		s.reset()
	}
}

// Stats describes the allocator's current footprint.
type Stats struct {
	PagesInUse     int
	FreePages      int
	BytesHeld      int
	BytesAllocated int
	Blocks         int
	Marks          int
}

// Stats returns a snapshot of the allocator's footprint.
func (a *Allocator) Stats() Stats {
	return Stats{
		PagesInUse:     len(a.inUse),
		FreePages:      len(a.free),
		BytesHeld:      a.held,
		BytesAllocated: a.allocated,
		Blocks:         a.blocks,
		Marks:          len(a.marks),
	}
}

// Check walks every in-use page through the header back-links and verifies
// sizes and, when guards are enabled, the guard bytes around each payload.
func (a *Allocator) Check() error {
	for i, p := range a.inUse {
		for link := p.last; link != 0; {
			off := link - 1
			if off < 0 || off+a.headerSize > len(p.buf) {
				return &CorruptionError{Page: i, Offset: off, Reason: "header link out of range"}
			}
			size, err := safecast.Conv[int](binary.LittleEndian.Uint64(p.buf[off : off+8]))
			if err != nil || off+a.headerSize+size+a.trailerSize > len(p.buf) {
				return &CorruptionError{Page: i, Offset: off, Reason: "block size out of range"}
			}
			if a.opts.Guards {
				start := off + a.headerSize
				if !filledWith(p.buf[off+headerBytes:start], guardBeginValue) {
					return &CorruptionError{Page: i, Offset: off, Reason: "guard before payload overwritten"}
				}
				if !filledWith(p.buf[start+size:start+size+guardSize], guardEndValue) {
					return &CorruptionError{Page: i, Offset: off, Reason: "guard after payload overwritten"}
				}
			}
			prev, err := safecast.Conv[int](binary.LittleEndian.Uint64(p.buf[off+8 : off+16]))
			if err != nil || prev > off {
				return &CorruptionError{Page: i, Offset: off, Reason: "back-link does not point backwards"}
			}
			link = prev
		}
	}
	return nil
}

func (a *Allocator) current() *page {
	if len(a.inUse) == 0 {
		return nil
	}
	return a.inUse[len(a.inUse)-1]
}

// blockSize returns header + payload + trailer rounded to the alignment.
func (a *Allocator) blockSize(n int) (int, bool) {
	overhead := a.headerSize + a.trailerSize
	if n > maxInt-overhead {
		return 0, false
	}
	return alignUp(n+overhead, a.opts.Alignment)
}

// place writes a header at the current offset and returns the payload.
func (a *Allocator) place(p *page, n, total int) []byte {
	off := a.offset
	binary.LittleEndian.PutUint64(p.buf[off:off+8], uint64(n))
	binary.LittleEndian.PutUint64(p.buf[off+8:off+16], uint64(p.last))
	p.last = off + 1

	start := off + a.headerSize
	payload := p.buf[start : start+n : start+n]
	if a.opts.Guards {
		fill(p.buf[off+headerBytes:start], guardBeginValue)
		fill(payload, userDataFill)
		fill(p.buf[start+n:start+n+guardSize], guardEndValue)
	} else {
		clear(payload)
	}

	a.offset = off + total
	a.allocated += n
	a.blocks++
	return payload
}

// takePage pops a page off the free list or allocates a fresh one.
func (a *Allocator) takePage() *page {
	if n := len(a.free); n > 0 {
		p := a.free[n-1]
		a.free[n-1] = nil
		a.free = a.free[:n-1]
		return p
	}
	buf := a.obtain(a.opts.PageSize)
	if buf == nil {
		return nil
	}
	return &page{buf: buf, units: 1}
}

// newBlock allocates a dedicated block spanning enough pages for total.
func (a *Allocator) newBlock(total int) *page {
	units := total / a.opts.PageSize
	if total%a.opts.PageSize != 0 {
		units++
	}
	hi, lo := bits.Mul64(uint64(units), uint64(a.opts.PageSize))
	if hi != 0 {
		return nil
	}
	size, err := safecast.Conv[int](lo)
	if err != nil {
		return nil
	}
	buf := a.obtain(size)
	if buf == nil {
		return nil
	}
	return &page{buf: buf, units: units}
}

// obtain gets an aligned region of size bytes from the Go heap, honoring
// MaxBytes.
func (a *Allocator) obtain(size int) []byte {
	align := a.opts.Alignment
	if size > a.opts.MaxBytes-a.held || size > maxInt-align {
		return nil
	}
	raw := make([]byte, size+align)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	skip := int((uintptr(align) - base%uintptr(align)) % uintptr(align))
	a.held += size
	return raw[skip : skip+size : skip+size]
}

// locate finds the page and header offset of a block payload.
func (a *Allocator) locate(b []byte) (*page, int) {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	for i := len(a.inUse) - 1; i >= 0; i-- {
		p := a.inUse[i]
		base := uintptr(unsafe.Pointer(unsafe.SliceData(p.buf)))
		if addr < base || addr >= base+uintptr(len(p.buf)) {
			continue
		}
		off := int(addr-base) - a.headerSize
		if off < 0 || !p.hasHeaderAt(off) {
			contractViolation("reallocate", "pointer is not the start of a block")
		}
		return p, off
	}
	contractViolation("reallocate", "pointer not owned by this allocator or already released")
	return nil, 0
}

// recordedSize reads the payload size stored in the header at off.
func (a *Allocator) recordedSize(p *page, off int) int {
	size, err := safecast.Conv[int](binary.LittleEndian.Uint64(p.buf[off : off+8]))
	if err != nil {
		contractViolation("reallocate", "corrupted block header: %v", err)
	}
	return size
}

// hasHeaderAt reports whether a block header starts at off.
func (p *page) hasHeaderAt(off int) bool {
	for link := p.last; link != 0; {
		at := link - 1
		if at == off {
			return true
		}
		if at < off {
			return false
		}
		link = int(binary.LittleEndian.Uint64(p.buf[at+8 : at+16]))
	}
	return false
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

func filledWith(b []byte, v byte) bool {
	for _, c := range b {
		if c != v {
			return false
		}
	}
	return true
}
