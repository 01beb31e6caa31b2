package pool

// objectsMinChunk is the length of the first chunk of an Objects slab.
const objectsMinChunk = 16

// Objects is a typed arena for values that hold Go pointers and therefore
// cannot be placed in raw pages. It is attached to an Allocator and follows
// its mark stack: Pop releases every object created since the matching
// Push, and the released slots are reused by later calls to New.
//
// Like the bump pages, chunks never move, so pointers returned by New stay
// valid until released.
type Objects[T any] struct {
	alloc  *Allocator
	chunks [][]T
	n      int
	marks  []int
}

// NewObjects creates a slab attached to a. Marks already outstanding on a
// cover the slab as well, so popping them releases its objects.
func NewObjects[T any](a *Allocator) *Objects[T] {
	o := &Objects[T]{alloc: a}
	o.marks = make([]int, len(a.marks))
	a.scopes = append(a.scopes, o)
	return o
}

// New stores v in the arena and returns a stable pointer to it.
// It panics with *ContractError while the allocator is locked.
func (o *Objects[T]) New(v T) *T {
	if o.alloc.locked {
		contractViolation("new object", "allocator is locked")
	}
	chunk, idx := o.coordinates(o.n)
	for chunk >= len(o.chunks) {
		size := objectsMinChunk
		if len(o.chunks) > 0 {
			size = 2 * len(o.chunks[len(o.chunks)-1])
		}
		o.chunks = append(o.chunks, make([]T, size))
	}
	slot := &o.chunks[chunk][idx]
	*slot = v
	o.n++
	return slot
}

// Len returns the number of live objects.
func (o *Objects[T]) Len() int {
	return o.n
}

// coordinates maps an object index to its chunk and offset. Chunk k holds
// objectsMinChunk<<k elements.
func (o *Objects[T]) coordinates(i int) (chunk, idx int) {
	for size := objectsMinChunk; i >= size; size *= 2 {
		i -= size
		chunk++
	}
	return chunk, i
}

func (o *Objects[T]) mark() {
	o.marks = append(o.marks, o.n)
}

func (o *Objects[T]) release() {
	if len(o.marks) == 0 {
		return
	}
	keep := o.marks[len(o.marks)-1]
	o.marks = o.marks[:len(o.marks)-1]
	o.truncate(keep)
}

func (o *Objects[T]) reset() {
	o.marks = nil
	o.truncate(0)
	o.chunks = nil
}

// truncate drops objects from index keep onwards, zeroing them so the
// garbage collector can reclaim what they referenced.
func (o *Objects[T]) truncate(keep int) {
	var zero T
	for i := keep; i < o.n; i++ {
		chunk, idx := o.coordinates(i)
		o.chunks[chunk][idx] = zero
	}
	o.n = keep
}
