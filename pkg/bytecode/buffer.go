package bytecode

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ErrOutOfMemory is the panic value (wrapped) raised when a buffer cannot
// obtain backing storage. Growth failures are not recoverable.
var ErrOutOfMemory = errors.New("bytecode: out of memory")

// minBufferCap is the capacity of a buffer's first allocation.
const minBufferCap = 8

// Buffer is a growable, contiguous sequence of fixed-size elements whose
// backing storage comes from an arrow memory.Allocator.
//
// T must be pointer-free: the storage is raw allocator bytes viewed as []T,
// so the garbage collector does not scan it. Buffers are only instantiated
// in this package with byte, Value and LineRun.
//
// The zero value is an empty buffer using memory.DefaultAllocator.
type Buffer[T any] struct {
	mem  memory.Allocator
	raw  []byte // allocation as returned by mem, passed back unchanged
	data []T    // view over raw, len == cap of the buffer
	n    int
}

// NewBuffer creates an empty buffer. No allocation happens until the first
// Push. A nil allocator selects memory.DefaultAllocator.
func NewBuffer[T any](mem memory.Allocator) *Buffer[T] {
	return &Buffer[T]{mem: mem}
}

// Len returns the number of elements held.
func (b *Buffer[T]) Len() int { return b.n }

// Cap returns the number of elements the current allocation can hold.
func (b *Buffer[T]) Cap() int { return len(b.data) }

// At returns the element at index i. Panics if i is out of range.
func (b *Buffer[T]) At(i int) T {
	if i < 0 || i >= b.n {
		panic(fmt.Sprintf("bytecode: buffer index %d out of range [0:%d]", i, b.n))
	}
	return b.data[i]
}

// Slice returns a view of the occupied elements. The view aliases the
// buffer's storage and is invalidated by the next growth or Free.
func (b *Buffer[T]) Slice() []T {
	return b.data[:b.n:b.n]
}

// Last returns a pointer to the final element, or nil when empty.
func (b *Buffer[T]) Last() *T {
	if b.n == 0 {
		return nil
	}
	return &b.data[b.n-1]
}

// Push appends v, growing the allocation first when full.
func (b *Buffer[T]) Push(v T) {
	if b.n == len(b.data) {
		b.grow(growCap(len(b.data)))
	}
	b.data[b.n] = v
	b.n++
}

// Pop removes and returns the last element. ok is false if the buffer is
// empty.
func (b *Buffer[T]) Pop() (v T, ok bool) {
	if b.n == 0 {
		return v, false
	}
	b.n--
	v = b.data[b.n]
	var zero T
	b.data[b.n] = zero
	return v, true
}

// Free releases the held elements and the backing allocation. The buffer
// returns to its empty, unallocated state and may be reused. Freeing a
// buffer that never allocated makes no allocator call.
func (b *Buffer[T]) Free() {
	if b.raw == nil {
		return
	}
	clear(b.data[:b.n])
	b.allocator().Free(b.raw)
	b.raw = nil
	b.data = nil
	b.n = 0
}

func (b *Buffer[T]) allocator() memory.Allocator {
	if b.mem == nil {
		b.mem = memory.DefaultAllocator
	}
	return b.mem
}

// growCap is the growth policy: 8 for the first allocation, doubling after.
func growCap(old int) int {
	if old < minBufferCap {
		return minBufferCap
	}
	return old * 2
}

func (b *Buffer[T]) grow(newCap int) {
	var zero T
	elem := int(unsafe.Sizeof(zero))
	if elem == 0 {
		elem = 1
	}
	if newCap < 0 || newCap > math.MaxInt/elem {
		panic(fmt.Errorf("%w: %d elements of %d bytes exceeds addressable size", ErrOutOfMemory, newCap, elem))
	}
	size := newCap * elem

	var raw []byte
	if b.raw == nil {
		raw = b.allocator().Allocate(size)
	} else {
		raw = b.allocator().Reallocate(size, b.raw)
	}
	if len(raw) < size {
		panic(fmt.Errorf("%w: allocator returned %d of %d bytes", ErrOutOfMemory, len(raw), size))
	}

	b.raw = raw
	b.data = unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(raw))), newCap)
}
