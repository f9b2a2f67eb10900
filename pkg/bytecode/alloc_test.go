package bytecode

import "github.com/apache/arrow-go/v18/arrow/memory"

// countingAllocator checks byte balance through memory.CheckedAllocator and
// also counts calls, so tests can assert that nothing was touched at all.
type countingAllocator struct {
	*memory.CheckedAllocator
	allocs   int
	reallocs int
	frees    int
}

func newCountingAllocator() *countingAllocator {
	return &countingAllocator{
		CheckedAllocator: memory.NewCheckedAllocator(memory.NewGoAllocator()),
	}
}

func (a *countingAllocator) Allocate(size int) []byte {
	a.allocs++
	return a.CheckedAllocator.Allocate(size)
}

func (a *countingAllocator) Reallocate(size int, b []byte) []byte {
	a.reallocs++
	return a.CheckedAllocator.Reallocate(size, b)
}

func (a *countingAllocator) Free(b []byte) {
	a.frees++
	a.CheckedAllocator.Free(b)
}

// failingAllocator never hands out memory.
type failingAllocator struct{}

func (failingAllocator) Allocate(int) []byte           { return nil }
func (failingAllocator) Reallocate(int, []byte) []byte { return nil }
func (failingAllocator) Free([]byte)                   {}
