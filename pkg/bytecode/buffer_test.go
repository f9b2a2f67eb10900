package bytecode

import (
	"errors"
	"math"
	"testing"
)

func TestBufferZeroValue(t *testing.T) {
	var b Buffer[int64]
	if b.Len() != 0 || b.Cap() != 0 {
		t.Fatalf("zero buffer len=%d cap=%d, want 0/0", b.Len(), b.Cap())
	}
	b.Push(7)
	if b.Len() != 1 || b.At(0) != 7 {
		t.Errorf("after Push: len=%d at(0)=%d", b.Len(), b.At(0))
	}
	b.Free()
}

func TestBufferNoAllocationUntilPush(t *testing.T) {
	mem := newCountingAllocator()
	b := NewBuffer[byte](mem)

	if b.Cap() != 0 {
		t.Errorf("Cap() = %d, want 0", b.Cap())
	}
	if mem.allocs != 0 {
		t.Errorf("allocations = %d, want 0", mem.allocs)
	}
	b.Free()
	if mem.frees != 0 {
		t.Errorf("frees = %d, want 0 for a buffer that never allocated", mem.frees)
	}
}

func TestBufferGrowthKeepsElements(t *testing.T) {
	mem := newCountingAllocator()
	defer mem.AssertSize(t, 0)

	b := NewBuffer[int32](mem)
	const n = 1000
	for i := 0; i < n; i++ {
		b.Push(int32(i * 3))
		if b.Len() != i+1 {
			t.Fatalf("after %d pushes Len() = %d", i+1, b.Len())
		}
		if b.Len() > b.Cap() {
			t.Fatalf("len %d exceeds cap %d", b.Len(), b.Cap())
		}
	}
	for i := 0; i < n; i++ {
		if got := b.At(i); got != int32(i*3) {
			t.Fatalf("At(%d) = %d, want %d", i, got, i*3)
		}
	}
	b.Free()
}

func TestBufferGrowthPolicy(t *testing.T) {
	mem := newCountingAllocator()
	defer mem.AssertSize(t, 0)

	b := NewBuffer[Value](mem)
	prev := 0
	var caps []int
	for i := 0; i < 200; i++ {
		b.Push(Value(i))
		if c := b.Cap(); c != prev {
			switch {
			case prev == 0 && c != 8:
				t.Errorf("first growth to %d, want 8", c)
			case prev != 0 && c != 2*prev:
				t.Errorf("growth from %d to %d, want %d", prev, c, 2*prev)
			}
			caps = append(caps, c)
			prev = c
		}
	}

	want := []int{8, 16, 32, 64, 128, 256}
	if len(caps) != len(want) {
		t.Fatalf("capacities = %v, want %v", caps, want)
	}
	for i := range want {
		if caps[i] != want[i] {
			t.Errorf("capacities = %v, want %v", caps, want)
			break
		}
	}
	if mem.allocs != 1 || mem.reallocs != len(want)-1 {
		t.Errorf("allocs=%d reallocs=%d, want 1/%d", mem.allocs, mem.reallocs, len(want)-1)
	}
	b.Free()
}

func TestBufferPop(t *testing.T) {
	b := NewBuffer[byte](nil)
	defer b.Free()

	if _, ok := b.Pop(); ok {
		t.Error("Pop on empty buffer reported a value")
	}

	b.Push(1)
	b.Push(2)
	capBefore := b.Cap()

	v, ok := b.Pop()
	if !ok || v != 2 {
		t.Errorf("Pop() = %d, %v, want 2, true", v, ok)
	}
	v, ok = b.Pop()
	if !ok || v != 1 {
		t.Errorf("Pop() = %d, %v, want 1, true", v, ok)
	}
	if _, ok := b.Pop(); ok {
		t.Error("Pop after draining reported a value")
	}
	if b.Cap() != capBefore {
		t.Errorf("Cap() = %d after pops, want %d", b.Cap(), capBefore)
	}
}

func TestBufferFreeOnce(t *testing.T) {
	mem := newCountingAllocator()
	defer mem.AssertSize(t, 0)

	b := NewBuffer[LineRun](mem)
	for i := 0; i < 20; i++ {
		b.Push(LineRun{Line: i, Count: 1})
	}
	b.Free()
	b.Free()

	if mem.frees != 1 {
		t.Errorf("frees = %d, want 1", mem.frees)
	}
	if b.Len() != 0 || b.Cap() != 0 {
		t.Errorf("after Free len=%d cap=%d, want 0/0", b.Len(), b.Cap())
	}

	// A freed buffer is reusable.
	b.Push(LineRun{Line: 1, Count: 1})
	if b.Cap() != 8 {
		t.Errorf("Cap() after reuse = %d, want 8", b.Cap())
	}
	b.Free()
}

func TestBufferSliceView(t *testing.T) {
	b := NewBuffer[byte](nil)
	defer b.Free()

	for _, v := range []byte("chunk") {
		b.Push(v)
	}
	if got := string(b.Slice()); got != "chunk" {
		t.Errorf("Slice() = %q, want %q", got, "chunk")
	}
	if last := b.Last(); last == nil || *last != 'k' {
		t.Errorf("Last() = %v, want 'k'", last)
	}
}

func TestBufferAtOutOfRange(t *testing.T) {
	b := NewBuffer[byte](nil)
	b.Push(1)
	defer b.Free()

	defer func() {
		if recover() == nil {
			t.Error("At(1) on a one-element buffer did not panic")
		}
	}()
	b.At(1)
}

func TestBufferAllocationFailureIsFatal(t *testing.T) {
	b := NewBuffer[byte](failingAllocator{})

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrOutOfMemory) {
			t.Errorf("recovered %v, want error wrapping ErrOutOfMemory", r)
		}
	}()
	b.Push(1)
}

func TestBufferOversizedGrowthIsFatal(t *testing.T) {
	mem := newCountingAllocator()
	b := NewBuffer[LineRun](mem)

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrOutOfMemory) {
			t.Errorf("recovered %v, want error wrapping ErrOutOfMemory", r)
		}
		if mem.allocs != 0 {
			t.Errorf("allocator called %d times for an unrepresentable size", mem.allocs)
		}
	}()
	b.grow(math.MaxInt / 2)
}
