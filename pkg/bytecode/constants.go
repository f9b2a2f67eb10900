package bytecode

import (
	"errors"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// MaxShortConstants is the number of constants addressable by a one-byte
// operand.
const MaxShortConstants = 256

// ErrTooManyConstants is returned when a single-byte constant index would
// overflow.
var ErrTooManyConstants = errors.New("bytecode: too many constants in one chunk")

// ConstantPool is the append-only table of literal values referenced by
// constant-loading instructions. Identical values are not deduplicated.
type ConstantPool struct {
	values Buffer[Value]
}

// NewConstantPool creates an empty pool backed by mem (nil for the default
// allocator).
func NewConstantPool(mem memory.Allocator) *ConstantPool {
	return &ConstantPool{values: Buffer[Value]{mem: mem}}
}

// Add appends v and returns its index.
func (p *ConstantPool) Add(v Value) int {
	p.values.Push(v)
	return p.values.Len() - 1
}

// AddShort appends v for single-byte addressing. It fails without
// modifying the pool once MaxShortConstants entries are present.
func (p *ConstantPool) AddShort(v Value) (uint8, error) {
	if p.values.Len() >= MaxShortConstants {
		return 0, ErrTooManyConstants
	}
	return uint8(p.Add(v)), nil
}

// At returns the constant at index i. Panics if i is out of range.
func (p *ConstantPool) At(i int) Value {
	return p.values.At(i)
}

// Len returns the number of constants.
func (p *ConstantPool) Len() int {
	return p.values.Len()
}

// Values returns a read-only view of the pool.
func (p *ConstantPool) Values() []Value {
	return p.values.Slice()
}

// Free releases the pool's storage.
func (p *ConstantPool) Free() {
	p.values.Free()
}
