package bytecode

import (
	"encoding/binary"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Chunk is one compiled unit of bytecode: the instruction stream, the
// constants it references and the source line of every code byte.
//
// A chunk has a single owner. It is written by a producer and then read by
// a VM or the disassembler; concurrent writers and readers are not
// supported.
type Chunk struct {
	code      Buffer[byte]
	constants ConstantPool
	lines     LineTable
}

// NewChunk creates an empty chunk using memory.DefaultAllocator.
func NewChunk() *Chunk {
	return NewChunkWithAllocator(nil)
}

// NewChunkWithAllocator creates an empty chunk whose buffers draw storage
// from mem. Nothing is allocated until the first write.
func NewChunkWithAllocator(mem memory.Allocator) *Chunk {
	return &Chunk{
		code:      Buffer[byte]{mem: mem},
		constants: ConstantPool{values: Buffer[Value]{mem: mem}},
		lines:     LineTable{runs: Buffer[LineRun]{mem: mem}},
	}
}

// Write appends b to the code section, attributed to source line.
func (c *Chunk) Write(b byte, line int) {
	c.code.Push(b)
	c.lines.Record(line)
}

// WriteOpcode appends a single-byte opcode.
func (c *Chunk) WriteOpcode(op Opcode, line int) {
	c.Write(byte(op), line)
}

// WriteConstant adds v to the pool and emits the instruction loading it.
// The one-byte OpConstant form is used while the index fits; OpConstantLong
// with a LongIndexWidth big-endian index is used after that. Returns the
// constant's index.
func (c *Chunk) WriteConstant(v Value, line int) int {
	idx := c.constants.Add(v)
	if idx < MaxShortConstants {
		c.WriteOpcode(OpConstant, line)
		c.Write(byte(idx), line)
		return idx
	}

	var operand [LongIndexWidth]byte
	binary.BigEndian.PutUint64(operand[:], uint64(idx))
	c.WriteOpcode(OpConstantLong, line)
	for _, b := range operand {
		c.Write(b, line)
	}
	return idx
}

// AddConstant adds a value to the pool without emitting code and returns
// its index. The caller is responsible for referencing it correctly.
func (c *Chunk) AddConstant(v Value) int {
	return c.constants.Add(v)
}

// Constant returns the constant at the given index.
// Panics if the index is out of bounds.
func (c *Chunk) Constant(index int) Value {
	return c.constants.At(index)
}

// ConstantCount returns the number of constants in the pool.
func (c *Chunk) ConstantCount() int {
	return c.constants.Len()
}

// Constants returns the chunk's constant pool.
func (c *Chunk) Constants() *ConstantPool {
	return &c.constants
}

// Lines returns the chunk's line table.
func (c *Chunk) Lines() *LineTable {
	return &c.lines
}

// Code returns the instruction stream without copying. The slice is only
// valid until the next write.
func (c *Chunk) Code() []byte {
	return c.code.Slice()
}

// Len returns the length of the code section in bytes.
func (c *Chunk) Len() int {
	return c.code.Len()
}

// ReadConstantIndex decodes the operand of the constant-loading
// instruction at offset. It returns the constant index and the total
// instruction length. Panics if the instruction at offset is not a
// constant load or is truncated.
func (c *Chunk) ReadConstantIndex(offset int) (index int, size int) {
	code := c.code.Slice()
	switch op := Opcode(code[offset]); op {
	case OpConstant:
		return int(code[offset+1]), op.InstructionLen()
	case OpConstantLong:
		return int(binary.BigEndian.Uint64(code[offset+1 : offset+1+LongIndexWidth])), op.InstructionLen()
	default:
		panic("bytecode: " + op.String() + " does not load a constant")
	}
}

// Free releases the code, constants and line storage. The chunk is empty
// afterwards and may be written again.
func (c *Chunk) Free() {
	c.code.Free()
	c.constants.Free()
	c.lines.Free()
}
