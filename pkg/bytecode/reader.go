package bytecode

import (
	"errors"
	"fmt"
)

// ErrCorruptStream indicates a code section that this package could not
// have written: an unknown opcode, a truncated operand or a constant index
// outside the pool.
var ErrCorruptStream = errors.New("bytecode: corrupt instruction stream")

// Instruction is one decoded instruction.
type Instruction struct {
	Offset  int    // Offset of the opcode byte
	Op      Opcode // Decoded opcode
	Operand int    // Constant index for constant loads, 0 otherwise
	Len     int    // Encoded length including the opcode
}

// Reader walks a chunk's code with an instruction pointer, using the same
// length rules as the disassembler. It is the decoding half of the
// contract a VM relies on.
type Reader struct {
	chunk *Chunk
	ip    int
}

// NewReader returns a reader positioned at offset 0.
func NewReader(c *Chunk) *Reader {
	return &Reader{chunk: c}
}

// IP returns the offset of the next instruction.
func (r *Reader) IP() int { return r.ip }

// Done reports whether the reader has consumed the whole code section.
func (r *Reader) Done() bool { return r.ip >= r.chunk.code.Len() }

// Next decodes the instruction at the instruction pointer and advances past
// it. Returns an error wrapping ErrCorruptStream if the bytes at the
// pointer do not form a valid instruction.
func (r *Reader) Next() (Instruction, error) {
	code := r.chunk.code.Slice()
	if r.ip >= len(code) {
		return Instruction{}, fmt.Errorf("%w: read past end at offset %04d", ErrCorruptStream, r.ip)
	}

	op := Opcode(code[r.ip])
	if !op.IsKnown() {
		return Instruction{}, fmt.Errorf("%w: unknown opcode 0x%02X at offset %04d", ErrCorruptStream, byte(op), r.ip)
	}
	ins := Instruction{Offset: r.ip, Op: op, Len: op.InstructionLen()}
	if r.ip+ins.Len > len(code) {
		return Instruction{}, fmt.Errorf("%w: %s at offset %04d truncated", ErrCorruptStream, op, r.ip)
	}

	if op.IsConstant() {
		idx, _ := r.chunk.ReadConstantIndex(r.ip)
		if idx < 0 || idx >= r.chunk.constants.Len() {
			return Instruction{}, fmt.Errorf("%w: constant %d at offset %04d outside pool of %d",
				ErrCorruptStream, idx, r.ip, r.chunk.constants.Len())
		}
		ins.Operand = idx
	}

	r.ip += ins.Len
	return ins, nil
}

// Validate checks that the code section decodes cleanly from offset 0 to
// the end and that the line table covers every code byte.
func (c *Chunk) Validate() error {
	if c.lines.Len() != c.code.Len() {
		return fmt.Errorf("%w: line table covers %d offsets, code has %d bytes",
			ErrCorruptStream, c.lines.Len(), c.code.Len())
	}
	r := NewReader(c)
	for !r.Done() {
		if _, err := r.Next(); err != nil {
			return err
		}
	}
	return nil
}
