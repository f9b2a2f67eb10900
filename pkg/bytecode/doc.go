// Package bytecode provides the instruction storage for a stack-based
// bytecode virtual machine: chunks of opcodes and operands, their constant
// pools and source line tables, and a disassembler that renders a chunk as
// text.
//
// The bytecode format is designed for:
//   - Compact representation (1 byte per opcode, operands packed inline)
//   - Fast decoding (fixed operand width per opcode)
//   - Easy serialization (see Serialize and the "LXBC" format)
//
// # Architecture Overview
//
//   - Buffer: a growable contiguous array backed by an arrow
//     memory.Allocator. Capacity starts at 8 and doubles. Every other
//     structure in this package is built on it.
//
//   - ConstantPool: append-only Values referenced by index. OpConstant
//     addresses the first 256 entries with a one-byte operand;
//     OpConstantLong addresses the rest with an 8-byte operand.
//
//   - LineTable: run-length encoded source lines, one entry per code byte.
//
//   - Chunk: code, constants and lines written together through Write,
//     WriteOpcode and WriteConstant.
//
//   - Reader and the disassembler: walk the code from offset 0 using the
//     same instruction length rules a VM uses.
//
// # Disassembly Format
//
//	== test chunk ==
//	0000  123 OP_CONSTANT      0000 '1.2'
//	0002    | OP_RETURN
//
// Each line holds the 4-digit offset, the source line (or "|" when it
// repeats the previous instruction's line), the mnemonic and, for constant
// loads, the pool index and value.
//
// # Memory
//
// Allocation failure is fatal: a Buffer that cannot grow panics with an
// error wrapping ErrOutOfMemory. Chunk.Free returns all storage to the
// allocator; a chunk that was never written makes no allocator calls.
package bytecode
