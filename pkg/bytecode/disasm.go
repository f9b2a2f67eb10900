package bytecode

import (
	"fmt"
	"io"
	"strings"
)

// lineElision replaces the line column when an instruction shares the line
// of the one before it.
const lineElision = "   |"

// Disassemble returns a human-readable bytecode listing headed by name.
func (c *Chunk) Disassemble(name string) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = c.DisassembleTo(&sb, name)
	return sb.String()
}

// DisassembleTo writes the listing for the chunk to w: a "== name ==" header
// followed by one line per instruction.
func (c *Chunk) DisassembleTo(w io.Writer, name string) error {
	if _, err := fmt.Fprintf(w, "== %s ==\n", name); err != nil {
		return err
	}
	offset := 0
	for offset < c.code.Len() {
		text, instrLen := c.disassembleInstruction(offset)
		if _, err := io.WriteString(w, text+"\n"); err != nil {
			return err
		}
		offset += instrLen
	}
	return nil
}

// DisassembleInstruction returns the listing line for the instruction at
// offset and the offset of the next instruction.
func (c *Chunk) DisassembleInstruction(offset int) (string, int) {
	text, instrLen := c.disassembleInstruction(offset)
	return text, offset + instrLen
}

// disassembleInstruction formats one instruction and returns its length.
// An unknown opcode means the stream was not produced by this package and
// is treated as a fatal consistency error.
func (c *Chunk) disassembleInstruction(offset int) (string, int) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04d ", offset)

	if line, first, _ := c.lines.Lookup(offset); first {
		fmt.Fprintf(&sb, "%4d ", line)
	} else {
		sb.WriteString(lineElision + " ")
	}

	op := Opcode(c.code.At(offset))
	info, ok := LookupOpcode(op)
	if !ok {
		panic(fmt.Sprintf("bytecode: unknown opcode 0x%02X at offset %04d", byte(op), offset))
	}

	switch op {
	case OpConstant, OpConstantLong:
		idx, instrLen := c.ReadConstantIndex(offset)
		fmt.Fprintf(&sb, "%-16s %04d '%v'", info.Name, idx, c.constants.At(idx))
		return sb.String(), instrLen
	default:
		sb.WriteString(info.Name)
		return sb.String(), op.InstructionLen()
	}
}

// DisassembleToLines returns the listing without a header, one entry per
// instruction.
func (c *Chunk) DisassembleToLines() []string {
	var lines []string
	offset := 0
	for offset < c.code.Len() {
		line, instrLen := c.disassembleInstruction(offset)
		lines = append(lines, line)
		offset += instrLen
	}
	return lines
}

// InstructionCount returns the number of instructions in the chunk.
// Note: This iterates through all code, so it's O(n).
func (c *Chunk) InstructionCount() int {
	count := 0
	offset := 0
	code := c.code.Slice()
	for offset < len(code) {
		offset += Opcode(code[offset]).InstructionLen()
		count++
	}
	return count
}
