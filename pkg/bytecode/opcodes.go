package bytecode

import "fmt"

// Opcode represents a bytecode instruction.
type Opcode byte

const (
	OpConstant     Opcode = 0x00 // Push constant: OpConstant <index:u8>
	OpReturn       Opcode = 0x01 // Return from the current chunk
	OpConstantLong Opcode = 0x02 // Push constant: OpConstantLong <index:u64>
)

// LongIndexWidth is the operand width of OpConstantLong.
const LongIndexWidth = 8

// OpcodeInfo provides metadata about each opcode for decoding and listing.
type OpcodeInfo struct {
	Name       string // Mnemonic
	OperandLen int    // Number of operand bytes following the opcode
}

var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpConstant:     {"OP_CONSTANT", 1},
	OpReturn:       {"OP_RETURN", 0},
	OpConstantLong: {"OP_CONSTANT_LONG", LongIndexWidth},
}

// LookupOpcode returns metadata for op. ok is false for bytes that are not
// opcodes.
func LookupOpcode(op Opcode) (info OpcodeInfo, ok bool) {
	info, ok = opcodeInfoTable[op]
	return info, ok
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns an OpcodeInfo named "UNKNOWN(0xNN)" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the mnemonic of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// IsKnown reports whether op is part of the instruction set.
func (op Opcode) IsKnown() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// OperandLen returns the number of operand bytes for this opcode.
func (op Opcode) OperandLen() int {
	return GetOpcodeInfo(op).OperandLen
}

// InstructionLen returns the total length of an instruction (1 + operand bytes).
func (op Opcode) InstructionLen() int {
	return 1 + op.OperandLen()
}

// IsConstant reports whether op loads a value from the constant pool.
func (op Opcode) IsConstant() bool {
	return op == OpConstant || op == OpConstantLong
}

// AllOpcodes returns the defined opcodes in encoding order.
func AllOpcodes() []Opcode {
	return []Opcode{OpConstant, OpReturn, OpConstantLong}
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
