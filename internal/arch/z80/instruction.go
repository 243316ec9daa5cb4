package z80

import "strings"

// OperandKind defines the type of the numeric operand of an instruction.
type OperandKind uint8

// Operand kinds of a decoded instruction.
const (
	OperandNone      OperandKind = iota
	OperandAbsolute              // 16 bit immediate or memory address
	OperandImmediate             // 8 bit immediate or port
	OperandRelative              // signed jump displacement
	OperandIndexed               // signed index register displacement
)

// Operand is the raw numeric operand of an instruction before any symbol
// substitution.
type Operand struct {
	Kind  OperandKind
	Value int
}

// Instruction is a single decoded instruction.
type Instruction struct {
	Address uint16 // address of the first byte, including prefixes
	Data    []byte // all bytes of the instruction
	Text    string // rendered assembly text, empty for undefined opcodes
	Length  int    // number of bytes consumed

	Operand Operand

	Indexed      bool // uses an (ix + N) or (iy + N) memory operand
	Displacement int8 // displacement of the indexed memory operand
}

// HasOperand returns whether the instruction has a numeric operand.
func (i Instruction) HasOperand() bool {
	return i.Operand.Kind != OperandNone
}

// IsUndefined returns whether the bytes did not decode to a defined instruction.
func (i Instruction) IsUndefined() bool {
	return i.Text == ""
}

// Mnemonic returns the instruction name without arguments.
func (i Instruction) Mnemonic() string {
	mnemonic, _, _ := strings.Cut(i.Text, " ")
	return mnemonic
}

// Target returns the absolute address that a 16 bit or relative operand
// references.
func (i Instruction) Target() (uint16, bool) {
	switch i.Operand.Kind {
	case OperandAbsolute:
		return uint16(i.Operand.Value), true
	case OperandRelative:
		return relativeTarget(i.Address+uint16(i.Length), int8(i.Operand.Value)), true
	default:
		return 0, false
	}
}

// IsBranch returns whether the instruction transfers control to its target.
func (i Instruction) IsBranch() bool {
	switch i.Mnemonic() {
	case "call", "djnz", "jp", "jr":
		_, ok := i.Target()
		return ok
	default:
		return false
	}
}
