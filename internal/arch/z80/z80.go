// Package z80 provides Z80 architecture specific disassembler implementation.
// It decodes machine code bytes into assembly text one instruction at a time.
package z80

import (
	"fmt"
	"strings"

	"github.com/retroenv/z80disasm/internal/arch"
)

// MaxInstructionSize is the longest Z80 instruction in bytes.
const MaxInstructionSize = 4

// Index register names, selected by the 0xdd and 0xfd prefixes.
const (
	IX = "ix"
	IY = "iy"
)

// Decoder decodes Z80 instructions. It is safe for concurrent use as long
// as the symbol resolver is not modified during a decode call.
type Decoder struct {
	symbols arch.SymbolResolver
}

// New returns a new decoder. The symbol resolver is optional and can be nil.
func New(symbols arch.SymbolResolver) *Decoder {
	return &Decoder{
		symbols: symbols,
	}
}

// reader reads the bytes of a single instruction and tracks its length.
type reader struct {
	mem   arch.Memory
	start uint16
	data  []byte
}

// address returns the address of the next byte to read.
func (r *reader) address() uint16 {
	return r.start + uint16(len(r.data))
}

// peek reads the next byte without adding it to the instruction.
func (r *reader) peek() (byte, error) {
	address := r.address()
	b, err := r.mem.ReadMemory(address)
	if err != nil {
		return 0, fmt.Errorf("reading memory at address %04x: %w", address, err)
	}
	return b, nil
}

// next reads the next byte and adds it to the instruction.
func (r *reader) next() (byte, error) {
	b, err := r.peek()
	if err != nil {
		return 0, err
	}
	r.data = append(r.data, b)
	return b, nil
}

// Decode decodes the instruction at the given address. Addresses of all
// following bytes wrap around at the end of the 16 bit address space.
func (d *Decoder) Decode(mem arch.Memory, address uint16) (Instruction, error) {
	r := &reader{
		mem:   mem,
		start: address,
		data:  make([]byte, 0, MaxInstructionSize),
	}

	b, err := r.next()
	if err != nil {
		return Instruction{}, err
	}

	entry := baseTable[b]
	var index string

	switch entry.Kind {
	case KindBitPrefix:
		if b, err = r.next(); err != nil {
			return Instruction{}, err
		}
		entry = bitTable[b]

	case KindExtendedPrefix:
		if b, err = r.next(); err != nil {
			return Instruction{}, err
		}
		entry = extendedTable[b]

	case KindIXPrefix, KindIYPrefix:
		index = IX
		if entry.Kind == KindIYPrefix {
			index = IY
		}

		if b, err = r.peek(); err != nil {
			return Instruction{}, err
		}
		entry = baseTable[b]

		switch entry.Kind {
		case KindInstruction:
			r.data = append(r.data, b)
		case KindBitPrefix:
			return d.decodeIndexedBit(r, index)
		default:
			// a prefix followed by another prefix has no effect, decoding
			// continues with the following prefix as a new instruction
			return d.finish(r, "", Operand{}), nil
		}
	}

	return d.decodeEntry(r, entry, index)
}

// decodeEntry reads the operands of an instruction entry and renders it.
func (d *Decoder) decodeEntry(r *reader, entry Entry, index string) (Instruction, error) {
	var (
		operand      Operand
		displacement int8
	)

	indexed := index != "" && entry.has(ArgIndirect)
	if indexed {
		b, err := r.next()
		if err != nil {
			return Instruction{}, err
		}
		displacement = int8(b)
		operand = Operand{Kind: OperandIndexed, Value: int(displacement)}
	}
	// register substitution only applies if no indexed memory is accessed
	substitute := index
	if indexed {
		substitute = ""
	}

	args := make([]string, 0, len(entry.Args))
	for _, arg := range entry.Args {
		var s string

		switch arg.Kind {
		case ArgLiteral:
			s = arg.Text

		case ArgImmediate16, ArgMemory16:
			lo, err := r.next()
			if err != nil {
				return Instruction{}, err
			}
			hi, err := r.next()
			if err != nil {
				return Instruction{}, err
			}
			value := uint16(hi)<<8 | uint16(lo)
			operand = Operand{Kind: OperandAbsolute, Value: int(value)}
			s = d.formatNumber(value)
			if arg.Kind == ArgMemory16 {
				s = "(" + s + ")"
			}

		case ArgImmediate8, ArgPort8:
			b, err := r.next()
			if err != nil {
				return Instruction{}, err
			}
			operand = Operand{Kind: OperandImmediate, Value: int(b)}
			s = d.formatNumber(uint16(b))
			if arg.Kind == ArgPort8 {
				s = "(" + s + ")"
			}

		case ArgRelative:
			b, err := r.next()
			if err != nil {
				return Instruction{}, err
			}
			offset := int8(b)
			operand = Operand{Kind: OperandRelative, Value: int(offset)}
			s = d.formatRelative(relativeTarget(r.address(), offset), offset)

		case ArgHigh:
			s = substitute + "h"
		case ArgLow:
			s = substitute + "l"
		case ArgPair:
			s = "hl"
			if substitute != "" {
				s = substitute
			}
		case ArgPointer:
			s = "(hl)"
			if substitute != "" {
				s = "(" + substitute + ")"
			}
		case ArgIndirect:
			s = "(hl)"
			if indexed {
				s = formatIndexed(index, displacement)
			}
		}

		args = append(args, s)
	}

	ins := d.finish(r, render(entry.Mnemonic, args), operand)
	ins.Indexed = indexed
	ins.Displacement = displacement
	return ins, nil
}

// decodeIndexedBit decodes the 4 byte index register bit instructions.
// The displacement precedes the opcode byte.
func (d *Decoder) decodeIndexedBit(r *reader, index string) (Instruction, error) {
	if _, err := r.next(); err != nil { // bit prefix
		return Instruction{}, err
	}
	b, err := r.next()
	if err != nil {
		return Instruction{}, err
	}
	displacement := int8(b)
	opcode, err := r.next()
	if err != nil {
		return Instruction{}, err
	}

	entry := bitTable[opcode]
	args := make([]string, 0, len(entry.Args)+1)
	for _, arg := range entry.Args[:len(entry.Args)-1] {
		args = append(args, arg.Text)
	}
	args = append(args, formatIndexed(index, displacement))

	// undocumented forms also store the result in a register
	register := int(opcode & 7)
	if register != indirectRegister && entry.Mnemonic != "bit" {
		args = append(args, bitRegisters[register])
	}

	ins := d.finish(r, render(entry.Mnemonic, args), Operand{Kind: OperandIndexed, Value: int(displacement)})
	ins.Indexed = true
	ins.Displacement = displacement
	return ins, nil
}

// finish creates the instruction result from the bytes read.
func (d *Decoder) finish(r *reader, text string, operand Operand) Instruction {
	return Instruction{
		Address: r.start,
		Data:    r.data,
		Text:    text,
		Length:  len(r.data),
		Operand: operand,
	}
}

func render(mnemonic string, args []string) string {
	if len(args) == 0 {
		return mnemonic
	}
	return mnemonic + " " + strings.Join(args, ",")
}
