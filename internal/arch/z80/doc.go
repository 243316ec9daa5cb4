// Package z80 provides Z80 architecture support for the disassembler.
//
// # Opcode Tables
//
// Instructions are decoded through a set of 256 entry tables:
//   - base table for unprefixed opcodes
//   - bit table for 0xcb prefixed opcodes (rotations, shifts, bit, res, set)
//   - extended table for 0xed prefixed opcodes, undefined slots decode to empty text
//
// The 0xdd and 0xfd prefixes select the ix and iy index registers and
// decode the following byte through the base table again, replacing hl
// based operands:
//
//	dd 21 34 12    ld ix,$1234
//	dd 24          inc ixh
//	dd 34 fb       inc (ix - 5)
//	dd cb 05 86    res 0,(ix + 5)
//	dd cb 05 80    res 0,(ix + 5),b
//
// # Operands
//
//   - 16 bit values are little endian and rendered as $1234
//   - 8 bit immediates use the same 4 digit format: $0012
//   - relative jumps are rendered as signed decimal displacement: jr -2
//   - symbols registered for a value or jump destination replace the number
//
// # Usage Example
//
//	symbols := symbols.New()
//	symbols.Set(0x8000, "Start")
//
//	dis := z80.New(symbols)
//	ins, err := dis.Decode(mem, 0x8000)
//	if err != nil {
//		return fmt.Errorf("decoding instruction: %w", err)
//	}
//	fmt.Println(ins.Text, ins.Length)
package z80
