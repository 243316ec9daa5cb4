package z80

import (
	"errors"

	"github.com/retroenv/z80disasm/internal/arch"
)

// ErrStop can be returned by a walk callback to end the walk without an error.
var ErrStop = errors.New("stop walk")

// Walk decodes consecutive instructions starting at the given address
// until at least count bytes have been consumed and passes every
// instruction to fn. The last instruction is always passed in full, even
// if it ends after the requested byte count.
func (d *Decoder) Walk(mem arch.Memory, address uint16, count int, fn func(Instruction) error) error {
	for consumed := 0; consumed < count; {
		ins, err := d.Decode(mem, address+uint16(consumed))
		if err != nil {
			return err
		}

		if err := fn(ins); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
		consumed += ins.Length
	}
	return nil
}

// DecodeRange decodes all instructions that cover count bytes starting at
// the given address. The instructions are returned in address order.
func (d *Decoder) DecodeRange(mem arch.Memory, address uint16, count int) ([]Instruction, error) {
	var instructions []Instruction
	err := d.Walk(mem, address, count, func(ins Instruction) error {
		instructions = append(instructions, ins)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return instructions, nil
}
