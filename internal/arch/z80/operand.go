package z80

import (
	"fmt"
	"strconv"
)

// relativeTarget returns the jump destination for a displacement that is
// relative to the address of the following instruction.
func relativeTarget(next uint16, displacement int8) uint16 {
	return next + uint16(displacement)
}

// formatNumber renders an immediate or absolute value. 8 bit immediates
// share the 4 digit format of 16 bit values.
func (d *Decoder) formatNumber(value uint16) string {
	if name, ok := d.lookup(value); ok {
		return name
	}
	return fmt.Sprintf("$%04x", value)
}

// formatRelative renders a relative displacement as signed decimal number
// or as the symbol registered for the jump destination.
func (d *Decoder) formatRelative(target uint16, displacement int8) string {
	if name, ok := d.lookup(target); ok {
		return name
	}
	if displacement >= 0 {
		return "+" + strconv.Itoa(int(displacement))
	}
	return strconv.Itoa(int(displacement))
}

// formatIndexed renders an indexed memory operand like (ix + 5) or (iy - 3).
func formatIndexed(register string, displacement int8) string {
	value := int(displacement)
	if value < 0 {
		return fmt.Sprintf("(%s - %d)", register, -value)
	}
	return fmt.Sprintf("(%s + %d)", register, value)
}

func (d *Decoder) lookup(address uint16) (string, bool) {
	if d.symbols == nil {
		return "", false
	}
	return d.symbols.Lookup(address)
}
