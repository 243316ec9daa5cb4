// Package arch contains types and functions used for multi architecture support.
// It acts as a bridge between the disassembler and the architecture specific code.
package arch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// AddressSpace is the number of addressable bytes of a 16 bit CPU.
const AddressSpace = 0x10000

// Memory is a byte source covering a 16 bit address space.
type Memory interface {
	// ReadMemory reads a byte from the memory at the given address.
	ReadMemory(address uint16) (byte, error)
}

// SymbolResolver resolves an absolute address to a display name.
type SymbolResolver interface {
	// Lookup returns the name registered for the exact address.
	Lookup(address uint16) (string, bool)
}

// ErrInvalidAddress is returned when an address string can not be parsed.
var ErrInvalidAddress = errors.New("invalid address")

// ParseAddress parses an address in one of the common assembler notations:
// $1234, 0x1234, 1234h or decimal 4660.
func ParseAddress(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)

	var (
		value uint64
		err   error
	)
	switch {
	case strings.HasPrefix(lower, "$"):
		value, err = strconv.ParseUint(lower[1:], 16, 16)
	case strings.HasPrefix(lower, "0x"):
		value, err = strconv.ParseUint(lower[2:], 16, 16)
	case len(lower) > 1 && strings.HasSuffix(lower, "h"):
		value, err = strconv.ParseUint(lower[:len(lower)-1], 16, 16)
	default:
		value, err = strconv.ParseUint(lower, 10, 16)
	}
	if err != nil {
		return 0, fmt.Errorf("%w '%s': %w", ErrInvalidAddress, s, err)
	}
	return uint16(value), nil
}
