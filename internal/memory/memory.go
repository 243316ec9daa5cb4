// Package memory provides byte sources for the disassembler.
package memory

import (
	"errors"
	"fmt"

	"github.com/retroenv/z80disasm/internal/arch"
)

// ErrOutOfRange is returned when reading an address that is not covered
// by a byte source.
var ErrOutOfRange = errors.New("address out of range")

// Compile-time checks to ensure the byte sources implement arch.Memory.
var (
	_ arch.Memory = (*Memory)(nil)
	_ arch.Memory = (*Slice)(nil)
)

// Memory is a complete 64 KiB address space. Reads never fail.
type Memory struct {
	data [arch.AddressSpace]byte
}

// New returns a new zeroed memory.
func New() *Memory {
	return &Memory{}
}

// ReadMemory reads a byte from the memory at the given address.
func (m *Memory) ReadMemory(address uint16) (byte, error) {
	return m.data[address], nil
}

// WriteMemory writes a byte to the memory at the given address.
func (m *Memory) WriteMemory(address uint16, value byte) {
	m.data[address] = value
}

// Load copies data into memory starting at the given address. Data
// that reaches beyond the end of the address space wraps around to 0.
func (m *Memory) Load(address uint16, data []byte) error {
	if len(data) > arch.AddressSpace {
		return fmt.Errorf("data size %d exceeds address space: %w", len(data), ErrOutOfRange)
	}
	for i, b := range data {
		m.data[address+uint16(i)] = b
	}
	return nil
}

// Slice maps a finite byte slice to a base address. Reads of addresses
// outside of the mapped range fail instead of returning fabricated bytes.
type Slice struct {
	base uint16
	data []byte
}

// NewSlice returns a byte source for data mapped at the base address.
func NewSlice(base uint16, data []byte) *Slice {
	return &Slice{
		base: base,
		data: data,
	}
}

// ReadMemory reads a byte from the slice at the given address.
func (s *Slice) ReadMemory(address uint16) (byte, error) {
	offset := int(address - s.base)
	if offset >= len(s.data) {
		return 0, fmt.Errorf("reading address %04x: %w", address, ErrOutOfRange)
	}
	return s.data[offset], nil
}

// Base returns the address that the first byte is mapped to.
func (s *Slice) Base() uint16 {
	return s.base
}

// Len returns the number of mapped bytes.
func (s *Slice) Len() int {
	return len(s.data)
}
