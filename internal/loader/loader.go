// Package loader handles binary file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/z80disasm/internal/arch"
	"github.com/retroenv/z80disasm/internal/memory"
)

// ErrEmptyInput is returned for input files without any content.
var ErrEmptyInput = errors.New("input is empty")

// Image is a binary file mapped into the Z80 address space. Reads outside
// of the loaded bytes fail with memory.ErrOutOfRange.
type Image struct {
	Memory  *memory.Slice
	Address uint16 // load address of the first byte
	Size    int    // number of bytes loaded
}

// Loader handles loading binary files from disk.
type Loader struct{}

// New creates a new binary loader.
func New() *Loader {
	return &Loader{}
}

// Load loads the file and maps it at the given address.
// Files larger than the address space are rejected.
func (l *Loader) Load(fileName string, address uint16) (*Image, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", fileName, err)
	}
	defer func() { _ = file.Close() }()

	return l.LoadReader(file, address)
}

// LoadReader loads all data of the reader and maps it at the given address.
func (l *Loader) LoadReader(reader io.Reader, address uint16) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(reader, arch.AddressSpace+1))
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return l.LoadFromBytes(data, address)
}

// LoadFromBytes maps the data at the given address. Data that reaches
// beyond the end of the address space wraps around to 0.
func (l *Loader) LoadFromBytes(data []byte, address uint16) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if len(data) > arch.AddressSpace {
		return nil, fmt.Errorf("loading data: size %d exceeds address space: %w", len(data), memory.ErrOutOfRange)
	}

	return &Image{
		Memory:  memory.NewSlice(address, data),
		Address: address,
		Size:    len(data),
	}, nil
}
