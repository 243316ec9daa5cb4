// Package writer implements the assembly listing output.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/z80disasm/internal/arch"
	"github.com/retroenv/z80disasm/internal/arch/z80"
	"github.com/retroenv/z80disasm/internal/symbols"
)

const dataBytesPerLine = 16

type lineWriterFunc func(line string, byteCount int) error

// Options of the writer.
type Options struct {
	HexComments    bool
	OffsetComments bool
}

// Writer writes decoded instructions as assembly listing.
type Writer struct {
	options Options
	symbols arch.SymbolResolver
	writer  io.Writer
}

// New creates a new writer. Symbols are used to output labels at
// instruction addresses and can be nil.
func New(writer io.Writer, symbols arch.SymbolResolver, options Options) *Writer {
	return &Writer{
		options: options,
		symbols: symbols,
		writer:  writer,
	}
}

// WriteCommentHeader writes the input file name and the code base address as comments.
func (w Writer) WriteCommentHeader(fileName string, address uint16, size int) error {
	if fileName != "" {
		if _, err := fmt.Fprintf(w.writer, "; Input file: %s\n", fileName); err != nil {
			return fmt.Errorf("writing file name: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w.writer, "; Code base address: $%04x\n", address); err != nil {
		return fmt.Errorf("writing code base address: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Code size: %d bytes\n\n", size); err != nil {
		return fmt.Errorf("writing code size: %w", err)
	}
	return nil
}

// OutputAliases outputs alias definitions for symbols that are not located
// at an instruction of the listing, in the given order.
func (w Writer) OutputAliases(aliases []symbols.Symbol) error {
	if len(aliases) == 0 {
		return nil
	}

	for _, alias := range aliases {
		if _, err := fmt.Fprintf(w.writer, "%s = $%04X\n", alias.Name, alias.Address); err != nil {
			return fmt.Errorf("writing alias: %w", err)
		}
	}

	if _, err := fmt.Fprintln(w.writer); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

// WriteInstructions writes all instructions, their labels and comments.
// Consecutive undefined instructions are bundled into data lines.
func (w Writer) WriteInstructions(instructions []z80.Instruction) error {
	var previousLineWasCode bool

	for i := 0; i < len(instructions); i++ {
		ins := instructions[i]

		label, hasLabel := w.label(ins.Address)
		if hasLabel {
			if err := w.writeLabel(i, label); err != nil {
				return err
			}
		}

		// print an empty line in case of data after code and vice versa
		isCode := !ins.IsUndefined()
		if i > 0 && !hasLabel && isCode != previousLineWasCode {
			if _, err := fmt.Fprintln(w.writer); err != nil {
				return fmt.Errorf("writing line: %w", err)
			}
		}
		previousLineWasCode = isCode

		if isCode {
			if err := w.writeCodeLine(ins); err != nil {
				return fmt.Errorf("writing code line: %w", err)
			}
			continue
		}

		count, err := w.writeDataRun(instructions[i:])
		if err != nil {
			return err
		}
		i += count - 1
	}
	return nil
}

// BundleDataWrites bundles writes of data bytes to print dataBytesPerLine bytes per line.
func (w Writer) BundleDataWrites(data []byte, lineWriter lineWriterFunc) error {
	remaining := len(data)
	for i := 0; remaining > 0; {
		toWrite := min(remaining, dataBytesPerLine)

		buf := &strings.Builder{}
		buf.WriteString(".byte ")
		for j := range toWrite {
			if _, err := fmt.Fprintf(buf, "$%02x, ", data[i+j]); err != nil {
				return fmt.Errorf("writing data byte: %w", err)
			}
		}

		line := strings.TrimRight(buf.String(), ", ")

		if lineWriter != nil {
			if err := lineWriter(line, toWrite); err != nil {
				return fmt.Errorf("writing data line using custom writer: %w", err)
			}
		} else {
			if _, err := fmt.Fprintf(w.writer, "%s\n", line); err != nil {
				return fmt.Errorf("writing data line: %w", err)
			}
		}

		i += toWrite
		remaining -= toWrite
	}

	return nil
}

func (w Writer) label(address uint16) (string, bool) {
	if w.symbols == nil {
		return "", false
	}
	return w.symbols.Lookup(address)
}

func (w Writer) writeLabel(index int, label string) error {
	if index > 0 {
		if _, err := fmt.Fprintln(w.writer); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w.writer, "%s:\n", label); err != nil {
		return fmt.Errorf("writing label: %w", err)
	}
	return nil
}

func (w Writer) writeCodeLine(ins z80.Instruction) error {
	comment := w.comment(ins.Address, ins.Data)
	if comment == "" {
		if _, err := fmt.Fprintf(w.writer, "  %s\n", ins.Text); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	} else {
		if _, err := fmt.Fprintf(w.writer, "  %-30s ; %s\n", ins.Text, comment); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}
	return nil
}

// writeDataRun writes the undefined instructions at the start of the
// given slice as data and returns the number of instructions written.
// A run ends at the first defined instruction or label.
func (w Writer) writeDataRun(instructions []z80.Instruction) (int, error) {
	var data []byte
	count := 0
	for i, ins := range instructions {
		if !ins.IsUndefined() {
			break
		}
		if _, hasLabel := w.label(ins.Address); i > 0 && hasLabel {
			break
		}
		data = append(data, ins.Data...)
		count++
	}

	address := instructions[0].Address
	lineWriter := func(line string, byteCount int) error {
		comment := w.comment(address, nil)
		var err error
		if comment == "" {
			_, err = fmt.Fprintf(w.writer, "%s\n", line)
		} else {
			_, err = fmt.Fprintf(w.writer, "%-32s ; %s\n", line, comment)
		}
		if err != nil {
			return fmt.Errorf("writing data line: %w", err)
		}
		address += uint16(byteCount)
		return nil
	}

	if err := w.BundleDataWrites(data, lineWriter); err != nil {
		return 0, fmt.Errorf("writing undefined instruction data: %w", err)
	}
	return count, nil
}

// comment returns the address and opcode bytes comment, depending on the options.
func (w Writer) comment(address uint16, data []byte) string {
	var parts []string
	if w.options.OffsetComments {
		parts = append(parts, fmt.Sprintf("$%04X", address))
	}
	if w.options.HexComments {
		for _, b := range data {
			parts = append(parts, fmt.Sprintf("%02X", b))
		}
	}
	return strings.Join(parts, " ")
}
