package symbols

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/z80disasm/internal/arch"
)

var (
	// ErrInvalidLine is returned for symbol file lines that are not a symbol definition.
	ErrInvalidLine = errors.New("invalid symbol definition")
	// ErrDuplicateName is returned when a name is defined for two different addresses.
	ErrDuplicateName = errors.New("duplicate symbol name")
)

// Load reads symbol definitions and adds them to the table.
// Supported line formats are:
//
//	name = $1234
//	name equ 1234h
//	name: equ 0x1234
//
// Text after ; or # is a comment. A later definition for the same address
// replaces an earlier one. A name that is already used for another address
// is an error.
func (t *Table) Load(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	lineNumber := 0

	addresses := make(map[string]uint16, t.Len())
	for _, sym := range t.Sorted() {
		addresses[sym.Name] = sym.Address
	}

	for scanner.Scan() {
		lineNumber++
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}

		symbol, err := parseLine(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNumber, err)
		}

		if address, ok := addresses[symbol.Name]; ok && address != symbol.Address {
			return fmt.Errorf("line %d: %w '%s' at $%04x and $%04x",
				lineNumber, ErrDuplicateName, symbol.Name, address, symbol.Address)
		}
		if previous, ok := t.Lookup(symbol.Address); ok {
			delete(addresses, previous)
		}
		addresses[symbol.Name] = symbol.Address
		t.Set(symbol.Address, symbol.Name)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading symbols: %w", err)
	}
	return nil
}

func stripComment(line string) string {
	if i := strings.IndexAny(line, ";#"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func parseLine(line string) (Symbol, error) {
	var name, value string

	if before, after, found := strings.Cut(line, "="); found {
		name, value = before, after
	} else {
		fields := strings.Fields(line)
		if len(fields) != 3 || !strings.EqualFold(fields[1], "equ") {
			return Symbol{}, fmt.Errorf("%w '%s'", ErrInvalidLine, line)
		}
		name, value = fields[0], fields[2]
	}

	name = strings.TrimSuffix(strings.TrimSpace(name), ":")
	if name == "" || strings.ContainsAny(name, " \t") {
		return Symbol{}, fmt.Errorf("%w '%s'", ErrInvalidLine, line)
	}

	address, err := arch.ParseAddress(value)
	if err != nil {
		return Symbol{}, fmt.Errorf("parsing value of symbol '%s': %w", name, err)
	}

	return Symbol{Address: address, Name: name}, nil
}
