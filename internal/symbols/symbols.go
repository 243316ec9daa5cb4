// Package symbols provides the symbol table that maps addresses to names.
package symbols

import (
	"sort"

	"github.com/retroenv/z80disasm/internal/arch"
)

// Compile-time check to ensure Table implements arch.SymbolResolver.
var _ arch.SymbolResolver = (*Table)(nil)

// Symbol is a named address.
type Symbol struct {
	Address uint16
	Name    string
}

// Table maps absolute addresses to symbol names.
// It is not safe for concurrent modification.
type Table struct {
	items map[uint16]string
}

// New creates a new empty symbol table.
func New() *Table {
	return &Table{
		items: make(map[uint16]string),
	}
}

// Lookup returns the name registered for the exact address.
func (t *Table) Lookup(address uint16) (string, bool) {
	name, ok := t.items[address]
	return name, ok
}

// Set sets the name of the given address. An empty name removes the symbol.
func (t *Table) Set(address uint16, name string) {
	if name == "" {
		delete(t.items, address)
		return
	}
	t.items[address] = name
}

// Delete removes the symbol of the given address.
func (t *Table) Delete(address uint16) {
	delete(t.items, address)
}

// Has returns whether a symbol exists at the given address.
func (t *Table) Has(address uint16) bool {
	_, ok := t.Lookup(address)
	return ok
}

// Len returns the number of symbols in the table.
func (t *Table) Len() int {
	return len(t.items)
}

// Sorted returns all symbols sorted by address.
func (t *Table) Sorted() []Symbol {
	symbols := make([]Symbol, 0, t.Len())
	for address, name := range t.items {
		symbols = append(symbols, Symbol{Address: address, Name: name})
	}
	sort.Slice(symbols, func(i, j int) bool {
		return symbols[i].Address < symbols[j].Address
	})
	return symbols
}
