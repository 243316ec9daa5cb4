// Package labels generates symbol names for branch destinations.
package labels

import (
	"fmt"
	"slices"

	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/z80disasm/internal/arch/z80"
	"github.com/retroenv/z80disasm/internal/symbols"
)

const (
	funcNaming  = "_func_%04x"
	labelNaming = "_label_%04x"
)

// Generate adds a symbol for every branch destination that is the start
// of one of the given instructions and that has no symbol yet. Call
// destinations are named as functions, all others as labels.
// It returns the number of added symbols.
func Generate(instructions []z80.Instruction, table *symbols.Table) int {
	starts := set.New[uint16]()
	for _, ins := range instructions {
		starts.Add(ins.Address)
	}

	seen := set.New[uint16]()
	calls := set.New[uint16]()
	var destinations []uint16

	for _, ins := range instructions {
		if !ins.IsBranch() {
			continue
		}
		target, _ := ins.Target()
		if !starts.Contains(target) || table.Has(target) {
			continue
		}

		if ins.Mnemonic() == "call" {
			calls.Add(target)
		}
		if seen.Contains(target) {
			continue
		}
		seen.Add(target)
		destinations = append(destinations, target)
	}

	slices.Sort(destinations)
	for _, address := range destinations {
		naming := labelNaming
		if calls.Contains(address) {
			naming = funcNaming
		}
		table.Set(address, fmt.Sprintf(naming, address))
	}
	return len(destinations)
}
