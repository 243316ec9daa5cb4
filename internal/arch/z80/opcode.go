package z80

import "strings"

// Kind distinguishes instruction entries from the prefix entries that
// redirect decoding to another table.
type Kind uint8

// Opcode table entry kinds.
const (
	KindInstruction Kind = iota
	KindBitPrefix
	KindExtendedPrefix
	KindIXPrefix
	KindIYPrefix
)

// ArgKind defines how a single instruction argument is rendered.
type ArgKind uint8

// Argument kinds of an instruction template.
const (
	ArgLiteral     ArgKind = iota // fixed text
	ArgImmediate16                // nn
	ArgMemory16                   // (nn)
	ArgImmediate8                 // M
	ArgPort8                      // (M)
	ArgRelative                   // E
	ArgHigh                       // H, h or ixh/iyh
	ArgLow                        // L, l or ixl/iyl
	ArgPair                       // HL, hl or ix/iy
	ArgPointer                    // [HL], (hl) or (ix)/(iy) without displacement
	ArgIndirect                   // (HL), (hl) or (ix + N)
)

// placeholders maps template tokens to their argument kind. Tokens are
// matched against whole arguments only, any other token is literal text.
var placeholders = map[string]ArgKind{
	"nn":   ArgImmediate16,
	"(nn)": ArgMemory16,
	"M":    ArgImmediate8,
	"(M)":  ArgPort8,
	"E":    ArgRelative,
	"H":    ArgHigh,
	"L":    ArgLow,
	"HL":   ArgPair,
	"[HL]": ArgPointer,
	"(HL)": ArgIndirect,
}

// Arg is a single argument of an instruction template.
type Arg struct {
	Kind ArgKind
	Text string // text of literal arguments
}

// Entry is a single opcode table entry.
type Entry struct {
	Kind     Kind
	Mnemonic string
	Args     []Arg
}

// Table maps every byte value to an opcode entry.
type Table [256]Entry

// has returns whether the entry contains an argument of the given kind.
func (e Entry) has(kind ArgKind) bool {
	for _, arg := range e.Args {
		if arg.Kind == kind {
			return true
		}
	}
	return false
}

// compile converts a template like "ld (HL),M" into an instruction entry.
// An empty template results in an entry without mnemonic, which marks an
// undefined opcode.
func compile(template string) Entry {
	mnemonic, operands, found := strings.Cut(template, " ")
	entry := Entry{
		Kind:     KindInstruction,
		Mnemonic: mnemonic,
	}
	if !found {
		return entry
	}

	for _, token := range strings.Split(operands, ",") {
		kind, ok := placeholders[token]
		if !ok {
			entry.Args = append(entry.Args, Arg{Kind: ArgLiteral, Text: token})
			continue
		}
		entry.Args = append(entry.Args, Arg{Kind: kind})
	}
	return entry
}

// compileTable compiles all templates of a table source.
func compileTable(templates [256]string) Table {
	var table Table
	for i, template := range templates {
		table[i] = compile(template)
	}
	return table
}
