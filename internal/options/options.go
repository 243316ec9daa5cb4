// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input   string // file to disassemble
	Output  string // output .asm file, stdout if empty
	Symbols string // symbol definition file
	Batch   string // batch process files matching pattern
}

// Flags contains behavior options.
type Flags struct {
	Debug bool
	Quiet bool
}

// Range contains the memory layout and the address range to disassemble.
type Range struct {
	LoadAddress  uint16 // address that the first byte of the input is loaded to
	LoadSet      bool   // load address was set explicitly, otherwise it is detected
	Start        uint16 // first address to disassemble
	StartSet     bool   // start address was set explicitly, otherwise load address is used
	Length       int    // number of bytes to disassemble, 0 for the rest of the input
	LabelTargets bool   // generate labels for branch destinations
}

// Program options of the disassembler.
type Program struct {
	Parameters
	Flags
	Range
	Format OutputFlags
}

// OutputFlags contains output formatting options.
type OutputFlags struct {
	HexComments    bool // output opcode bytes as hex values in comments
	OffsetComments bool // output addresses in comments
}

// NewProgram returns a new options instance with default options.
func NewProgram() Program {
	return Program{
		Format: OutputFlags{
			HexComments:    true,
			OffsetComments: true,
		},
	}
}
