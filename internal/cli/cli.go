// Package cli handles command line interface logic
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/retroenv/z80disasm/internal/arch"
	"github.com/retroenv/z80disasm/internal/options"
	"github.com/spf13/cobra"
)

// ErrHelp is returned when the help output was requested and printed.
var ErrHelp = errors.New("help requested")

// addressFlags contains the address flags in their unparsed form.
type addressFlags struct {
	load  string
	start string
}

// ParseFlags parses the command line arguments and returns the program options.
func ParseFlags(args []string) (options.Program, error) {
	opts := options.NewProgram()
	var parsed bool

	cmd := newCommand(&opts, func() { parsed = true })
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		var usageErr *UsageError
		if errors.As(err, &usageErr) {
			return opts, err
		}
		return opts, &UsageError{cmd: cmd, msg: err.Error()}
	}
	if !parsed {
		return opts, ErrHelp
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	cmd *cobra.Command
	msg string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage of the command.
func (e *UsageError) ShowUsage() {
	if e.cmd != nil {
		_ = e.cmd.Usage()
	}
}

func newCommand(opts *options.Program, parsed func()) *cobra.Command {
	var (
		addresses     addressFlags
		noHexComments bool
		noOffsets     bool
	)

	cmd := &cobra.Command{
		Use:           "z80disasm [options] <file to disassemble>",
		Short:         "Z80 binary disassembler",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.Batch == "" {
				return &UsageError{cmd: cmd, msg: "no file to disassemble given"}
			}
			if len(args) > 0 {
				if opts.Batch != "" {
					return &UsageError{cmd: cmd, msg: "a file to disassemble can not be combined with batch mode"}
				}
				opts.Input = args[0]
			}

			if err := parseAddresses(cmd, opts, addresses); err != nil {
				return &UsageError{cmd: cmd, msg: err.Error()}
			}
			if opts.Length < 0 {
				return &UsageError{cmd: cmd, msg: fmt.Sprintf("invalid byte count %d", opts.Length)}
			}

			// Apply inverse logic for hex comments and offsets
			opts.Format.HexComments = !noHexComments
			opts.Format.OffsetComments = !noOffsets
			parsed()
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Output, "output", "o", "", "name of the output .asm file, printed on console if no name given")
	flags.StringVarP(&opts.Symbols, "symbols", "y", "", "name of the symbol file to load, lines like 'name = $1234'")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatically .asm file naming, for example *.bin")
	flags.StringVarP(&addresses.load, "load", "l", "0", "address that the first byte of the file is loaded to")
	flags.StringVarP(&addresses.start, "start", "s", "", "address to start disassembling at (default: load address)")
	flags.IntVarP(&opts.Length, "count", "n", 0, "number of bytes to disassemble (default: rest of the file)")
	flags.BoolVar(&opts.LabelTargets, "labels", false, "generate labels for jump and call destinations")
	flags.BoolVar(&noHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(&noOffsets, "nooffsets", false, "do not output offsets in comments")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "perform operations quietly")

	return cmd
}

// parseAddresses parses the address flags, accepting $1234, 0x1234, 1234h
// and decimal notation.
func parseAddresses(cmd *cobra.Command, opts *options.Program, addresses addressFlags) error {
	load, err := arch.ParseAddress(addresses.load)
	if err != nil {
		return fmt.Errorf("parsing load address: %w", err)
	}
	opts.LoadAddress = load
	opts.LoadSet = cmd.Flags().Changed("load")
	opts.Start = load

	if cmd.Flags().Changed("start") && strings.TrimSpace(addresses.start) != "" {
		start, err := arch.ParseAddress(addresses.start)
		if err != nil {
			return fmt.Errorf("parsing start address: %w", err)
		}
		opts.Start = start
		opts.StartSet = true
	}
	return nil
}
