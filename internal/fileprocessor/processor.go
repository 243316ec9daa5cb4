// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/z80disasm/internal/arch"
	"github.com/retroenv/z80disasm/internal/arch/z80"
	"github.com/retroenv/z80disasm/internal/detector"
	"github.com/retroenv/z80disasm/internal/labels"
	"github.com/retroenv/z80disasm/internal/loader"
	"github.com/retroenv/z80disasm/internal/memory"
	"github.com/retroenv/z80disasm/internal/options"
	"github.com/retroenv/z80disasm/internal/symbols"
	"github.com/retroenv/z80disasm/internal/writer"
)

// ErrStartOutsideInput is returned when the start address is not covered by
// the input file and no byte count was given.
var ErrStartOutsideInput = errors.New("start address is outside of the input")

// ProcessFile handles the complete file processing workflow
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program) error {
	opts.LoadAddress = detector.New(logger).Detect(opts)

	image, err := loader.New().Load(opts.Input, opts.LoadAddress)
	if err != nil {
		return fmt.Errorf("loading input: %w", err)
	}

	table, err := loadSymbols(opts.Symbols)
	if err != nil {
		return err
	}

	out, err := createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if closer, ok := out.(io.Closer); ok && out != os.Stdout {
			_ = closer.Close()
		}
	}()

	return Process(ctx, logger, opts, image, table, out)
}

// Process disassembles the configured range of the loaded image and writes
// the listing to the given writer.
func Process(ctx context.Context, logger *log.Logger, opts options.Program,
	image *loader.Image, table *symbols.Table, out io.Writer) error {

	start := opts.LoadAddress
	if opts.StartSet {
		start = opts.Start
	}
	count, err := byteCount(opts, image, start)
	if err != nil {
		return err
	}
	if opts.Length > count {
		logger.Warn("Byte count exceeds the input, disassembling until its end",
			log.Int("requested", opts.Length),
			log.Int("available", count))
	}

	logger.Debug("Disassembling",
		log.String("file", opts.Input),
		log.String("start", fmt.Sprintf("0x%04X", start)),
		log.Int("bytes", count))

	dis := z80.New(table)
	instructions, err := decode(ctx, dis, image, start, count)
	if err != nil {
		return err
	}

	if opts.LabelTargets {
		generated := labels.Generate(instructions, table)
		logger.Debug("Generated labels", log.Int("labels", generated))

		// operands are rendered while decoding, decode again to use the new names
		if generated > 0 {
			instructions, err = decode(ctx, dis, image, start, count)
			if err != nil {
				return err
			}
		}
	}

	w := writer.New(out, table, writer.Options{
		HexComments:    opts.Format.HexComments,
		OffsetComments: opts.Format.OffsetComments,
	})
	fileName := opts.Input
	if fileName != "" {
		fileName = filepath.Base(fileName)
	}
	if err := w.WriteCommentHeader(fileName, start, count); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.OutputAliases(aliases(instructions, table)); err != nil {
		return fmt.Errorf("writing aliases: %w", err)
	}
	if err := w.WriteInstructions(instructions); err != nil {
		return fmt.Errorf("writing instructions: %w", err)
	}

	logger.Debug("Disassembled", log.Int("instructions", len(instructions)))
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".asm"
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info("z80disasm - Z80 disassembler", log.String("version", buildinfo.Version(version, commit, date)))
}

func loadSymbols(fileName string) (*symbols.Table, error) {
	table := symbols.New()
	if fileName == "" {
		return table, nil
	}

	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("opening symbol file %s: %w", fileName, err)
	}
	defer func() { _ = file.Close() }()

	if err := table.Load(file); err != nil {
		return nil, fmt.Errorf("loading symbol file %s: %w", fileName, err)
	}
	return table, nil
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" {
		return os.Stdout, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}

// byteCount returns the number of bytes to disassemble. Without an explicit
// count the rest of the input following the start address is used, an
// explicit count is limited to it.
func byteCount(opts options.Program, image *loader.Image, start uint16) (int, error) {
	offset := int(start - image.Address)
	if offset >= image.Size {
		return 0, fmt.Errorf("%w: $%04x", ErrStartOutsideInput, start)
	}

	available := image.Size - offset
	if opts.Length > 0 {
		return min(opts.Length, available), nil
	}
	return available, nil
}

// decode decodes all instructions of the range. An instruction that is cut
// off by the end of the input is returned as undefined instruction holding
// the remaining bytes.
func decode(ctx context.Context, dis *z80.Decoder, image *loader.Image,
	start uint16, count int) ([]z80.Instruction, error) {

	instructions := make([]z80.Instruction, 0, min(count, arch.AddressSpace))
	next := start
	err := dis.Walk(image.Memory, start, count, func(ins z80.Instruction) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		instructions = append(instructions, ins)
		next = ins.Address + uint16(ins.Length)
		return nil
	})

	if errors.Is(err, memory.ErrOutOfRange) {
		tail, ok := truncatedInstruction(image.Memory, next)
		if ok {
			return append(instructions, tail), nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("disassembling: %w", err)
	}
	return instructions, nil
}

// truncatedInstruction returns all bytes of the source from the given
// address until its end as undefined instruction.
func truncatedInstruction(source *memory.Slice, address uint16) (z80.Instruction, bool) {
	remaining := source.Len() - int(address-source.Base())
	if remaining <= 0 {
		return z80.Instruction{}, false
	}

	data := make([]byte, 0, remaining)
	for i := range remaining {
		b, err := source.ReadMemory(address + uint16(i))
		if err != nil {
			return z80.Instruction{}, false
		}
		data = append(data, b)
	}

	return z80.Instruction{
		Address: address,
		Data:    data,
		Length:  len(data),
	}, true
}

// aliases returns all symbols that are not output as label of an
// instruction, sorted by address.
func aliases(instructions []z80.Instruction, table *symbols.Table) []symbols.Symbol {
	starts := set.New[uint16]()
	for _, ins := range instructions {
		starts.Add(ins.Address)
	}

	var result []symbols.Symbol
	for _, sym := range table.Sorted() {
		if !starts.Contains(sym.Address) {
			result = append(result, sym)
		}
	}
	return result
}
