// Package detector handles load address detection.
package detector

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/z80disasm/internal/options"
)

// cpmLoadAddress is the start of the CP/M transient program area.
const cpmLoadAddress = 0x0100

// Detector handles load address detection from file extensions and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new load address detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the load address from options or file auto-detection.
// An explicitly set load address always wins, otherwise the address is
// detected from the input filename extension.
func (d *Detector) Detect(opts options.Program) uint16 {
	if opts.LoadSet {
		return opts.LoadAddress
	}

	address := d.detectFromFile(opts.Input)
	d.logger.Debug("Auto-detected load address",
		log.String("address", fmt.Sprintf("0x%04X", address)),
		log.String("file", opts.Input))
	return address
}

// detectFromFile determines the load address based on file extension.
func (d *Detector) detectFromFile(filename string) uint16 {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".com":
		return cpmLoadAddress
	default:
		// raw binaries and ROM images start at address 0
		return 0
	}
}
