package mcstatus

import (
	"errors"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/ptyonic/mcstatus/printers"
	"github.com/ptyonic/mcstatus/status"
	"github.com/ptyonic/mcstatus/timefmt"
)

var (
	_ Printer = (*printers.ColorPrinter)(nil)
	_ Printer = (*printers.JSONPrinter)(nil)
	_ Printer = (*printers.PlainPrinter)(nil)
	_ Printer = (*printers.FilePrinter)(nil)
	_ Printer = (*printers.MultiPrinter)(nil)
)

// Printer defines a set of methods that any printer implementation must provide.
// Printers are responsible for outputting information, but should not modify data or perform calculations.
type Printer interface {
	// PrintReport outputs the status line for one probe run.
	// An error means the report could not be delivered.
	PrintReport(r *status.Report) error

	// PrintError should print an error message.
	// Printer should also apply \n to the given string, if needed.
	PrintError(format string, args ...any)

	// Done flushes and releases whatever the printer holds.
	Done() error
}

// NewPrinter builds the status file printer and, unless quiet, a console
// printer: JSON when requested, plain when colors are off or stdout is not
// a terminal, colored otherwise.
func NewPrinter(cfg PrinterConfig) (Printer, error) {
	if cfg.PrettyJSON && !cfg.OutputJSON {
		return nil, errors.New("-pretty has no effect without the -j flag")
	}

	var all []printers.ReportPrinter

	if cfg.StatusPath != "" {
		all = append(all, printers.NewFilePrinter(cfg.StatusPath,
			printers.WithFormatter[*printers.FilePrinter](cfg.Formatter)))
	}

	if console := newConsolePrinter(cfg); console != nil {
		all = append(all, console)
	}

	return printers.NewMultiPrinter(all...), nil
}

func newConsolePrinter(cfg PrinterConfig) printers.ReportPrinter {
	out := cfg.Stdout
	if out == nil {
		out = os.Stdout
	}

	isTerminal := cfg.IsTerminal
	if isTerminal == nil {
		isTerminal = stdoutIsTerminal
	}

	switch {
	case cfg.Quiet:
		return nil

	case cfg.OutputJSON:
		opts := []printers.JSONPrinterOption{
			printers.WithWriter[*printers.JSONPrinter](out),
			printers.WithFormatter[*printers.JSONPrinter](cfg.Formatter),
		}
		if cfg.PrettyJSON {
			opts = append(opts, printers.WithPrettyJSON())
		}
		return printers.NewJSONPrinter(opts...)

	case cfg.NoColor || !isTerminal():
		return printers.NewPlainPrinter(
			printers.WithWriter[*printers.PlainPrinter](out),
			printers.WithFormatter[*printers.PlainPrinter](cfg.Formatter),
		)

	default:
		return printers.NewColorPrinter(
			printers.WithWriter[*printers.ColorPrinter](out),
			printers.WithFormatter[*printers.ColorPrinter](cfg.Formatter),
		)
	}
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// PrinterConfig holds all configuration options for Printer creation
type PrinterConfig struct {
	OutputJSON bool
	PrettyJSON bool
	NoColor    bool
	Quiet      bool
	StatusPath string
	Formatter  timefmt.Formatter

	// Stdout and IsTerminal default to the process stdout.
	Stdout     io.Writer
	IsTerminal func() bool
}
