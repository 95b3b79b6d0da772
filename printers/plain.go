package printers

import (
	"fmt"

	"github.com/ptyonic/mcstatus/status"
)

// PlainPrinter echoes the status line to the console without decoration.
type PlainPrinter struct {
	opts options
}

type PlainPrinterOption = func(*PlainPrinter)

// NewPlainPrinter creates a new PlainPrinter instance.
func NewPlainPrinter(opts ...PlainPrinterOption) *PlainPrinter {
	p := &PlainPrinter{opts: defaultOptions()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PlainPrinter) options() *options {
	return &p.opts
}

// PrintReport implements Printer.
func (p *PlainPrinter) PrintReport(r *status.Report) error {
	_, err := fmt.Fprint(p.opts.Out, Render(r, p.opts.Formatter))
	return err
}

// PrintError prints an error message.
func (p *PlainPrinter) PrintError(format string, args ...any) {
	fmt.Fprintf(p.opts.Out, format+"\n", args...)
}

// Done implements Printer.
func (p *PlainPrinter) Done() error {
	return nil
}
