package printers

import (
	"fmt"
	"strings"

	"github.com/gookit/color"

	"github.com/ptyonic/mcstatus/status"
)

// ColorPrinter echoes the status line to the console, green when the server
// is online and red when it is not.
type ColorPrinter struct {
	opts options
}

type ColorPrinterOption = func(*ColorPrinter)

// NewColorPrinter creates a new ColorPrinter instance.
func NewColorPrinter(opts ...ColorPrinterOption) *ColorPrinter {
	p := &ColorPrinter{opts: defaultOptions()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *ColorPrinter) options() *options {
	return &p.opts
}

// PrintReport implements Printer.
func (p *ColorPrinter) PrintReport(r *status.Report) error {
	line := strings.TrimSuffix(Render(r, p.opts.Formatter), "\n")

	style := color.Red
	switch {
	case r != nil && r.Body == status.PlayersPresent:
		style = color.LightGreen
	case r != nil && r.Online():
		style = color.Green
	}

	_, err := fmt.Fprintln(p.opts.Out, style.Sprint(line))
	return err
}

// PrintError prints an error message in red.
func (p *ColorPrinter) PrintError(format string, args ...any) {
	fmt.Fprintln(p.opts.Out, color.Red.Sprintf(format, args...))
}

// Done implements Printer.
func (p *ColorPrinter) Done() error {
	return nil
}
