package printers

import (
	"github.com/pkg/errors"

	"github.com/ptyonic/mcstatus/internal/utils"
	"github.com/ptyonic/mcstatus/status"
)

// FilePrinter replaces the content of a status file with the latest line.
type FilePrinter struct {
	opts options
	path string
}

type FilePrinterOption = func(*FilePrinter)

// NewFilePrinter returns a printer that writes to path.
func NewFilePrinter(path string, opts ...FilePrinterOption) *FilePrinter {
	p := &FilePrinter{opts: defaultOptions(), path: path}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *FilePrinter) options() *options {
	return &p.opts
}

// Path returns the status file location.
func (p *FilePrinter) Path() string {
	return p.path
}

// PrintReport overwrites the status file with exactly one line.
func (p *FilePrinter) PrintReport(r *status.Report) error {
	line := Render(r, p.opts.Formatter)
	if err := utils.WriteFileAtomic(p.path, []byte(line), 0o644); err != nil {
		return errors.Wrapf(err, "write status file %s", p.path)
	}
	return nil
}

// PrintError satisfies the "printer" interface but does nothing in this implementation
func (p *FilePrinter) PrintError(_ string, _ ...any) {}

// Done implements Printer.
func (p *FilePrinter) Done() error {
	return nil
}
