package printers

import "github.com/ptyonic/mcstatus/status"

// ReportPrinter is the subset of behaviour MultiPrinter fans out to.
type ReportPrinter interface {
	PrintReport(r *status.Report) error
	PrintError(format string, args ...any)
	Done() error
}

// MultiPrinter forwards every call to each of its printers in order.
type MultiPrinter struct {
	printers []ReportPrinter
}

// NewMultiPrinter skips nil printers.
func NewMultiPrinter(printers ...ReportPrinter) *MultiPrinter {
	m := &MultiPrinter{}
	for _, p := range printers {
		if p != nil {
			m.printers = append(m.printers, p)
		}
	}
	return m
}

// Len returns the number of wrapped printers.
func (m *MultiPrinter) Len() int {
	return len(m.printers)
}

// PrintReport calls every printer and returns the first error.
func (m *MultiPrinter) PrintReport(r *status.Report) error {
	var first error
	for _, p := range m.printers {
		if err := p.PrintReport(r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PrintError forwards to every printer.
func (m *MultiPrinter) PrintError(format string, args ...any) {
	for _, p := range m.printers {
		p.PrintError(format, args...)
	}
}

// Done calls every printer and returns the first error.
func (m *MultiPrinter) Done() error {
	var first error
	for _, p := range m.printers {
		if err := p.Done(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
