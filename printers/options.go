package printers

import (
	"io"
	"os"

	"github.com/ptyonic/mcstatus/timefmt"
)

// options contains the display settings shared by all printers.
type options struct {
	Out       io.Writer
	Formatter timefmt.Formatter
}

func defaultOptions() options {
	return options{Out: os.Stdout}
}

type hasOptions interface {
	options() *options
}

// WithWriter sends printer output to w instead of stdout.
func WithWriter[T hasOptions](w io.Writer) func(T) {
	return func(p T) {
		if w != nil {
			p.options().Out = w
		}
	}
}

// WithFormatter sets how annotation timestamps are rendered.
func WithFormatter[T hasOptions](f timefmt.Formatter) func(T) {
	return func(p T) {
		p.options().Formatter = f
	}
}
