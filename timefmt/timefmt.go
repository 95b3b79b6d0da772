// Package timefmt formats instants with a strftime pattern in an explicit time zone.
package timefmt

import (
	"time"
	_ "time/tzdata"

	"github.com/ncruces/go-strftime"
	"github.com/pkg/errors"
)

const (
	DefaultPattern = "%b%d %H:%M:%S %Z"
	DefaultZone    = "Europe/Berlin"
)

// Formatter renders instants. The zero value uses DefaultPattern in UTC.
type Formatter struct {
	pattern string
	loc     *time.Location
}

// LoadLocation resolves an IANA zone name. An empty name is UTC. An unknown
// name also yields UTC together with the lookup error so callers can log it.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, errors.Wrapf(err, "load time zone %q", name)
	}

	return loc, nil
}

// NewFormatter returns a formatter for pattern in loc. An empty pattern means
// DefaultPattern and a nil location means UTC.
func NewFormatter(pattern string, loc *time.Location) Formatter {
	return Formatter{pattern: pattern, loc: loc}
}

// Pattern returns the effective strftime pattern.
func (f Formatter) Pattern() string {
	if f.pattern == "" {
		return DefaultPattern
	}
	return f.pattern
}

// Location returns the effective zone.
func (f Formatter) Location() *time.Location {
	if f.loc == nil {
		return time.UTC
	}
	return f.loc
}

// Format renders t converted into the formatter's zone.
func (f Formatter) Format(t time.Time) string {
	return strftime.Format(f.Pattern(), t.In(f.Location()))
}
