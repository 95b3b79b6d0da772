package printers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ptyonic/mcstatus/status"
)

// JSONEventType tells consumers what kind of event they received.
type JSONEventType string

const (
	statusEvent JSONEventType = "status" // Event type for `PrintReport`.
	errorEvent  JSONEventType = "error"  // Event type for `PrintError`.
)

// JSONData contains all possible fields for JSON output.
// Fields irrelevant to an event are omitted.
type JSONData struct {
	Type       JSONEventType `json:"type"`
	Message    string        `json:"message"`
	Timestamp  time.Time     `json:"timestamp"`
	Online     *bool         `json:"online,omitempty"`
	Players    *int          `json:"players,omitempty"`
	MaxPlayers *int          `json:"maxPlayers,omitempty"`
	LatencyMs  *int64        `json:"latencyMs,omitempty"` // LatencyMs is the round trip in whole milliseconds.

	// Annotation is the formatted last-activity or last-online instant.
	Annotation   string     `json:"annotation,omitempty"`
	AnnotationAt *time.Time `json:"annotationAt,omitempty"`
}

// JSONPrinter writes one JSON object per event.
type JSONPrinter struct {
	opts    options
	pretty  bool
	encoder *json.Encoder
	now     func() time.Time
}

type JSONPrinterOption = func(*JSONPrinter)

// WithPrettyJSON indents the output.
func WithPrettyJSON() JSONPrinterOption {
	return func(p *JSONPrinter) {
		p.pretty = true
	}
}

// NewJSONPrinter creates a new JSONPrinter instance.
func NewJSONPrinter(opts ...JSONPrinterOption) *JSONPrinter {
	p := &JSONPrinter{opts: defaultOptions(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}

	p.encoder = json.NewEncoder(p.opts.Out)
	p.encoder.SetEscapeHTML(false)
	if p.pretty {
		p.encoder.SetIndent("", "\t")
	}

	return p
}

func (p *JSONPrinter) options() *options {
	return &p.opts
}

// PrintReport implements Printer.
func (p *JSONPrinter) PrintReport(r *status.Report) error {
	data := JSONData{
		Type:      statusEvent,
		Message:   strings.TrimSuffix(Render(r, p.opts.Formatter), "\n"),
		Timestamp: p.now(),
	}

	online := r != nil && r.Online()
	data.Online = &online

	if online {
		players, maxPlayers, latency := r.Players, r.MaxPlayers, r.LatencyMillis()
		data.Players = &players
		data.MaxPlayers = &maxPlayers
		data.LatencyMs = &latency
	}

	if r != nil && r.Annotation.Valid {
		at := r.Annotation.Time
		data.Annotation = p.opts.Formatter.Format(at)
		data.AnnotationAt = &at
	}

	return p.encoder.Encode(data)
}

// PrintError prints an error event.
func (p *JSONPrinter) PrintError(format string, args ...any) {
	_ = p.encoder.Encode(JSONData{
		Type:      errorEvent,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: p.now(),
	})
}

// Done implements Printer.
func (p *JSONPrinter) Done() error {
	return nil
}
