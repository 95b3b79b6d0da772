// Package printers renders status reports to files and to the console.
package printers

import (
	"fmt"
	"strings"

	"github.com/ptyonic/mcstatus/status"
	"github.com/ptyonic/mcstatus/timefmt"
)

const (
	onlineMark  = "Online✅"
	offlineMark = "Offline❎"
)

// Render produces the newline-terminated status line for r. A nil report
// renders as offline with no annotation.
func Render(r *status.Report, f timefmt.Formatter) string {
	var b strings.Builder

	if r == nil || !r.Online() {
		b.WriteString(offlineMark)
		if r != nil && r.Annotation.Valid {
			b.WriteString(" last online at ")
			b.WriteString(f.Format(r.Annotation.Time))
		}
		b.WriteByte('\n')
		return b.String()
	}

	fmt.Fprintf(&b, "%s with %d/%d players.", onlineMark, r.Players, r.MaxPlayers)

	switch {
	case r.Body == status.PlayersPresent:
		b.WriteString(" yay!")
	case r.Annotation.Valid:
		b.WriteString(" Last activity seen on ")
		b.WriteString(f.Format(r.Annotation.Time))
	}

	fmt.Fprintf(&b, " (ping %dms)\n", r.LatencyMillis())
	return b.String()
}
