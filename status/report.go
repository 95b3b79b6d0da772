package status

import (
	"time"

	"github.com/ptyonic/mcstatus/state"
)

// Body selects which report line is produced.
type Body int

const (
	// Offline means the probe failed.
	Offline Body = iota
	// NoPlayers means the server is up and empty.
	NoPlayers
	// PlayersPresent means at least one player is online.
	PlayersPresent
)

func (b Body) String() string {
	switch b {
	case Offline:
		return "offline"
	case NoPlayers:
		return "no_players"
	case PlayersPresent:
		return "players_present"
	default:
		return "unknown"
	}
}

// DefaultMaxPlayers is the capacity shown when the server does not report one.
const DefaultMaxPlayers = 20

// Report is everything the printers need to render one status line.
// Latency, Players and MaxPlayers are meaningful only when Online reports true.
type Report struct {
	Body       Body
	Players    int
	MaxPlayers int
	Latency    time.Duration

	// Annotation is the last players-seen instant for NoPlayers and the last
	// online instant for Offline. It is never set for PlayersPresent.
	Annotation state.Timestamp
}

// Online reports whether the probe succeeded.
func (r *Report) Online() bool {
	return r.Body != Offline
}

// LatencyMillis is the round trip in whole milliseconds.
func (r *Report) LatencyMillis() int64 {
	return r.Latency.Milliseconds()
}
