package status

import (
	"time"

	"github.com/ptyonic/mcstatus/state"
)

// Evaluate combines the probe outcome with the state loaded before the probe.
// It is pure: the returned state is what must be persisted and the report is
// fully determined by the three inputs. A nil outcome counts as a Failure.
func Evaluate(outcome Outcome, previous state.State, now time.Time) (state.State, Report) {
	var success Success
	switch o := outcome.(type) {
	case Success:
		success = o
	case *Success:
		if o == nil {
			return previous, offline(previous)
		}
		success = *o
	default:
		return previous, offline(previous)
	}

	next := state.State{
		OnlineAt:  state.At(now),
		PlayersAt: previous.PlayersAt,
	}

	report := Report{
		Body:       NoPlayers,
		Players:    max(success.Players, 0),
		MaxPlayers: success.MaxPlayers,
		Latency:    max(success.RoundTrip, 0),
	}

	if report.MaxPlayers <= 0 {
		report.MaxPlayers = DefaultMaxPlayers
	}

	if report.Players > 0 {
		next.PlayersAt = state.At(now)
		report.Body = PlayersPresent
	} else {
		report.Annotation = previous.PlayersAt
	}

	return next, report
}

func offline(previous state.State) Report {
	return Report{
		Body:       Offline,
		Annotation: previous.OnlineAt,
	}
}
