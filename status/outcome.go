// Package status turns a probe outcome and the previously persisted state
// into the next state and the report describing it.
package status

import "time"

// Outcome is the classified result of one probe. It is either Success or Failure.
type Outcome interface {
	outcome()
}

// Success means the server answered the status query.
type Success struct {
	Players    int
	MaxPlayers int
	RoundTrip  time.Duration
	Version    string
	MOTD       string
}

// Failure covers every way a probe can fail: name resolution, refused
// connections, protocol errors and timeouts alike.
type Failure struct {
	Err error
}

func (Success) outcome() {}
func (Failure) outcome() {}

func (f Failure) Error() string {
	if f.Err == nil {
		return "probe failed"
	}
	return f.Err.Error()
}

func (f Failure) Unwrap() error {
	return f.Err
}
