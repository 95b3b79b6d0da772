// Package state persists the two liveness timestamps that carry over between
// probe runs: when the server was last seen online and when it last had
// players connected.
package state

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Timestamp is an optional instant. The zero value is absent.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// At returns a present timestamp for t.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true}
}

// Equal reports whether both timestamps are absent, or both are present and
// denote the same instant.
func (t Timestamp) Equal(other Timestamp) bool {
	if t.Valid != other.Valid {
		return false
	}
	return !t.Valid || t.Time.Equal(other.Time)
}

func (t Timestamp) String() string {
	if !t.Valid {
		return "never"
	}
	return t.Time.Format(time.RFC3339)
}

// legacyTimestamp is how the previous probe serialized instants.
type legacyTimestamp struct {
	Secs  *int64 `json:"secs_since_epoch"`
	Nanos int64  `json:"nanos_since_epoch"`
}

// MarshalJSON writes an RFC 3339 string at second precision, or null when absent.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Truncate(time.Second).Format(time.RFC3339))
}

// UnmarshalJSON accepts null, an RFC 3339 string, bare Unix seconds and the
// legacy {"secs_since_epoch","nanos_since_epoch"} object.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "decode timestamp string")
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return errors.Wrapf(err, "parse timestamp %q", s)
		}
		*t = At(parsed)

	case '{':
		var legacy legacyTimestamp
		if err := json.Unmarshal(data, &legacy); err != nil {
			return errors.Wrap(err, "decode legacy timestamp")
		}
		if legacy.Secs == nil {
			return errors.New("legacy timestamp without secs_since_epoch")
		}
		*t = At(time.Unix(*legacy.Secs, legacy.Nanos).UTC())

	default:
		var secs int64
		if err := json.Unmarshal(data, &secs); err != nil {
			return errors.Wrap(err, "decode unix timestamp")
		}
		*t = At(time.Unix(secs, 0).UTC())
	}

	return nil
}

// State is the persisted record. PlayersAt is only ever set to an instant at
// which the server was also online.
type State struct {
	OnlineAt  Timestamp `json:"online_timestamp"`
	PlayersAt Timestamp `json:"players_timestamp"`
}

// Equal compares both timestamps.
func (s State) Equal(other State) bool {
	return s.OnlineAt.Equal(other.OnlineAt) && s.PlayersAt.Equal(other.PlayersAt)
}

// Store loads and saves the record.
type Store interface {
	// Load never fails. A record that cannot be read or decoded yields the
	// zero State.
	Load(ctx context.Context) State

	// Save replaces the stored record.
	Save(ctx context.Context, s State) error
}
