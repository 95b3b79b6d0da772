package mcstatus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ptyonic/mcstatus/option"
	"github.com/ptyonic/mcstatus/status"
)

var (
	ErrTimeout = errors.New("timed out waiting for ping")
)

const (
	DefaultTimeout          = 5 * time.Second
	DefaultFallbackCapacity = status.DefaultMaxPlayers
)

// Prober runs a single bounded probe and classifies its result.
type Prober struct {
	pinger           Pinger
	log              *zap.Logger
	Timeout          time.Duration
	FallbackCapacity int
}

type ProberOption = option.Option[Prober]

// WithTimeout bounds the whole probe. Zero disables the prober's own deadline.
func WithTimeout(timeout time.Duration) ProberOption {
	return func(p *Prober) {
		p.Timeout = timeout
	}
}

// WithFallbackCapacity sets the capacity reported when the server announces none.
func WithFallbackCapacity(capacity int) ProberOption {
	return func(p *Prober) {
		if capacity > 0 {
			p.FallbackCapacity = capacity
		}
	}
}

// WithLogger attaches a logger for probe diagnostics.
func WithLogger(log *zap.Logger) ProberOption {
	return func(p *Prober) {
		if log != nil {
			p.log = log
		}
	}
}

// NewProber creates a new prober with the given pinger and optional configuration.
func NewProber(p Pinger, opts ...ProberOption) *Prober {
	pr := &Prober{
		pinger:           p,
		log:              zap.NewNop(),
		Timeout:          DefaultTimeout,
		FallbackCapacity: DefaultFallbackCapacity,
	}
	option.Apply(pr, opts...)
	return pr
}

// Probe pings once. It never returns an error: every failure becomes a
// status.Failure.
func (p *Prober) Probe(ctx context.Context) status.Outcome {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	st, err := p.pinger.Ping(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %w", ErrTimeout, p.Timeout, err)
		}
		p.log.Debug("ping_failed",
			zap.String("ip", p.pinger.IP()),
			zap.Uint16("port", p.pinger.Port()),
			zap.Error(err))
		return status.Failure{Err: err}
	}

	capacity := st.PlayersMax
	if capacity <= 0 {
		capacity = p.FallbackCapacity
	}

	p.log.Debug("ping_succeeded",
		zap.String("ip", p.pinger.IP()),
		zap.Uint16("port", p.pinger.Port()),
		zap.Int("players", st.PlayersOnline),
		zap.Int("max_players", capacity),
		zap.Duration("latency", st.Latency),
		zap.String("version", st.VersionName))

	return status.Success{
		Players:    st.PlayersOnline,
		MaxPlayers: capacity,
		RoundTrip:  st.Latency,
		Version:    st.VersionName,
		MOTD:       st.MOTD,
	}
}
