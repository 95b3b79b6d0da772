// Package mcstatus probes a Minecraft server once and reports whether it is
// online and whether anyone is playing.
package mcstatus

import (
	"context"

	"github.com/ptyonic/mcstatus/pingers"
)

var (
	// List of compile time checks for all pingers
	_ Pinger = (*pingers.MinecraftPinger)(nil)
)

// Pinger performs one status exchange with a server.
type Pinger interface {
	Ping(ctx context.Context) (pingers.Status, error)
	IP() string
	Port() uint16
}
