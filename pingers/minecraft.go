// Package pingers implements the Minecraft Server List Ping used to probe a server.
package pingers

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ptyonic/mcstatus/option"
)

const (
	// DefaultPort is the port Minecraft servers listen on unless SRV says otherwise.
	DefaultPort uint16 = 25565

	// DefaultProtocolVersion asks the server to answer regardless of its version.
	DefaultProtocolVersion int32 = -1

	packetHandshake int32 = 0x00
	packetStatus    int32 = 0x00
	packetPing      int32 = 0x01

	nextStateStatus int32 = 1

	tcp = "tcp"
)

// Status is what a server reports about itself, plus the measured round trip.
type Status struct {
	VersionName     string
	ProtocolVersion int
	PlayersOnline   int
	PlayersMax      int
	MOTD            string
	Latency         time.Duration
}

type statusResponse struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
	} `json:"players"`
	Description json.RawMessage `json:"description"`
}

// MinecraftPinger queries one server over TCP.
type MinecraftPinger struct {
	dialer   *net.Dialer
	ip       netip.Addr
	port     uint16
	host     string
	protocol int32
	now      func() time.Time
}

type MinecraftOption = option.Option[MinecraftPinger]

// NewMinecraftPinger creates a pinger for ip and port. The handshake names
// the IP itself unless WithServerName is given.
func NewMinecraftPinger(ip netip.Addr, port uint16, opts ...MinecraftOption) *MinecraftPinger {
	p := &MinecraftPinger{
		ip:       ip,
		port:     port,
		protocol: DefaultProtocolVersion,
		now:      time.Now,
		dialer: &net.Dialer{
			Timeout: 5 * time.Second,
		},
	}
	option.Apply(p, opts...)
	return p
}

// WithDialer configures a custom net.Dialer.
func WithDialer(dialer *net.Dialer) MinecraftOption {
	return func(p *MinecraftPinger) {
		p.dialer = dialer
	}
}

// WithTimeout configures the dial timeout.
func WithTimeout(timeout time.Duration) MinecraftOption {
	return func(p *MinecraftPinger) {
		if p.dialer == nil {
			p.dialer = &net.Dialer{}
		}
		p.dialer.Timeout = timeout
	}
}

// WithServerName sets the host name sent in the handshake. Servers behind a
// proxy route on it.
func WithServerName(host string) MinecraftOption {
	return func(p *MinecraftPinger) {
		p.host = host
	}
}

// WithProtocolVersion overrides the protocol version sent in the handshake.
func WithProtocolVersion(version int32) MinecraftOption {
	return func(p *MinecraftPinger) {
		p.protocol = version
	}
}

// IP implements Pinger.
func (p *MinecraftPinger) IP() string {
	return p.ip.String()
}

// Port implements Pinger.
func (p *MinecraftPinger) Port() uint16 {
	return p.port
}

func (p *MinecraftPinger) address() string {
	return net.JoinHostPort(p.ip.String(), strconv.Itoa(int(p.port)))
}

func (p *MinecraftPinger) serverName() string {
	if p.host != "" {
		return p.host
	}
	return p.ip.String()
}

// Ping performs one status exchange followed by a ping/pong round trip.
// The context deadline also bounds every read and write on the connection.
func (p *MinecraftPinger) Ping(ctx context.Context) (Status, error) {
	conn, err := p.dialer.DialContext(ctx, tcp, p.address())
	if err != nil {
		return Status{}, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return Status{}, fmt.Errorf("set deadline: %w", err)
		}
	}

	// unblock pending reads as soon as the context is cancelled
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	reader := bufio.NewReader(conn)

	status, err := p.queryStatus(conn, reader)
	if err != nil {
		return Status{}, wrapContext(ctx, err)
	}

	latency, err := p.roundTrip(conn, reader)
	if err != nil {
		return Status{}, wrapContext(ctx, err)
	}
	status.Latency = latency

	return status, nil
}

func (p *MinecraftPinger) queryStatus(conn net.Conn, reader *bufio.Reader) (Status, error) {
	handshake := AppendVarInt(nil, p.protocol)
	handshake = appendString(handshake, p.serverName())
	handshake = binary.BigEndian.AppendUint16(handshake, p.port)
	handshake = AppendVarInt(handshake, nextStateStatus)

	if err := writePacket(conn, packetHandshake, handshake); err != nil {
		return Status{}, fmt.Errorf("send handshake: %w", err)
	}

	if err := writePacket(conn, packetStatus, nil); err != nil {
		return Status{}, fmt.Errorf("send status request: %w", err)
	}

	id, body, err := readPacket(reader)
	if err != nil {
		return Status{}, fmt.Errorf("read status response: %w", err)
	}
	if id != packetStatus {
		return Status{}, fmt.Errorf("%w: unexpected packet id 0x%02x for status response", ErrProtocol, id)
	}

	payload, err := readString(body)
	if err != nil {
		return Status{}, fmt.Errorf("read status response: %w", err)
	}

	var resp statusResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return Status{}, fmt.Errorf("%w: decode status json: %w", ErrProtocol, err)
	}

	return Status{
		VersionName:     resp.Version.Name,
		ProtocolVersion: resp.Version.Protocol,
		PlayersOnline:   resp.Players.Online,
		PlayersMax:      resp.Players.Max,
		MOTD:            flattenChat(resp.Description),
	}, nil
}

func (p *MinecraftPinger) roundTrip(conn net.Conn, reader *bufio.Reader) (time.Duration, error) {
	start := p.now()
	token := start.UnixMilli()

	if err := writePacket(conn, packetPing, binary.BigEndian.AppendUint64(nil, uint64(token))); err != nil {
		return 0, fmt.Errorf("send ping: %w", err)
	}

	id, body, err := readPacket(reader)
	if err != nil {
		return 0, fmt.Errorf("read pong: %w", err)
	}
	latency := p.now().Sub(start)

	if id != packetPing {
		return 0, fmt.Errorf("%w: unexpected packet id 0x%02x for pong", ErrProtocol, id)
	}

	var echoed int64
	if err := binary.Read(body, binary.BigEndian, &echoed); err != nil {
		return 0, fmt.Errorf("%w: pong payload: %w", ErrProtocol, err)
	}
	if echoed != token {
		return 0, fmt.Errorf("%w: pong payload %d does not match ping %d", ErrProtocol, echoed, token)
	}

	return max(latency, 0), nil
}

// wrapContext prefers the context error when cancellation caused the failure.
func wrapContext(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return err
}

// flattenChat extracts the plain text of a chat component, which is either a
// bare string or an object with "text" and nested "extra" components.
func flattenChat(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var component struct {
		Text  string            `json:"text"`
		Extra []json.RawMessage `json:"extra"`
	}
	if err := json.Unmarshal(raw, &component); err != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(component.Text)
	for _, extra := range component.Extra {
		b.WriteString(flattenChat(extra))
	}
	return b.String()
}
