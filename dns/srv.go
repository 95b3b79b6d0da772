package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

const (
	// DefaultPort is used when neither the address nor SRV names a port.
	DefaultPort uint16 = 25565

	srvService = "minecraft"
	srvProto   = "tcp"
)

var ErrInvalidAddress = errors.New("invalid server address")

// Target is where a probe connects and which name it presents.
type Target struct {
	// ServerName is the host as configured, sent in the handshake.
	ServerName string
	// Host is the name that was resolved, the SRV target when one was used.
	Host string
	IP   netip.Addr
	Port uint16
	// ViaSRV is set when the port came from a _minecraft._tcp record.
	ViaSRV bool
}

// AddrPort returns the connect address.
func (t Target) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(t.IP, t.Port)
}

// SplitAddress separates an optional port from a server address. Bare IPv6
// literals are accepted without brackets. A zero port means none was given.
func SplitAddress(address string) (string, uint16, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", 0, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	if ip, err := netip.ParseAddr(address); err == nil {
		return ip.String(), 0, nil
	}

	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		var addrErr *net.AddrError
		if errors.As(err, &addrErr) && addrErr.Err == "missing port in address" {
			return strings.Trim(address, "[]"), 0, nil
		}
		return "", 0, fmt.Errorf("%w: %s: %w", ErrInvalidAddress, address, err)
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return "", 0, fmt.Errorf("%w: port %q should be in 1..65535 range", ErrInvalidAddress, portStr)
	}

	if host == "" {
		return "", 0, fmt.Errorf("%w: missing host in %s", ErrInvalidAddress, address)
	}

	return host, uint16(port), nil
}

// LookupServer turns a configured address into a connect target. Without an
// explicit port the _minecraft._tcp SRV record of the host is consulted first,
// falling back to DefaultPort when there is none.
func (r *Resolver) LookupServer(ctx context.Context, address string) (Target, error) {
	host, port, err := SplitAddress(address)
	if err != nil {
		return Target{}, err
	}

	target := Target{ServerName: host, Host: host, Port: port}

	if port == 0 {
		target.Port = DefaultPort
		if _, ipErr := netip.ParseAddr(host); ipErr != nil {
			if srvHost, srvPort, ok := r.lookupSRV(ctx, host); ok {
				target.Host = srvHost
				target.Port = srvPort
				target.ViaSRV = true
			}
		}
	}

	target.IP, err = r.ResolveHostname(ctx, target.Host)
	if err != nil {
		return Target{}, err
	}

	return target, nil
}

// lookupSRV returns the first record in priority order. Lookup failures count
// as no record.
func (r *Resolver) lookupSRV(ctx context.Context, host string) (string, uint16, bool) {
	lctx, cancel := r.withDeadline(ctx)
	defer cancel()

	_, records, err := r.lookup.LookupSRV(lctx, srvService, srvProto, host)
	if err != nil || len(records) == 0 {
		return "", 0, false
	}

	rec := records[0]
	target := strings.TrimSuffix(rec.Target, ".")
	if target == "" || rec.Port == 0 {
		return "", 0, false
	}

	return target, rec.Port, true
}
