// Package testdata provides shared test helpers and fixtures.
package testdata

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ptyonic/mcstatus/pingers"
)

// Common test fixture values
var (
	TestTimestamp  = time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)
	TestTimestamp2 = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
)

// StatusJSON builds a status response body.
func StatusJSON(online, maxPlayers int, motd string) string {
	return fmt.Sprintf(`{"version":{"name":"1.21.1","protocol":767},"players":{"max":%d,"online":%d},"description":{"text":%q}}`,
		maxPlayers, online, motd)
}

// Handshake is what a fake server received in the first packet.
type Handshake struct {
	Protocol  int32
	Host      string
	Port      uint16
	NextState int32
}

// Server is a local TCP listener driven by a connection handler.
type Server struct {
	Addr netip.AddrPort

	mu         sync.Mutex
	handshakes []Handshake
}

// Handshakes returns every handshake received so far.
func (s *Server) Handshakes() []Handshake {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Handshake(nil), s.handshakes...)
}

// StartServer listens on 127.0.0.1 and runs handler for each connection
// until the test ends.
func StartServer(t *testing.T, handler func(s *Server, conn net.Conn)) *Server {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("start test server: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	s := &Server{Addr: listener.Addr().(*net.TCPAddr).AddrPort()}

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				handler(s, conn)
			}()
		}
	}()

	return s
}

// StartSLPServer answers the status exchange with statusJSON and echoes pings.
func StartSLPServer(t *testing.T, statusJSON string) *Server {
	t.Helper()

	return StartServer(t, func(s *Server, conn net.Conn) {
		_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
		r := bufio.NewReader(conn)

		if err := s.readHandshake(r); err != nil {
			return
		}

		// status request
		if _, _, err := ReadFrame(r); err != nil {
			return
		}

		payload := pingers.AppendVarInt(nil, int32(len(statusJSON)))
		payload = append(payload, statusJSON...)
		if err := WriteFrame(conn, 0x00, payload); err != nil {
			return
		}

		id, body, err := ReadFrame(r)
		if err != nil || id != 0x01 {
			return
		}
		_ = WriteFrame(conn, 0x01, body)
	})
}

// StartClosedPort returns an address on which nothing listens.
func StartClosedPort(t *testing.T) netip.AddrPort {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	addr := listener.Addr().(*net.TCPAddr).AddrPort()
	listener.Close()

	return addr
}

func (s *Server) readHandshake(r *bufio.Reader) error {
	id, body, err := ReadFrame(r)
	if err != nil {
		return err
	}
	if id != 0x00 {
		return fmt.Errorf("unexpected handshake id %d", id)
	}

	br := bytes.NewReader(body)
	var hs Handshake

	if hs.Protocol, err = pingers.ReadVarInt(br); err != nil {
		return err
	}

	n, err := pingers.ReadVarInt(br)
	if err != nil {
		return err
	}
	host := make([]byte, n)
	if _, err := io.ReadFull(br, host); err != nil {
		return err
	}
	hs.Host = string(host)

	if err := binary.Read(br, binary.BigEndian, &hs.Port); err != nil {
		return err
	}

	if hs.NextState, err = pingers.ReadVarInt(br); err != nil {
		return err
	}

	s.mu.Lock()
	s.handshakes = append(s.handshakes, hs)
	s.mu.Unlock()

	return nil
}

// ReadFrame reads one length-prefixed packet.
func ReadFrame(r *bufio.Reader) (int32, []byte, error) {
	length, err := pingers.ReadVarInt(r)
	if err != nil {
		return 0, nil, err
	}
	if length <= 0 || length > pingers.MaxPacketSize {
		return 0, nil, fmt.Errorf("frame length %d out of range", length)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, err
	}

	br := bytes.NewReader(buf)
	id, err := pingers.ReadVarInt(br)
	if err != nil {
		return 0, nil, err
	}

	return id, buf[len(buf)-br.Len():], nil
}

// WriteFrame writes one length-prefixed packet.
func WriteFrame(w io.Writer, id int32, payload []byte) error {
	body := pingers.AppendVarInt(nil, id)
	body = append(body, payload...)

	frame := pingers.AppendVarInt(nil, int32(len(body)))
	frame = append(frame, body...)

	_, err := w.Write(frame)
	return err
}

// ToPtr returns a pointer to the provided value.
func ToPtr[T any](v T) *T {
	return &v
}

// CaptureOutput captures stdout during function execution and returns it as a string.
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	w.Close()
	output := <-done
	os.Stdout = oldStdout

	return output
}
