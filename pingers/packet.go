package pingers

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrProtocol is returned for anything the server sends that does not follow
// the Server List Ping framing.
var ErrProtocol = errors.New("minecraft protocol error")

const (
	// MaxPacketSize bounds a single inbound packet.
	MaxPacketSize = 2 << 20

	maxVarIntBytes = 5
)

// AppendVarInt appends v in the protocol's LEB128 variant. Negative values
// always take five bytes.
func AppendVarInt(dst []byte, v int32) []byte {
	u := uint32(v)
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// ReadVarInt decodes one VarInt. More than five bytes is a protocol error.
func ReadVarInt(r io.ByteReader) (int32, error) {
	var result uint32
	for i := range maxVarIntBytes {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return int32(result), nil
		}
	}
	return 0, fmt.Errorf("%w: varint longer than %d bytes", ErrProtocol, maxVarIntBytes)
}

func appendString(dst []byte, s string) []byte {
	dst = AppendVarInt(dst, int32(len(s)))
	return append(dst, s...)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := ReadVarInt(r)
	if err != nil {
		return "", fmt.Errorf("%w: string length: %w", ErrProtocol, err)
	}
	if n < 0 || int(n) > r.Len() {
		return "", fmt.Errorf("%w: string length %d exceeds packet", ErrProtocol, n)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("%w: string body: %w", ErrProtocol, err)
	}
	return string(buf), nil
}

// writePacket frames id and payload with the length prefix.
func writePacket(w io.Writer, id int32, payload []byte) error {
	body := AppendVarInt(nil, id)
	body = append(body, payload...)

	frame := AppendVarInt(make([]byte, 0, len(body)+maxVarIntBytes), int32(len(body)))
	frame = append(frame, body...)

	_, err := w.Write(frame)
	return err
}

// readPacket reads one length-prefixed packet and splits off its id.
func readPacket(r *bufio.Reader) (int32, *bytes.Reader, error) {
	length, err := ReadVarInt(r)
	if err != nil {
		return 0, nil, fmt.Errorf("read packet length: %w", err)
	}
	if length <= 0 || length > MaxPacketSize {
		return 0, nil, fmt.Errorf("%w: packet length %d out of range", ErrProtocol, length)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, fmt.Errorf("read packet body: %w", err)
	}

	body := bytes.NewReader(buf)
	id, err := ReadVarInt(body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: packet id: %w", ErrProtocol, err)
	}

	return id, body, nil
}
