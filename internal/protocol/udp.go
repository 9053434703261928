package protocol

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxPacketSize is the largest datagram payload the receiver reads.
const MaxPacketSize = 1024

// Tags that prefix every datagram, followed by ':'.
const (
	TagMotion     = "MOTION"
	TagConnect    = "CONNECT"
	TagDisconnect = "DISCONNECT"
	TagHeartbeat  = "HEARTBEAT"
)

// PacketType classifies a decoded datagram.
type PacketType uint8

const (
	PacketUnknown PacketType = iota
	PacketMotion
	PacketConnect
	PacketDisconnect
	PacketHeartbeat
)

func (t PacketType) String() string {
	switch t {
	case PacketMotion:
		return "motion"
	case PacketConnect:
		return "connect"
	case PacketDisconnect:
		return "disconnect"
	case PacketHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidUTF8      = errors.New("payload is not valid UTF-8")
	ErrMissingSeparator = errors.New("missing ':' after tag")
	ErrFieldCount       = errors.New("motion needs exactly two fields")
	ErrInvalidNumber    = errors.New("motion field is not a finite number")
	ErrTooLarge         = errors.New("payload too large")
)

// DecodeError reports why a payload was rejected. Err is one of the
// sentinel errors above.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Payload, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Packet is one decoded datagram.
//
// Wire format (UTF-8 text, surrounding whitespace ignored):
//
//	MOTION:<dx>,<dy>         dx, dy are decimal floats
//	CONNECT:<info>           info is free text
//	DISCONNECT:<info>
//	HEARTBEAT:<info>
//
// Any other tag decodes to PacketUnknown without error.
type Packet struct {
	Type   PacketType
	Tag    string
	DeltaX float64 // motion only
	DeltaY float64 // motion only
	Info   string  // everything after the first ':' for non-motion packets
}

// DecodePacket parses a single datagram payload.
func DecodePacket(data []byte) (*Packet, error) {
	if len(data) > MaxPacketSize {
		return nil, &DecodeError{Payload: truncate(data), Err: ErrTooLarge}
	}
	if !utf8.Valid(data) {
		return nil, &DecodeError{Payload: truncate(data), Err: ErrInvalidUTF8}
	}

	msg := strings.TrimSpace(string(data))
	tag, body, ok := strings.Cut(msg, ":")
	if !ok {
		return nil, &DecodeError{Payload: msg, Err: ErrMissingSeparator}
	}

	pkt := &Packet{Tag: tag, Info: body}
	switch tag {
	case TagMotion:
		dx, dy, err := parseMotion(body)
		if err != nil {
			return nil, &DecodeError{Payload: msg, Err: err}
		}
		pkt.Type = PacketMotion
		pkt.DeltaX, pkt.DeltaY = dx, dy
		pkt.Info = ""
	case TagConnect:
		pkt.Type = PacketConnect
	case TagDisconnect:
		pkt.Type = PacketDisconnect
	case TagHeartbeat:
		pkt.Type = PacketHeartbeat
	default:
		pkt.Type = PacketUnknown
		pkt.Info = msg
	}
	return pkt, nil
}

func parseMotion(body string) (float64, float64, error) {
	fields := strings.Split(body, ",")
	if len(fields) != 2 {
		return 0, 0, ErrFieldCount
	}
	dx, err := parseFloat(fields[0])
	if err != nil {
		return 0, 0, err
	}
	dy, err := parseFloat(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return dx, dy, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidNumber
	}
	return v, nil
}

// truncate keeps error messages readable for oversized or binary payloads.
func truncate(data []byte) string {
	const limit = 64
	if len(data) > limit {
		data = data[:limit]
	}
	return strings.ToValidUTF8(string(data), "?")
}

// EncodeMotion formats a motion datagram. The shortest float representation
// is used so DecodePacket recovers dx and dy exactly.
func EncodeMotion(dx, dy float64) []byte {
	buf := make([]byte, 0, 32)
	buf = append(buf, TagMotion...)
	buf = append(buf, ':')
	buf = strconv.AppendFloat(buf, dx, 'g', -1, 64)
	buf = append(buf, ',')
	buf = strconv.AppendFloat(buf, dy, 'g', -1, 64)
	return buf
}

// EncodeConnect formats a connect datagram.
func EncodeConnect(info string) []byte { return encodeTagged(TagConnect, info) }

// EncodeDisconnect formats a disconnect datagram.
func EncodeDisconnect(info string) []byte { return encodeTagged(TagDisconnect, info) }

// EncodeHeartbeat formats a heartbeat datagram.
func EncodeHeartbeat(info string) []byte { return encodeTagged(TagHeartbeat, info) }

func encodeTagged(tag, info string) []byte {
	return []byte(tag + ":" + info)
}
