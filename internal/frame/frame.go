package frame

import (
	"errors"
	"fmt"
	"strings"
)

// Header layout
const (
	SyncByte   = 0xFC
	HeaderSize = 5

	headerIndexType   = 1
	headerIndexLength = 4

	// MaxPayloadSize is the largest payload the one-byte length field allows
	MaxPayloadSize = 0xFF
)

var headerConstant = [2]byte{0x01, 0x30}

// Parse errors
var (
	ErrShortFrame     = errors.New("frame too short")
	ErrBadSync        = errors.New("invalid sync byte")
	ErrBadHeader      = errors.New("invalid header constant")
	ErrLengthMismatch = errors.New("declared length does not match frame size")
)

// PacketType is the type code in header byte 1
type PacketType byte

const (
	TypeConnectRequest   PacketType = 0x5A
	TypeConnectResponse  PacketType = 0x7A
	TypeGetRequest       PacketType = 0x42
	TypeGetResponse      PacketType = 0x62
	TypeSetRequest       PacketType = 0x41
	TypeSetResponse      PacketType = 0x61
	TypeIdentifyRequest  PacketType = 0x5B
	TypeIdentifyResponse PacketType = 0x7B
)

func (t PacketType) String() string {
	switch t {
	case TypeConnectRequest:
		return "ConnectRequest"
	case TypeConnectResponse:
		return "ConnectResponse"
	case TypeGetRequest:
		return "GetRequest"
	case TypeGetResponse:
		return "GetResponse"
	case TypeSetRequest:
		return "SetRequest"
	case TypeSetResponse:
		return "SetResponse"
	case TypeIdentifyRequest:
		return "IdentifyRequest"
	case TypeIdentifyResponse:
		return "IdentifyResponse"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", byte(t))
	}
}

// SourceBridge records which side of the bridge a frame was received on.
type SourceBridge uint8

const (
	SourceNone SourceBridge = iota
	SourceHeatpump
	SourceThermostat
)

func (s SourceBridge) String() string {
	switch s {
	case SourceHeatpump:
		return "heatpump"
	case SourceThermostat:
		return "thermostat"
	default:
		return "none"
	}
}

// ControllerAssociation records who originated the exchange a frame belongs to.
type ControllerAssociation uint8

const (
	AssociationBridge ControllerAssociation = iota
	AssociationThermostat
)

func (a ControllerAssociation) String() string {
	if a == AssociationThermostat {
		return "thermostat"
	}
	return "bridge"
}

// Frame is one bus message: header, payload and checksum.
type Frame struct {
	raw         []byte
	bridge      SourceBridge
	association ControllerAssociation
}

// New creates a zeroed frame of the given type and payload size with a valid
// checksum.
func New(packetType PacketType, payloadSize int) *Frame {
	if payloadSize < 0 || payloadSize > MaxPayloadSize {
		panic(fmt.Sprintf("frame: payload size %d out of range", payloadSize))
	}

	raw := make([]byte, HeaderSize+payloadSize+1)
	raw[0] = SyncByte
	raw[headerIndexType] = byte(packetType)
	raw[2] = headerConstant[0]
	raw[3] = headerConstant[1]
	raw[headerIndexLength] = byte(payloadSize)

	f := &Frame{raw: raw}
	f.updateChecksum()
	return f
}

// Parse copies raw into a new Frame after validating its header and length.
// A checksum mismatch is not an error; see ChecksumValid.
func Parse(raw []byte, bridge SourceBridge, association ControllerAssociation) (*Frame, error) {
	if len(raw) < HeaderSize+1 {
		return nil, fmt.Errorf("%w: %d bytes (minimum %d)", ErrShortFrame, len(raw), HeaderSize+1)
	}
	if raw[0] != SyncByte {
		return nil, fmt.Errorf("%w: 0x%02x (expected 0x%02x)", ErrBadSync, raw[0], SyncByte)
	}
	if raw[2] != headerConstant[0] || raw[3] != headerConstant[1] {
		return nil, fmt.Errorf("%w: 0x%02x 0x%02x", ErrBadHeader, raw[2], raw[3])
	}

	want := HeaderSize + int(raw[headerIndexLength]) + 1
	if len(raw) != want {
		return nil, fmt.Errorf("%w: length byte says %d bytes, got %d", ErrLengthMismatch, want, len(raw))
	}

	buf := make([]byte, len(raw))
	copy(buf, raw)

	return &Frame{raw: buf, bridge: bridge, association: association}, nil
}

// Checksum computes the checksum byte for the given header and payload bytes.
func Checksum(data []byte) byte {
	sum := byte(SyncByte)
	for _, b := range data {
		sum -= b
	}
	return sum
}

func (f *Frame) checksumIndex() int {
	return len(f.raw) - 1
}

func (f *Frame) updateChecksum() {
	i := f.checksumIndex()
	f.raw[i] = Checksum(f.raw[:i])
}

// PacketType returns the header type code
func (f *Frame) PacketType() PacketType { return PacketType(f.raw[headerIndexType]) }

// Length returns the payload length
func (f *Frame) Length() int { return int(f.raw[headerIndexLength]) }

// PayloadByte returns the payload byte at offset
func (f *Frame) PayloadByte(offset int) byte { return f.raw[HeaderSize+offset] }

// SetPayloadByte writes one payload byte and refreshes the checksum
func (f *Frame) SetPayloadByte(offset int, b byte) {
	f.raw[HeaderSize+offset] = b
	f.updateChecksum()
}

// PayloadBytes returns the payload from offset to the end. The slice aliases
// the frame buffer.
func (f *Frame) PayloadBytes(offset int) []byte {
	return f.raw[HeaderSize+offset : f.checksumIndex()]
}

// SetPayloadBytes copies b into the payload starting at offset
func (f *Frame) SetPayloadBytes(offset int, b []byte) {
	copy(f.raw[HeaderSize+offset:f.checksumIndex()], b)
	f.updateChecksum()
}

// ChecksumValid reports whether the trailing byte matches the frame contents
func (f *Frame) ChecksumValid() bool {
	i := f.checksumIndex()
	return f.raw[i] == Checksum(f.raw[:i])
}

// SourceBridge returns where the frame was received
func (f *Frame) SourceBridge() SourceBridge { return f.bridge }

// ControllerAssociation returns who originated the exchange
func (f *Frame) ControllerAssociation() ControllerAssociation { return f.association }

// SetAddressing sets the bridge-side tags of a locally built frame.
func (f *Frame) SetAddressing(bridge SourceBridge, association ControllerAssociation) {
	f.bridge = bridge
	f.association = association
}

// Bytes returns a copy of the encoded frame ready for transmission.
func (f *Frame) Bytes() []byte {
	out := make([]byte, len(f.raw))
	copy(out, f.raw)
	return out
}

// String formats the frame as dotted upper-case hex, with the byte count
// appended for frames longer than four bytes.
func (f *Frame) String() string {
	return FormatHexPretty(f.raw)
}

// FormatHexPretty renders data as "FC.62.01" style hex.
func FormatHexPretty(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, b := range data {
		if i > 0 {
			sb.WriteByte('.')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	if len(data) > 4 {
		fmt.Fprintf(&sb, " (%d)", len(data))
	}
	return sb.String()
}
