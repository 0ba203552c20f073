package protocol

import (
	"fmt"
	"sync/atomic"

	"github.com/muurk/itpctl/internal/frame"
)

// Payload offsets of the flag bytes used by the kinds that implement Flagged
const (
	plIndexFlags  = 1
	plIndexFlags2 = 2
)

// SequenceCounter hands out packet sequence numbers. Values increase
// monotonically but are not guaranteed contiguous when packets are built
// from several goroutines. Sequence numbers are local bookkeeping only and
// never go on the wire.
type SequenceCounter struct {
	last atomic.Uint64
}

// Next returns a fresh sequence number
func (c *SequenceCounter) Next() uint64 { return c.last.Add(1) }

// Peek returns the most recently assigned sequence number
func (c *SequenceCounter) Peek() uint64 { return c.last.Load() }

// Reset restarts numbering; the next packet built gets sequence 1
func (c *SequenceCounter) Reset() { c.last.Store(0) }

var sequences SequenceCounter

// Sequences returns the process-wide counter every Packet draws from.
func Sequences() *SequenceCounter { return &sequences }

// Message is any decoded or locally built packet. The set of implementations
// is closed to this package; Dispatch relies on that.
type Message interface {
	// Base returns the generic packet the kind is built on
	Base() *Packet
	Kind() Kind
	String() string

	isMessage()
}

// Flagged is implemented by kinds whose payload byte 1 says which fields
// are present.
type Flagged interface {
	Message
	Flags() byte
}

// Flagged2 is implemented by kinds with a second flags byte at payload byte 2.
type Flagged2 interface {
	Flagged
	Flags2() byte
}

// Packet is the generic wrapper over a Frame. Every concrete kind embeds it.
type Packet struct {
	frame            *frame.Frame
	sequence         uint64
	responseExpected bool
}

func newPacket(f *frame.Frame) Packet {
	return Packet{
		frame:            f,
		sequence:         sequences.Next(),
		responseExpected: true,
	}
}

func newRequestPacket(packetType frame.PacketType, payloadSize int, command byte) Packet {
	f := frame.New(packetType, payloadSize)
	f.SetPayloadByte(0, command)
	return newPacket(f)
}

// NewPacket wraps f as a packet of no particular kind. The packet takes
// ownership of f; the caller must not use f afterwards.
func NewPacket(f *frame.Frame) *Packet {
	p := newPacket(f)
	return &p
}

func (p *Packet) isMessage() {}

// Base returns p
func (p *Packet) Base() *Packet { return p }

// Kind reports KindGeneric for packets no catalog entry matched
func (p *Packet) Kind() Kind { return KindGeneric }

// Frame returns the owned frame
func (p *Packet) Frame() *frame.Frame { return p.frame }

// Sequence returns the number assigned when the packet was built
func (p *Packet) Sequence() uint64 { return p.sequence }

// PacketType returns the header type code
func (p *Packet) PacketType() frame.PacketType { return p.frame.PacketType() }

// ChecksumValid reports the frame's checksum status
func (p *Packet) ChecksumValid() bool { return p.frame.ChecksumValid() }

// SourceBridge returns where the frame was received
func (p *Packet) SourceBridge() frame.SourceBridge { return p.frame.SourceBridge() }

// ControllerAssociation returns who originated the exchange
func (p *Packet) ControllerAssociation() frame.ControllerAssociation {
	return p.frame.ControllerAssociation()
}

// ResponseExpected reports whether sending this packet should wait for a
// reply. Most requests are answered, so it defaults to true.
func (p *Packet) ResponseExpected() bool { return p.responseExpected }

// SetResponseExpected overrides the default
func (p *Packet) SetResponseExpected(expected bool) { p.responseExpected = expected }

// Bytes returns the encoded frame
func (p *Packet) Bytes() []byte { return p.frame.Bytes() }

func (p *Packet) payloadByte(offset int) byte { return p.frame.PayloadByte(offset) }

func (p *Packet) setPayloadByte(offset int, b byte) { p.frame.SetPayloadByte(offset, b) }

func (p *Packet) payloadUint16(offset int) uint16 {
	return uint16(p.payloadByte(offset))<<8 | uint16(p.payloadByte(offset+1))
}

func (p *Packet) flags() byte  { return p.payloadByte(plIndexFlags) }
func (p *Packet) flags2() byte { return p.payloadByte(plIndexFlags2) }

// setFlags overwrites the whole flags byte
func (p *Packet) setFlags(v byte) { p.setPayloadByte(plIndexFlags, v) }

func (p *Packet) addFlag(bit byte)  { p.setPayloadByte(plIndexFlags, p.flags()|bit) }
func (p *Packet) addFlag2(bit byte) { p.setPayloadByte(plIndexFlags2, p.flags2()|bit) }

func (p *Packet) String() string {
	cs := "Ok"
	if !p.ChecksumValid() {
		cs = "Invalid"
	}
	return fmt.Sprintf("[%s] Type:%s CS:%s Seq:%d Src:%s",
		p.frame, p.PacketType(), cs, p.sequence, p.SourceBridge())
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// formatFloat matches the fixed six-decimal rendering existing log tooling expects
func formatFloat(v float64) string {
	return fmt.Sprintf("%f", v)
}
