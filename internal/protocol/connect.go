package protocol

import "github.com/muurk/itpctl/internal/frame"

// ConnectRequestPacket opens a session with the heat pump. Its payload is
// always CA 01; use ConnectRequest for the shared instance.
type ConnectRequestPacket struct {
	Packet
}

func newConnectRequestPacket() *ConnectRequestPacket {
	p := &ConnectRequestPacket{newRequestPacket(frame.TypeConnectRequest, 2, 0xCA)}
	p.setPayloadByte(1, 0x01)
	return p
}

// Kind returns KindConnectRequest
func (p *ConnectRequestPacket) Kind() Kind { return KindConnectRequest }

func (p *ConnectRequestPacket) String() string {
	return "Connect Request: " + p.Packet.String()
}

// ConnectResponsePacket carries no fields beyond the base packet
type ConnectResponsePacket struct {
	Packet
}

// Kind returns KindConnectResponse
func (p *ConnectResponsePacket) Kind() Kind { return KindConnectResponse }

func (p *ConnectResponsePacket) String() string {
	return "Connect Response: " + p.Packet.String()
}
