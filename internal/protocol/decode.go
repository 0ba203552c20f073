package protocol

import (
	"github.com/muurk/itpctl/internal/frame"
	"github.com/muurk/itpctl/internal/logging"
	"go.uber.org/zap"
)

// builder wraps a generic packet as one concrete kind
type builder func(Packet) Message

// Decode wraps f in the most specific packet kind its type code and
// sub-command identify. Frames that match no kind, or whose payload is too
// short for the fixed offsets of the matched kind, come back as a generic
// *Packet. Decode takes ownership of f.
func Decode(f *frame.Frame) Message {
	pkt := newPacket(f)

	build, minLength := lookup(f)
	if build == nil {
		return &pkt
	}

	if f.Length() < minLength {
		logging.Debug("Payload too short for packet kind",
			zap.Stringer("type", f.PacketType()),
			zap.Int("length", f.Length()),
			zap.Int("min_length", minLength))
		return &pkt
	}

	return build(pkt)
}

// lookup returns the builder for f and the shortest payload it accepts
func lookup(f *frame.Frame) (builder, int) {
	switch f.PacketType() {
	case frame.TypeConnectRequest:
		return func(p Packet) Message { return &ConnectRequestPacket{p} }, 0
	case frame.TypeConnectResponse:
		return func(p Packet) Message { return &ConnectResponsePacket{p} }, 0
	case frame.TypeGetRequest:
		return func(p Packet) Message { return &GetRequestPacket{p} }, 1
	case frame.TypeSetResponse:
		return func(p Packet) Message { return &SetResponsePacket{p} }, 1
	}

	if f.Length() == 0 {
		return nil, 0
	}
	command := f.PayloadByte(0)

	switch f.PacketType() {
	case frame.TypeIdentifyRequest:
		return lookupIdentifyRequest(IdentifyCommand(command))
	case frame.TypeIdentifyResponse:
		return lookupIdentifyResponse(IdentifyCommand(command))
	case frame.TypeGetResponse:
		return lookupGetResponse(GetCommand(command))
	case frame.TypeSetRequest:
		return lookupSetRequest(SetCommand(command))
	}
	return nil, 0
}

func lookupIdentifyRequest(cmd IdentifyCommand) (builder, int) {
	switch cmd {
	case IdentifyCapabilities:
		return func(p Packet) Message { return &CapabilitiesRequestPacket{p} }, 1
	case IdentifyCD:
		return func(p Packet) Message { return &IdentifyCDRequestPacket{p} }, 1
	}
	return nil, 0
}

func lookupIdentifyResponse(cmd IdentifyCommand) (builder, int) {
	switch cmd {
	case IdentifyCapabilities:
		return func(p Packet) Message { return &CapabilitiesResponsePacket{p} }, 16
	case IdentifyCD:
		return func(p Packet) Message { return &IdentifyCDResponsePacket{p} }, 1
	}
	return nil, 0
}

func lookupGetResponse(cmd GetCommand) (builder, int) {
	switch cmd {
	case GetSettings:
		return func(p Packet) Message { return &SettingsGetResponsePacket{p} }, 12
	case GetCurrentTemp:
		return func(p Packet) Message { return &CurrentTempGetResponsePacket{p} }, 14
	case GetErrorInfo:
		return func(p Packet) Message { return &ErrorStateGetResponsePacket{p} }, 7
	case GetStatus:
		return func(p Packet) Message { return &StatusGetResponsePacket{p} }, 9
	case GetRunState:
		return func(p Packet) Message { return &RunStateGetResponsePacket{p} }, 6
	case GetFunctions1:
		return func(p Packet) Message { return &Functions1GetResponsePacket{p} }, 1
	case GetFunctions2:
		return func(p Packet) Message { return &Functions2GetResponsePacket{p} }, 1
	case GetThermostatStateDownload:
		return func(p Packet) Message { return &ThermostatStateDownloadResponsePacket{p} }, 11
	case GetThermostatAB:
		return func(p Packet) Message { return &ThermostatABGetResponsePacket{p} }, 2
	}
	return nil, 0
}

func lookupSetRequest(cmd SetCommand) (builder, int) {
	switch cmd {
	case SetSettings:
		return func(p Packet) Message { return &SettingsSetRequestPacket{p} }, 15
	case SetRemoteTemperature:
		return func(p Packet) Message { return &RemoteTemperatureSetRequestPacket{p} }, 4
	case SetRunState:
		return func(p Packet) Message { return &SetRunStatePacket{p} }, 4
	case SetThermostatSensorStatus:
		return func(p Packet) Message { return &ThermostatSensorStatusPacket{p} }, 8
	case SetThermostatHello:
		return func(p Packet) Message { return newThermostatHelloPacket(p) }, 16
	case SetThermostatStateUpload:
		return func(p Packet) Message { return &ThermostatStateUploadPacket{p} }, 10
	case SetThermostatAA:
		return func(p Packet) Message { return &ThermostatAASetRequestPacket{p} }, 1
	}
	return nil, 0
}
