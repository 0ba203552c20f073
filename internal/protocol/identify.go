package protocol

import (
	"fmt"

	"github.com/muurk/itpctl/internal/codec"
	"github.com/muurk/itpctl/internal/frame"
	"github.com/muurk/itpctl/internal/logging"
	"go.uber.org/zap"
)

// CapabilitiesRequestPacket asks the heat pump for its base capabilities.
// Use CapabilitiesRequest for the shared instance.
type CapabilitiesRequestPacket struct {
	Packet
}

func newCapabilitiesRequestPacket() *CapabilitiesRequestPacket {
	return &CapabilitiesRequestPacket{newRequestPacket(frame.TypeIdentifyRequest, 1, byte(IdentifyCapabilities))}
}

// Kind returns KindCapabilitiesRequest
func (p *CapabilitiesRequestPacket) Kind() Kind { return KindCapabilitiesRequest }

func (p *CapabilitiesRequestPacket) String() string {
	return "Identify Base Capabilities Request: " + p.Packet.String()
}

// CapabilitiesResponsePacket describes which modes, vanes, fan speeds and
// setpoint ranges the unit supports.
//
// Layout: byte 7 and 8 hold feature bits, byte 9 display bits, bytes 10-15
// the min/max setpoint pairs in scale A.
type CapabilitiesResponsePacket struct {
	Packet
}

// Kind returns KindCapabilitiesResponse
func (p *CapabilitiesResponsePacket) Kind() Kind { return KindCapabilitiesResponse }

// HeatDisabled is set on cooling-only units
func (p *CapabilitiesResponsePacket) HeatDisabled() bool { return p.payloadByte(7)&0x02 != 0 }

// SupportsVane reports an adjustable vertical vane
func (p *CapabilitiesResponsePacket) SupportsVane() bool      { return p.payloadByte(7)&0x20 != 0 }
func (p *CapabilitiesResponsePacket) SupportsVaneSwing() bool { return p.payloadByte(7)&0x40 != 0 }

// DryDisabled reports that dry mode is unavailable
func (p *CapabilitiesResponsePacket) DryDisabled() bool { return p.payloadByte(8)&0x01 != 0 }

// FanDisabled reports that fan-only mode is unavailable
func (p *CapabilitiesResponsePacket) FanDisabled() bool              { return p.payloadByte(8)&0x02 != 0 }
func (p *CapabilitiesResponsePacket) ExtendedTemperatureRange() bool { return p.payloadByte(8)&0x04 != 0 }
func (p *CapabilitiesResponsePacket) AutoFanSpeedDisabled() bool     { return p.payloadByte(8)&0x10 != 0 }

// SupportsInstallerSettings means the function pages can be read
func (p *CapabilitiesResponsePacket) SupportsInstallerSettings() bool { return p.payloadByte(8)&0x20 != 0 }
func (p *CapabilitiesResponsePacket) SupportsTestMode() bool          { return p.payloadByte(8)&0x40 != 0 }

// SupportsDryTemperature means a setpoint applies in dry mode
func (p *CapabilitiesResponsePacket) SupportsDryTemperature() bool { return p.payloadByte(8)&0x80 != 0 }

// HasStatusDisplay reports the only known display bit
func (p *CapabilitiesResponsePacket) HasStatusDisplay() bool { return p.payloadByte(9)&0x01 != 0 }

// MinCoolDrySetpoint and the other setpoint limits are in degrees Celsius
func (p *CapabilitiesResponsePacket) MinCoolDrySetpoint() float64 {
	return codec.TempScaleAToDegC(p.payloadByte(10))
}

func (p *CapabilitiesResponsePacket) MaxCoolDrySetpoint() float64 {
	return codec.TempScaleAToDegC(p.payloadByte(11))
}

func (p *CapabilitiesResponsePacket) MinHeatingSetpoint() float64 {
	return codec.TempScaleAToDegC(p.payloadByte(12))
}

func (p *CapabilitiesResponsePacket) MaxHeatingSetpoint() float64 {
	return codec.TempScaleAToDegC(p.payloadByte(13))
}

func (p *CapabilitiesResponsePacket) MinAutoSetpoint() float64 {
	return codec.TempScaleAToDegC(p.payloadByte(14))
}

func (p *CapabilitiesResponsePacket) MaxAutoSetpoint() float64 {
	return codec.TempScaleAToDegC(p.payloadByte(15))
}

// SupportsHorizontalVane is always true; no capability bit for it has been
// identified yet.
func (p *CapabilitiesResponsePacket) SupportsHorizontalVane() bool { return true }

// SupportedFanSpeeds decodes the fan speed count from three bits spread over
// bytes 7, 8 and 9. Unrecognised combinations are logged and reported as 0.
func (p *CapabilitiesResponsePacket) SupportedFanSpeeds() int {
	raw := (p.payloadByte(7)&0x10)>>2 + (p.payloadByte(8)&0x08)>>2 + (p.payloadByte(9)&0x02)>>1

	switch raw {
	case 1, 2, 4:
		return int(raw)
	case 0:
		return 3
	case 6:
		return 5
	default:
		logging.Warn("Unexpected supported fan speeds", zap.Uint8("raw", raw))
		return 0
	}
}

func (p *CapabilitiesResponsePacket) String() string {
	return fmt.Sprintf("Identify Base Capabilities Response: %s"+
		"\n HeatDisabled:%s SupportsVane:%s SupportsVaneSwing:%s"+
		" DryDisabled:%s FanDisabled:%s ExtTempRange:%s AutoFanDisabled:%s"+
		" InstallerSettings:%s TestMode:%s DryTemp:%s StatusDisplay:%s"+
		"\n CoolDrySetpoint:%s/%s HeatSetpoint:%s/%s AutoSetpoint:%s/%s FanSpeeds:%d",
		p.Packet.String(),
		yesNo(p.HeatDisabled()), yesNo(p.SupportsVane()), yesNo(p.SupportsVaneSwing()),
		yesNo(p.DryDisabled()), yesNo(p.FanDisabled()), yesNo(p.ExtendedTemperatureRange()), yesNo(p.AutoFanSpeedDisabled()),
		yesNo(p.SupportsInstallerSettings()), yesNo(p.SupportsTestMode()), yesNo(p.SupportsDryTemperature()), yesNo(p.HasStatusDisplay()),
		formatFloat(p.MinCoolDrySetpoint()), formatFloat(p.MaxCoolDrySetpoint()),
		formatFloat(p.MinHeatingSetpoint()), formatFloat(p.MaxHeatingSetpoint()),
		formatFloat(p.MinAutoSetpoint()), formatFloat(p.MaxAutoSetpoint()),
		p.SupportedFanSpeeds())
}

// IdentifyCDRequestPacket is the second identify request sent during
// connection. Its response is not yet understood. Use IdentifyCDRequest for
// the shared instance.
type IdentifyCDRequestPacket struct {
	Packet
}

func newIdentifyCDRequestPacket() *IdentifyCDRequestPacket {
	return &IdentifyCDRequestPacket{newRequestPacket(frame.TypeIdentifyRequest, 1, byte(IdentifyCD))}
}

// Kind returns KindIdentifyCDRequest
func (p *IdentifyCDRequestPacket) Kind() Kind { return KindIdentifyCDRequest }

func (p *IdentifyCDRequestPacket) String() string {
	return "Identify CD Request: " + p.Packet.String()
}

// IdentifyCDResponsePacket answers IdentifyCDRequestPacket. Its layout is
// not decoded.
type IdentifyCDResponsePacket struct {
	Packet
}

// Kind returns KindIdentifyCDResponse
func (p *IdentifyCDResponsePacket) Kind() Kind { return KindIdentifyCDResponse }

func (p *IdentifyCDResponsePacket) String() string {
	return "Identify CD Response: " + p.Packet.String()
}
