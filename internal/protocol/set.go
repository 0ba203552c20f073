package protocol

import (
	"fmt"
	"math"
	"strings"

	"github.com/muurk/itpctl/internal/codec"
	"github.com/muurk/itpctl/internal/frame"
	"github.com/muurk/itpctl/internal/logging"
	"go.uber.org/zap"
)

// Settings set flags, payload byte 1
const (
	SettingsFlagPower             byte = 0x01
	SettingsFlagMode              byte = 0x02
	SettingsFlagTargetTemperature byte = 0x04
	SettingsFlagFan               byte = 0x08
	SettingsFlagVane              byte = 0x10
)

// Settings set flags, payload byte 2
const (
	SettingsFlag2HorizontalVane byte = 0x01
)

const (
	settingsSetIndexPower        = 3
	settingsSetIndexMode         = 4
	settingsSetIndexLegacyTarget = 5
	settingsSetIndexFan          = 6
	settingsSetIndexVane         = 7
	settingsSetIndexHVane        = 13
	settingsSetIndexTarget       = 14
)

// SettingsSetRequestPacket changes one or more unit settings. Each setter
// writes its field and ORs in the matching flag; fields whose flag is clear
// are ignored by the unit.
type SettingsSetRequestPacket struct {
	Packet
}

// NewSettingsSetRequestPacket returns an empty settings update with no flags set.
func NewSettingsSetRequestPacket() *SettingsSetRequestPacket {
	return &SettingsSetRequestPacket{newRequestPacket(frame.TypeSetRequest, 16, byte(SetSettings))}
}

// Kind returns KindSettingsSetRequest
func (p *SettingsSetRequestPacket) Kind() Kind { return KindSettingsSetRequest }

// Flags holds the SettingsFlag bits for fields that carry data
func (p *SettingsSetRequestPacket) Flags() byte { return p.flags() }

// Flags2 holds the SettingsFlag2 bits
func (p *SettingsSetRequestPacket) Flags2() byte { return p.flags2() }

// Power is 1 for on and 0 for off
func (p *SettingsSetRequestPacket) Power() byte { return p.payloadByte(settingsSetIndexPower) }
func (p *SettingsSetRequestPacket) Mode() ModeByte {
	return ModeByte(p.payloadByte(settingsSetIndexMode))
}
func (p *SettingsSetRequestPacket) Fan() FanByte   { return FanByte(p.payloadByte(settingsSetIndexFan)) }
func (p *SettingsSetRequestPacket) Vane() VaneByte { return VaneByte(p.payloadByte(settingsSetIndexVane)) }

// HorizontalVane masks off the high bit; see HorizontalVaneMSB
func (p *SettingsSetRequestPacket) HorizontalVane() HorizontalVaneByte {
	return HorizontalVaneByte(p.payloadByte(settingsSetIndexHVane) & 0x7F)
}

// HorizontalVaneMSB reports the high bit of the horizontal vane byte
func (p *SettingsSetRequestPacket) HorizontalVaneMSB() bool {
	return p.payloadByte(settingsSetIndexHVane)&0x80 != 0
}

// TargetTemp reads the enhanced byte, falling back to the legacy code when
// it is zero.
func (p *SettingsSetRequestPacket) TargetTemp() float64 {
	return codec.DualScaleToDegC(
		p.payloadByte(settingsSetIndexTarget),
		p.payloadByte(settingsSetIndexLegacyTarget),
		codec.LegacyTargetTempToDegC,
	)
}

// SetPower writes the power byte and sets SettingsFlagPower
func (p *SettingsSetRequestPacket) SetPower(on bool) *SettingsSetRequestPacket {
	var v byte
	if on {
		v = 0x01
	}
	p.setPayloadByte(settingsSetIndexPower, v)
	p.addFlag(SettingsFlagPower)
	return p
}

// SetMode writes the mode and sets SettingsFlagMode
func (p *SettingsSetRequestPacket) SetMode(mode ModeByte) *SettingsSetRequestPacket {
	if !mode.Valid() {
		logging.Warn("Writing unknown mode byte", zap.Uint8("mode", byte(mode)))
	}
	p.setPayloadByte(settingsSetIndexMode, byte(mode))
	p.addFlag(SettingsFlagMode)
	return p
}

// SetTargetTemperature writes both the enhanced and the legacy setpoint.
// Values outside either scale are clamped by the codec, which logs a
// warning; older units only honour the legacy 16-31.5 range. NaN leaves the
// field and its flag untouched.
func (p *SettingsSetRequestPacket) SetTargetTemperature(degC float64) *SettingsSetRequestPacket {
	if skipNaN("target_temperature", degC) {
		return p
	}
	p.setPayloadByte(settingsSetIndexTarget, codec.DegCToTempScaleA(degC))
	p.setPayloadByte(settingsSetIndexLegacyTarget, codec.DegCToLegacyTargetTemp(degC))
	p.addFlag(SettingsFlagTargetTemperature)
	return p
}

// SetFan writes the fan speed and sets SettingsFlagFan. Unknown values are
// written anyway with a warning.
func (p *SettingsSetRequestPacket) SetFan(fan FanByte) *SettingsSetRequestPacket {
	if !fan.Valid() {
		logging.Warn("Writing unknown fan byte", zap.Uint8("fan", byte(fan)))
	}
	p.setPayloadByte(settingsSetIndexFan, byte(fan))
	p.addFlag(SettingsFlagFan)
	return p
}

// SetVane is SetFan for the vertical vane.
func (p *SettingsSetRequestPacket) SetVane(vane VaneByte) *SettingsSetRequestPacket {
	if !vane.Valid() {
		logging.Warn("Writing unknown vane byte", zap.Uint8("vane", byte(vane)))
	}
	p.setPayloadByte(settingsSetIndexVane, byte(vane))
	p.addFlag(SettingsFlagVane)
	return p
}

// SetHorizontalVane writes the vane position and sets SettingsFlag2HorizontalVane
func (p *SettingsSetRequestPacket) SetHorizontalVane(hvane HorizontalVaneByte) *SettingsSetRequestPacket {
	if !hvane.Valid() {
		logging.Warn("Writing unknown horizontal vane byte", zap.Uint8("hvane", byte(hvane)))
	}
	p.setPayloadByte(settingsSetIndexHVane, byte(hvane))
	p.addFlag2(SettingsFlag2HorizontalVane)
	return p
}

func (p *SettingsSetRequestPacket) String() string {
	flags, flags2 := p.Flags(), p.Flags2()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Settings Set Request: %s\n Flags: %02x%02x =>", p.Packet.String(), flags2, flags)

	if flags&SettingsFlagPower != 0 {
		fmt.Fprintf(&sb, " Power: %d", p.Power())
	}
	if flags&SettingsFlagMode != 0 {
		fmt.Fprintf(&sb, " Mode: %d", byte(p.Mode()))
	}
	if flags&SettingsFlagTargetTemperature != 0 {
		fmt.Fprintf(&sb, " TargetTemp: %s", formatFloat(p.TargetTemp()))
	}
	if flags&SettingsFlagFan != 0 {
		fmt.Fprintf(&sb, " Fan: %d", byte(p.Fan()))
	}
	if flags&SettingsFlagVane != 0 {
		fmt.Fprintf(&sb, " Vane: %d", byte(p.Vane()))
	}
	if flags2&SettingsFlag2HorizontalVane != 0 {
		fmt.Fprintf(&sb, " HVane: %d", byte(p.HorizontalVane()))
		if p.HorizontalVaneMSB() {
			sb.WriteString(" (MSB Set)")
		}
	}

	return sb.String()
}

const (
	remoteTempIndexLegacy = 2
	remoteTempIndexTemp   = 3
)

// RemoteTemperatureSetRequestPacket hands the unit a room temperature from
// an external sensor, or tells it to go back to its own sensor. Flag bit
// 0x01 set means the temperature fields are in use.
type RemoteTemperatureSetRequestPacket struct {
	Packet
}

// NewRemoteTemperatureSetRequestPacket returns a remote temperature update
// with no flags set.
func NewRemoteTemperatureSetRequestPacket() *RemoteTemperatureSetRequestPacket {
	return &RemoteTemperatureSetRequestPacket{newRequestPacket(frame.TypeSetRequest, 4, byte(SetRemoteTemperature))}
}

// Kind returns KindRemoteTemperatureSetRequest
func (p *RemoteTemperatureSetRequestPacket) Kind() Kind  { return KindRemoteTemperatureSetRequest }
func (p *RemoteTemperatureSetRequestPacket) Flags() byte { return p.flags() }

// RemoteTemperature prefers the enhanced byte and falls back to the legacy
// thermostat scale when it is zero.
func (p *RemoteTemperatureSetRequestPacket) RemoteTemperature() float64 {
	return codec.DualScaleToDegC(
		p.payloadByte(remoteTempIndexTemp),
		p.payloadByte(remoteTempIndexLegacy),
		codec.LegacyTSRoomTempToDegC,
	)
}

// UseInternalTemperature reports whether the flag bit is clear
func (p *RemoteTemperatureSetRequestPacket) UseInternalTemperature() bool {
	return p.flags()&0x01 == 0
}

// SetRemoteTemperature writes both scales and marks the temperature as
// supplied. Out-of-range values are clamped by the codec; NaN is ignored.
func (p *RemoteTemperatureSetRequestPacket) SetRemoteTemperature(degC float64) *RemoteTemperatureSetRequestPacket {
	if skipNaN("remote_temperature", degC) {
		return p
	}
	p.setPayloadByte(remoteTempIndexTemp, codec.DegCToTempScaleA(degC))
	p.setPayloadByte(remoteTempIndexLegacy, codec.DegCToLegacyTSRoomTemp(degC))
	p.setFlags(0x01)
	return p
}

// SetUseInternalTemperature clears or sets the whole flags byte. Unlike
// the settings flags this one is overwritten, not accumulated.
func (p *RemoteTemperatureSetRequestPacket) SetUseInternalTemperature(useInternal bool) *RemoteTemperatureSetRequestPacket {
	if useInternal {
		p.setFlags(0x00)
	} else {
		p.setFlags(0x01)
	}
	return p
}

func (p *RemoteTemperatureSetRequestPacket) String() string {
	return fmt.Sprintf("Remote Temp Set Request: %s\n Temp:%s", p.Packet.String(), formatFloat(p.RemoteTemperature()))
}

const runStateIndexFilterReset = 3

// SetRunStatePacket resets run-state counters. Only the filter reset is
// known so far.
type SetRunStatePacket struct {
	Packet
}

// NewSetRunStatePacket returns a run state request that resets nothing
func NewSetRunStatePacket() *SetRunStatePacket {
	return &SetRunStatePacket{newRequestPacket(frame.TypeSetRequest, 10, byte(SetRunState))}
}

// Kind returns KindSetRunState
func (p *SetRunStatePacket) Kind() Kind  { return KindSetRunState }
func (p *SetRunStatePacket) Flags() byte { return p.flags() }

// FilterReset reports whether the request clears the filter warning
func (p *SetRunStatePacket) FilterReset() bool { return p.payloadByte(runStateIndexFilterReset) != 0 }

// SetFilterReset writes the reset byte and sets the only known flag
func (p *SetRunStatePacket) SetFilterReset(reset bool) *SetRunStatePacket {
	var v byte
	if reset {
		v = 1
	}
	p.setPayloadByte(runStateIndexFilterReset, v)
	p.setFlags(0x01)
	return p
}

func (p *SetRunStatePacket) String() string {
	return fmt.Sprintf("Set Run State: %s\n Flags: %02x FilterReset:%s", p.Packet.String(), p.Flags(), yesNo(p.FilterReset()))
}

// SetResponsePacket acknowledges any set request. A zero result code means
// success.
type SetResponsePacket struct {
	Packet
}

// NewSetResponsePacket returns a successful acknowledgement
func NewSetResponsePacket() *SetResponsePacket {
	return &SetResponsePacket{newPacket(frame.New(frame.TypeSetResponse, 16))}
}

// Kind returns KindSetResponse
func (p *SetResponsePacket) Kind() Kind { return KindSetResponse }

// ResultCode is payload byte 0
func (p *SetResponsePacket) ResultCode() byte { return p.payloadByte(0) }

// Successful reports a zero result code
func (p *SetResponsePacket) Successful() bool { return p.ResultCode() == 0 }

func (p *SetResponsePacket) String() string {
	return fmt.Sprintf("Set Response: %s\n ResultCode:%02x Success:%s", p.Packet.String(), p.ResultCode(), yesNo(p.Successful()))
}

// skipNaN logs and reports true when degC cannot be encoded at all
func skipNaN(field string, degC float64) bool {
	if !math.IsNaN(degC) {
		return false
	}
	logging.Warn("Ignoring temperature that is not a number", zap.String("field", field))
	return true
}
