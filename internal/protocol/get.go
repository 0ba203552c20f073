package protocol

import (
	"fmt"
	"math"
	"strings"

	"github.com/muurk/itpctl/internal/codec"
	"github.com/muurk/itpctl/internal/frame"
)

// GetRequestPacket asks for one block of heat pump state. Payload byte 0
// selects which response kind comes back.
type GetRequestPacket struct {
	Packet
}

// NewGetRequestPacket builds a get request for cmd. The common ones are
// available as shared instances (GetSettingsRequest and friends).
func NewGetRequestPacket(cmd GetCommand) *GetRequestPacket {
	return &GetRequestPacket{newRequestPacket(frame.TypeGetRequest, 1, byte(cmd))}
}

// Kind returns KindGetRequest whatever the sub-command
func (p *GetRequestPacket) Kind() Kind { return KindGetRequest }

// RequestedCommand returns the sub-command in payload byte 0
func (p *GetRequestPacket) RequestedCommand() GetCommand { return GetCommand(p.payloadByte(0)) }

func (p *GetRequestPacket) String() string {
	return fmt.Sprintf("Get Request: %s\n CommandID: %02x", p.Packet.String(), byte(p.RequestedCommand()))
}

// SettingsGetResponsePacket reports power, mode, setpoint, fan and vanes.
type SettingsGetResponsePacket struct {
	Packet
}

const (
	settingsGetIndexPower        = 3
	settingsGetIndexMode         = 4
	settingsGetIndexLegacyTarget = 5
	settingsGetIndexFan          = 6
	settingsGetIndexVane         = 7
	settingsGetIndexProhibit     = 8
	settingsGetIndexHVane        = 10
	settingsGetIndexTarget       = 11
)

// Kind returns KindSettingsGetResponse
func (p *SettingsGetResponsePacket) Kind() Kind { return KindSettingsGetResponse }

// Power is 0 for off, 3 for test run and any other non-zero value for on
func (p *SettingsGetResponsePacket) Power() byte { return p.payloadByte(settingsGetIndexPower) }

// Mode is the raw operating mode byte; ModeByte names the known values
func (p *SettingsGetResponsePacket) Mode() byte { return p.payloadByte(settingsGetIndexMode) }

// Fan is the raw fan speed byte
func (p *SettingsGetResponsePacket) Fan() byte { return p.payloadByte(settingsGetIndexFan) }

// Vane is the raw vertical vane position
func (p *SettingsGetResponsePacket) Vane() byte { return p.payloadByte(settingsGetIndexVane) }

// LockedPower reports whether the remote may not switch the unit on or off
func (p *SettingsGetResponsePacket) LockedPower() bool {
	return p.payloadByte(settingsGetIndexProhibit)&0x01 != 0
}

// LockedMode reports whether mode changes are prohibited
func (p *SettingsGetResponsePacket) LockedMode() bool {
	return p.payloadByte(settingsGetIndexProhibit)&0x02 != 0
}

// LockedTemp reports whether setpoint changes are prohibited
func (p *SettingsGetResponsePacket) LockedTemp() bool {
	return p.payloadByte(settingsGetIndexProhibit)&0x04 != 0
}

// HorizontalVane returns the low seven bits of the horizontal vane byte
func (p *SettingsGetResponsePacket) HorizontalVane() byte {
	return p.payloadByte(settingsGetIndexHVane) & 0x7F
}

// HorizontalVaneMSB reports the top bit of the horizontal vane byte, whose
// meaning is unknown.
func (p *SettingsGetResponsePacket) HorizontalVaneMSB() bool {
	return p.payloadByte(settingsGetIndexHVane)&0x80 != 0
}

// TargetTemp prefers the enhanced scale and falls back to the legacy code
// when the enhanced byte is zero.
func (p *SettingsGetResponsePacket) TargetTemp() float64 {
	return codec.DualScaleToDegC(
		p.payloadByte(settingsGetIndexTarget),
		p.payloadByte(settingsGetIndexLegacyTarget),
		codec.LegacyTargetTempToDegC,
	)
}

// ISeeEnabled reports whether the mode byte is one of the i-see variants.
// Mode 0x08 can also be i-see but is not conclusive on its own.
func (p *SettingsGetResponsePacket) ISeeEnabled() bool {
	mode := p.Mode()
	return mode >= 0x09 && mode <= 0x11
}

func (p *SettingsGetResponsePacket) powerName() string {
	switch power := p.Power(); {
	case power == 3:
		return "Test"
	case power > 0:
		return "On"
	default:
		return "Off"
	}
}

func (p *SettingsGetResponsePacket) String() string {
	msb := ""
	if p.HorizontalVaneMSB() {
		msb = " (MSB Set)"
	}
	return fmt.Sprintf("Settings Response: %s"+
		"\n Fan:%02x Mode:%02x Power:%s TargetTemp:%s Vane:%02x HVane:%02x%s"+
		"\n PowerLock:%s ModeLock:%s TempLock:%s",
		p.Packet.String(),
		p.Fan(), p.Mode(), p.powerName(), formatFloat(p.TargetTemp()), p.Vane(), p.HorizontalVane(), msb,
		yesNo(p.LockedPower()), yesNo(p.LockedMode()), yesNo(p.LockedTemp()))
}

// CurrentTempGetResponsePacket reports room and outdoor temperatures and
// the unit's lifetime runtime.
type CurrentTempGetResponsePacket struct {
	Packet
}

const (
	currentTempIndexLegacy  = 3
	currentTempIndexOutdoor = 5
	currentTempIndexCurrent = 6
	currentTempIndexRuntime = 11 // through 13
)

// Kind returns KindCurrentTempGetResponse
func (p *CurrentTempGetResponsePacket) Kind() Kind { return KindCurrentTempGetResponse }

// CurrentTemp returns the room temperature measured by the heat pump
func (p *CurrentTempGetResponsePacket) CurrentTemp() float64 {
	return codec.DualScaleToDegC(
		p.payloadByte(currentTempIndexCurrent),
		p.payloadByte(currentTempIndexLegacy),
		codec.LegacyHPRoomTempToDegC,
	)
}

// OutdoorTemp returns NaN when the unit has no outdoor sensor
func (p *CurrentTempGetResponsePacket) OutdoorTemp() float64 {
	raw := p.payloadByte(currentTempIndexOutdoor)
	if raw == 0 {
		return math.NaN()
	}
	return codec.TempScaleAToDegC(raw)
}

// RuntimeMinutes is a 24-bit big-endian lifetime counter
func (p *CurrentTempGetResponsePacket) RuntimeMinutes() uint32 {
	return uint32(p.payloadByte(currentTempIndexRuntime))<<16 |
		uint32(p.payloadByte(currentTempIndexRuntime+1))<<8 |
		uint32(p.payloadByte(currentTempIndexRuntime+2))
}

func (p *CurrentTempGetResponsePacket) String() string {
	outdoor := "Unsupported"
	if t := p.OutdoorTemp(); !math.IsNaN(t) {
		outdoor = formatFloat(t)
	}
	return fmt.Sprintf("Current Temp Response: %s\n Temp:%s Outdoor:%s Runtime Mins: %d",
		p.Packet.String(), formatFloat(p.CurrentTemp()), outdoor, p.RuntimeMinutes())
}

// StatusGetResponsePacket reports compressor and power figures
type StatusGetResponsePacket struct {
	Packet
}

const (
	statusIndexCompressorFrequency = 3
	statusIndexOperating           = 4
	statusIndexInputWatts          = 5 // and 6
	statusIndexLifetimeKWh         = 7 // and 8
)

// Kind returns KindStatusGetResponse
func (p *StatusGetResponsePacket) Kind() Kind { return KindStatusGetResponse }

// CompressorFrequency is the raw frequency byte; zero while the compressor is idle
func (p *StatusGetResponsePacket) CompressorFrequency() byte {
	return p.payloadByte(statusIndexCompressorFrequency)
}

// Operating reports a non-zero operating byte
func (p *StatusGetResponsePacket) Operating() bool { return p.payloadByte(statusIndexOperating) != 0 }

// InputWatts is the current electrical draw
func (p *StatusGetResponsePacket) InputWatts() uint16 { return p.payloadUint16(statusIndexInputWatts) }

// LifetimeKWh is stored in tenths of a kWh
func (p *StatusGetResponsePacket) LifetimeKWh() float64 {
	return float64(p.payloadUint16(statusIndexLifetimeKWh)) / 10
}

func (p *StatusGetResponsePacket) String() string {
	return fmt.Sprintf("Status Response: %s\n Compressor Frequency: %d Operating: %s Input Watts: %d Lifetime kWh: %s",
		p.Packet.String(), p.CompressorFrequency(), yesNo(p.Operating()), p.InputWatts(), formatFloat(p.LifetimeKWh()))
}

// RunStateGetResponsePacket reports what the unit is currently doing
type RunStateGetResponsePacket struct {
	Packet
}

const (
	runStateIndexFlags     = 3
	runStateIndexActualFan = 4
	runStateIndexAutoMode  = 5
)

// Kind returns KindRunStateGetResponse
func (p *RunStateGetResponsePacket) Kind() Kind { return KindRunStateGetResponse }

// ServiceFilter reports whether the filter needs cleaning
func (p *RunStateGetResponsePacket) ServiceFilter() bool {
	return p.payloadByte(runStateIndexFlags)&0x01 != 0
}

func (p *RunStateGetResponsePacket) InDefrost() bool {
	return p.payloadByte(runStateIndexFlags)&0x02 != 0
}

func (p *RunStateGetResponsePacket) InPreheat() bool {
	return p.payloadByte(runStateIndexFlags)&0x04 != 0
}

func (p *RunStateGetResponsePacket) InStandby() bool {
	return p.payloadByte(runStateIndexFlags)&0x08 != 0
}

// ActualFanSpeed indexes the names returned by ActualFanSpeedName
func (p *RunStateGetResponsePacket) ActualFanSpeed() byte { return p.payloadByte(runStateIndexActualFan) }

// AutoMode is the sub-mode chosen while running in auto
func (p *RunStateGetResponsePacket) AutoMode() byte { return p.payloadByte(runStateIndexAutoMode) }

func (p *RunStateGetResponsePacket) String() string {
	return fmt.Sprintf("RunState Response: %s"+
		"\n ServiceFilter:%s Defrost:%s Preheat:%s Standby:%s ActualFan:%s (%d) AutoMode:%02x",
		p.Packet.String(),
		yesNo(p.ServiceFilter()), yesNo(p.InDefrost()), yesNo(p.InPreheat()), yesNo(p.InStandby()),
		ActualFanSpeedName(p.ActualFanSpeed()), p.ActualFanSpeed(), p.AutoMode())
}

// ErrorStateGetResponsePacket reports the unit's active fault, if any
type ErrorStateGetResponsePacket struct {
	Packet
}

const (
	errorCodeNone    = 0x8000
	errorUpperLetter = "AbEFJLPU"
	errorLowerLetter = "0123456789ABCDEFOHJLPU"
)

// Kind returns KindErrorStateGetResponse
func (p *ErrorStateGetResponsePacket) Kind() Kind { return KindErrorStateGetResponse }

// ErrorCode is the big-endian code in bytes 4-5; 0x8000 means no error
func (p *ErrorStateGetResponsePacket) ErrorCode() uint16 { return p.payloadUint16(4) }

// RawShortCode is payload byte 6 undecoded; ShortCode renders it
func (p *ErrorStateGetResponsePacket) RawShortCode() byte { return p.payloadByte(6) }

// ErrorPresent reports whether either the long or short code signals a fault
func (p *ErrorStateGetResponsePacket) ErrorPresent() bool {
	return p.ErrorCode() != errorCodeNone || p.RawShortCode() != 0
}

// ShortCode renders the two-character code shown on the unit's remote.
// Codes whose low five bits fall outside the known alphabet are rendered as
// ERR_ followed by the raw byte in hex.
func (p *ErrorStateGetResponsePacket) ShortCode() string {
	raw := p.RawShortCode()
	low := raw & 0x1F
	if int(low) >= len(errorLowerLetter) {
		return fmt.Sprintf("ERR_%x", raw)
	}
	return string([]byte{errorUpperLetter[(raw&0xE0)>>5], errorLowerLetter[low]})
}

func (p *ErrorStateGetResponsePacket) String() string {
	return fmt.Sprintf("Error State Response: %s\n Error State: %s ErrorCode: %04x ShortCode: %s(%02x)",
		p.Packet.String(), yesNo(p.ErrorPresent()), p.ErrorCode(), p.ShortCode(), p.RawShortCode())
}

// FunctionSetting is one installer function code and its two-bit value.
type FunctionSetting struct {
	Code  int
	Value byte
}

func (s FunctionSetting) String() string { return fmt.Sprintf("%d:%d", s.Code, s.Value) }

// functionSettings unpacks every payload byte after the command byte
func functionSettings(p *Packet) []FunctionSetting {
	n := p.frame.Length()
	if n <= 1 {
		return nil
	}
	out := make([]FunctionSetting, 0, n-1)
	for i := 1; i < n; i++ {
		b := p.payloadByte(i)
		out = append(out, FunctionSetting{Code: int(b>>2) + 100, Value: b & 0x03})
	}
	return out
}

func renderFunctions(title string, p *Packet) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString(": ")
	sb.WriteString(p.String())
	sb.WriteString("\n")
	for _, s := range functionSettings(p) {
		sb.WriteString(s.String())
		sb.WriteByte(' ')
	}
	return sb.String()
}

// Functions1GetResponsePacket carries the first page of installer functions
type Functions1GetResponsePacket struct {
	Packet
}

// Kind returns KindFunctions1GetResponse
func (p *Functions1GetResponsePacket) Kind() Kind { return KindFunctions1GetResponse }

// Functions decodes every function byte in the page
func (p *Functions1GetResponsePacket) Functions() []FunctionSetting { return functionSettings(&p.Packet) }

func (p *Functions1GetResponsePacket) String() string {
	return renderFunctions("Functions1 Response", &p.Packet)
}

// Functions2GetResponsePacket carries the second page of installer functions
type Functions2GetResponsePacket struct {
	Packet
}

// Kind returns KindFunctions2GetResponse
func (p *Functions2GetResponsePacket) Kind() Kind { return KindFunctions2GetResponse }

// Functions decodes every function byte in the page
func (p *Functions2GetResponsePacket) Functions() []FunctionSetting { return functionSettings(&p.Packet) }

func (p *Functions2GetResponsePacket) String() string {
	return renderFunctions("Functions2 Response", &p.Packet)
}
