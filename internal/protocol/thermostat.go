package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/muurk/itpctl/internal/codec"
	"github.com/muurk/itpctl/internal/frame"
	"github.com/muurk/itpctl/internal/logging"
	"go.uber.org/zap"
)

// ThermostatSensorStatusPacket is pushed by the wall thermostat with its
// humidity reading and battery state.
type ThermostatSensorStatusPacket struct {
	Packet
}

// NewThermostatSensorStatusPacket returns a sensor status with every field zero
func NewThermostatSensorStatusPacket() *ThermostatSensorStatusPacket {
	return &ThermostatSensorStatusPacket{newRequestPacket(frame.TypeSetRequest, 16, byte(SetThermostatSensorStatus))}
}

// Kind returns KindThermostatSensorStatus
func (p *ThermostatSensorStatusPacket) Kind() Kind { return KindThermostatSensorStatus }

// IndoorHumidityPercent is the relative humidity at the thermostat
func (p *ThermostatSensorStatusPacket) IndoorHumidityPercent() byte { return p.payloadByte(5) }
func (p *ThermostatSensorStatusPacket) SensorFlags() byte           { return p.payloadByte(7) }

// BatteryState is the thermostat's own battery level
func (p *ThermostatSensorStatusPacket) BatteryState() ThermostatBatteryState {
	return ThermostatBatteryState(p.payloadByte(6))
}

func (p *ThermostatSensorStatusPacket) String() string {
	return fmt.Sprintf("Thermostat Sensor Status: %s\n Indoor RH: %d%%  MHK Battery: %s(%d)  Sensor Flags: %d",
		p.Packet.String(), p.IndoorHumidityPercent(), p.BatteryState(), byte(p.BatteryState()), p.SensorFlags())
}

const (
	helloModelOffset   = 1
	helloModelChars    = 4
	helloSerialOffset  = 4
	helloSerialChars   = 12
	helloVersionOffset = 13
	helloWordSize      = 6
)

// ThermostatHelloPacket announces the thermostat's model, serial number and
// firmware version. The heat pump never answers it.
type ThermostatHelloPacket struct {
	Packet
}

func newThermostatHelloPacket(pkt Packet) *ThermostatHelloPacket {
	p := &ThermostatHelloPacket{pkt}
	p.SetResponseExpected(false)
	return p
}

// NewThermostatHelloPacket returns a hello that expects no response
func NewThermostatHelloPacket() *ThermostatHelloPacket {
	return newThermostatHelloPacket(newRequestPacket(frame.TypeSetRequest, 16, byte(SetThermostatHello)))
}

// Kind returns KindThermostatHello
func (p *ThermostatHelloPacket) Kind() Kind { return KindThermostatHello }

// Model is four six-bit characters starting at payload byte 1
func (p *ThermostatHelloPacket) Model() string {
	return codec.DecodeNBitString(p.frame.PayloadBytes(helloModelOffset), helloModelChars, helloWordSize)
}

// Serial is twelve six-bit characters starting at payload byte 4
func (p *ThermostatHelloPacket) Serial() string {
	return codec.DecodeNBitString(p.frame.PayloadBytes(helloSerialOffset), helloSerialChars, helloWordSize)
}

// Version renders bytes 13-15 as a dotted, zero-padded string
func (p *ThermostatHelloPacket) Version() string {
	return fmt.Sprintf("%02d.%02d.%02d",
		p.payloadByte(helloVersionOffset), p.payloadByte(helloVersionOffset+1), p.payloadByte(helloVersionOffset+2))
}

// SetModel packs up to four characters, padding with spaces
func (p *ThermostatHelloPacket) SetModel(model string) *ThermostatHelloPacket {
	p.frame.SetPayloadBytes(helloModelOffset, codec.EncodeNBitString(fitText(model, helloModelChars), helloWordSize))
	return p
}

// SetSerial packs up to twelve characters, padding with spaces
func (p *ThermostatHelloPacket) SetSerial(serial string) *ThermostatHelloPacket {
	p.frame.SetPayloadBytes(helloSerialOffset, codec.EncodeNBitString(fitText(serial, helloSerialChars), helloWordSize))
	return p
}

// SetVersion writes the three firmware version bytes
func (p *ThermostatHelloPacket) SetVersion(major, minor, patch byte) *ThermostatHelloPacket {
	p.frame.SetPayloadBytes(helloVersionOffset, []byte{major, minor, patch})
	return p
}

func fitText(s string, n int) string {
	s = strings.ToUpper(s)
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}

func (p *ThermostatHelloPacket) String() string {
	return fmt.Sprintf("Thermostat Hello: %s\n Model: %s Serial: %s Version: %s",
		p.Packet.String(), p.Model(), p.Serial(), p.Version())
}

// ThermostatTimestamp is the thermostat's wall clock as packed into 32 bits:
// six bits of seconds, six of minutes, five of hours, five of day, four of
// month and the remainder as years since 2017.
type ThermostatTimestamp struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// Six year bits cover 2017 through 2080
const (
	thermostatEpochYear = 2017
	thermostatMaxYear   = thermostatEpochYear + 63
)

// UnpackThermostatTimestamp splits a packed timestamp into its fields
func UnpackThermostatTimestamp(raw uint32) ThermostatTimestamp {
	return ThermostatTimestamp{
		Second: int(raw & 63),
		Minute: int((raw >> 6) & 63),
		Hour:   int((raw >> 12) & 31),
		Day:    int((raw >> 17) & 31),
		Month:  int((raw >> 22) & 15),
		Year:   int(raw>>26) + thermostatEpochYear,
	}
}

// Pack is the inverse of UnpackThermostatTimestamp. Fields are masked to
// their widths. Years outside 2017-2080 are clamped with a warning.
func (ts ThermostatTimestamp) Pack() uint32 {
	year := ts.Year
	if year < thermostatEpochYear || year > thermostatMaxYear {
		year = min(max(year, thermostatEpochYear), thermostatMaxYear)
		logging.Warn("Thermostat timestamp year out of range, clamped",
			zap.Int("year", ts.Year),
			zap.Int("packed", year),
		)
	}
	years := year - thermostatEpochYear
	return uint32(years)<<26 |
		uint32(ts.Month&15)<<22 |
		uint32(ts.Day&31)<<17 |
		uint32(ts.Hour&31)<<12 |
		uint32(ts.Minute&63)<<6 |
		uint32(ts.Second&63)
}

// ThermostatTimestampFromTime takes the wall-clock fields of t in its own location
func ThermostatTimestampFromTime(t time.Time) ThermostatTimestamp {
	return ThermostatTimestamp{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// Time interprets the timestamp as wall-clock time in loc
func (ts ThermostatTimestamp) Time(loc *time.Location) time.Time {
	return time.Date(ts.Year, time.Month(ts.Month), ts.Day, ts.Hour, ts.Minute, ts.Second, 0, loc)
}

func (ts ThermostatTimestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second)
}

// State upload flags, payload byte 1. Bit 0x02 has not been observed.
const (
	StateUploadFlagTimestamp    byte = 0x01
	StateUploadFlagAutoMode     byte = 0x04
	StateUploadFlagHeatSetpoint byte = 0x08
	StateUploadFlagCoolSetpoint byte = 0x10
)

const (
	stateUploadIndexTimestamp = 2
	stateUploadIndexAutoMode  = 7
	stateUploadIndexHeat      = 8
	stateUploadIndexCool      = 9
)

// ThermostatStateUploadPacket is the thermostat pushing its clock, auto mode
// and setpoints. Only fields whose flag is set carry data.
type ThermostatStateUploadPacket struct {
	Packet
}

// NewThermostatStateUploadPacket returns an upload with no flags set
func NewThermostatStateUploadPacket() *ThermostatStateUploadPacket {
	return &ThermostatStateUploadPacket{newRequestPacket(frame.TypeSetRequest, 16, byte(SetThermostatStateUpload))}
}

// Kind returns KindThermostatStateUpload
func (p *ThermostatStateUploadPacket) Kind() Kind { return KindThermostatStateUpload }

// Flags holds the StateUploadFlag bits
func (p *ThermostatStateUploadPacket) Flags() byte { return p.flags() }

// RawTimestamp is the packed clock in payload bytes 2-5
func (p *ThermostatStateUploadPacket) RawTimestamp() uint32 {
	return binary.BigEndian.Uint32(p.frame.PayloadBytes(stateUploadIndexTimestamp))
}

// Timestamp unpacks RawTimestamp
func (p *ThermostatStateUploadPacket) Timestamp() ThermostatTimestamp {
	return UnpackThermostatTimestamp(p.RawTimestamp())
}

func (p *ThermostatStateUploadPacket) AutoMode() byte { return p.payloadByte(stateUploadIndexAutoMode) }

// HeatSetpoint and CoolSetpoint are in degrees Celsius
func (p *ThermostatStateUploadPacket) HeatSetpoint() float64 {
	return codec.TempScaleAToDegC(p.payloadByte(stateUploadIndexHeat))
}

func (p *ThermostatStateUploadPacket) CoolSetpoint() float64 {
	return codec.TempScaleAToDegC(p.payloadByte(stateUploadIndexCool))
}

// SetTimestamp packs ts and sets StateUploadFlagTimestamp
func (p *ThermostatStateUploadPacket) SetTimestamp(ts ThermostatTimestamp) *ThermostatStateUploadPacket {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], ts.Pack())
	p.frame.SetPayloadBytes(stateUploadIndexTimestamp, buf[:])
	p.addFlag(StateUploadFlagTimestamp)
	return p
}

// SetAutoMode writes the mode byte and sets StateUploadFlagAutoMode
func (p *ThermostatStateUploadPacket) SetAutoMode(mode byte) *ThermostatStateUploadPacket {
	p.setPayloadByte(stateUploadIndexAutoMode, mode)
	p.addFlag(StateUploadFlagAutoMode)
	return p
}

// SetHeatSetpoint writes degC in scale A and sets StateUploadFlagHeatSetpoint.
// NaN is logged and leaves the packet unchanged.
func (p *ThermostatStateUploadPacket) SetHeatSetpoint(degC float64) *ThermostatStateUploadPacket {
	if skipNaN("heat_setpoint", degC) {
		return p
	}
	p.setPayloadByte(stateUploadIndexHeat, codec.DegCToTempScaleA(degC))
	p.addFlag(StateUploadFlagHeatSetpoint)
	return p
}

// SetCoolSetpoint is SetHeatSetpoint for the cooling setpoint.
func (p *ThermostatStateUploadPacket) SetCoolSetpoint(degC float64) *ThermostatStateUploadPacket {
	if skipNaN("cool_setpoint", degC) {
		return p
	}
	p.setPayloadByte(stateUploadIndexCool, codec.DegCToTempScaleA(degC))
	p.addFlag(StateUploadFlagCoolSetpoint)
	return p
}

func (p *ThermostatStateUploadPacket) String() string {
	flags := p.Flags()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Thermostat Sync %s\n Flags: %02x =>", p.Packet.String(), flags)

	if flags&StateUploadFlagTimestamp != 0 {
		fmt.Fprintf(&sb, " TS Time: %s", p.Timestamp())
	}
	if flags&StateUploadFlagAutoMode != 0 {
		fmt.Fprintf(&sb, " AutoMode: %d", p.AutoMode())
	}
	if flags&StateUploadFlagHeatSetpoint != 0 {
		fmt.Fprintf(&sb, " HeatSetpoint: %s", formatFloat(p.HeatSetpoint()))
	}
	if flags&StateUploadFlagCoolSetpoint != 0 {
		fmt.Fprintf(&sb, " CoolSetpoint: %s", formatFloat(p.CoolSetpoint()))
	}

	return sb.String()
}

const (
	stateDownloadIndexTimestamp = 1
	stateDownloadIndexAutoMode  = 6
	stateDownloadIndexHeat      = 7
	stateDownloadIndexCool      = 8

	// Written alongside the timestamp. Its meaning is unknown.
	stateDownloadIndexMarker = 10
	stateDownloadMarker      = 0x07
)

// ThermostatStateDownloadResponsePacket answers the thermostat's A9 get
// request with the bridge's clock, auto mode and setpoints.
type ThermostatStateDownloadResponsePacket struct {
	Packet
}

// NewThermostatStateDownloadResponsePacket returns a response with both
// setpoints marked unsupported.
func NewThermostatStateDownloadResponsePacket() *ThermostatStateDownloadResponsePacket {
	return &ThermostatStateDownloadResponsePacket{
		newRequestPacket(frame.TypeGetResponse, 16, byte(GetThermostatStateDownload)),
	}
}

// Kind returns KindThermostatStateDownloadResponse
func (p *ThermostatStateDownloadResponsePacket) Kind() Kind { return KindThermostatStateDownloadResponse }

func (p *ThermostatStateDownloadResponsePacket) RawTimestamp() uint32 {
	return binary.BigEndian.Uint32(p.frame.PayloadBytes(stateDownloadIndexTimestamp))
}

// Timestamp unpacks RawTimestamp
func (p *ThermostatStateDownloadResponsePacket) Timestamp() ThermostatTimestamp {
	return UnpackThermostatTimestamp(p.RawTimestamp())
}

// AutoMode reports whether the heat pump is running in auto
func (p *ThermostatStateDownloadResponsePacket) AutoMode() bool {
	return p.payloadByte(stateDownloadIndexAutoMode) != 0
}

// HeatSetpoint is in degrees Celsius. A raw 0x00 marks it unsupported.
func (p *ThermostatStateDownloadResponsePacket) HeatSetpoint() float64 {
	return codec.TempScaleAToDegC(p.payloadByte(stateDownloadIndexHeat))
}

// CoolSetpoint is in degrees Celsius. A raw 0x00 marks it unsupported.
func (p *ThermostatStateDownloadResponsePacket) CoolSetpoint() float64 {
	return codec.TempScaleAToDegC(p.payloadByte(stateDownloadIndexCool))
}

// SetTimestamp packs the wall-clock fields of t in the same bit layout the
// thermostat uploads. Use SetRawTimestamp to send any other 32-bit value.
func (p *ThermostatStateDownloadResponsePacket) SetTimestamp(t time.Time) *ThermostatStateDownloadResponsePacket {
	return p.SetRawTimestamp(ThermostatTimestampFromTime(t).Pack())
}

// SetRawTimestamp writes an already packed value big-endian at payload
// byte 1, plus the 0x07 marker byte the thermostat expects.
func (p *ThermostatStateDownloadResponsePacket) SetRawTimestamp(raw uint32) *ThermostatStateDownloadResponsePacket {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], raw)
	p.frame.SetPayloadBytes(stateDownloadIndexTimestamp, buf[:])
	p.setPayloadByte(stateDownloadIndexMarker, stateDownloadMarker)
	return p
}

func (p *ThermostatStateDownloadResponsePacket) SetAutoMode(auto bool) *ThermostatStateDownloadResponsePacket {
	var v byte
	if auto {
		v = 0x01
	}
	p.setPayloadByte(stateDownloadIndexAutoMode, v)
	return p
}

// SetHeatSetpoint writes 0x00 (unsupported) for NaN
func (p *ThermostatStateDownloadResponsePacket) SetHeatSetpoint(degC float64) *ThermostatStateDownloadResponsePacket {
	p.setPayloadByte(stateDownloadIndexHeat, setpointOrUnsupported(degC))
	return p
}

// SetCoolSetpoint writes 0x00 (unsupported) for NaN
func (p *ThermostatStateDownloadResponsePacket) SetCoolSetpoint(degC float64) *ThermostatStateDownloadResponsePacket {
	p.setPayloadByte(stateDownloadIndexCool, setpointOrUnsupported(degC))
	return p
}

func setpointOrUnsupported(degC float64) byte {
	if math.IsNaN(degC) {
		return codec.ScaleAUnsupported
	}
	return codec.DegCToTempScaleA(degC)
}

func (p *ThermostatStateDownloadResponsePacket) String() string {
	return fmt.Sprintf("Thermostat State Download Response: %s\n Time: %s AutoMode:%s HeatSetpoint:%s CoolSetpoint:%s",
		p.Packet.String(), p.Timestamp(), yesNo(p.AutoMode()),
		formatFloat(p.HeatSetpoint()), formatFloat(p.CoolSetpoint()))
}

// ThermostatAASetRequestPacket is sent by the thermostat; its contents are
// not understood yet.
type ThermostatAASetRequestPacket struct {
	Packet
}

// NewThermostatAASetRequestPacket returns an AA request with an empty payload
func NewThermostatAASetRequestPacket() *ThermostatAASetRequestPacket {
	return &ThermostatAASetRequestPacket{newRequestPacket(frame.TypeSetRequest, 16, byte(SetThermostatAA))}
}

// Kind returns KindThermostatAASetRequest
func (p *ThermostatAASetRequestPacket) Kind() Kind { return KindThermostatAASetRequest }

func (p *ThermostatAASetRequestPacket) String() string {
	return "Thermostat AA Set Request: " + p.Packet.String()
}

// ThermostatABGetResponsePacket answers the thermostat's AB get request.
// Payload byte 1 is always 1.
type ThermostatABGetResponsePacket struct {
	Packet
}

// NewThermostatABGetResponsePacket returns the fixed response the heat pump sends
func NewThermostatABGetResponsePacket() *ThermostatABGetResponsePacket {
	p := &ThermostatABGetResponsePacket{newRequestPacket(frame.TypeGetResponse, 16, byte(GetThermostatAB))}
	p.setPayloadByte(1, 1)
	return p
}

// Kind returns KindThermostatABGetResponse
func (p *ThermostatABGetResponsePacket) Kind() Kind { return KindThermostatABGetResponse }

func (p *ThermostatABGetResponsePacket) String() string {
	return "Thermostat AB Get Response: " + p.Packet.String()
}
