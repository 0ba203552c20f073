package protocol

import "fmt"

// GetCommand is payload byte 0 of get requests and get responses
type GetCommand byte

const (
	GetSettings                GetCommand = 0x02
	GetCurrentTemp             GetCommand = 0x03
	GetErrorInfo               GetCommand = 0x04
	GetStatus                  GetCommand = 0x06
	GetRunState                GetCommand = 0x09
	GetFunctions1              GetCommand = 0x20
	GetFunctions2              GetCommand = 0x22
	GetThermostatStateDownload GetCommand = 0xA9
	GetThermostatAB            GetCommand = 0xAB
)

func (c GetCommand) String() string {
	switch c {
	case GetSettings:
		return "Settings"
	case GetCurrentTemp:
		return "CurrentTemp"
	case GetErrorInfo:
		return "ErrorInfo"
	case GetStatus:
		return "Status"
	case GetRunState:
		return "RunState"
	case GetFunctions1:
		return "Functions1"
	case GetFunctions2:
		return "Functions2"
	case GetThermostatStateDownload:
		return "ThermostatStateDownload"
	case GetThermostatAB:
		return "ThermostatAB"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", byte(c))
	}
}

// SetCommand is payload byte 0 of set requests
type SetCommand byte

const (
	SetSettings               SetCommand = 0x01
	SetRemoteTemperature      SetCommand = 0x07
	SetRunState               SetCommand = 0x08
	SetThermostatSensorStatus SetCommand = 0xA6
	SetThermostatHello        SetCommand = 0xA7
	SetThermostatStateUpload  SetCommand = 0xA8
	SetThermostatAA           SetCommand = 0xAA
)

func (c SetCommand) String() string {
	switch c {
	case SetSettings:
		return "Settings"
	case SetRemoteTemperature:
		return "RemoteTemperature"
	case SetRunState:
		return "RunState"
	case SetThermostatSensorStatus:
		return "ThermostatSensorStatus"
	case SetThermostatHello:
		return "ThermostatHello"
	case SetThermostatStateUpload:
		return "ThermostatStateUpload"
	case SetThermostatAA:
		return "ThermostatAA"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", byte(c))
	}
}

// IdentifyCommand is payload byte 0 of identify requests and responses
type IdentifyCommand byte

const (
	IdentifyCapabilities IdentifyCommand = 0xC9
	IdentifyCD           IdentifyCommand = 0xCD
)

// ModeByte is the operating mode written by settings set requests
type ModeByte byte

const (
	ModeHeat ModeByte = 0x01
	ModeDry  ModeByte = 0x02
	ModeCool ModeByte = 0x03
	ModeFan  ModeByte = 0x07
	ModeAuto ModeByte = 0x08
)

// Valid reports whether m is one of the known wire codes
func (m ModeByte) Valid() bool {
	switch m {
	case ModeHeat, ModeDry, ModeCool, ModeFan, ModeAuto:
		return true
	}
	return false
}

func (m ModeByte) String() string {
	switch m {
	case ModeHeat:
		return "heat"
	case ModeDry:
		return "dry"
	case ModeCool:
		return "cool"
	case ModeFan:
		return "fan"
	case ModeAuto:
		return "auto"
	default:
		return fmt.Sprintf("0x%02x", byte(m))
	}
}

// FanByte is the requested fan speed
type FanByte byte

const (
	FanAuto  FanByte = 0x00
	FanQuiet FanByte = 0x01
	Fan1     FanByte = 0x02
	Fan2     FanByte = 0x03
	Fan3     FanByte = 0x05
	Fan4     FanByte = 0x06
)

// Valid reports whether f is one of the known wire codes
func (f FanByte) Valid() bool {
	switch f {
	case FanAuto, FanQuiet, Fan1, Fan2, Fan3, Fan4:
		return true
	}
	return false
}

// VaneByte is the vertical vane position
type VaneByte byte

const (
	VaneAuto  VaneByte = 0x00
	Vane1     VaneByte = 0x01
	Vane2     VaneByte = 0x02
	Vane3     VaneByte = 0x03
	Vane4     VaneByte = 0x04
	Vane5     VaneByte = 0x05
	VaneSwing VaneByte = 0x07
)

// Valid reports whether v is one of the known wire codes
func (v VaneByte) Valid() bool {
	switch v {
	case VaneAuto, Vane1, Vane2, Vane3, Vane4, Vane5, VaneSwing:
		return true
	}
	return false
}

// HorizontalVaneByte is the horizontal vane position (low 7 bits of its byte)
type HorizontalVaneByte byte

const (
	HVaneAuto      HorizontalVaneByte = 0x00
	HVaneLeftFull  HorizontalVaneByte = 0x01
	HVaneLeft      HorizontalVaneByte = 0x02
	HVaneCenter    HorizontalVaneByte = 0x03
	HVaneRight     HorizontalVaneByte = 0x04
	HVaneRightFull HorizontalVaneByte = 0x05
	HVaneSplit     HorizontalVaneByte = 0x08
	HVaneSwing     HorizontalVaneByte = 0x0C
)

// Valid reports whether h is one of the known wire codes
func (h HorizontalVaneByte) Valid() bool {
	switch h {
	case HVaneAuto, HVaneLeftFull, HVaneLeft, HVaneCenter, HVaneRight, HVaneRightFull, HVaneSplit, HVaneSwing:
		return true
	}
	return false
}

// ThermostatBatteryState as reported by the wall thermostat
type ThermostatBatteryState byte

const (
	BatteryOK ThermostatBatteryState = iota
	BatteryLow
	BatteryCritical
	BatteryReplace
	BatteryUnknown
)

var batteryStateNames = [...]string{"OK", "Low", "Critical", "Replace", "Unknown"}

func (b ThermostatBatteryState) String() string {
	if int(b) < len(batteryStateNames) {
		return batteryStateNames[b]
	}
	return "Unknown"
}

// FanModeVeryHigh is the name of the fastest fan speed, which has no
// counterpart among the standard climate fan modes.
const FanModeVeryHigh = "Very High"

// actualFanSpeedNames are indexed by the run state's actual fan byte. "Very
// Low" is used for preheating and thermal off.
var actualFanSpeedNames = [...]string{"Off", "Very Low", "Low", "Medium", "High", FanModeVeryHigh, "Quiet"}

// ActualFanSpeedName names a run-state fan speed
func ActualFanSpeedName(speed byte) string {
	if int(speed) < len(actualFanSpeedNames) {
		return actualFanSpeedNames[speed]
	}
	return "Unknown"
}
