package codec

import (
	"math"

	"github.com/muurk/itpctl/internal/logging"
	"go.uber.org/zap"
)

// Scale A bounds and sentinels
const (
	ScaleAMin = -64.0
	ScaleAMax = 63.5

	ScaleAUnsupported = 0x00 // also the clamp code below ScaleAMin
	ScaleAOverflow    = 0xFF
)

// Legacy target temperature bounds and sentinels
const (
	LegacyTargetMin = 16.0
	LegacyTargetMax = 31.5

	LegacyTargetUnderflow = 0x0F
	LegacyTargetOverflow  = 0x10
)

// TempScaleAToDegC decodes a scale A byte.
func TempScaleAToDegC(value byte) float64 {
	return float64(int(value)-128) / 2.0
}

// DegCToTempScaleA encodes v on scale A, clamping to 0x00/0xFF. NaN encodes
// as 0x00 (unsupported).
func DegCToTempScaleA(v float64) byte {
	if math.IsNaN(v) {
		warnNaN("scale_a", ScaleAUnsupported)
		return ScaleAUnsupported
	}
	if v < ScaleAMin {
		warnClamp("scale_a", v, ScaleAUnsupported)
		return ScaleAUnsupported
	}
	if v > ScaleAMax {
		warnClamp("scale_a", v, ScaleAOverflow)
		return ScaleAOverflow
	}

	return byte(int(math.Round(v*2)) + 128)
}

// LegacyTargetTempToDegC decodes the nibble-packed legacy setpoint.
func LegacyTargetTempToDegC(value byte) float64 {
	v := float64(31 - int(value&0x0F))
	if value&0xF0 != 0 {
		v += 0.5
	}
	return v
}

// DegCToLegacyTargetTemp encodes a setpoint for units that predate scale A.
// 0x0F and 0x10 double as the out-of-band markers for values below 16 and
// above 31.5 degrees.
func DegCToLegacyTargetTemp(v float64) byte {
	if math.IsNaN(v) {
		warnNaN("legacy_target", LegacyTargetUnderflow)
		return LegacyTargetUnderflow
	}
	if v < LegacyTargetMin {
		warnClamp("legacy_target", v, LegacyTargetUnderflow)
		return LegacyTargetUnderflow
	}
	if v > LegacyTargetMax {
		warnClamp("legacy_target", v, LegacyTargetOverflow)
		return LegacyTargetOverflow
	}

	whole := byte(31-int(v)) & 0x0F
	half := byte(int(v*2)%2) << 4
	return whole + half
}

// LegacyHPRoomTempToDegC decodes the heat pump's legacy room temperature.
func LegacyHPRoomTempToDegC(value byte) float64 {
	return float64(value) + 10
}

// DegCToLegacyHPRoomTemp encodes a room temperature on the 10-41 degree
// heat-pump scale.
func DegCToLegacyHPRoomTemp(v float64) byte {
	if math.IsNaN(v) {
		warnNaN("legacy_hp_room", 0x00)
		return 0x00
	}
	if v < 10 {
		warnClamp("legacy_hp_room", v, 0x00)
		return 0x00
	}
	if v > 41 {
		warnClamp("legacy_hp_room", v, 0x1F)
		return 0x1F
	}

	return byte(int(v) - 10)
}

// LegacyTSRoomTempToDegC decodes the thermostat's legacy room temperature.
func LegacyTSRoomTempToDegC(value byte) float64 {
	return 8 + float64(value)*0.5
}

// DegCToLegacyTSRoomTemp encodes a room temperature on the 8-39.5 degree
// thermostat scale.
func DegCToLegacyTSRoomTemp(v float64) byte {
	if math.IsNaN(v) {
		warnNaN("legacy_ts_room", 0x00)
		return 0x00
	}
	if v < 8 {
		warnClamp("legacy_ts_room", v, 0x00)
		return 0x00
	}
	if v > 39.5 {
		warnClamp("legacy_ts_room", v, 0x3F)
		return 0x3F
	}

	return byte(int(2*v) - 16)
}

// DualScaleToDegC decodes a field stored at both an enhanced and a legacy
// offset. The legacy byte is only consulted when the enhanced byte is zero.
func DualScaleToDegC(enhanced, legacy byte, legacyDecode func(byte) float64) float64 {
	if enhanced == ScaleAUnsupported {
		return legacyDecode(legacy)
	}
	return TempScaleAToDegC(enhanced)
}

func warnClamp(scale string, v float64, code byte) {
	logging.Warn("Temperature outside scale range, clamped",
		zap.String("scale", scale),
		zap.Float64("value", v),
		zap.Uint8("wire", code),
	)
}

func warnNaN(scale string, code byte) {
	logging.Warn("Temperature is not a number, writing the low sentinel",
		zap.String("scale", scale),
		zap.Uint8("wire", code),
	)
}
