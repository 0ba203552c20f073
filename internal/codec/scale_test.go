package codec

import (
	"math"
	"testing"

	"github.com/muurk/itpctl/internal/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestScaleARoundTrip(t *testing.T) {
	for v := ScaleAMin; v <= ScaleAMax; v += 0.5 {
		if got := TempScaleAToDegC(DegCToTempScaleA(v)); got != v {
			t.Errorf("round trip %.1f = %.1f", v, got)
		}
	}
}

func TestDegCToTempScaleA(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want byte
	}{
		{"below range", -64.5, 0x00},
		{"far below range", -300, 0x00},
		{"above range", 64, 0xFF},
		{"far above range", 1000, 0xFF},
		{"zero", 0, 0x80},
		{"21.5", 21.5, 171},
		{"rounds half up", 21.25, 171},
		{"negative", -10, 108},
		{"lower bound", -64, 0x00},
		{"upper bound", 63.5, 0xFF},
		{"not a number", math.NaN(), 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DegCToTempScaleA(tt.in); got != tt.want {
				t.Errorf("DegCToTempScaleA(%v) = 0x%02x, want 0x%02x", tt.in, got, tt.want)
			}
		})
	}
}

func TestLegacyTargetTemp(t *testing.T) {
	tests := []struct {
		in   float64
		want byte
	}{
		{16.0, 0x0F},
		{16.5, 0x1F},
		{21.5, 0x1A},
		{22.0, 0x09},
		{31.0, 0x00},
		{31.5, 0x10},
		{15.9, 0x0F},
		{31.6, 0x10},
	}

	for _, tt := range tests {
		if got := DegCToLegacyTargetTemp(tt.in); got != tt.want {
			t.Errorf("DegCToLegacyTargetTemp(%v) = 0x%02x, want 0x%02x", tt.in, got, tt.want)
		}
	}

	for _, v := range []float64{16.0, 18.5, 24.0, 31.5} {
		if got := LegacyTargetTempToDegC(DegCToLegacyTargetTemp(v)); got != v {
			t.Errorf("legacy round trip %.1f = %.1f", v, got)
		}
	}
}

func TestLegacyRoomTemps(t *testing.T) {
	hp := []struct {
		in   float64
		want byte
	}{
		{9.9, 0x00}, {10, 0x00}, {22.7, 12}, {41, 31}, {41.5, 0x1F},
	}
	for _, tt := range hp {
		if got := DegCToLegacyHPRoomTemp(tt.in); got != tt.want {
			t.Errorf("DegCToLegacyHPRoomTemp(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if got := LegacyHPRoomTempToDegC(12); got != 22 {
		t.Errorf("LegacyHPRoomTempToDegC(12) = %v, want 22", got)
	}

	ts := []struct {
		in   float64
		want byte
	}{
		{7.5, 0x00}, {8, 0x00}, {20.5, 25}, {39.5, 63}, {40, 0x3F},
	}
	for _, tt := range ts {
		if got := DegCToLegacyTSRoomTemp(tt.in); got != tt.want {
			t.Errorf("DegCToLegacyTSRoomTemp(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if got := LegacyTSRoomTempToDegC(25); got != 20.5 {
		t.Errorf("LegacyTSRoomTempToDegC(25) = %v, want 20.5", got)
	}
}

func TestDualScaleToDegC(t *testing.T) {
	if got := DualScaleToDegC(171, 0x0F, LegacyTargetTempToDegC); got != 21.5 {
		t.Errorf("enhanced present: got %v, want 21.5", got)
	}
	if got := DualScaleToDegC(0, 0x1A, LegacyTargetTempToDegC); got != 21.5 {
		t.Errorf("enhanced absent: got %v, want 21.5", got)
	}
	if got := DualScaleToDegC(0, 12, LegacyHPRoomTempToDegC); got != 22 {
		t.Errorf("hp fallback: got %v, want 22", got)
	}
}

func TestClampLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logging.SetLogger(zap.New(core))
	defer logging.SetLogger(nil)

	DegCToTempScaleA(math.Inf(1))
	DegCToLegacyTargetTemp(12)
	DegCToTempScaleA(20)

	if logs.Len() != 2 {
		t.Fatalf("got %d warnings, want 2", logs.Len())
	}
	if got := logs.All()[1].ContextMap()["scale"]; got != "legacy_target" {
		t.Errorf("scale = %v, want legacy_target", got)
	}
}

func TestNaNLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logging.SetLogger(zap.New(core))
	defer logging.SetLogger(nil)

	nan := math.NaN()
	tests := []struct {
		name  string
		fn    func(float64) byte
		want  byte
		scale string
	}{
		{"scale A", DegCToTempScaleA, ScaleAUnsupported, "scale_a"},
		{"legacy target", DegCToLegacyTargetTemp, LegacyTargetUnderflow, "legacy_target"},
		{"legacy hp room", DegCToLegacyHPRoomTemp, 0x00, "legacy_hp_room"},
		{"legacy ts room", DegCToLegacyTSRoomTemp, 0x00, "legacy_ts_room"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(nan); got != tt.want {
				t.Errorf("encode(NaN) = 0x%02x, want 0x%02x", got, tt.want)
			}
			if logs.Len() != i+1 {
				t.Fatalf("got %d warnings, want %d", logs.Len(), i+1)
			}
			if got := logs.All()[i].ContextMap()["scale"]; got != tt.scale {
				t.Errorf("scale = %v, want %s", got, tt.scale)
			}
		})
	}
}
