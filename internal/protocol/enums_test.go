package protocol

import "testing"

func TestActualFanSpeedName(t *testing.T) {
	tests := []struct {
		speed byte
		want  string
	}{
		{0, "Off"},
		{1, "Very Low"},
		{5, FanModeVeryHigh},
		{6, "Quiet"},
		{7, "Unknown"},
	}

	for _, tt := range tests {
		if got := ActualFanSpeedName(tt.speed); got != tt.want {
			t.Errorf("ActualFanSpeedName(%d) = %q, want %q", tt.speed, got, tt.want)
		}
	}
}

func TestEnumValid(t *testing.T) {
	tests := []struct {
		name string
		got  bool
		want bool
	}{
		{"mode heat", ModeHeat.Valid(), true},
		{"mode 0x04", ModeByte(0x04).Valid(), false},
		{"fan 4", Fan4.Valid(), true},
		{"fan 0x04", FanByte(0x04).Valid(), false},
		{"vane swing", VaneSwing.Valid(), true},
		{"vane 0x06", VaneByte(0x06).Valid(), false},
		{"hvane split", HVaneSplit.Valid(), true},
		{"hvane 0x06", HorizontalVaneByte(0x06).Valid(), false},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: Valid() = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestCommandStrings(t *testing.T) {
	if got := GetThermostatStateDownload.String(); got != "ThermostatStateDownload" {
		t.Errorf("String() = %q", got)
	}
	if got := SetCommand(0x55).String(); got != "Unknown(0x55)" {
		t.Errorf("String() = %q", got)
	}
	if got := ThermostatBatteryState(9).String(); got != "Unknown" {
		t.Errorf("String() = %q", got)
	}
}
