package protocol

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/muurk/itpctl/internal/frame"
)

// helloPayload is a hello from an MHK2 with serial 1AB2C3D4E5F6, firmware 01.02.03
var helloPayload = []byte{
	0xA7,
	0x34, 0x82, 0xF2,
	0xC4, 0x10, 0xB2, 0x0F, 0x31, 0x34, 0x17, 0x51, 0xB6,
	0x01, 0x02, 0x03,
}

func TestThermostatHelloDecode(t *testing.T) {
	p := decodeAs[*ThermostatHelloPacket](t, frame.TypeSetRequest, helloPayload)

	if got := p.Model(); got != "MHK2" {
		t.Errorf("Model() = %q, want %q", got, "MHK2")
	}
	if got := p.Serial(); got != "1AB2C3D4E5F6" {
		t.Errorf("Serial() = %q, want %q", got, "1AB2C3D4E5F6")
	}
	if got := p.Version(); got != "01.02.03" {
		t.Errorf("Version() = %q, want %q", got, "01.02.03")
	}
	if p.ResponseExpected() {
		t.Error("hello should not expect a response")
	}

	want := "\n Model: MHK2 Serial: 1AB2C3D4E5F6 Version: 01.02.03"
	if s := p.String(); !strings.HasPrefix(s, "Thermostat Hello: ") || !strings.HasSuffix(s, want) {
		t.Errorf("String() = %q, want suffix %q", s, want)
	}
}

func TestThermostatHelloBuild(t *testing.T) {
	p := NewThermostatHelloPacket().SetModel("mhk2").SetSerial("1AB2C3D4E5F6").SetVersion(1, 2, 3)

	if got := p.Frame().PayloadBytes(0); !bytes.Equal(got, helloPayload) {
		t.Errorf("payload = % X, want % X", got, helloPayload)
	}
	if p.ResponseExpected() {
		t.Error("hello should not expect a response")
	}

	short := NewThermostatHelloPacket().SetSerial("ABC")
	if got := short.Serial(); got != "ABC         " {
		t.Errorf("Serial() = %q, want padded with spaces", got)
	}
}

func TestThermostatSensorStatus(t *testing.T) {
	payload := padded(16, 0xA6)
	payload[5] = 45
	payload[6] = byte(BatteryLow)
	payload[7] = 0x03

	p := decodeAs[*ThermostatSensorStatusPacket](t, frame.TypeSetRequest, payload)

	if p.IndoorHumidityPercent() != 45 || p.BatteryState() != BatteryLow || p.SensorFlags() != 0x03 {
		t.Errorf("humidity/battery/flags = %d/%v/%d", p.IndoorHumidityPercent(), p.BatteryState(), p.SensorFlags())
	}

	want := "\n Indoor RH: 45%  MHK Battery: Low(1)  Sensor Flags: 3"
	if s := p.String(); !strings.HasSuffix(s, want) {
		t.Errorf("String() = %q, want suffix %q", s, want)
	}
}

func TestThermostatTimestamp(t *testing.T) {
	ts := ThermostatTimestamp{Year: 2024, Month: 3, Day: 15, Hour: 10, Minute: 30, Second: 45}

	if got := ts.Pack(); got != 0x1CDEA7AD {
		t.Errorf("Pack() = 0x%08X, want 0x1CDEA7AD", got)
	}
	if got := UnpackThermostatTimestamp(0x1CDEA7AD); got != ts {
		t.Errorf("UnpackThermostatTimestamp() = %+v, want %+v", got, ts)
	}
	if got := ts.String(); got != "2024-03-15 10:30:45" {
		t.Errorf("String() = %q", got)
	}

	loc := time.FixedZone("test", 3600)
	want := time.Date(2024, time.March, 15, 10, 30, 45, 0, loc)
	if got := ts.Time(loc); !got.Equal(want) {
		t.Errorf("Time() = %v, want %v", got, want)
	}
	if got := ThermostatTimestampFromTime(want); got != ts {
		t.Errorf("ThermostatTimestampFromTime() = %+v, want %+v", got, ts)
	}

	if got := UnpackThermostatTimestamp(0); got.Year != 2017 {
		t.Errorf("zero timestamp year = %d, want 2017", got.Year)
	}
}

func TestThermostatTimestampYearClamped(t *testing.T) {
	tests := []struct {
		name         string
		year         int
		want         int
		wantWarnings int
	}{
		{"first year", 2017, 2017, 0},
		{"last year", 2080, 2080, 0},
		{"after range", 2081, 2080, 1},
		{"far after range", 2200, 2080, 1},
		{"before range", 2010, 2017, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := observeWarnings(t)

			ts := ThermostatTimestamp{Year: tt.year, Month: 3, Day: 4, Hour: 5, Minute: 6, Second: 7}
			got := UnpackThermostatTimestamp(ts.Pack())

			if got.Year != tt.want {
				t.Errorf("year = %d, want %d", got.Year, tt.want)
			}
			if got.Month != 3 || got.Day != 4 || got.Second != 7 {
				t.Errorf("other fields = %+v, want them kept", got)
			}
			if logs.Len() != tt.wantWarnings {
				t.Errorf("got %d warnings, want %d", logs.Len(), tt.wantWarnings)
			}
		})
	}
}

func TestThermostatStateUpload(t *testing.T) {
	ts := ThermostatTimestamp{Year: 2024, Month: 3, Day: 15, Hour: 10, Minute: 30, Second: 45}

	p := NewThermostatStateUploadPacket().
		SetTimestamp(ts).
		SetHeatSetpoint(20).
		SetCoolSetpoint(25.5)

	if p.Flags() != StateUploadFlagTimestamp|StateUploadFlagHeatSetpoint|StateUploadFlagCoolSetpoint {
		t.Errorf("Flags() = 0x%02x, want 0x19", p.Flags())
	}
	if got := p.Frame().PayloadBytes(2)[:4]; !bytes.Equal(got, []byte{0x1C, 0xDE, 0xA7, 0xAD}) {
		t.Errorf("timestamp bytes = % X, want 1C DE A7 AD", got)
	}
	if got := p.Timestamp(); got != ts {
		t.Errorf("Timestamp() = %+v, want %+v", got, ts)
	}

	want := "\n Flags: 19 => TS Time: 2024-03-15 10:30:45 HeatSetpoint: 20.000000 CoolSetpoint: 25.500000"
	if s := p.String(); !strings.HasPrefix(s, "Thermostat Sync ") || !strings.HasSuffix(s, want) {
		t.Errorf("String() = %q, want suffix %q", s, want)
	}

	p.SetAutoMode(0x02)
	if !strings.Contains(p.String(), "TS Time: 2024-03-15 10:30:45 AutoMode: 2 HeatSetpoint") {
		t.Errorf("String() = %q, want auto mode between time and heat setpoint", p.String())
	}
}

func TestThermostatStateUploadDecodeRespectsFlags(t *testing.T) {
	payload := padded(16, 0xA8)
	payload[1] = StateUploadFlagCoolSetpoint
	payload[2], payload[3], payload[4], payload[5] = 0x1C, 0xDE, 0xA7, 0xAD
	payload[7] = 0x01
	payload[9] = 0xB4 // 26

	p := decodeAs[*ThermostatStateUploadPacket](t, frame.TypeSetRequest, payload)
	s := p.String()

	if !strings.HasSuffix(s, "\n Flags: 10 => CoolSetpoint: 26.000000") {
		t.Errorf("String() = %q, want only the cool setpoint", s)
	}
	if p.AutoMode() != 0x01 {
		t.Errorf("AutoMode() = %d, want 1 even when unflagged", p.AutoMode())
	}
}

func TestThermostatStateDownloadResponse(t *testing.T) {
	at := time.Date(2024, time.March, 15, 10, 30, 45, 0, time.UTC)

	p := NewThermostatStateDownloadResponsePacket().
		SetTimestamp(at).
		SetAutoMode(true).
		SetHeatSetpoint(20).
		SetCoolSetpoint(math.NaN())

	if p.PacketType() != frame.TypeGetResponse || p.Frame().PayloadByte(0) != 0xA9 {
		t.Fatalf("type/command = %v/0x%02x, want GetResponse/0xA9", p.PacketType(), p.Frame().PayloadByte(0))
	}

	checks := []struct {
		name   string
		offset int
		want   byte
	}{
		{"timestamp 0", 1, 0x1C},
		{"timestamp 1", 2, 0xDE},
		{"timestamp 2", 3, 0xA7},
		{"timestamp 3", 4, 0xAD},
		{"auto mode", 6, 0x01},
		{"heat", 7, 168},
		{"cool unsupported", 8, 0x00},
		{"marker", 10, 0x07},
	}
	for _, c := range checks {
		if got := p.Frame().PayloadByte(c.offset); got != c.want {
			t.Errorf("%s: payload[%d] = 0x%02x, want 0x%02x", c.name, c.offset, got, c.want)
		}
	}

	if got := p.Timestamp().Time(time.UTC); !got.Equal(at) {
		t.Errorf("Timestamp() = %v, want %v", got, at)
	}
	if !p.AutoMode() || p.HeatSetpoint() != 20 {
		t.Errorf("AutoMode()/HeatSetpoint() = %v/%v", p.AutoMode(), p.HeatSetpoint())
	}

	p.SetRawTimestamp(0x01020304)
	if got := p.RawTimestamp(); got != 0x01020304 {
		t.Errorf("RawTimestamp() = 0x%08X, want 0x01020304", got)
	}
}

func TestThermostatABAndAA(t *testing.T) {
	ab := NewThermostatABGetResponsePacket()
	if ab.Frame().PayloadByte(0) != 0xAB || ab.Frame().PayloadByte(1) != 0x01 {
		t.Errorf("AB payload = % X, want AB 01 ...", ab.Frame().PayloadBytes(0))
	}
	if ab.Frame().Length() != 16 || ab.PacketType() != frame.TypeGetResponse {
		t.Errorf("AB type/length = %v/%d", ab.PacketType(), ab.Frame().Length())
	}

	aa := NewThermostatAASetRequestPacket()
	if aa.Frame().PayloadByte(0) != 0xAA || aa.PacketType() != frame.TypeSetRequest {
		t.Errorf("AA type/command = %v/0x%02x", aa.PacketType(), aa.Frame().PayloadByte(0))
	}
}
