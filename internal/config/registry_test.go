package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/muurk/itpctl/internal/frame"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout only applies on linux")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(xdg, "itpctl"); dir != want {
		t.Errorf("GetConfigDir() = %q, want %q", dir, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		path, err := GetConfigPath()
		if err != nil {
			t.Fatalf("GetConfigPath() error = %v", err)
		}
		if filepath.Base(path) != "config.yaml" {
			t.Errorf("GetConfigPath() = %q, want it to end in config.yaml", path)
		}
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "/tmp/elsewhere.yaml")
		path, err := GetConfigPath()
		if err != nil {
			t.Fatalf("GetConfigPath() error = %v", err)
		}
		if path != "/tmp/elsewhere.yaml" {
			t.Errorf("GetConfigPath() = %q, want /tmp/elsewhere.yaml", path)
		}
	})
}

func TestNewConfig(t *testing.T) {
	c := NewConfig()

	if c.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", c.Version, CurrentVersion)
	}
	if c.Serial.BaudRate != 2400 || c.Serial.DataBits != 8 || c.Serial.Parity != "even" || c.Serial.StopBits != 1 {
		t.Errorf("Serial = %+v, want 2400 8E1", *c.Serial)
	}
	if c.Tap.Port != 8765 {
		t.Errorf("Tap.Port = %d, want 8765", c.Tap.Port)
	}
	if c.Links == nil {
		t.Error("Links should not be nil")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	c, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if c.Serial.BaudRate != 2400 {
		t.Errorf("BaudRate = %d, want default 2400", c.Serial.BaudRate)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	c := NewConfig()
	c.Tap.Advertise = true
	c.Tap.Name = "itpctl-loft"
	c.Logging.Level = "debug"
	link := c.EnsureLink("thermostat")
	link.Port = "/dev/ttyAMA0"
	link.Source = "thermostat"
	link.Association = "thermostat"

	if err := c.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "# itpctl configuration") {
		t.Error("saved file is missing its header comment")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind after save")
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !loaded.Tap.Advertise || loaded.Tap.Name != "itpctl-loft" {
		t.Errorf("Tap = %+v, want advertise as itpctl-loft", *loaded.Tap)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", loaded.Logging.Level)
	}
	got := loaded.GetLink("thermostat")
	if got == nil || got.Port != "/dev/ttyAMA0" {
		t.Fatalf("GetLink(thermostat) = %+v, want port /dev/ttyAMA0", got)
	}
	bridge, err := got.SourceBridge()
	if err != nil || bridge != frame.SourceThermostat {
		t.Errorf("SourceBridge() = %v, %v; want thermostat", bridge, err)
	}
}

func TestLoadFromPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\ntap:\n  advertise: true\n"), 0600); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if c.Tap.Port != 8765 {
		t.Errorf("Tap.Port = %d, want default 8765", c.Tap.Port)
	}
	if c.Serial == nil || c.Serial.Parity != "even" {
		t.Errorf("Serial = %+v, want defaults", c.Serial)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "version: [1"},
		{"wrong version", "version: 2\n"},
		{"bad parity", "version: 1\nserial:\n  parity: mark\n"},
		{"link without port", "version: 1\nlinks:\n  hp:\n    source: heatpump\n"},
		{"unknown source", "version: 1\nlinks:\n  hp:\n    port: /dev/ttyS0\n    source: boiler\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Errorf("LoadFrom(%q) succeeded, want error", tt.content)
			}
		})
	}
}

func TestLoadUsesEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(ConfigPathEnvVar, path)

	c := NewConfig()
	c.Tap.Name = "from-env"
	if err := c.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := Reload()
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if loaded.Tap.Name != "from-env" {
		t.Errorf("Tap.Name = %q, want from-env", loaded.Tap.Name)
	}

	again, err := Load()
	if err != nil || again != loaded {
		t.Errorf("Load() after Reload() = %p, %v; want cached %p", again, err, loaded)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	c, err := CreateDefaultConfig(path, false)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if c.GetLink("heatpump") == nil {
		t.Error("default config has no heatpump link")
	}

	if _, err := CreateDefaultConfig(path, false); err == nil {
		t.Error("CreateDefaultConfig() over existing file succeeded, want error")
	}
	if _, err := CreateDefaultConfig(path, true); err != nil {
		t.Errorf("CreateDefaultConfig(force) error = %v", err)
	}
}

func TestEnsureLink(t *testing.T) {
	c := NewConfig()

	first := c.EnsureLink("hp")
	if first == nil {
		t.Fatal("EnsureLink() returned nil")
	}
	if second := c.EnsureLink("hp"); second != first {
		t.Error("EnsureLink() should return same instance for same name")
	}
	if other := c.EnsureLink("ts"); other == first {
		t.Error("EnsureLink() should create new instance for different name")
	}
	if c.GetLink("missing") != nil {
		t.Error("GetLink(missing) should be nil")
	}
}

func TestUpdateLinkLastSeen(t *testing.T) {
	c := NewConfig()

	before := time.Now()
	c.UpdateLinkLastSeen("hp")
	after := time.Now()

	seen := c.GetLink("hp").LastSeen
	if seen.Before(before) || seen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", seen, before, after)
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		in      string
		want    frame.SourceBridge
		wantErr bool
	}{
		{"", frame.SourceNone, false},
		{"none", frame.SourceNone, false},
		{"heatpump", frame.SourceHeatpump, false},
		{"hp", frame.SourceHeatpump, false},
		{"thermostat", frame.SourceThermostat, false},
		{"ts", frame.SourceThermostat, false},
		{"boiler", frame.SourceNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSource(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSource(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSource(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAssociation(t *testing.T) {
	tests := []struct {
		in      string
		want    frame.ControllerAssociation
		wantErr bool
	}{
		{"", frame.AssociationBridge, false},
		{"bridge", frame.AssociationBridge, false},
		{"thermostat", frame.AssociationThermostat, false},
		{"remote", frame.AssociationBridge, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAssociation(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAssociation(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseAssociation(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
