package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		env     string
		wantErr bool
		enabled zapcore.Level
		silent  bool
	}{
		{name: "silent by default", silent: true},
		{name: "explicit debug", level: "debug", enabled: zapcore.DebugLevel},
		{name: "level from env", env: "warn", enabled: zapcore.WarnLevel},
		{name: "unknown level", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(LogLevelEnvVar, tt.env)
			defer SetLogger(nil)

			err := Initialize(tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Initialize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			core := GetLogger().Core()
			if tt.silent {
				if core.Enabled(zapcore.ErrorLevel) {
					t.Error("expected nop logger")
				}
				return
			}
			if !core.Enabled(tt.enabled) {
				t.Errorf("level %v not enabled", tt.enabled)
			}
			if tt.enabled > zapcore.DebugLevel && core.Enabled(tt.enabled-1) {
				t.Errorf("level %v unexpectedly enabled", tt.enabled-1)
			}
		})
	}
}

func TestWarnGoesToInstalledLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	Warn("clamped", zap.Float64("value", 99))
	LogFrame("rx", []byte{0xfc, 0x62})

	if logs.Len() != 2 {
		t.Fatalf("got %d entries, want 2", logs.Len())
	}
	entry := logs.All()[0]
	if entry.Level != zapcore.WarnLevel || entry.Message != "clamped" {
		t.Errorf("entry = %v %q", entry.Level, entry.Message)
	}
	if got := logs.All()[1].ContextMap()["hex"]; got != "fc62" {
		t.Errorf("hex = %v, want fc62", got)
	}
}

func TestAsciiDump(t *testing.T) {
	if got := asciiDump([]byte{'A', 0x00, 'z'}); got != "A.z" {
		t.Errorf("asciiDump = %q, want %q", got, "A.z")
	}
}
