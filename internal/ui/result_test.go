package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestResultRender(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			name:   "success",
			result: NewSuccessResult("Capture complete", Param{Key: "Frames", Value: "12"}),
			want:   []string{SuccessMarker, "SUCCESS", "Capture complete", "Frames:", "12"},
		},
		{
			name:   "failure",
			result: NewFailureResult("Open failed", errors.New("permission denied"), "Add yourself to the dialout group"),
			want:   []string{FailureMarker, "FAILED", "permission denied", "Troubleshooting:", "dialout"},
		},
		{
			name:   "warning",
			result: NewWarningResult("Checksum errors").AddDetail("Dropped", "3"),
			want:   []string{WarningMarker, "WARNING", "Dropped:", "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(80).Render()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Render() missing %q in:\n%s", want, out)
				}
			}
		})
	}
}

func TestHeaderRender(t *testing.T) {
	h := NewHeader("sniff", "itpctl sniff --port /dev/ttyUSB0",
		Param{Key: "Port", Value: "/dev/ttyUSB0"},
		Param{Key: "Line", Value: "2400 8E1"},
	).SetWidth(80)

	out := h.String()
	for _, want := range []string{"SNIFF", "itpctl sniff", "Port:", "/dev/ttyUSB0", "2400 8E1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "Port:") > strings.Index(out, "Line:") {
		t.Error("params rendered out of order")
	}
}

func TestRenderHorizontalDivider(t *testing.T) {
	if got := RenderHorizontalDivider(5, "-"); !strings.Contains(got, "-----") {
		t.Errorf("RenderHorizontalDivider(5) = %q", got)
	}
}

func TestClampWidth(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{0, MinTerminalWidth},
		{MinTerminalWidth - 1, MinTerminalWidth},
		{80, 80},
		{maxContentWidth, maxContentWidth},
		{maxContentWidth + 1, maxContentWidth},
		{400, maxContentWidth},
	}
	for _, tt := range tests {
		if got := ClampWidth(tt.width); got != tt.want {
			t.Errorf("ClampWidth(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestResultRenderCapsWidth(t *testing.T) {
	out := NewSuccessResult("Done", Param{Key: "Frames", Value: "3"}).SetWidth(400).Render()
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > maxContentWidth {
			t.Errorf("line width = %d, want at most %d: %q", w, maxContentWidth, line)
		}
	}
}
