package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/itpctl/internal/frame"
	"github.com/muurk/itpctl/internal/protocol"
)

// KindColor groups packets by direction of the exchange. kind and
// packetType are the String forms of protocol.Kind and frame.PacketType.
func KindColor(kind, packetType string) lipgloss.Color {
	if kind == protocol.KindGeneric.String() {
		return MutedColor
	}
	switch packetType {
	case frame.TypeSetRequest.String(), frame.TypeSetResponse.String():
		return WarningColor
	case frame.TypeGetRequest.String(), frame.TypeGetResponse.String():
		return InfoColor
	default:
		return PrimaryColor
	}
}

// PacketDetails returns the decoded field lines of m, without the header
// line that every packet's String starts with.
func PacketDetails(m protocol.Message) []string {
	return TextDetails(m.String())
}

// TextDetails drops the header line of a rendered packet and trims the rest
func TextDetails(text string) []string {
	lines := strings.Split(text, "\n")
	details := make([]string, 0, len(lines))
	for _, line := range lines[1:] {
		if line = strings.TrimSpace(line); line != "" {
			details = append(details, line)
		}
	}
	return details
}

// PacketLine is everything shown for one packet
type PacketLine struct {
	Seq        uint64
	Kind       string
	Type       string
	Source     string
	ChecksumOK bool
	Frame      string // shown only when requested
	Details    []string
}

// Render formats l as a summary line, optionally the frame, and the details
func (l PacketLine) Render(showFrame bool) string {
	check := lipgloss.NewStyle().Foreground(SuccessColor).Render(SuccessMarker)
	if !l.ChecksumOK {
		check = lipgloss.NewStyle().Foreground(ErrorColor).Render(FailureMarker)
	}

	summary := strings.Join([]string{
		PacketSeqStyle.Render(fmt.Sprintf("#%d", l.Seq)),
		lipgloss.NewStyle().Foreground(KindColor(l.Kind, l.Type)).Bold(true).Render(l.Kind),
		HeaderParamValueStyle.Render(l.Type),
		PacketHexStyle.Render(l.Source),
		check,
	}, " ")

	lines := []string{summary}
	if showFrame && l.Frame != "" {
		lines = append(lines, PacketDetailStyle.Inherit(PacketHexStyle).Render(l.Frame))
	}
	for _, d := range l.Details {
		lines = append(lines, PacketDetailStyle.Render(d))
	}
	return strings.Join(lines, "\n")
}

// RenderPacket formats m as a summary line, optionally the frame hex, and
// the decoded fields
func RenderPacket(m protocol.Message, showHex bool) string {
	base := m.Base()
	return PacketLine{
		Seq:        base.Sequence(),
		Kind:       m.Kind().String(),
		Type:       base.PacketType().String(),
		Source:     base.SourceBridge().String(),
		ChecksumOK: base.ChecksumValid(),
		Frame:      base.Frame().String(),
		Details:    PacketDetails(m),
	}.Render(showHex)
}

// PacketPrinter writes rendered packets to a stream. It satisfies the
// monitor's Sink interface.
type PacketPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	showHex bool
	count   int
}

// NewPacketPrinter prints to w; showHex adds the raw frame under each summary
func NewPacketPrinter(w io.Writer, showHex bool) *PacketPrinter {
	return &PacketPrinter{w: w, showHex: showHex}
}

// Publish renders and prints m
func (p *PacketPrinter) Publish(m protocol.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.w, RenderPacket(m, p.showHex))
	p.count++
}

// Count returns how many packets have been printed
func (p *PacketPrinter) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}
