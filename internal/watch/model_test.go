package watch

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/itpctl/internal/discovery"
	"github.com/muurk/itpctl/internal/server"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// update applies msg and returns the concrete model
func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, want Model", next)
	}
	return model, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func testEvent(seq uint64, kind string, ok bool) server.Event {
	return server.Event{
		Seq:        seq,
		Kind:       kind,
		Type:       "GetResponse",
		Source:     "heatpump",
		ChecksumOK: ok,
		Hex:        "fc6201301002",
		Text:       kind + ": [FC.62.01.30.10.02 (6)] CS:Ok Seq:1\n Power: ON Mode: 0x03",
	}
}

// watching returns a model that is already streaming
func watching(t *testing.T) Model {
	t.Helper()
	m := NewModel(Options{URL: "ws://tap.local:8765/ws"})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, cmd := update(t, m, connectedMsg{})
	if cmd == nil {
		t.Fatal("connectedMsg should start reading events")
	}
	return m
}

func TestNewModelStartState(t *testing.T) {
	if m := NewModel(Options{}); m.state != stateScanning {
		t.Errorf("state without URL = %v, want scanning", m.state)
	}

	m := NewModel(Options{URL: "ws://tap.local:8765/ws"})
	if m.state != stateConnecting {
		t.Errorf("state with URL = %v, want connecting", m.state)
	}
	if !strings.Contains(m.View(), "Connecting to ws://tap.local:8765/ws") {
		t.Errorf("View() = %q", m.View())
	}
	if m.Init() == nil {
		t.Error("Init() should return the connect command")
	}
}

func TestModelPickTap(t *testing.T) {
	m := NewModel(Options{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	svc := &discovery.Service{
		Instance: "itpctl-loft",
		Hostname: "pi.local.",
		IP:       "192.168.1.20",
		Port:     8765,
		Metadata: map[string]string{"path": "/ws", "tls": "0"},
	}
	m, _ = update(t, m, scanDoneMsg{services: []*discovery.Service{svc}})
	if m.state != statePicking {
		t.Fatalf("state = %v, want picking", m.state)
	}
	if !strings.Contains(m.View(), "itpctl-loft") {
		t.Errorf("View() = %q, want the tap listed", m.View())
	}

	m, cmd := update(t, m, keyMsg("enter"))
	if m.state != stateConnecting {
		t.Errorf("state after enter = %v, want connecting", m.state)
	}
	if m.url != "ws://192.168.1.20:8765/ws" {
		t.Errorf("url = %q", m.url)
	}
	if cmd == nil {
		t.Error("enter should start connecting")
	}
}

func TestModelNoTaps(t *testing.T) {
	m := NewModel(Options{})
	m, _ = update(t, m, scanDoneMsg{err: errors.New("no multicast interface")})

	view := m.View()
	if !strings.Contains(view, "No taps found") || !strings.Contains(view, "no multicast interface") {
		t.Errorf("View() = %q", view)
	}

	m, cmd := update(t, m, keyMsg("r"))
	if m.state != stateScanning || cmd == nil {
		t.Errorf("rescan: state = %v, cmd nil = %v", m.state, cmd == nil)
	}

	m, _ = update(t, m, scanDoneMsg{})
	if _, cmd := update(t, m, keyMsg("q")); !isQuit(cmd) {
		t.Error("q should quit from the picker")
	}
}

func TestModelFeed(t *testing.T) {
	m := watching(t)

	m, cmd := update(t, m, eventMsg{event: testEvent(1, "SettingsGetResponse", true)})
	if cmd == nil {
		t.Error("eventMsg should re-arm the reader")
	}
	m, _ = update(t, m, eventMsg{event: testEvent(2, "CurrentTempGetResponse", false)})

	if m.Total() != 2 || m.bad != 1 {
		t.Errorf("total/bad = %d/%d, want 2/1", m.Total(), m.bad)
	}

	view := m.View()
	for _, want := range []string{"ITP WATCH", "packets: 2", "bad checksum: 1", "SettingsGetResponse", "Power: ON Mode: 0x03"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if strings.Contains(view, "fc6201301002") {
		t.Error("hex shown before toggling")
	}

	m, _ = update(t, m, keyMsg("x"))
	if !strings.Contains(m.View(), "fc6201301002") {
		t.Error("hex not shown after x")
	}

	m, _ = update(t, m, keyMsg("c"))
	if strings.Contains(m.View(), "SettingsGetResponse") {
		t.Error("scrollback not cleared by c")
	}
	if m.Total() != 2 {
		t.Errorf("Total() = %d after clear, want 2", m.Total())
	}
}

func TestModelPause(t *testing.T) {
	m := watching(t)

	m, _ = update(t, m, keyMsg("p"))
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("View() should show PAUSED")
	}

	m, _ = update(t, m, eventMsg{event: testEvent(1, "RunStateGetResponse", true)})
	if strings.Contains(m.View(), "RunStateGetResponse") {
		t.Error("event shown while paused")
	}

	m, _ = update(t, m, keyMsg("p"))
	if !strings.Contains(m.View(), "RunStateGetResponse") {
		t.Error("event not shown after resume")
	}
}

func TestModelScrollbackCap(t *testing.T) {
	m := watching(t)
	for i := 0; i < MaxEvents+5; i++ {
		m, _ = update(t, m, eventMsg{event: testEvent(uint64(i), "StatusGetResponse", true)})
	}
	if len(m.events) != MaxEvents {
		t.Errorf("len(events) = %d, want %d", len(m.events), MaxEvents)
	}
	if m.events[0].Seq != 5 {
		t.Errorf("oldest seq = %d, want 5", m.events[0].Seq)
	}
}

func TestModelStreamEnd(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    string
		wantErr bool
	}{
		{"closed by tap", io.EOF, "tap closed", false},
		{"read failure", errors.New("connection reset"), "connection reset", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := watching(t)
			m, _ = update(t, m, streamEndMsg{err: tt.err})

			if m.state != stateEnded {
				t.Errorf("state = %v, want ended", m.state)
			}
			if (m.Err() != nil) != tt.wantErr {
				t.Errorf("Err() = %v, wantErr %v", m.Err(), tt.wantErr)
			}
			if !strings.Contains(m.View(), tt.want) {
				t.Errorf("View() missing %q", tt.want)
			}
			if _, cmd := update(t, m, keyMsg("q")); !isQuit(cmd) {
				t.Error("q should quit after the stream ends")
			}
		})
	}
}

func TestModelConnectFailed(t *testing.T) {
	m := NewModel(Options{URL: "ws://tap.local:8765/ws"})
	m, _ = update(t, m, connectFailedMsg{err: errors.New("connection refused")})

	if m.state != stateEnded || m.Err() == nil {
		t.Errorf("state/err = %v/%v", m.state, m.Err())
	}
	if !strings.Contains(m.View(), "connection refused") {
		t.Errorf("View() = %q", m.View())
	}
}

func TestRenderEvent(t *testing.T) {
	ev := testEvent(42, "SettingsGetResponse", true)

	out := RenderEvent(ev, false)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("RenderEvent() = %q, want summary and one detail line", out)
	}
	if !strings.Contains(lines[0], "#42") || !strings.Contains(lines[0], "heatpump") {
		t.Errorf("summary = %q", lines[0])
	}
	if !strings.Contains(RenderEvent(ev, true), ev.Hex) {
		t.Error("RenderEvent(showHex) missing hex")
	}
}
