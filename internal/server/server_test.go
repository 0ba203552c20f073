package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/itpctl/internal/protocol"
)

func newTestTap(t *testing.T, config *Config) (*Tap, *httptest.Server) {
	t.Helper()
	tap, err := New(config)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	srv := httptest.NewServer(tap.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = tap.Shutdown(ctx)
		srv.Close()
	})
	return tap, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, tap *Tap, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for tap.ActiveClients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ActiveClients() = %d, want %d", tap.ActiveClients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return ev
}

func TestNewDefaults(t *testing.T) {
	config := &Config{}
	if _, err := New(config); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if config.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", config.Port, DefaultPort)
	}
}

func TestNewTLSRequiresBothFiles(t *testing.T) {
	if _, err := New(&Config{CertPath: "cert.pem"}); err == nil {
		t.Error("New() with only a certificate succeeded, want error")
	}
}

func TestPublishBroadcast(t *testing.T) {
	tap, srv := newTestTap(t, &Config{})

	first := dial(t, srv)
	second := dial(t, srv)
	waitForClients(t, tap, 2)

	tap.Publish(protocol.GetSettingsRequest())

	for i, conn := range []*websocket.Conn{first, second} {
		ev := readEvent(t, conn)
		if ev.Kind != "GetRequest" {
			t.Errorf("client %d: Kind = %q, want GetRequest", i, ev.Kind)
		}
		if ev.Hex != "fc42013001028a" {
			t.Errorf("client %d: Hex = %q, want fc42013001028a", i, ev.Hex)
		}
		if !ev.ChecksumOK {
			t.Errorf("client %d: ChecksumOK = false, want true", i)
		}
		if ev.Seq != protocol.GetSettingsRequest().Sequence() {
			t.Errorf("client %d: Seq = %d, want %d", i, ev.Seq, protocol.GetSettingsRequest().Sequence())
		}
		if !strings.HasPrefix(ev.Text, "Get Request: ") {
			t.Errorf("client %d: Text = %q", i, ev.Text)
		}
	}

	if got := tap.Published(); got != 1 {
		t.Errorf("Published() = %d, want 1", got)
	}
}

func TestClientDisconnect(t *testing.T) {
	tap, srv := newTestTap(t, &Config{})

	conn := dial(t, srv)
	waitForClients(t, tap, 1)

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	waitForClients(t, tap, 0)
	tap.Publish(protocol.ConnectRequest())
}

func TestShutdownClosesClients(t *testing.T) {
	tap, srv := newTestTap(t, &Config{})

	conn := dial(t, srv)
	waitForClients(t, tap, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := tap.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage() error = %v, want going-away close", err)
	}
	if n := tap.ActiveClients(); n != 0 {
		t.Errorf("ActiveClients() = %d, want 0", n)
	}
}

func TestStatusAndHealth(t *testing.T) {
	tap, srv := newTestTap(t, &Config{})
	tap.Publish(protocol.ConnectRequest())

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Published != 1 || st.Clients != 0 {
		t.Errorf("status = %+v, want 1 published and 0 clients", st)
	}

	health, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	_ = health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d, want 200", health.StatusCode)
	}

	post, err := http.Post(srv.URL+"/status", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST /status error = %v", err)
	}
	_ = post.Body.Close()
	if post.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /status = %d, want 405", post.StatusCode)
	}
}

func TestStartAndCancel(t *testing.T) {
	tap, err := New(&Config{Host: "127.0.0.1"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tap.config.Port = 0 // any free port
	if err := tap.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tap.Start(ctx) }()

	url := "http://" + tap.Addr().String() + "/healthz"
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("tap never became reachable: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}

func TestCapture(t *testing.T) {
	dir := t.TempDir()
	tap, _ := newTestTap(t, &Config{CaptureDir: dir})

	tap.Publish(protocol.ConnectRequest())
	tap.Publish(protocol.GetStatusRequest())
	if got := tap.capture.Count(); got != 2 {
		t.Errorf("capture Count() = %d, want 2", got)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "capture-*.jsonl"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("capture files = %v (err %v), want exactly one", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("capture has %d lines, want 2", len(lines))
	}
	var ev Event
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if ev.Kind != "ConnectRequest" || ev.Hex != "fc5a013002ca01a8" {
		t.Errorf("first event = %+v", ev)
	}
}

func TestReadCapture(t *testing.T) {
	t.Run("events", func(t *testing.T) {
		input := `{"seq":1,"kind":"ConnectRequest","source":"heatpump","hex":"fc5a013002ca01a8"}

{"seq":2,"kind":"GetRequest","source":"thermostat","hex":"fc42013001028a"}
`
		var got []Event
		err := ReadCapture(strings.NewReader(input), func(line int, ev Event) error {
			got = append(got, ev)
			return nil
		})
		if err != nil {
			t.Fatalf("ReadCapture() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d events, want 2", len(got))
		}
		if got[1].Source != "thermostat" || got[1].Hex != "fc42013001028a" {
			t.Errorf("second event = %+v", got[1])
		}
	})

	t.Run("bad record", func(t *testing.T) {
		input := `{"seq":1,"hex":"fc"}
not json
`
		err := ReadCapture(strings.NewReader(input), func(int, Event) error { return nil })
		if err == nil || !strings.Contains(err.Error(), "line 2") {
			t.Errorf("ReadCapture() error = %v, want a line 2 error", err)
		}
	})

	t.Run("callback error", func(t *testing.T) {
		stop := errors.New("stop")
		calls := 0
		err := ReadCapture(strings.NewReader("{}\n{}\n"), func(int, Event) error {
			calls++
			return stop
		})
		if !errors.Is(err, stop) || calls != 1 {
			t.Errorf("ReadCapture() error = %v after %d calls, want stop after 1", err, calls)
		}
	})
}
