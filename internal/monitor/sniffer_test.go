package monitor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/muurk/itpctl/internal/frame"
	"github.com/muurk/itpctl/internal/protocol"
)

type kindRecorder struct {
	protocol.BaseProcessor
	kinds []protocol.Kind
}

func (r *kindRecorder) ProcessPacket(p *protocol.Packet) {
	r.kinds = append(r.kinds, p.Kind())
}

func (r *kindRecorder) ProcessGetRequest(p *protocol.GetRequestPacket) {
	r.kinds = append(r.kinds, p.Kind())
}

func (r *kindRecorder) ProcessThermostatHello(p *protocol.ThermostatHelloPacket) {
	r.kinds = append(r.kinds, p.Kind())
}

func corrupt(raw []byte) []byte {
	out := append([]byte(nil), raw...)
	out[len(out)-1] ^= 0xFF
	return out
}

func TestSnifferRun(t *testing.T) {
	var stream bytes.Buffer
	stream.Write([]byte{0x00, 0x13, 0x37})
	stream.Write(protocol.GetSettingsRequest().Bytes())
	stream.Write(corrupt(protocol.NewSetResponsePacket().Bytes()))
	stream.Write(protocol.NewThermostatHelloPacket().SetModel("MHK2").Bytes())

	rec := &kindRecorder{}
	var published []protocol.Message
	s := &Sniffer{
		Source:      &stream,
		Bridge:      frame.SourceThermostat,
		Association: frame.AssociationThermostat,
		Processors:  []protocol.Processor{rec, NewLoggingProcessor()},
		Sink:        SinkFunc(func(m protocol.Message) { published = append(published, m) }),
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []protocol.Kind{protocol.KindGetRequest, protocol.KindThermostatHello}
	if len(rec.kinds) != len(want) {
		t.Fatalf("processed kinds = %v, want %v", rec.kinds, want)
	}
	for i := range want {
		if rec.kinds[i] != want[i] {
			t.Errorf("kind[%d] = %v, want %v", i, rec.kinds[i], want[i])
		}
	}

	if len(published) != 2 {
		t.Fatalf("published %d messages, want 2", len(published))
	}
	hello, ok := published[1].(*protocol.ThermostatHelloPacket)
	if !ok {
		t.Fatalf("published[1] = %T, want *ThermostatHelloPacket", published[1])
	}
	if hello.Model() != "MHK2" {
		t.Errorf("Model() = %q, want MHK2", hello.Model())
	}
	if hello.SourceBridge() != frame.SourceThermostat {
		t.Errorf("SourceBridge() = %v, want thermostat", hello.SourceBridge())
	}

	stats := s.Stats()
	if stats.Frames != 2 || stats.Dropped != 1 {
		t.Errorf("Stats() = %+v, want 2 frames and 1 dropped", stats)
	}
}

func TestSnifferHandle(t *testing.T) {
	s := &Sniffer{}

	good, err := frame.Parse(protocol.GetRunStateRequest().Bytes(), frame.SourceHeatpump, frame.AssociationBridge)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	msg := s.Handle(good)
	if msg == nil || msg.Kind() != protocol.KindGetRequest {
		t.Fatalf("Handle(good) = %v, want a get request", msg)
	}

	bad, err := frame.Parse(corrupt(good.Bytes()), frame.SourceHeatpump, frame.AssociationBridge)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if msg := s.Handle(bad); msg != nil {
		t.Errorf("Handle(bad checksum) = %v, want nil", msg)
	}
}

func TestSnifferTruncatedStream(t *testing.T) {
	raw := protocol.ConnectRequest().Bytes()
	s := &Sniffer{Source: bytes.NewReader(raw[:len(raw)-2])}

	if err := s.Run(context.Background()); err != nil {
		t.Errorf("Run() on truncated stream error = %v, want nil", err)
	}
	if got := s.Stats().Frames; got != 0 {
		t.Errorf("Frames = %d, want 0", got)
	}
}

func TestSnifferNoSource(t *testing.T) {
	s := &Sniffer{}
	if err := s.Run(context.Background()); err == nil {
		t.Error("Run() without source succeeded, want error")
	}
}

func TestSnifferCancelled(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := &Sniffer{Source: bytes.NewReader(protocol.ConnectRequest().Bytes())}
		if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	})

	t.Run("while blocked", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer func() { _ = pw.Close() }()

		ctx, cancel := context.WithCancel(context.Background())
		s := &Sniffer{Source: pr}

		done := make(chan error, 1)
		go func() { done <- s.Run(ctx) }()

		if _, err := pw.Write(protocol.ConnectRequest().Bytes()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Run() error = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Run() did not return after cancel")
		}
	})
}

func TestMultiSink(t *testing.T) {
	var first, second []protocol.Kind
	sink := MultiSink{
		SinkFunc(func(m protocol.Message) { first = append(first, m.Kind()) }),
		SinkFunc(func(m protocol.Message) { second = append(second, m.Kind()) }),
	}

	sink.Publish(protocol.ConnectRequest())

	if len(first) != 1 || len(second) != 1 || first[0] != protocol.KindConnectRequest {
		t.Errorf("sinks saw %v and %v, want one ConnectRequest each", first, second)
	}
}
