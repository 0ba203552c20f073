package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/muurk/itpctl/internal/frame"
	"github.com/muurk/itpctl/internal/logging"
	"github.com/muurk/itpctl/internal/protocol"
	"go.uber.org/zap"
)

// Sink receives every decoded packet after the processors have seen it
type Sink interface {
	Publish(protocol.Message)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(protocol.Message)

// Publish calls f(m)
func (f SinkFunc) Publish(m protocol.Message) { f(m) }

// MultiSink publishes to each of its sinks in order
type MultiSink []Sink

// Publish hands m to every sink
func (ms MultiSink) Publish(m protocol.Message) {
	for _, s := range ms {
		s.Publish(m)
	}
}

// Stats counts what a Sniffer has read so far
type Stats struct {
	Frames  uint64 // frames decoded and dispatched
	Dropped uint64 // frames discarded for a bad checksum
	Skipped uint64 // frames discarded as structurally invalid
}

// Sniffer reads frames from Source and dispatches them
type Sniffer struct {
	Source      io.Reader
	Bridge      frame.SourceBridge
	Association frame.ControllerAssociation
	Processors  []protocol.Processor
	Sink        Sink

	frames  atomic.Uint64
	dropped atomic.Uint64
	skipped atomic.Uint64
}

// Run reads until the source is exhausted or ctx is cancelled. A clean end
// of stream returns nil. If Source implements io.Closer it is closed when
// ctx is cancelled so that a blocked read returns.
func (s *Sniffer) Run(ctx context.Context) error {
	if s.Source == nil {
		return errors.New("sniffer has no source")
	}

	stop := context.AfterFunc(ctx, func() {
		if c, ok := s.Source.(io.Closer); ok {
			_ = c.Close()
		}
	})
	defer stop()

	logging.Info("Sniffer started",
		zap.Stringer("bridge", s.Bridge),
		zap.Stringer("association", s.Association),
		zap.Int("processors", len(s.Processors)),
	)

	reader := frame.NewReader(s.Source, s.Bridge, s.Association)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		f, err := reader.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				logging.Info("Sniffer reached end of stream",
					zap.Uint64("frames", s.frames.Load()),
					zap.Uint64("dropped", s.dropped.Load()),
				)
				return nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				logging.Warn("Stream ended inside a frame", zap.Error(err))
				return nil
			}
			if isFrameError(err) {
				s.skipped.Add(1)
				logging.Warn("Skipping invalid frame", zap.Error(err))
				continue
			}
			return fmt.Errorf("failed to read frame: %w", err)
		}

		s.Handle(f)
	}
}

// Handle decodes and dispatches a single frame. It returns the decoded
// packet, or nil when the frame was dropped for a bad checksum.
func (s *Sniffer) Handle(f *frame.Frame) protocol.Message {
	if !f.ChecksumValid() {
		s.dropped.Add(1)
		logging.Warn("Dropping frame with invalid checksum",
			zap.String("frame", f.String()),
			zap.Stringer("bridge", f.SourceBridge()),
		)
		return nil
	}

	s.frames.Add(1)
	msg := protocol.Decode(f)
	for _, p := range s.Processors {
		protocol.Dispatch(p, msg)
	}
	if s.Sink != nil {
		s.Sink.Publish(msg)
	}
	return msg
}

// Stats returns a snapshot of the counters
func (s *Sniffer) Stats() Stats {
	return Stats{
		Frames:  s.frames.Load(),
		Dropped: s.dropped.Load(),
		Skipped: s.skipped.Load(),
	}
}

func isFrameError(err error) bool {
	return errors.Is(err, frame.ErrShortFrame) ||
		errors.Is(err, frame.ErrBadSync) ||
		errors.Is(err, frame.ErrBadHeader) ||
		errors.Is(err, frame.ErrLengthMismatch)
}
