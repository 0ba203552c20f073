// Package monitor consumes a raw ITP byte stream and turns it into decoded
// packets.
//
// A Sniffer reads frames from any io.Reader (a serial port opened at 2400
// baud 8E1, a capture file, a pipe), decodes each one with protocol.Decode
// and hands the result to every registered protocol.Processor and to an
// optional Sink.
//
// Frames that fail their checksum are logged and dropped; they never reach
// processors or the sink. Structurally broken frames are logged and skipped
// and the reader resynchronises on the next sync byte.
//
// # Usage Example
//
//	port, _ := serial.Open("/dev/ttyUSB0", &serial.Mode{BaudRate: 2400, DataBits: 8, Parity: serial.EvenParity})
//	s := &monitor.Sniffer{
//	    Source:      port,
//	    Bridge:      frame.SourceHeatpump,
//	    Association: frame.AssociationBridge,
//	    Processors:  []protocol.Processor{monitor.NewLoggingProcessor()},
//	    Sink:        tap,
//	}
//	err := s.Run(ctx)
//
// LoggingProcessor writes one structured zap entry per packet through
// internal/logging, with fields named after the packet's accessors.
package monitor
