// Package logging provides structured logging for itpctl and the packet codec.
//
// This package wraps a zap logger with package-level convenience functions so
// that codec code deep in the call tree (temperature clamping, unexpected bit
// patterns) can report warnings without threading a logger through every
// accessor.
//
// # Log Levels
//
//   - Debug: raw frames, resync bytes, every decoded packet
//   - Info: tap clients, sniffer start/stop
//   - Warn: clamped temperatures, unknown bit patterns, bad checksums
//   - Error: I/O failures
//
// # Configuration
//
// Logging is silent unless a level is given explicitly or through the
// ITP_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Output goes to stderr so that commands printing frames on stdout stay pipeable.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
