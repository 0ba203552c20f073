// Package frame implements the raw frame container of the heat-pump serial bus.
//
// # Frame Format
//
// Every frame on the bus has this structure:
//   - Sync byte: 0xFC
//   - Packet type: 1 byte (see PacketType)
//   - Two fixed header bytes: 0x01 0x30
//   - Payload length: 1 byte
//   - Payload: Variable length
//   - Checksum: 1 byte, (0xFC - sum of all preceding bytes) & 0xFF
//
// A Frame owns its buffer. Payload offsets used by the packet layer are
// relative to the first payload byte; Frame performs no bounds checking beyond
// Go's own slice checks.
//
// # Checksums
//
// Parse never rejects a frame for a bad checksum. The result is reported by
// ChecksumValid so that the caller decides whether to drop the frame. Every
// payload setter recomputes the checksum.
//
// # Reading Streams
//
// Reader resynchronises on the sync byte and returns whole frames from an
// io.Reader such as a serial port or a capture file.
package frame
