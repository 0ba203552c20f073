package frame

import (
	"bufio"
	"fmt"
	"io"

	"github.com/muurk/itpctl/internal/logging"
	"go.uber.org/zap"
)

// Reader extracts frames from a byte stream, skipping noise between them.
type Reader struct {
	r           *bufio.Reader
	bridge      SourceBridge
	association ControllerAssociation
}

// NewReader wraps r. Every frame returned is tagged with bridge and association.
func NewReader(r io.Reader, bridge SourceBridge, association ControllerAssociation) *Reader {
	return &Reader{
		r:           bufio.NewReader(r),
		bridge:      bridge,
		association: association,
	}
}

// ReadFrame blocks until a structurally valid frame has been read. Frames
// with a bad checksum are returned; callers check ChecksumValid. io.EOF is
// returned unwrapped when the stream ends between frames.
func (fr *Reader) ReadFrame() (*Frame, error) {
	var skipped []byte

	for {
		b, err := fr.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b != SyncByte {
			skipped = append(skipped, b)
			continue
		}

		rest, err := fr.r.Peek(HeaderSize - 1)
		if err != nil {
			return nil, fmt.Errorf("failed to read frame header: %w", err)
		}
		if rest[1] != headerConstant[0] || rest[2] != headerConstant[1] {
			// false sync, rescan from the byte after it
			skipped = append(skipped, b)
			continue
		}

		header := make([]byte, HeaderSize)
		header[0] = b
		copy(header[1:], rest)
		if _, err := fr.r.Discard(HeaderSize - 1); err != nil {
			return nil, fmt.Errorf("failed to read frame header: %w", err)
		}

		raw := make([]byte, HeaderSize+int(header[headerIndexLength])+1)
		copy(raw, header)
		if _, err := io.ReadFull(fr.r, raw[HeaderSize:]); err != nil {
			return nil, fmt.Errorf("failed to read frame body: %w", err)
		}

		if len(skipped) > 0 {
			logging.LogRawBytes("Skipped bytes before frame", skipped)
		}
		logging.LogFrame("rx", raw)

		f, err := Parse(raw, fr.bridge, fr.association)
		if err != nil {
			return nil, err
		}
		if !f.ChecksumValid() {
			logging.Warn("Frame checksum mismatch",
				zap.String("frame", f.String()),
				zap.Stringer("bridge", fr.bridge),
			)
		}
		return f, nil
	}
}
