package server

import (
	"encoding/hex"
	"time"

	"github.com/muurk/itpctl/internal/protocol"
)

// Event is the JSON document sent to tap clients for every packet
type Event struct {
	Time       time.Time `json:"time"`
	Seq        uint64    `json:"seq"`
	Kind       string    `json:"kind"`
	Type       string    `json:"type"`
	Source     string    `json:"source"`
	ChecksumOK bool      `json:"checksum_ok"`
	Hex        string    `json:"hex"`
	Text       string    `json:"text"`
}

// NewEvent describes m as an Event stamped with the current time
func NewEvent(m protocol.Message) Event {
	base := m.Base()
	return Event{
		Time:       time.Now().UTC(),
		Seq:        base.Sequence(),
		Kind:       m.Kind().String(),
		Type:       base.PacketType().String(),
		Source:     base.SourceBridge().String(),
		ChecksumOK: base.ChecksumValid(),
		Hex:        hex.EncodeToString(base.Bytes()),
		Text:       m.String(),
	}
}
