// Package protocol implements the packet layer of the ITP serial protocol
// spoken between Mitsubishi heat pumps, their wall thermostats and bridges
// sitting between the two.
//
// Every packet wraps exactly one frame.Frame. Decode picks the concrete kind
// from the frame's type code and, for most types, payload byte 0. Each kind
// exposes typed accessors over fixed payload offsets and a String method
// whose layout matches existing bridge logs.
//
// # Packet Types
//
//   - Connect (0x5A/0x7A): session handshake
//   - Identify (0x5B/0x7B): capabilities (0xC9) and the CD request
//   - Get (0x42/0x62): settings, temperatures, status, run state, errors,
//     installer functions, and the thermostat's state download / AB queries
//   - Set (0x41/0x61): settings and remote temperature updates, filter
//     reset, and everything the thermostat pushes (hello, sensor status,
//     state upload)
//
// # Flags
//
// Settings set requests, thermostat state uploads, remote temperature
// updates and run-state resets carry a flags byte at payload offset 1 (and
// for settings a second one at offset 2) naming the fields that are present.
// Setters write their field and OR in its bit; renderers only show fields
// whose bit is set. The Flagged and Flagged2 interfaces expose these bytes.
//
// # Usage Example - Decoding
//
//	f, err := frame.Parse(raw, frame.SourceHeatpump, frame.AssociationBridge)
//	if err != nil {
//	    return err
//	}
//
//	switch pkt := protocol.Decode(f).(type) {
//	case *protocol.SettingsGetResponsePacket:
//	    fmt.Printf("target %.1f°C\n", pkt.TargetTemp())
//	case *protocol.CurrentTempGetResponsePacket:
//	    fmt.Printf("room %.1f°C\n", pkt.CurrentTemp())
//	}
//
// # Usage Example - Building
//
//	req := protocol.NewSettingsSetRequestPacket().
//	    SetPower(true).
//	    SetMode(protocol.ModeHeat).
//	    SetTargetTemperature(21.5)
//	port.Write(req.Bytes())
//
// Requests that never change (connect, identify, and the common get
// requests) are shared instances built once on first use; see
// ConnectRequest and GetSettingsRequest.
//
// # Processors
//
// Dispatch routes a decoded Message to the one matching method of a
// Processor; get requests for thermostat state (A9, AB) go to their Handle
// method. Embed BaseProcessor to ignore kinds you do not care about.
//
// # Sequence Numbers
//
// Each packet gets a sequence number from Sequences() when it is built.
// Numbers are local bookkeeping for logs and never appear on the wire.
package protocol
