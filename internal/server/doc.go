// Package server implements the packet tap: a WebSocket server that streams
// every decoded ITP packet to connected observers.
//
// A sniffer publishes decoded packets to the Tap; each one is rendered as a
// JSON Event and queued to every client. Observers are read-only. Anything
// they send is discarded, and a client whose queue fills up is dropped
// rather than allowed to stall the serial reader.
//
// # Endpoints
//
//	/ws       WebSocket upgrade; one text message per packet
//	/status   JSON counters (clients, packets published, uptime)
//	/healthz  plain "ok"
//
// # Event Format
//
//	{
//	  "time": "2024-03-15T10:30:45.123Z",
//	  "seq": 42,
//	  "kind": "SettingsGetResponse",
//	  "type": "GetResponse",
//	  "source": "heatpump",
//	  "checksum_ok": true,
//	  "hex": "fc6201301002...",
//	  "text": "Settings Response: [...]"
//	}
//
// # TLS
//
// When Config carries both CertPath and KeyPath the tap serves wss:// with
// TLS 1.2 or later. Otherwise it serves plain ws://.
//
// # Captures
//
// With CaptureDir set, every published event is also appended to
// capture-<timestamp>.jsonl in that directory.
//
// # Usage Example
//
//	tap, err := server.New(&server.Config{Port: 8765})
//	if err != nil {
//	    return err
//	}
//	go sniffer.Run(ctx) // with Sink: tap
//	return tap.Start(ctx)
//
// # Thread Safety
//
// Publish, ActiveClients and Status are safe to call from any goroutine
// while the tap is serving.
package server
