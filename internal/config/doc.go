// Package config manages the itpctl YAML configuration file.
//
// The file records serial line settings, named links (which port talks to
// the heat pump and which to the thermostat), the WebSocket tap and the
// default log level. Command-line flags always override file values.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/itpctl/config.yaml or $HOME/.config/itpctl/config.yaml
//   - macOS: $HOME/.config/itpctl/config.yaml
//   - Windows: %LOCALAPPDATA%\itpctl\config.yaml
//
// ITPCTL_CONFIG points at a different file.
//
// # Example
//
//	version: 1
//	serial:
//	  baud_rate: 2400
//	  data_bits: 8
//	  parity: even
//	  stop_bits: 1
//	links:
//	  heatpump:
//	    port: /dev/ttyUSB0
//	    source: heatpump
//	tap:
//	  port: 8765
//	  advertise: true
//	  name: itpctl-loft
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	link := cfg.GetLink("heatpump")
//	bridge, _ := link.SourceBridge()
//
// # Thread Safety
//
// The global config uses sync.Once for safe initialization across goroutines.
// Writes go through a temporary file and a rename under a mutex.
package config
