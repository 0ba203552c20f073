package config

import (
	"fmt"
	"time"

	"github.com/muurk/itpctl/internal/frame"
)

// CurrentVersion is the config file schema version
const CurrentVersion = 1

// Config represents the entire user configuration file
type Config struct {
	Version int              `yaml:"version"`
	Serial  *SerialConfig    `yaml:"serial,omitempty"`
	Links   map[string]*Link `yaml:"links,omitempty"` // Keyed by link name
	Tap     *TapConfig       `yaml:"tap,omitempty"`
	Logging *LoggingConfig   `yaml:"logging,omitempty"`
}

// SerialConfig holds the UART line settings shared by every link. The ITP
// bus runs at 2400 baud, 8 data bits, even parity, 1 stop bit.
type SerialConfig struct {
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"` // none, even or odd
	StopBits int    `yaml:"stop_bits"`
}

// Link is one serial connection to the bus
type Link struct {
	Port        string    `yaml:"port"`                  // e.g. /dev/ttyUSB0
	Source      string    `yaml:"source"`                // heatpump or thermostat
	Association string    `yaml:"association,omitempty"` // bridge (default) or thermostat
	Nickname    string    `yaml:"nickname,omitempty"`
	LastSeen    time.Time `yaml:"last_seen,omitempty"` // Last time a valid frame was read
}

// TapConfig configures the WebSocket tap started by "sniff --listen"
type TapConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port"`
	Advertise  bool   `yaml:"advertise"`           // Announce over mDNS
	Name       string `yaml:"name,omitempty"`      // mDNS instance name
	CertPath   string `yaml:"cert_path,omitempty"` // Serve wss:// with this certificate
	KeyPath    string `yaml:"key_path,omitempty"`
	CaptureDir string `yaml:"capture_dir,omitempty"`
}

// LoggingConfig sets the default log level; ITP_LOG_LEVEL and --log-level
// take precedence.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
}

// NewConfig creates a Config with default values
func NewConfig() *Config {
	c := &Config{Version: CurrentVersion}
	c.applyDefaults()
	return c
}

// applyDefaults fills sections missing from a loaded file
func (c *Config) applyDefaults() {
	if c.Serial == nil {
		c.Serial = &SerialConfig{}
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = 2400
	}
	if c.Serial.DataBits == 0 {
		c.Serial.DataBits = 8
	}
	if c.Serial.Parity == "" {
		c.Serial.Parity = "even"
	}
	if c.Serial.StopBits == 0 {
		c.Serial.StopBits = 1
	}
	if c.Links == nil {
		c.Links = make(map[string]*Link)
	}
	if c.Tap == nil {
		c.Tap = &TapConfig{}
	}
	if c.Tap.Port == 0 {
		c.Tap.Port = 8765
	}
	if c.Logging == nil {
		c.Logging = &LoggingConfig{}
	}
}

// Validate reports the first problem found in c
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}
	switch c.Serial.Parity {
	case "none", "even", "odd":
	default:
		return fmt.Errorf("serial parity %q must be none, even or odd", c.Serial.Parity)
	}
	if c.Serial.StopBits != 1 && c.Serial.StopBits != 2 {
		return fmt.Errorf("serial stop bits must be 1 or 2, got %d", c.Serial.StopBits)
	}
	if c.Tap.Port < 0 || c.Tap.Port > 65535 {
		return fmt.Errorf("tap port %d out of range", c.Tap.Port)
	}
	for name, link := range c.Links {
		if link.Port == "" {
			return fmt.Errorf("link %q has no port", name)
		}
		if _, err := link.SourceBridge(); err != nil {
			return fmt.Errorf("link %q: %w", name, err)
		}
		if _, err := link.ControllerAssociation(); err != nil {
			return fmt.Errorf("link %q: %w", name, err)
		}
	}
	return nil
}

// GetLink retrieves a link by name, or nil if it is not configured
func (c *Config) GetLink(name string) *Link {
	return c.Links[name]
}

// EnsureLink returns the named link, creating an empty one if needed
func (c *Config) EnsureLink(name string) *Link {
	if c.Links == nil {
		c.Links = make(map[string]*Link)
	}
	if link, exists := c.Links[name]; exists {
		return link
	}
	link := &Link{}
	c.Links[name] = link
	return link
}

// UpdateLinkLastSeen records that the named link produced a valid frame
func (c *Config) UpdateLinkLastSeen(name string) {
	c.EnsureLink(name).LastSeen = time.Now()
}

// SourceBridge parses the link's source side
func (l *Link) SourceBridge() (frame.SourceBridge, error) {
	return ParseSource(l.Source)
}

// ControllerAssociation parses the link's association
func (l *Link) ControllerAssociation() (frame.ControllerAssociation, error) {
	return ParseAssociation(l.Association)
}

// ParseSource maps "heatpump", "thermostat" or "" to a frame source tag
func ParseSource(s string) (frame.SourceBridge, error) {
	switch s {
	case "", "none":
		return frame.SourceNone, nil
	case "heatpump", "hp":
		return frame.SourceHeatpump, nil
	case "thermostat", "ts":
		return frame.SourceThermostat, nil
	default:
		return frame.SourceNone, fmt.Errorf("unknown source %q (want heatpump or thermostat)", s)
	}
}

// ParseAssociation maps "bridge", "thermostat" or "" to an association tag
func ParseAssociation(s string) (frame.ControllerAssociation, error) {
	switch s {
	case "", "bridge":
		return frame.AssociationBridge, nil
	case "thermostat":
		return frame.AssociationThermostat, nil
	default:
		return frame.AssociationBridge, fmt.Errorf("unknown association %q (want bridge or thermostat)", s)
	}
}
