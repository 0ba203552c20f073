package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Service is a tap found on the local network
type Service struct {
	// Instance is the advertised instance name (e.g., "itpctl-livingroom")
	Instance string

	// Hostname is the mDNS hostname (e.g., "pi.local.")
	Hostname string

	// IP is the address to connect to, IPv4 when one was advertised
	IP string

	// Port is the tap's HTTP port
	Port int

	// Metadata holds the TXT records. Taps publish "path", "tls" and
	// "version".
	Metadata map[string]string

	// DiscoveredAt is when the service was seen
	DiscoveredAt time.Time
}

func (s *Service) String() string {
	return fmt.Sprintf("ITP tap %q (%s) at %s", s.Instance, s.Hostname, net.JoinHostPort(s.IP, strconv.Itoa(s.Port)))
}

// URL returns the WebSocket URL observers should dial
func (s *Service) URL() string {
	scheme := "ws"
	if s.GetMetadata("tls") == "1" {
		scheme = "wss"
	}
	path := s.GetMetadata("path")
	if path == "" {
		path = DefaultPath
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(s.IP, strconv.Itoa(s.Port)), path)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Service) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
