package discovery

import (
	"fmt"
	"time"
)

// Service represents a discovered otpgate verification service on the
// network.
type Service struct {
	// Instance is the mDNS instance name (e.g., "otpgate-study").
	Instance string

	// Hostname is the mDNS hostname (e.g., "study.local.").
	Hostname string

	// IP is the IPv4 address.
	IP string

	// Port is the service port.
	Port int

	// Metadata contains additional mDNS TXT record data.
	Metadata map[string]string

	// DiscoveredAt is when the service was discovered.
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the service
func (s *Service) String() string {
	return fmt.Sprintf("otpgate service %q at %s:%d", s.Instance, s.IP, s.Port)
}

// WebSocketURL returns the verification WebSocket endpoint for the service.
func (s *Service) WebSocketURL() string {
	return fmt.Sprintf("ws://%s:%d/verify/ws", s.IP, s.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Service) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
