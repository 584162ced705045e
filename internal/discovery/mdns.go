package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type announced by otpgate
	// verification services.
	ServiceType = "_otpgate._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultBrowseTimeout is the default timeout for service discovery
	DefaultBrowseTimeout = 5 * time.Second
)

// Browser handles mDNS service discovery
type Browser struct {
	// Timeout is the maximum time to wait for service discovery
	Timeout time.Duration
}

// NewBrowser creates a new mDNS browser with default settings
func NewBrowser() *Browser {
	return &Browser{
		Timeout: DefaultBrowseTimeout,
	}
}

// Browse discovers all otpgate verification services on the local network
func (b *Browser) Browse() ([]*Service, error) {
	return b.BrowseWithContext(context.Background())
}

// BrowseWithContext discovers services with a custom context
func (b *Browser) BrowseWithContext(ctx context.Context) ([]*Service, error) {
	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	services := make([]*Service, 0)
	done := make(chan struct{})

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Collect entries in a goroutine; the resolver closes the channel when
	// the context expires.
	go func() {
		defer close(done)
		for entry := range entries {
			svc := parseServiceEntry(entry)
			if svc != nil {
				services = append(services, svc)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for context to complete (timeout or cancellation)
	<-ctx.Done()
	<-done

	return services, nil
}

// FindFirst returns the first verification service discovered, or an error
// if none appears within the timeout.
func (b *Browser) FindFirst(ctx context.Context) (*Service, error) {
	services, err := b.BrowseWithContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("no otpgate verification service found on the network (timeout: %s)", b.Timeout)
	}
	return services[0], nil
}

// parseServiceEntry converts a zeroconf entry to a Service.
// Returns nil for entries without a usable IPv4 address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Service {
	if entry == nil || len(entry.AddrIPv4) == 0 {
		return nil
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		}
	}

	return &Service{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           entry.AddrIPv4[0].String(),
		Port:         entry.Port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Announce registers the verification service on the local network. The
// returned shutdown function must be called to withdraw the announcement.
func Announce(instance string, port int, version string) (func(), error) {
	if instance == "" {
		instance = "otpgate"
	}

	txt := []string{"path=/verify/ws"}
	if version != "" {
		txt = append(txt, "version="+version)
	}

	srv, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	return srv.Shutdown, nil
}
