package probe

import (
	"context"

	"github.com/hamed0406/hostwatch/internal/domain"
)

// UDPProber dials a connectionless socket to the configured port (default
// 53). UDP has no handshake, so a socket reaching the transport-ready state
// counts as success without waiting for application data. This overstates
// reachability for targets that silently drop datagrams; it is kept as an
// approximation rather than changed, since a stricter check would need a
// protocol-specific payload exchange.
type UDPProber struct {
	Config domain.ProbeConfig
}

func (p *UDPProber) Probe(ctx context.Context, address string) domain.ProbeResult {
	port := p.Config.Port
	if port == 0 {
		port = domain.DefaultUDPPort
	}
	latency, err := dialOnce(ctx, "udp", address, port, p.Config.Timeout)
	if err != nil {
		return failureResult(address, err)
	}
	return successResult(address, latency, p.Config)
}
