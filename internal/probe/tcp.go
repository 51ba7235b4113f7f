package probe

import (
	"context"

	"github.com/hamed0406/hostwatch/internal/domain"
)

// TCPProber measures the time to complete a TCP handshake against the
// configured port. Latency reflects connection establishment, not payload
// round-trip.
type TCPProber struct {
	Config domain.ProbeConfig
}

func (p *TCPProber) Probe(ctx context.Context, address string) domain.ProbeResult {
	port := p.Config.Port
	if port == 0 {
		port = domain.DefaultTCPPort
	}
	latency, err := dialOnce(ctx, "tcp", address, port, p.Config.Timeout)
	if err != nil {
		return failureResult(address, err)
	}
	return successResult(address, latency, p.Config)
}
