package probe

import (
	"context"

	"github.com/hamed0406/hostwatch/internal/domain"
)

// Prober performs a single reachability/latency measurement against an
// address. Implementations never return an error to the caller: every
// failure mode resolves to a ProbeResult.
type Prober interface {
	Probe(ctx context.Context, address string) domain.ProbeResult
}

// New builds the prober for a host's probe configuration. The config is
// expected to be normalized already.
func New(cfg domain.ProbeConfig) Prober {
	switch cfg.Protocol {
	case domain.ProtocolTCP:
		return &TCPProber{Config: cfg}
	case domain.ProtocolUDP:
		return &UDPProber{Config: cfg}
	case domain.ProtocolICMP:
		return &ICMPProber{Config: cfg}
	default:
		return &PortScanProber{Config: cfg}
	}
}
