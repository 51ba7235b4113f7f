package probe

import (
	"context"
	"time"

	"github.com/hamed0406/hostwatch/internal/domain"
)

// scanPorts is the fixed attempt order for the ICMP-alternative probe:
// DNS, HTTP, HTTPS, SSH, SMTP.
var scanPorts = []int{53, 80, 443, 22, 25}

// PortScanProber approximates an ICMP echo with TCP connects against a
// short list of well-known ports, splitting the timeout budget evenly
// across attempts. The first port that completes a handshake provides the
// measurement; if every attempt fails the probe is a timeout with no
// latency.
type PortScanProber struct {
	Config domain.ProbeConfig
}

func (p *PortScanProber) Probe(ctx context.Context, address string) domain.ProbeResult {
	perAttempt := p.Config.Timeout / time.Duration(len(scanPorts))
	if perAttempt <= 0 {
		perAttempt = p.Config.Timeout
	}

	for _, port := range scanPorts {
		if ctx.Err() != nil {
			break
		}
		latency, err := dialOnce(ctx, "tcp", address, port, perAttempt)
		if err != nil {
			continue
		}
		return successResult(address, latency, p.Config)
	}

	return domain.ProbeResult{
		Address:   address,
		CheckedAt: time.Now().UTC(),
		Status:    domain.StatusTimeout,
		Reason:    "no port answered",
	}
}
