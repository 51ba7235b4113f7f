package probe

import (
	"context"
	"time"

	"github.com/go-ping/ping"

	"github.com/hamed0406/hostwatch/internal/domain"
)

// ICMPProber sends a single unprivileged echo request. Hosts that filter
// ICMP entirely are better served by the portscan protocol.
type ICMPProber struct {
	Config domain.ProbeConfig
}

func (p *ICMPProber) Probe(ctx context.Context, address string) domain.ProbeResult {
	pinger, err := ping.NewPinger(address)
	if err != nil {
		return failureResult(address, err)
	}
	pinger.Count = 1
	pinger.Timeout = p.Config.Timeout
	pinger.SetPrivileged(false)

	done := make(chan error, 1)
	go func() { done <- pinger.Run() }()

	select {
	case <-ctx.Done():
		pinger.Stop()
		<-done
		return domain.ProbeResult{
			Address:   address,
			CheckedAt: time.Now().UTC(),
			Status:    domain.StatusTimeout,
			Reason:    ctx.Err().Error(),
		}
	case err := <-done:
		if err != nil {
			return failureResult(address, err)
		}
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return domain.ProbeResult{
			Address:   address,
			CheckedAt: time.Now().UTC(),
			Status:    domain.StatusTimeout,
			Reason:    "no echo reply",
		}
	}
	return successResult(address, stats.AvgRtt, p.Config)
}
