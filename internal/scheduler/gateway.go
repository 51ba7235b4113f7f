package scheduler

import (
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/hostwatch/internal/domain"
)

// gatewayLoop periodically re-resolves the designated gateway host's address
// and rebinds its polling loop when the address moved (new network, DHCP
// change). Runs once at startup, then on every refresh tick.
func (s *Scheduler) gatewayLoop() {
	defer s.wg.Done()

	t := time.NewTicker(s.refreshInterval)
	defer t.Stop()

	s.refreshGateway()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			s.refreshGateway()
		}
	}
}

func (s *Scheduler) refreshGateway() {
	resolved, err := s.resolver.Resolve(s.ctx)
	if err != nil || resolved == "" {
		s.logger.Warn("gateway_resolve_failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	var gw *domain.Host
	for _, h := range s.hosts {
		if h.Gateway {
			gw = h
			break
		}
	}
	if gw == nil || gw.Address == resolved {
		s.mu.Unlock()
		return
	}
	old := gw.Address
	updated := *gw
	updated.Address = resolved
	loop := s.loops[old]
	delete(s.loops, old)
	delete(s.byAddr, old)
	s.mu.Unlock()

	// Cancel-then-restart sequencing: the old loop must be fully torn down
	// before the new one starts, so an in-flight probe can never be applied
	// under the new binding.
	if loop != nil {
		loop.cancel()
		<-loop.done
	}
	s.store.DropAddress(old)
	s.StartHost(updated)

	s.logger.Info("gateway_rebound",
		zap.String("old", old),
		zap.String("new", resolved),
	)
}
