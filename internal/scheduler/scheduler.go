package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/hostwatch/internal/alert"
	"github.com/hamed0406/hostwatch/internal/domain"
	"github.com/hamed0406/hostwatch/internal/gateway"
	"github.com/hamed0406/hostwatch/internal/history"
	"github.com/hamed0406/hostwatch/internal/probe"
)

// Evaluator is the slice of the alert evaluator the scheduler needs.
type Evaluator interface {
	Evaluate(ctx context.Context, host domain.Host, r domain.ProbeResult) []alert.Event
}

// Archiver persists applied results. Optional.
type Archiver interface {
	Insert(ctx context.Context, r domain.ProbeResult) error
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// Options wires the scheduler's collaborators.
type Options struct {
	Logger           *zap.Logger
	Store            *history.Store
	Evaluator        Evaluator
	Archive          Archiver // nil disables archiving
	Resolver         gateway.Resolver
	RefreshInterval  time.Duration // gateway re-resolution period
	ArchiveRetention time.Duration
	MaxConcurrent    int
	NewProber        func(domain.ProbeConfig) probe.Prober
}

// applied pairs a result with the host config it was probed under.
type applied struct {
	host   domain.Host
	result domain.ProbeResult
}

// hostLoop is one per-address polling task. cancel stops it; done closes
// when the goroutine has fully torn down, which StartHost and the gateway
// rebind wait on before reusing the address.
type hostLoop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler owns one polling loop per monitored host address and the single
// applier goroutine that serializes every mutation of the shared state
// (history ring, latest cache, alert evaluator). Probes run concurrently;
// their results are funneled through the results channel so there is exactly
// one logical writer.
type Scheduler struct {
	logger           *zap.Logger
	store            *history.Store
	eval             Evaluator
	archive          Archiver
	resolver         gateway.Resolver
	refreshInterval  time.Duration
	archiveRetention time.Duration
	newProber        func(domain.ProbeConfig) probe.Prober
	sem              chan struct{}

	mu     sync.Mutex
	hosts  map[domain.HostID]*domain.Host
	byAddr map[string]domain.HostID
	loops  map[string]*hostLoop
	subs   map[chan domain.ProbeResult]struct{}

	results chan applied
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func New(opts Options) *Scheduler {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 10
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 30 * time.Second
	}
	if opts.ArchiveRetention <= 0 {
		opts.ArchiveRetention = 7 * 24 * time.Hour
	}
	if opts.NewProber == nil {
		opts.NewProber = probe.New
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger:           opts.Logger,
		store:            opts.Store,
		eval:             opts.Evaluator,
		archive:          opts.Archive,
		resolver:         opts.Resolver,
		refreshInterval:  opts.RefreshInterval,
		archiveRetention: opts.ArchiveRetention,
		newProber:        opts.NewProber,
		sem:              make(chan struct{}, opts.MaxConcurrent),
		hosts:            make(map[domain.HostID]*domain.Host),
		byAddr:           make(map[string]domain.HostID),
		loops:            make(map[string]*hostLoop),
		subs:             make(map[chan domain.ProbeResult]struct{}),
		results:          make(chan applied, 64),
		ctx:              ctx,
		cancel:           cancel,
	}
}

// Start launches the applier, the gateway refresh loop, the archive
// maintenance tick, and a polling loop for every enabled host.
func (s *Scheduler) Start(hosts []domain.Host) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.applyLoop()

	for _, h := range hosts {
		if h.Enabled {
			s.StartHost(h)
		}
	}

	if s.resolver != nil {
		s.wg.Add(1)
		go s.gatewayLoop()
	}
	if s.archive != nil {
		s.wg.Add(1)
		go s.maintenanceLoop()
	}
	s.logger.Info("scheduler_started", zap.Int("hosts", len(hosts)))
}

// Stop cancels every per-host task and the auxiliary loops, then waits for
// them to tear down.
func (s *Scheduler) Stop() {
	s.cancel()
	s.mu.Lock()
	for _, l := range s.loops {
		l.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Info("scheduler_stopped")
}

// StartHost begins (or restarts) the polling loop for a host. Any existing
// loop for the same address is cancelled and its teardown awaited first, so
// restart is idempotent and never leaves two loops racing on one address.
func (s *Scheduler) StartHost(h domain.Host) {
	s.mu.Lock()
	prev := s.loops[h.Address]
	var moved *hostLoop
	var movedAddr string
	// Re-adding a known ID under a new address retires the old binding too,
	// so one host never has two live loops.
	if cur := s.hosts[h.ID]; cur != nil && cur.Address != h.Address {
		movedAddr = cur.Address
		moved = s.loops[movedAddr]
		delete(s.loops, movedAddr)
		delete(s.byAddr, movedAddr)
	}
	s.mu.Unlock()
	if moved != nil {
		moved.cancel()
		<-moved.done
	}
	if movedAddr != "" {
		s.store.DropAddress(movedAddr)
	}
	if prev != nil {
		prev.cancel()
		<-prev.done
	}

	ctx, cancel := context.WithCancel(s.ctx)
	loop := &hostLoop{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	hc := h
	s.hosts[h.ID] = &hc
	s.byAddr[h.Address] = h.ID
	s.loops[h.Address] = loop
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runHost(ctx, h, loop)
	s.logger.Info("host_started",
		zap.String("host_id", string(h.ID)),
		zap.String("address", h.Address),
	)
}

// StopHost cancels a host's loop and forgets its cached state.
func (s *Scheduler) StopHost(id domain.HostID) {
	s.mu.Lock()
	h := s.hosts[id]
	var loop *hostLoop
	if h != nil {
		loop = s.loops[h.Address]
		delete(s.loops, h.Address)
		delete(s.byAddr, h.Address)
		delete(s.hosts, id)
	}
	s.mu.Unlock()

	if loop != nil {
		loop.cancel()
		<-loop.done
	}
	if h != nil {
		s.store.DropAddress(h.Address)
		s.logger.Info("host_stopped", zap.String("host_id", string(id)))
	}
}

// AllDown reports whether every monitored address has a cached down result.
// Satisfies the alert evaluator's view of the monitored set: a host that has
// not produced its first result yet blocks the aggregate-outage verdict.
func (s *Scheduler) AllDown() bool {
	s.mu.Lock()
	addrs := make([]string, 0, len(s.byAddr))
	for addr := range s.byAddr {
		addrs = append(addrs, addr)
	}
	s.mu.Unlock()
	return s.store.AllDown(addrs)
}

// Hosts returns the currently monitored set.
func (s *Scheduler) Hosts() []domain.Host {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Host, 0, len(s.hosts))
	for _, h := range s.hosts {
		out = append(out, *h)
	}
	return out
}

// Subscribe returns a channel receiving every applied result, plus a cancel
// func. Slow subscribers miss results rather than stalling the applier.
func (s *Scheduler) Subscribe() (<-chan domain.ProbeResult, func()) {
	ch := make(chan domain.ProbeResult, 16)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
}

// runHost is the per-address polling loop: one immediate probe, then one per
// tick, each dispatched under the shared concurrency limit.
func (s *Scheduler) runHost(ctx context.Context, h domain.Host, loop *hostLoop) {
	defer s.wg.Done()
	defer close(loop.done)

	prober := s.newProber(h.Probe)

	t := time.NewTicker(h.Probe.PollInterval)
	defer t.Stop()

	s.probeOnce(ctx, h, prober)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.probeOnce(ctx, h, prober)
		}
	}
}

func (s *Scheduler) probeOnce(ctx context.Context, h domain.Host, prober probe.Prober) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-s.sem }()

	// Config edits take effect on the next scheduled probe, not
	// retroactively: read the current host snapshot under the lock.
	s.mu.Lock()
	if cur := s.hosts[h.ID]; cur != nil && cur.Address == h.Address {
		h = *cur
	}
	s.mu.Unlock()

	r := prober.Probe(ctx, h.Address)
	r.Name = h.Name

	select {
	case s.results <- applied{host: h, result: r}:
	case <-s.ctx.Done():
	}
}

// applyLoop is the single consumer of probe results. Every mutation of the
// shared state happens here, in the fixed order: alert evaluation, then
// history append, then archive, then live-feed broadcast.
func (s *Scheduler) applyLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case a := <-s.results:
			s.apply(a)
		}
	}
}

func (s *Scheduler) apply(a applied) {
	s.mu.Lock()
	id, monitored := s.byAddr[a.result.Address]
	s.mu.Unlock()

	// Stale-result discard: the host binding moved on (rebind or removal)
	// while this probe was in flight.
	if !monitored || id != a.host.ID {
		s.logger.Debug("stale_result_discarded",
			zap.String("address", a.result.Address),
		)
		return
	}

	s.eval.Evaluate(s.ctx, a.host, a.result)
	s.store.Append(a.result)

	if s.archive != nil {
		if err := s.archive.Insert(s.ctx, a.result); err != nil {
			s.logger.Warn("archive_insert_failed", zap.Error(err))
		}
	}

	s.mu.Lock()
	for ch := range s.subs {
		select {
		case ch <- a.result:
		default:
		}
	}
	s.mu.Unlock()

	s.logger.Debug("probe_applied",
		zap.String("host_id", string(a.host.ID)),
		zap.String("address", a.result.Address),
		zap.String("status", string(a.result.Status)),
	)
}

// maintenanceLoop prunes the archive past its retention window.
func (s *Scheduler) maintenanceLoop() {
	defer s.wg.Done()

	t := time.NewTicker(time.Hour)
	defer t.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			cutoff := time.Now().Add(-s.archiveRetention)
			if n, err := s.archive.Prune(s.ctx, cutoff); err != nil {
				s.logger.Warn("archive_prune_failed", zap.Error(err))
			} else if n > 0 {
				s.logger.Info("archive_pruned", zap.Int64("rows", n))
			}
		}
	}
}
