package history

import (
	"sort"
	"sync"

	"github.com/hamed0406/hostwatch/internal/domain"
)

// DefaultCapacity bounds the in-memory result ring.
const DefaultCapacity = 100

// Store keeps a most-recent-first ring of probe results plus the latest
// result per address. All writes arrive through the scheduler's single
// applier goroutine; the lock protects concurrent readers (HTTP handlers,
// export consumers).
type Store struct {
	mu     sync.RWMutex
	buf    []domain.ProbeResult
	next   int // index the next append writes to
	size   int
	latest map[string]domain.ProbeResult
}

func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		buf:    make([]domain.ProbeResult, capacity),
		latest: make(map[string]domain.ProbeResult),
	}
}

// Append records a result, evicting the oldest entry past capacity, and
// refreshes the latest-per-address cache. O(1).
func (s *Store) Append(r domain.ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf[s.next] = r
	s.next = (s.next + 1) % len(s.buf)
	if s.size < len(s.buf) {
		s.size++
	}
	s.latest[r.Address] = r
}

// Latest returns the most recent result for an address, if any.
func (s *Store) Latest(address string) (domain.ProbeResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.latest[address]
	return r, ok
}

// Recent returns up to n results, most recent first. n <= 0 means all.
func (s *Store) Recent(n int) []domain.ProbeResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > s.size {
		n = s.size
	}
	out := make([]domain.ProbeResult, 0, n)
	for i := 1; i <= n; i++ {
		idx := (s.next - i + len(s.buf)) % len(s.buf)
		out = append(out, s.buf[idx])
	}
	return out
}

// Len reports the current ring size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// DropAddress discards the latest-cache entry for an address. Used when a
// host is rebound to a new address or removed, so stale state cannot
// resurface.
func (s *Store) DropAddress(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.latest, address)
}

// AllDown reports whether every one of the given addresses has a cached
// latest result with a down status. An address with no cached result yet
// (just added, or freshly rebound) blocks the outage verdict, as does an
// empty address set.
func (s *Store) AllDown(addresses []string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(addresses) == 0 {
		return false
	}
	for _, addr := range addresses {
		r, ok := s.latest[addr]
		if !ok || !r.Status.Down() {
			return false
		}
	}
	return true
}

// ExportSnapshot is the read surface handed to widget/UI collaborators:
// one summary per address, sorted by name for stable output.
func (s *Store) ExportSnapshot() []domain.HostSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.HostSummary, 0, len(s.latest))
	for _, r := range s.latest {
		out = append(out, domain.HostSummary{
			Name:      r.Name,
			Address:   r.Address,
			LatencyMS: r.LatencyMS(),
			Status:    r.Status,
			CheckedAt: r.CheckedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Address < out[j].Address
	})
	return out
}
