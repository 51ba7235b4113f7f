package domain

import "time"

// ProbeResult is the immutable outcome of one probe. Latency is nil when
// nothing completed within budget.
type ProbeResult struct {
	Address   string         `json:"address"`
	Name      string         `json:"name,omitempty"`
	CheckedAt time.Time      `json:"checked_at"`
	Latency   *time.Duration `json:"latency,omitempty"`
	Status    Status         `json:"status"`
	Reason    string         `json:"reason,omitempty"`
}

// LatencyMS returns the latency in milliseconds, or nil.
func (r *ProbeResult) LatencyMS() *float64 {
	if r.Latency == nil {
		return nil
	}
	ms := r.Latency.Seconds() * 1000
	return &ms
}

// HostSummary is the per-host view handed to export consumers (widgets, UI).
type HostSummary struct {
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	LatencyMS *float64  `json:"latency_ms,omitempty"`
	Status    Status    `json:"status"`
	CheckedAt time.Time `json:"checked_at"`
}
