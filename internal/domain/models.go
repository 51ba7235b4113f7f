package domain

import (
	"fmt"
	"time"
)

type HostID string

// Protocol selects how a host is probed.
type Protocol string

const (
	// ProtocolPortScan approximates ICMP echo with TCP connects against a
	// short list of well-known ports. Used where raw sockets are unavailable.
	ProtocolPortScan Protocol = "portscan"
	ProtocolUDP      Protocol = "udp"
	ProtocolTCP      Protocol = "tcp"
	// ProtocolICMP sends real (unprivileged) echo requests.
	ProtocolICMP Protocol = "icmp"
)

// Status classifies a single probe outcome.
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// Down reports whether the status counts as unreachable for alerting.
func (s Status) Down() bool {
	return s == StatusError || s == StatusTimeout
}

// Defaults applied when a host's probe config leaves a field zero.
const (
	DefaultPollInterval  = 30 * time.Second
	DefaultProbeTimeout  = 3 * time.Second
	DefaultGoodThreshold = 50 * time.Millisecond
	DefaultWarnThreshold = 200 * time.Millisecond
	DefaultUDPPort       = 53
	DefaultTCPPort       = 80
)

// ProbeConfig is the per-host probing configuration.
type ProbeConfig struct {
	Protocol      Protocol      `json:"protocol" yaml:"protocol"`
	PollInterval  time.Duration `json:"poll_interval" yaml:"poll_interval"`
	Timeout       time.Duration `json:"timeout" yaml:"timeout"`
	Port          int           `json:"port,omitempty" yaml:"port"`
	GoodThreshold time.Duration `json:"good_threshold" yaml:"good_threshold"`
	WarnThreshold time.Duration `json:"warn_threshold" yaml:"warn_threshold"`
}

// Normalize fills zero fields with defaults and validates what it cannot fix.
func (c *ProbeConfig) Normalize() error {
	switch c.Protocol {
	case "":
		c.Protocol = ProtocolPortScan
	case ProtocolPortScan, ProtocolUDP, ProtocolTCP, ProtocolICMP:
	default:
		return fmt.Errorf("unknown protocol %q", c.Protocol)
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultProbeTimeout
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Port == 0 {
		switch c.Protocol {
		case ProtocolUDP:
			c.Port = DefaultUDPPort
		case ProtocolTCP:
			c.Port = DefaultTCPPort
		}
	}
	if c.GoodThreshold <= 0 {
		c.GoodThreshold = DefaultGoodThreshold
	}
	if c.WarnThreshold <= 0 {
		c.WarnThreshold = DefaultWarnThreshold
	}
	return nil
}

// AlertConfig holds per-host notification toggles and thresholds.
type AlertConfig struct {
	Enabled            bool          `json:"enabled" yaml:"enabled"`
	NoResponse         bool          `json:"no_response" yaml:"no_response"`
	Recovery           bool          `json:"recovery" yaml:"recovery"`
	HighLatency        bool          `json:"high_latency" yaml:"high_latency"`
	LatencyThreshold   time.Duration `json:"latency_threshold" yaml:"latency_threshold"`
	Degradation        bool          `json:"degradation" yaml:"degradation"`
	DegradationPercent float64       `json:"degradation_percent" yaml:"degradation_percent"`
	Flapping           bool          `json:"flapping" yaml:"flapping"`
	PatternWindow      int           `json:"pattern_window" yaml:"pattern_window"`
	PatternThreshold   int           `json:"pattern_threshold" yaml:"pattern_threshold"`
}

// Alerting defaults.
const (
	DefaultLatencyThreshold   = 2000 * time.Millisecond
	DefaultDegradationPercent = 50.0
	DefaultPatternWindow      = 10
	DefaultPatternThreshold   = 3
)

// Normalize fills zero thresholds with defaults.
func (c *AlertConfig) Normalize() {
	if c.LatencyThreshold <= 0 {
		c.LatencyThreshold = DefaultLatencyThreshold
	}
	if c.DegradationPercent <= 0 {
		c.DegradationPercent = DefaultDegradationPercent
	}
	if c.PatternWindow <= 0 {
		c.PatternWindow = DefaultPatternWindow
	}
	if c.PatternThreshold <= 0 {
		c.PatternThreshold = DefaultPatternThreshold
	}
}

// Host is one monitored endpoint. Identity is stable for a session; the
// address may be rebound externally (gateway re-discovery).
type Host struct {
	ID      HostID      `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	Address string      `json:"address" yaml:"address"`
	Enabled bool        `json:"enabled" yaml:"enabled"`
	Gateway bool        `json:"gateway,omitempty" yaml:"gateway"`
	Probe   ProbeConfig `json:"probe" yaml:"probe"`
	Alerts  AlertConfig `json:"alerts" yaml:"alerts"`
}

// Normalize validates the host and applies defaults. Called at the
// configuration boundary, never inside the probe loop.
func (h *Host) Normalize() error {
	if h.Address == "" {
		return fmt.Errorf("host %q: empty address", h.ID)
	}
	if h.Name == "" {
		h.Name = h.Address
	}
	if err := h.Probe.Normalize(); err != nil {
		return fmt.Errorf("host %q: %w", h.ID, err)
	}
	h.Alerts.Normalize()
	return nil
}
