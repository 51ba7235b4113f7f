package domain

import (
	"testing"
	"time"
)

func TestProbeConfigNormalize_Defaults(t *testing.T) {
	c := ProbeConfig{}
	if err := c.Normalize(); err != nil {
		t.Fatal(err)
	}
	if c.Protocol != ProtocolPortScan {
		t.Fatalf("want portscan default, got %q", c.Protocol)
	}
	if c.PollInterval != DefaultPollInterval || c.Timeout != DefaultProbeTimeout {
		t.Fatalf("unexpected timing defaults: %+v", c)
	}
	if c.GoodThreshold != 50*time.Millisecond || c.WarnThreshold != 200*time.Millisecond {
		t.Fatalf("unexpected threshold defaults: %+v", c)
	}
}

func TestProbeConfigNormalize_PortDefaults(t *testing.T) {
	udp := ProbeConfig{Protocol: ProtocolUDP}
	if err := udp.Normalize(); err != nil {
		t.Fatal(err)
	}
	if udp.Port != 53 {
		t.Fatalf("udp default port: got %d", udp.Port)
	}

	tcp := ProbeConfig{Protocol: ProtocolTCP}
	if err := tcp.Normalize(); err != nil {
		t.Fatal(err)
	}
	if tcp.Port != 80 {
		t.Fatalf("tcp default port: got %d", tcp.Port)
	}
}

func TestProbeConfigNormalize_Rejects(t *testing.T) {
	bad := ProbeConfig{Protocol: "gopher"}
	if err := bad.Normalize(); err == nil {
		t.Fatal("want error for unknown protocol")
	}
	badPort := ProbeConfig{Protocol: ProtocolTCP, Port: 70000}
	if err := badPort.Normalize(); err == nil {
		t.Fatal("want error for out-of-range port")
	}
}

func TestHostNormalize(t *testing.T) {
	h := Host{ID: "h1", Address: "192.168.1.1", Enabled: true}
	if err := h.Normalize(); err != nil {
		t.Fatal(err)
	}
	if h.Name != "192.168.1.1" {
		t.Fatalf("name should default to address, got %q", h.Name)
	}
	if h.Alerts.LatencyThreshold != DefaultLatencyThreshold {
		t.Fatalf("alert defaults not applied: %+v", h.Alerts)
	}

	empty := Host{ID: "h2"}
	if err := empty.Normalize(); err == nil {
		t.Fatal("want error for empty address")
	}
}

func TestStatusDown(t *testing.T) {
	cases := map[Status]bool{
		StatusGood:    false,
		StatusWarning: false,
		StatusError:   true,
		StatusTimeout: true,
	}
	for s, want := range cases {
		if got := s.Down(); got != want {
			t.Fatalf("%s.Down() = %v, want %v", s, got, want)
		}
	}
}

func TestLatencyMS(t *testing.T) {
	r := ProbeResult{Status: StatusTimeout}
	if r.LatencyMS() != nil {
		t.Fatal("timeout result should carry no latency")
	}
	d := 25 * time.Millisecond
	r = ProbeResult{Status: StatusGood, Latency: &d}
	if ms := r.LatencyMS(); ms == nil || *ms != 25 {
		t.Fatalf("unexpected latency ms: %+v", ms)
	}
}
