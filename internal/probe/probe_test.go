package probe

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/hamed0406/hostwatch/internal/domain"
)

// listenTCP opens a loopback listener and returns its address and port.
func listenTCP(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()
	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return host, port
}

func cfg(proto domain.Protocol, port int) domain.ProbeConfig {
	c := domain.ProbeConfig{
		Protocol: proto,
		Timeout:  2 * time.Second,
		Port:     port,
	}
	if err := c.Normalize(); err != nil {
		panic(err)
	}
	return c
}

func TestTCPProber_Success(t *testing.T) {
	addr, port := listenTCP(t)
	p := &TCPProber{Config: cfg(domain.ProtocolTCP, port)}

	res := p.Probe(context.Background(), addr)
	if res.Status.Down() {
		t.Fatalf("expected reachable, got %+v", res)
	}
	if res.Latency == nil || *res.Latency <= 0 {
		t.Fatalf("expected measured latency, got %+v", res.Latency)
	}
	if res.Address != addr {
		t.Fatalf("address: %q", res.Address)
	}
}

func TestTCPProber_RefusedIsErrorWithoutLatency(t *testing.T) {
	// Grab a port, then close the listener so connects are refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	_ = ln.Close()

	p := &TCPProber{Config: cfg(domain.ProtocolTCP, port)}
	res := p.Probe(context.Background(), "127.0.0.1")
	if !res.Status.Down() {
		t.Fatalf("expected failure, got %+v", res)
	}
	if res.Latency != nil {
		t.Fatalf("failure should carry no latency: %+v", res)
	}
	if res.Reason == "" {
		t.Fatal("expected a reason on failure")
	}
}

func TestUDPProber_ReadyStateCountsAsSuccess(t *testing.T) {
	// No server at the target; the connectionless dial still reaches the
	// transport-ready state. That approximation is the documented contract.
	p := &UDPProber{Config: cfg(domain.ProtocolUDP, 40053)}
	res := p.Probe(context.Background(), "127.0.0.1")
	if res.Status.Down() {
		t.Fatalf("udp ready state should count as success, got %+v", res)
	}
	if res.Latency == nil {
		t.Fatal("expected latency on success")
	}
}

func TestPortScanProber_FirstOpenPortWins(t *testing.T) {
	// Stand in for port 53/80/... by probing loopback where all scan ports
	// are closed: every attempt is refused and the probe resolves to timeout.
	p := &PortScanProber{Config: cfg(domain.ProtocolPortScan, 0)}
	res := p.Probe(context.Background(), "127.0.0.1")
	if res.Status != domain.StatusTimeout {
		t.Fatalf("all-closed scan should be timeout, got %+v", res)
	}
	if res.Latency != nil {
		t.Fatalf("timeout should carry no latency: %+v", res)
	}
}

func TestProbe_ReturnsWithinBudget(t *testing.T) {
	c := cfg(domain.ProtocolTCP, 81)
	c.Timeout = 500 * time.Millisecond
	p := &TCPProber{Config: c}

	start := time.Now()
	// TEST-NET-1 address; never routable.
	res := p.Probe(context.Background(), "192.0.2.1")
	elapsed := time.Since(start)

	if !res.Status.Down() {
		t.Fatalf("expected failure against blackhole, got %+v", res)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("probe exceeded budget: %v", elapsed)
	}
}

func TestFailureResult_DeadlineIsTimeout(t *testing.T) {
	res := failureResult("10.0.0.1", context.DeadlineExceeded)
	if res.Status != domain.StatusTimeout {
		t.Fatalf("deadline should classify as timeout, got %s", res.Status)
	}
	if res.Latency != nil {
		t.Fatal("timeout should carry no latency")
	}
}

func TestNew_SelectsProberByProtocol(t *testing.T) {
	if _, ok := New(cfg(domain.ProtocolTCP, 80)).(*TCPProber); !ok {
		t.Fatal("tcp config should build TCPProber")
	}
	if _, ok := New(cfg(domain.ProtocolUDP, 53)).(*UDPProber); !ok {
		t.Fatal("udp config should build UDPProber")
	}
	if _, ok := New(cfg(domain.ProtocolICMP, 0)).(*ICMPProber); !ok {
		t.Fatal("icmp config should build ICMPProber")
	}
	if _, ok := New(cfg(domain.ProtocolPortScan, 0)).(*PortScanProber); !ok {
		t.Fatal("portscan config should build PortScanProber")
	}
}
