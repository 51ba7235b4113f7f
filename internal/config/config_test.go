package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hamed0406/hostwatch/internal/domain"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:8080" || cfg.LogDir != "logs" {
		t.Fatalf("defaults wrong: %+v", cfg)
	}
	if !cfg.Notifications.Enabled || !cfg.Gateway.Enabled {
		t.Fatalf("expected notifications and gateway enabled by default: %+v", cfg)
	}
	if cfg.Gateway.RefreshInterval != 30*time.Second {
		t.Fatalf("gateway refresh default wrong: %v", cfg.Gateway.RefreshInterval)
	}
}

func TestLoad_ParsesHostsAndNormalizes(t *testing.T) {
	content := `
addr: ":9090"
hosts:
  - id: gw
    name: Gateway
    address: 192.168.1.1
    enabled: true
    gateway: true
  - address: 8.8.8.8
    enabled: true
    probe:
      protocol: udp
      poll_interval: 10s
notifications:
  enabled: true
  apply_to_all: true
`
	path := filepath.Join(t.TempDir(), "hostwatch.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("addr: %q", cfg.Addr)
	}
	if len(cfg.Hosts) != 2 {
		t.Fatalf("hosts: %+v", cfg.Hosts)
	}
	if cfg.Hosts[0].Probe.Protocol != domain.ProtocolPortScan {
		t.Fatalf("default protocol wrong: %q", cfg.Hosts[0].Probe.Protocol)
	}
	// Second host has no id; one gets assigned, and name defaults to address.
	if cfg.Hosts[1].ID == "" || cfg.Hosts[1].Name != "8.8.8.8" {
		t.Fatalf("unnamed host not normalized: %+v", cfg.Hosts[1])
	}
	if cfg.Hosts[1].Probe.Port != 53 {
		t.Fatalf("udp default port wrong: %d", cfg.Hosts[1].Probe.Port)
	}
	if !cfg.Notifications.ApplyToAll {
		t.Fatalf("apply_to_all lost: %+v", cfg.Notifications)
	}
}

func TestLoad_RejectsBadHost(t *testing.T) {
	content := `
hosts:
  - address: 1.2.3.4
    probe:
      protocol: carrier-pigeon
`
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want error for unknown protocol")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":7070")
	t.Setenv("LOG_DIR", "./_testlogs")
	t.Setenv("RATE_PER_MIN", "30")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.LogDir != "./_testlogs" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.API.RatePerMin != 30 {
		t.Fatalf("rate override not applied: %d", cfg.API.RatePerMin)
	}
}
