package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("OFFLINEGATE_LISTEN_ADDR", ":9999")
	t.Setenv("OFFLINEGATE_UPSTREAM_URL", "https://api.arcbank.example")
	t.Setenv("OFFLINEGATE_CACHE_VERSION", "v7")
	t.Setenv("OFFLINEGATE_AUTH_PREFIXES", "/portal,/admin")
	t.Setenv("OFFLINEGATE_HTTP_TIMEOUT", "45s")
	t.Setenv("OFFLINEGATE_WATCH_CONFIG", "true")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, nil); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}

	if cfg.ListenAddr != ":9999" || cfg.UpstreamURL != "https://api.arcbank.example" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.CacheVersion != "v7" {
		t.Errorf("CacheVersion = %q", cfg.CacheVersion)
	}
	if len(cfg.AuthPrefixes) != 2 || cfg.AuthPrefixes[0] != "/portal" || cfg.AuthPrefixes[1] != "/admin" {
		t.Errorf("AuthPrefixes = %v", cfg.AuthPrefixes)
	}
	if cfg.HTTPTimeout != 45*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if !cfg.WatchConfig {
		t.Error("WatchConfig not applied")
	}
}

func TestApplyEnvConfigFlagPrecedence(t *testing.T) {
	t.Setenv("OFFLINEGATE_LISTEN_ADDR", ":9999")

	cfg := DefaultConfig()
	cfg.ListenAddr = ":7777"

	if err := ApplyEnvConfig(&cfg, map[string]bool{"listen-addr": true}); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.ListenAddr != ":7777" {
		t.Errorf("flag value overwritten by env: %q", cfg.ListenAddr)
	}
}

func TestApplyEnvConfigInvalidTimeout(t *testing.T) {
	t.Setenv("OFFLINEGATE_HTTP_TIMEOUT", "soon")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, nil); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestApplyEnvConfigEmptyEnvKeepsDefaults(t *testing.T) {
	t.Setenv("OFFLINEGATE_LISTEN_ADDR", "")

	cfg := DefaultConfig()
	want := cfg.ListenAddr

	if err := ApplyEnvConfig(&cfg, nil); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.ListenAddr != want {
		t.Errorf("ListenAddr changed with no env set: %q", cfg.ListenAddr)
	}
}
