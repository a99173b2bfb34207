package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("COCA_LISTEN_ADDR", "0.0.0.0:9000")
	t.Setenv("COCA_STORE", "json")
	t.Setenv("COCA_HTTP_TIMEOUT", "20s")
	t.Setenv("COCA_WATCH_CONFIG", "false")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatalf("ApplyEnvConfig returned error: %v", err)
	}

	if cfg.ListenAddr != "0.0.0.0:9000" {
		t.Errorf("ListenAddr = %v, want 0.0.0.0:9000", cfg.ListenAddr)
	}
	if cfg.Store != StoreJSON {
		t.Errorf("Store = %v, want json", cfg.Store)
	}
	if cfg.HTTPTimeout != 20*time.Second {
		t.Errorf("HTTPTimeout = %v, want 20s", cfg.HTTPTimeout)
	}
	if cfg.WatchConfig {
		t.Error("WatchConfig = true, want false")
	}
}

func TestApplyEnvConfig_FlagPrecedence(t *testing.T) {
	t.Setenv("COCA_LISTEN_ADDR", "0.0.0.0:9000")

	cfg := DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:7777" // set via flag
	changed := map[string]bool{"listen": true}

	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig returned error: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:7777" {
		t.Errorf("ListenAddr = %v, want flag value 127.0.0.1:7777", cfg.ListenAddr)
	}
}

func TestApplyEnvConfig_BadDuration(t *testing.T) {
	t.Setenv("COCA_HTTP_TIMEOUT", "whenever")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, nil); err == nil {
		t.Fatal("ApplyEnvConfig with bad duration returned nil error")
	}
}
