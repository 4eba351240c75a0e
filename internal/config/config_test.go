package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/embdr/embdr-go/internal/config"
)

func TestLoadDefaultsUseEnvAPIKeyAndExpandPaths(t *testing.T) {
	t.Setenv("EMBDR_API_KEY", "env-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Server.APIKey != "env-key" {
		t.Fatalf("expected API key from env, got %q", cfg.Server.APIKey)
	}
	if cfg.Server.Host != "app.embdr.com" {
		t.Fatalf("unexpected host %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 80 || cfg.Server.Protocol != "http" || cfg.Server.BasePath != "/api" {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if !cfg.Server.StrictSSL {
		t.Fatal("expected strict SSL on by default")
	}
	if cfg.Polling.InitialDelayMs != 2000 || cfg.Polling.BackoffDenominator != 4 {
		t.Fatalf("unexpected polling defaults: %+v", cfg.Polling)
	}
	if cfg.Polling.MaxAttempts != 0 {
		t.Fatalf("expected unbounded polling by default, got %d", cfg.Polling.MaxAttempts)
	}
	wantHistory := filepath.Join(tempHome, ".local", "share", "embdr")
	if cfg.History.Dir != wantHistory {
		t.Fatalf("unexpected history dir: got %q want %q", cfg.History.Dir, wantHistory)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if _, err := os.Stat(cfg.History.Dir); err != nil {
		t.Fatalf("expected history directory to exist: %v", err)
	}
}

func TestLoadParsesFileAndOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
api_key = "file-key"
host = "embdr.internal"
port = 8443
protocol = "https"
base_path = "/v1"
strict_ssl = false

[polling]
initial_delay_ms = 500
backoff_denominator = 2
max_attempts = 10

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to load, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Server.Host != "embdr.internal" || cfg.Server.Port != 8443 {
		t.Fatalf("unexpected server settings: %+v", cfg.Server)
	}
	if cfg.Server.StrictSSL {
		t.Fatal("expected strict SSL off")
	}
	if cfg.Polling.MaxAttempts != 10 {
		t.Fatalf("unexpected poll ceiling %d", cfg.Polling.MaxAttempts)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging settings: %+v", cfg.Logging)
	}

	client := cfg.Client()
	if client.Host != "embdr.internal" || client.Port != 8443 || client.Protocol != "https" {
		t.Fatalf("unexpected client config: %+v", client)
	}
	if client.StrictSSL {
		t.Fatal("expected client strict SSL off")
	}
}

func TestLoadRejectsMissingAPIKey(t *testing.T) {
	t.Setenv("EMBDR_API_KEY", "")
	t.Setenv("HOME", t.TempDir())

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected missing API key to fail validation")
	}
	if !strings.Contains(err.Error(), "server.api_key") {
		t.Fatalf("expected api key guidance, got %v", err)
	}
}

func TestLoadRejectsBadProtocol(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
api_key = "key"
protocol = "gopher"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "server.protocol") {
		t.Fatalf("expected protocol validation error, got %v", err)
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
api_key = "key"

[logging]
format = "yaml"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected log format validation error, got %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("EMBDR_API_KEY", "env-key")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Server.Host != "app.embdr.com" {
		t.Fatalf("sample should keep defaults, got host %q", cfg.Server.Host)
	}
}
