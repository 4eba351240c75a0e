package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/embdr/embdr-go/pkg/processr"
)

type cliTestEnv struct {
	server     *httptest.Server
	media      *mediaServer
	configPath string
	historyDir string
}

// mediaServer fakes the Embdr resources endpoint: every POST creates a
// resource, GETs replay a scripted sequence of states and then repeat the
// last one.
type mediaServer struct {
	mu      sync.Mutex
	submits int
	fetches int
	states  []processr.Resource
}

func (m *mediaServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/resources", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.submits++
		state := m.states[0]
		m.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(state)
	})
	mux.HandleFunc("GET /api/resources/{id}", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.fetches++
		idx := m.fetches
		if idx >= len(m.states) {
			idx = len(m.states) - 1
		}
		state := m.states[idx]
		m.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(state)
	})
	return mux
}

func (m *mediaServer) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submits, m.fetches
}

// setupCLITestEnv starts a fake media server and writes a config file wired
// to it, with a millisecond poll delay and history stored under a temp dir.
func setupCLITestEnv(t *testing.T, states []processr.Resource) *cliTestEnv {
	t.Helper()

	media := &mediaServer{states: states}
	server := httptest.NewServer(media.handler())
	t.Cleanup(server.Close)

	parsed, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}

	base := t.TempDir()
	historyDir := filepath.Join(base, "history")
	configPath := filepath.Join(base, "config.toml")
	contents := fmt.Sprintf(`[server]
host = %q
port = %s
protocol = "http"
base_path = "/api"
api_key = "test-key"

[polling]
initial_delay_ms = 1
backoff_denominator = 4

[history]
enabled = true
dir = %q

[logging]
format = "console"
level = "error"
`, parsed.Hostname(), parsed.Port(), historyDir)
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		server:     server,
		media:      media,
		configPath: configPath,
		historyDir: historyDir,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
