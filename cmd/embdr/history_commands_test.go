package main

import (
	"testing"

	"github.com/embdr/embdr-go/pkg/processr"
)

func TestHistoryListAndClear(t *testing.T) {
	env := setupCLITestEnv(t, []processr.Resource{
		{ID: "res-h", Status: processr.StatusComplete},
	})
	path := writeTempFile(t, "one.png", "png-bytes")

	if _, _, err := runCLI(t, []string{"submit", path}, env.configPath); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, _, err := runCLI(t, []string{"submit", "https://example.com/two.png"}, env.configPath); err != nil {
		t.Fatalf("submit link: %v", err)
	}

	out, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "res-h")
	requireContains(t, out, "file")
	requireContains(t, out, "link")
	requireContains(t, out, "example.com/two.png")

	out, _, err = runCLI(t, []string{"history", "list", "--status", "pending"}, env.configPath)
	if err != nil {
		t.Fatalf("history list --status: %v", err)
	}
	requireContains(t, out, "No submissions recorded")

	out, _, err = runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Removed 2 submission(s)")

	out, _, err = runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list after clear: %v", err)
	}
	requireContains(t, out, "No submissions recorded")
}
