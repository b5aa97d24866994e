package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/api"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/testsupport"
)

func TestHistoryLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, stdout, "History is empty")

	for _, target := range []string{"", "xywh=5,5,5,5"} {
		args := []string{"encode", testCanvas, testManifest}
		if target != "" {
			args = append(args, target)
		}
		if _, _, err := runCLI(t, args, env.configPath); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	if _, _, err := runCLI(t, []string{"encode", "--no-history", testCanvas + "/skip", testManifest}, env.configPath); err != nil {
		t.Fatalf("encode --no-history: %v", err)
	}

	stdout, _, err = runCLI(t, []string{"history", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history list --json: %v", err)
	}
	var items []api.HistoryItem
	if err := json.Unmarshal([]byte(stdout), &items); err != nil {
		t.Fatalf("decode json: %v\n%s", err, stdout)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(items))
	}

	stdout, _, err = runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 3 || lines[0] != "ID\tVariant\tCanvas\tTarget\tUses\tLast Used" {
		t.Fatalf("unexpected list output:\n%s", stdout)
	}

	annotation := items[0]
	stdout, _, err = runCLI(t, []string{"history", "show", annotation.ID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, stdout, "Target:     xywh=5,5,5,5")
	requireContains(t, stdout, "Token:      "+annotation.Token)

	stdout, _, err = runCLI(t, []string{"history", "rm", annotation.ID}, env.configPath)
	if err != nil {
		t.Fatalf("history rm: %v", err)
	}
	requireContains(t, stdout, "Removed "+annotation.ID[:8])

	if _, _, err := runCLI(t, []string{"history", "show", annotation.ID}, env.configPath); err == nil {
		t.Fatal("expected removed entry to be missing")
	}

	stdout, _, err = runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, stdout, "Removed 1 history entries")
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistoryDisabled())
	if _, _, err := runCLI(t, []string{"encode", testCanvas, testManifest}, env.configPath); err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "history is disabled") {
		t.Fatalf("expected disabled error, got %v", err)
	}
}
