package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/preflight"
)

func TestStatusReportsChecks(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v\n%s", err, stdout)
	}
	requireContains(t, stdout, "== Configuration ==")
	requireContains(t, stdout, "Data directory:")
	requireContains(t, stdout, "[OK]")
	requireContains(t, stdout, "of 4 passed")
	requireContains(t, stdout, "0 entries")
	requireContains(t, stdout, "no fixed api_bind configured")
}

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("History", statusOK, "ready", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "History:", "[OK] ready")
	if line != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", line, want)
	}
	colored := renderStatusLine("History", statusError, "", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected colored output: %q", colored)
	}
}

func TestCheckLines(t *testing.T) {
	lines := checkLines([]preflight.Result{
		{Name: "Data directory", Passed: true, Detail: "/tmp (read/write ok)"},
		{Name: "Viewers", Passed: false, Detail: "broken: unsupported scheme"},
	}, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[ERROR] 1 of 2 passed") {
		t.Fatalf("unexpected summary: %q", lines[0])
	}
	if !strings.Contains(lines[2], "[ERROR] broken") {
		t.Fatalf("unexpected check line: %q", lines[2])
	}

	empty := checkLines(nil, false)
	if len(empty) != 1 || !strings.Contains(empty[0], "no checks run") {
		t.Fatalf("unexpected empty rendering: %q", empty)
	}
}
