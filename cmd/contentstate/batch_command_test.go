package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/batch"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/contentstate"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/testsupport"
)

func TestBatchTSV(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, env.baseDir, "refs.tsv",
		testCanvas+"\t"+testManifest+"\n"+testCanvas+"\t"+testManifest+"\tt=10\n")

	stdout, stderr, err := runCLI(t, []string{"batch", input}, env.configPath)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	requireContains(t, stderr, "Encoded 2 of 2 references (0 failed)")
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 3 {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
	want, _ := contentstate.EncodeReference(contentstate.CanvasReference{CanvasURL: testCanvas, ManifestURL: testManifest, Target: "t=10"})
	requireContains(t, lines[2], want)
}

func TestBatchFailuresExitNonZero(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, env.baseDir, "refs.yaml", `
references:
  - canvas: `+testCanvas+`
    manifest: `+testManifest+`
  - canvas: ""
    manifest: `+testManifest+`
`)
	stdout, stderr, err := runCLI(t, []string{"batch", "--format", "json", input}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 references failed") {
		t.Fatalf("expected failure error, got %v", err)
	}
	requireContains(t, stderr, "Encoded 1 of 2 references (1 failed)")
	requireContains(t, stdout, `"kind": "invalid_input"`)
}

func TestBatchCBOROutputFile(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, env.baseDir, "refs.toml", `
[[reference]]
canvas = "`+testCanvas+`"
manifest = "`+testManifest+`"
`)
	output := filepath.Join(env.baseDir, "out.cbor")
	if _, _, err := runCLI(t, []string{"batch", "-f", "cbor", "-o", output, input}, env.configPath); err != nil {
		t.Fatalf("batch: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc struct {
		Summary batch.Summary  `json:"summary"`
		Results []batch.Record `json:"results"`
	}
	if err := cbor.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal cbor: %v", err)
	}
	if doc.Summary.Encoded != 1 || len(doc.Results) != 1 {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestBatchStdinRequiresFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testCanvas + "\t" + testManifest + "\n"
	if _, _, err := runCLIWithInput(t, []string{"batch", "-"}, env.configPath, strings.NewReader(input)); err == nil {
		t.Fatal("expected error without --input-format")
	}
	stdout, _, err := runCLIWithInput(t, []string{"batch", "--input-format", "tsv", "-"}, env.configPath, bytes.NewBufferString(input))
	if err != nil {
		t.Fatalf("batch stdin: %v", err)
	}
	requireContains(t, stdout, testCanvas)
	if _, _, err := runCLI(t, []string{"batch", "--format", "xml", "refs.tsv"}, env.configPath); err == nil {
		t.Fatal("expected unsupported format error")
	}
}
