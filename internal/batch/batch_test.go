package batch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/batch"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/contentstate"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/testsupport"
)

const (
	canvasA  = "https://example.org/iiif/canvas/a"
	canvasB  = "https://example.org/iiif/canvas/b"
	manifest = "https://example.org/iiif/manifest.json"
)

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	want := []contentstate.CanvasReference{
		{CanvasURL: canvasA, ManifestURL: manifest},
		{CanvasURL: canvasB, ManifestURL: manifest, Target: "xywh=1,2,3,4"},
	}
	files := map[string]string{
		"refs.toml": `
[[reference]]
canvas = "` + canvasA + `"
manifest = "` + manifest + `"

[[reference]]
canvas = "` + canvasB + `"
manifest = "` + manifest + `"
target = "xywh=1,2,3,4"
`,
		"refs.yaml": `
references:
  - canvas: ` + canvasA + `
    manifest: ` + manifest + `
  - canvas: ` + canvasB + `
    manifest: ` + manifest + `
    target: "xywh=1,2,3,4"
`,
		"refs.tsv": "# canvas\tmanifest\ttarget\n" +
			canvasA + "\t" + manifest + "\n\n" +
			canvasB + "\t" + manifest + "\txywh=1,2,3,4\n",
	}
	for name, contents := range files {
		t.Run(name, func(t *testing.T) {
			path := testsupport.WriteFile(t, dir, name, contents)
			refs, err := batch.Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(refs) != len(want) {
				t.Fatalf("got %d refs, want %d: %+v", len(refs), len(want), refs)
			}
			for i := range want {
				if refs[i] != want[i] {
					t.Fatalf("ref %d = %+v, want %+v", i, refs[i], want[i])
				}
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := batch.Load(testsupport.WriteFile(t, dir, "refs.csv", "a,b\n")); !errors.Is(err, batch.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	_, err := batch.Load(testsupport.WriteFile(t, dir, "bad.tsv", canvasA+"\n"))
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("expected column count error, got %v", err)
	}
	if _, err := batch.Load(dir + "/missing.toml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRunKeepsOrderAndItemErrors(t *testing.T) {
	refs := []contentstate.CanvasReference{
		{CanvasURL: canvasA, ManifestURL: manifest},
		{CanvasURL: " ", ManifestURL: manifest},
		{CanvasURL: canvasB, ManifestURL: manifest, Target: "t=5"},
	}
	results, err := batch.Run(context.Background(), refs, batch.Options{Workers: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.Index != i || r.Reference != refs[i] {
			t.Fatalf("result %d out of order: %+v", i, r)
		}
	}
	wantA, _ := contentstate.EncodeReference(refs[0])
	if results[0].Token != wantA || results[0].Variant != contentstate.VariantCanvas {
		t.Fatalf("result 0 = %+v", results[0])
	}
	if !errors.Is(results[1].Err, contentstate.ErrInvalidInput) {
		t.Fatalf("result 1 error = %v", results[1].Err)
	}
	if results[2].Variant != contentstate.VariantAnnotation || !results[2].OK() {
		t.Fatalf("result 2 = %+v", results[2])
	}

	summary := batch.Summarize(results)
	if summary != (batch.Summary{Total: 3, Encoded: 2, Failed: 1}) {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	refs := make([]contentstate.CanvasReference, 20)
	for i := range refs {
		refs[i] = contentstate.CanvasReference{CanvasURL: canvasA, ManifestURL: manifest}
	}
	results, err := batch.Run(ctx, refs, batch.Options{Workers: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Fatalf("result %d error = %v", i, r.Err)
		}
	}
}

func TestRunEnforcesLimit(t *testing.T) {
	refs := make([]contentstate.CanvasReference, 3)
	if _, err := batch.Run(context.Background(), refs, batch.Options{MaxReferences: 2}); !errors.Is(err, batch.ErrTooManyReferences) {
		t.Fatalf("expected ErrTooManyReferences, got %v", err)
	}
	results, err := batch.Run(context.Background(), nil, batch.Options{})
	if err != nil || len(results) != 0 {
		t.Fatalf("empty run = %v, %v", results, err)
	}
}

func sampleResults(t *testing.T) []batch.Result {
	t.Helper()
	refs := []contentstate.CanvasReference{
		{CanvasURL: canvasA, ManifestURL: manifest},
		{CanvasURL: "", ManifestURL: manifest},
	}
	results, err := batch.Run(context.Background(), refs, batch.Options{Workers: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return results
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := batch.Write(&buf, sampleResults(t), batch.OutputTSV); err != nil {
		t.Fatalf("Write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "index\tcanvas\tmanifest\ttarget\ttoken\terror" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "0\t"+canvasA+"\t") {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "invalid input") {
		t.Fatalf("row 2 = %q", lines[2])
	}
}

func TestWriteJSONAndCBOR(t *testing.T) {
	results := sampleResults(t)
	type doc struct {
		Summary batch.Summary  `json:"summary"`
		Results []batch.Record `json:"results"`
	}

	var jsonBuf bytes.Buffer
	if err := batch.Write(&jsonBuf, results, batch.OutputJSON); err != nil {
		t.Fatalf("Write json: %v", err)
	}
	var fromJSON doc
	if err := json.Unmarshal(jsonBuf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	var cborBuf bytes.Buffer
	if err := batch.Write(&cborBuf, results, batch.OutputCBOR); err != nil {
		t.Fatalf("Write cbor: %v", err)
	}
	var fromCBOR doc
	if err := cbor.Unmarshal(cborBuf.Bytes(), &fromCBOR); err != nil {
		t.Fatalf("unmarshal cbor: %v", err)
	}

	for name, got := range map[string]doc{"json": fromJSON, "cbor": fromCBOR} {
		if got.Summary != (batch.Summary{Total: 2, Encoded: 1, Failed: 1}) {
			t.Fatalf("%s summary = %+v", name, got.Summary)
		}
		if len(got.Results) != 2 || got.Results[0].Token == "" || got.Results[1].Kind != contentstate.KindInvalidInput {
			t.Fatalf("%s results = %+v", name, got.Results)
		}
	}
}

func TestParseOutputFormat(t *testing.T) {
	if _, err := batch.ParseOutputFormat("xml"); !errors.Is(err, batch.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if f, err := batch.ParseOutputFormat("cbor"); err != nil || f != batch.OutputCBOR {
		t.Fatalf("ParseOutputFormat(cbor) = %q, %v", f, err)
	}
}
