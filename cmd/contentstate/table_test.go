package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteRowsPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	err := writeRows(&buf, []string{"Name", "Uses"}, [][]string{{"a", "1"}, {"b"}}, []columnAlignment{alignLeft, alignRight})
	if err != nil {
		t.Fatalf("writeRows: %v", err)
	}
	if buf.String() != "Name\tUses\na\t1\nb\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"ID", "Canvas"}, [][]string{{"abc"}}, nil)
	if !strings.Contains(out, "ID") || !strings.Contains(out, "abc") || !strings.Contains(out, "╭") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}
