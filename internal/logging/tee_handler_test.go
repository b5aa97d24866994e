package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewTeeHandlerCollapses(t *testing.T) {
	if _, ok := newTeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newTeeHandler(nil, inner); h != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsEachLevel(t *testing.T) {
	var infoBuf, errorBuf bytes.Buffer
	h := newTeeHandler(
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("no handler accepts debug")
	}

	logger := slog.New(h).With("component", "tee").WithGroup("req")
	logger.Info("first", "id", 1)
	logger.Error("second", "id", 2)

	if !strings.Contains(infoBuf.String(), "first") || !strings.Contains(infoBuf.String(), "second") {
		t.Fatalf("info handler missing records: %q", infoBuf.String())
	}
	if strings.Contains(errorBuf.String(), "first") || !strings.Contains(errorBuf.String(), "req.id=2") {
		t.Fatalf("error handler got unexpected output: %q", errorBuf.String())
	}
	if !strings.Contains(errorBuf.String(), "component=tee") {
		t.Fatalf("attrs not propagated: %q", errorBuf.String())
	}
}
