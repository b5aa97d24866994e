// Package logging assembles structured slog loggers and formatting helpers
// used by the CLI and the encoding service.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so HTTP handlers tag log
// lines with their request ID. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
package logging
