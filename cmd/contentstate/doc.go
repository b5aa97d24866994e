// Package main hosts the contentstate CLI entrypoint and command graph.
//
// The Cobra-based command tree turns canvas references into IIIF content
// state tokens and back, renders viewer links, runs batch files, and manages
// the local history database. Every command goes through api.Service so the
// CLI and contentstated produce identical results. `status` and `logs`
// inspect a running daemon through its API and log file.
//
// Output adapts to the terminal: tables and viewer links when stdout is a
// TTY, plain tab-separated lines when piped.
package main
