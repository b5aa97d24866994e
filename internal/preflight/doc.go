// Package preflight provides readiness checks for the filesystem paths,
// history database, and viewer endpoints the encoder depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and refuses to serve if any check
//     fails.
//   - The CLI "contentstate status" command shows the same results, and with
//     --probe also contacts each viewer (CheckViewerReachable).
//
// History checks are skipped when history is disabled.
package preflight
