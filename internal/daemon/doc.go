// Package daemon runs contentstated, the long-lived HTTP front end for the
// encoder.
//
// It wires configuration, the history store, and the api.Service into a
// single lifecycle with flock-based locking so only one instance owns a data
// directory. Start runs preflight checks before the listener opens; a failed
// check aborts startup.
//
// Keep request handling thin: handlers decode the request, call the service,
// and map errors through api.ErrorStatus.
package daemon
