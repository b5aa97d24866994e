// Package api is the transport-agnostic service layer shared by the CLI and
// the HTTP daemon. It turns codec, viewer, batch, and history operations into
// JSON-tagged DTOs so both front ends render the same shapes.
//
// # Key Types
//
// Service: encode/decode/batch/history operations bound to one configuration
// and an optional history store.
//
// EncodeResponse/DecodeResponse: token plus structured state, recovered
// three-field reference, and viewer links.
//
// HistoryItem: transport representation of a history.Entry.
//
// # Design Notes
//
// DTO fields use camelCase JSON tags. The embedded ContentState keeps its own
// IIIF key names. Timestamps use RFC3339 with milliseconds.
//
// History writes are best effort: a failed Record is logged and the encode
// still succeeds.
package api
