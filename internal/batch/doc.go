// Package batch encodes many canvas references at once.
//
// References come from TOML, YAML, or tab-separated files. Run fans them
// out to a bounded pool of workers and returns one Result per input, in
// input order, whether or not that item succeeded. Write renders results
// as TSV for people and JSON or CBOR for other programs.
package batch
