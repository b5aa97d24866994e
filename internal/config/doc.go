// Package config loads, normalizes, and validates encoder configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CONTENTSTATE_API_BIND. The Config type centralizes the knobs the CLI and
// the encoding service need: where history and logs live, how batch runs
// are bounded, and which viewers receive generated tokens.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log settings, and clear validation errors.
package config
