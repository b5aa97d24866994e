package preflight

import (
	"context"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the offline preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckViewers(cfg.Viewers))
	if cfg.History.Enabled {
		results = append(results, CheckHistory(ctx, cfg))
	}
	return results
}

// Probe contacts every configured viewer.
func Probe(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := make([]Result, 0, len(cfg.Viewers))
	for _, v := range cfg.Viewers {
		results = append(results, CheckViewerReachable(ctx, v))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
