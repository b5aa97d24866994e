package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/api"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/config"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, readiness checks, and daemon state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			lines := renderSectionHeader("Configuration", colorize)
			configDetail := ctx.configPath
			if !ctx.configExists {
				configDetail += " (not found, using defaults)"
			}
			lines = append(lines,
				renderStatusLine("Config", statusInfo, configDetail, colorize),
				renderStatusLine("History", statusInfo, yesNo(cfg.History.Enabled), colorize),
			)

			checks := preflight.RunAll(cmd.Context(), cfg)
			if probe {
				checks = append(checks, preflight.Probe(cmd.Context(), cfg)...)
			}
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Checks", colorize)...)
			lines = append(lines, checkLines(checks, colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Daemon", colorize)...)
			kind, detail := daemonState(cmd.Context(), cfg)
			lines = append(lines, renderStatusLine("contentstated", kind, detail, colorize))

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if failed := preflight.Failed(checks); len(failed) > 0 {
				return fmt.Errorf("%d readiness checks failed", len(failed))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Also contact each configured viewer over the network")
	return cmd
}

// daemonState asks a running contentstated for its status.
func daemonState(ctx context.Context, cfg *config.Config) (statusKind, string) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" || strings.HasSuffix(bind, ":0") {
		return statusWarn, "no fixed api_bind configured"
	}
	host := bind
	if strings.HasPrefix(host, "0.0.0.0:") || strings.HasPrefix(host, ":") {
		host = "127.0.0.1:" + host[strings.LastIndex(host, ":")+1:]
	}

	reqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, "http://"+host+"/api/status", nil)
	if err != nil {
		return statusWarn, err.Error()
	}
	if cfg.Paths.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Paths.APIToken)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return statusWarn, fmt.Sprintf("not running at %s", host)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError, fmt.Sprintf("%s responded %d", host, resp.StatusCode)
	}
	var status api.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return statusError, fmt.Sprintf("decode status: %v", err)
	}
	return statusOK, fmt.Sprintf("running at %s (pid %d, %d history entries)", host, status.PID, status.HistoryEntries)
}
