package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/api"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage recorded tokens",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryRemoveCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recorded tokens, most recently used first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.historyService(cmd)
			if err != nil {
				return err
			}
			items, err := svc.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "History is empty")
				return nil
			}
			return writeRows(cmd.OutOrStdout(), historyHeaders, historyRows(items), historyAligns)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")
	return cmd
}

var (
	historyHeaders = []string{"ID", "Variant", "Canvas", "Target", "Uses", "Last Used"}
	historyAligns  = []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
)

func historyRows(items []api.HistoryItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			shortID(item.ID),
			item.Variant,
			item.Canvas,
			item.Target,
			strconv.Itoa(item.UseCount),
			item.LastUsedAt,
		})
	}
	return rows
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.historyService(cmd)
			if err != nil {
				return err
			}
			item, err := svc.HistoryEntry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, item)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:         %s\n", item.ID)
			fmt.Fprintf(out, "Variant:    %s\n", item.Variant)
			fmt.Fprintf(out, "Canvas:     %s\n", item.Canvas)
			fmt.Fprintf(out, "Manifest:   %s\n", item.Manifest)
			if item.Target != "" {
				fmt.Fprintf(out, "Target:     %s\n", item.Target)
			}
			fmt.Fprintf(out, "Created:    %s\n", item.CreatedAt)
			fmt.Fprintf(out, "Last used:  %s (%d uses)\n", item.LastUsedAt, item.UseCount)
			fmt.Fprintf(out, "Token:      %s\n", item.Token)
			for _, link := range item.Links {
				fmt.Fprintf(out, "%-11s %s\n", link.Label+":", link.URL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the entry as JSON")
	return cmd
}

func newHistoryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Remove recorded tokens by id or id prefix",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.historyService(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range args {
				item, err := svc.RemoveHistory(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %s (%s)\n", shortID(item.ID), item.Canvas)
			}
			return nil
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every recorded token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.historyService(cmd)
			if err != nil {
				return err
			}
			resp, err := svc.ClearHistory(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries\n", resp.Removed)
			return nil
		},
	}
}
