package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/api"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/viewer"
)

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOutput bool
		noHistory  bool
		showLinks  bool
	)

	cmd := &cobra.Command{
		Use:   "encode <canvas-url> <manifest-url> [target]",
		Short: "Build a content state token for a canvas",
		Long: "Build a content state token for a canvas in a manifest.\n\n" +
			"Without a target the token describes the whole Canvas. A target such as\n" +
			"xywh=100,100,500,300 or t=30,60 produces an Annotation that points at\n" +
			"that region of the Canvas.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.service(cmd, !noHistory)
			if err != nil {
				return err
			}
			req := api.EncodeRequest{Canvas: args[0], Manifest: args[1], NoHistory: noHistory}
			if len(args) == 3 {
				req.Target = args[2]
			}
			resp, err := svc.Encode(cmd.Context(), req)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Token)
			if showLinks || isTerminal(out) {
				printLinks(cmd, resp.Links)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full response as JSON")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the token in history")
	cmd.Flags().BoolVar(&showLinks, "links", false, "Print viewer links even when stdout is not a terminal")
	return cmd
}

func printLinks(cmd *cobra.Command, links []viewer.Link) {
	out := cmd.OutOrStdout()
	for _, link := range links {
		fmt.Fprintf(out, "%s\t%s\n", link.Label, link.URL)
	}
}
