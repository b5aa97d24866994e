package main

import (
	"github.com/spf13/cobra"
)

func newLinksCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "links <token|->",
		Short: "Print viewer links for a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := readToken(cmd, args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.service(cmd, false)
			if err != nil {
				return err
			}
			links, err := svc.Links(cmd.Context(), token)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, links)
			}
			printLinks(cmd, links)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print links as JSON")
	return cmd
}
