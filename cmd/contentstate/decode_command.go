package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/api"
)

func newDecodeCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOutput bool
		fields     bool
	)

	cmd := &cobra.Command{
		Use:   "decode <token|->",
		Short: "Show the content state carried by a token",
		Long: "Show the JSON document carried by a token. Pass - to read the token\n" +
			"from stdin. --fields prints the canvas, manifest, and target instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := readToken(cmd, args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.service(cmd, false)
			if err != nil {
				return err
			}
			resp, err := svc.Decode(cmd.Context(), api.DecodeRequest{Token: token})
			if err != nil {
				return err
			}

			switch {
			case jsonOutput:
				return writeJSON(cmd, resp)
			case fields:
				if resp.Reference == nil {
					return fmt.Errorf("token carries a %s content state with no canvas reference", resp.Variant)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "canvas\t%s\n", resp.Reference.CanvasURL)
				fmt.Fprintf(out, "manifest\t%s\n", resp.Reference.ManifestURL)
				if resp.Reference.Target != "" {
					fmt.Fprintf(out, "target\t%s\n", resp.Reference.Target)
				}
				return nil
			default:
				var pretty bytes.Buffer
				if err := json.Indent(&pretty, resp.JSON, "", "  "); err != nil {
					return fmt.Errorf("format json: %w", err)
				}
				pretty.WriteByte('\n')
				_, err := cmd.OutOrStdout().Write(pretty.Bytes())
				return err
			}
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full response as JSON")
	cmd.Flags().BoolVar(&fields, "fields", false, "Print the canvas, manifest, and target")
	cmd.MarkFlagsMutuallyExclusive("json", "fields")
	return cmd
}

// readToken returns arg, or the first line of stdin when arg is "-".
func readToken(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 1<<20))
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	token, _, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("no token on stdin")
	}
	return token, nil
}
