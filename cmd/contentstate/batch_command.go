package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/api"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/batch"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/contentstate"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		workers     int
		format      string
		outputPath  string
		inputFormat string
	)

	cmd := &cobra.Command{
		Use:   "batch <file|->",
		Short: "Encode every reference in a TOML, YAML, or TSV file",
		Long: "Encode every reference in a file. The syntax follows the extension:\n" +
			"  .toml        [[reference]] tables with canvas, manifest, target\n" +
			"  .yaml/.yml   a references: list with the same keys\n" +
			"  .tsv/.txt    canvas<TAB>manifest[<TAB>target] lines, # comments\n\n" +
			"Pass - with --input-format to read stdin. Results keep input order.\n" +
			"The command exits non-zero when any reference fails.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := batch.ParseOutputFormat(strings.ToLower(strings.TrimSpace(format)))
			if err != nil {
				return err
			}
			refs, err := loadReferences(cmd, args[0], inputFormat)
			if err != nil {
				return err
			}
			svc, err := ctx.service(cmd, false)
			if err != nil {
				return err
			}
			results, err := svc.RunBatch(cmd.Context(), api.BatchRequest{References: refs, Workers: workers})
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(cmd, outputPath)
			if err != nil {
				return err
			}
			if outFormat == batch.OutputCBOR && outputPath == "" && isTerminal(out) {
				return errors.New("refusing to write CBOR to a terminal; use --output or redirect stdout")
			}
			writeErr := batch.Write(out, results, outFormat)
			if err := closeOut(); err != nil && writeErr == nil {
				writeErr = err
			}
			if writeErr != nil {
				return fmt.Errorf("write results: %w", writeErr)
			}

			summary := batch.Summarize(results)
			fmt.Fprintf(cmd.ErrOrStderr(), "Encoded %d of %d references (%d failed)\n", summary.Encoded, summary.Total, summary.Failed)
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d references failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent encoders (default from [batch] workers)")
	cmd.Flags().StringVarP(&format, "format", "f", "tsv", "Output format: tsv, json, or cbor")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write results to a file instead of stdout")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "Input syntax when reading stdin: toml, yaml, or tsv")
	return cmd
}

func loadReferences(cmd *cobra.Command, path, inputFormat string) ([]contentstate.CanvasReference, error) {
	if path != "-" {
		if inputFormat == "" {
			return batch.Load(path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read batch file: %w", err)
		}
		return batch.Parse(data, batch.InputFormat(strings.ToLower(inputFormat)))
	}
	if inputFormat == "" {
		return nil, errors.New("--input-format is required when reading from stdin")
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return batch.Parse(data, batch.InputFormat(strings.ToLower(inputFormat)))
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if strings.TrimSpace(path) == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return file, file.Close, nil
}
