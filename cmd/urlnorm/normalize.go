package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devraulu/urlnorm/pkg/batch"
)

type normalizeRecord struct {
	Input      string `json:"input" yaml:"input"`
	Normalized string `json:"normalized,omitempty" yaml:"normalized,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newNormalizeCommand(a *app) *cobra.Command {
	var (
		workers   int
		inputFile string
	)

	cmd := &cobra.Command{
		Use:   "normalize [url...]",
		Short: "Normalize URLs from the arguments, a file or stdin",
		Long: `Normalize prints one canonical URL per input, in input order.

Inputs come from the arguments when given, otherwise from --input, the
configured batch.input_file, or stdin. Blank lines and lines starting
with '#' are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if workers > 0 {
				a.cfg.Batch.Workers = workers
			}
			if inputFile == "" {
				inputFile = a.cfg.Batch.InputFile
			}

			var (
				inputs  <-chan string
				readErr = func() error { return nil }
			)
			switch {
			case len(args) > 0:
				inputs = batch.Slice(ctx, args)
			case inputFile != "":
				f, err := openInput(cmd, inputFile)
				if err != nil {
					return err
				}
				defer f.Close()
				inputs, readErr = batch.Lines(ctx, f)
			default:
				inputs, readErr = batch.Lines(ctx, cmd.InOrStdin())
			}

			enc := newEncoder(a.output, cmd.OutOrStdout())
			runner := batch.New(a.cfg.Batch.Workers, a.opts)

			var writeErr error
			err := runner.Run(ctx, inputs, func(res batch.Result) {
				if res.Skipped || writeErr != nil {
					return
				}

				rec := normalizeRecord{Input: res.Input, Normalized: res.Normalized}
				if res.Err != nil {
					if a.output == "text" {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.Input, res.Err)
						return
					}
					rec.Error = res.Err.Error()
				}
				writeErr = enc.encode(rec, res.Normalized)
			})
			if err != nil {
				return err
			}
			if writeErr != nil {
				return writeErr
			}
			if err := readErr(); err != nil {
				return err
			}
			if err := enc.close(); err != nil {
				return err
			}

			if n := runner.Stats.Errored; n > 0 {
				slog.Warn("some inputs failed", slog.Int("errored", n))
				return fmt.Errorf("%d of %d inputs could not be normalized", n, n+runner.Stats.Processed)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of workers (defaults to batch.workers)")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read URLs from this file, one per line (- for stdin)")
	return cmd
}
