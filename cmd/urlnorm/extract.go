package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devraulu/urlnorm/pkg/linkset"
	"github.com/devraulu/urlnorm/pkg/process"
)

func newExtractCommand(a *app) *cobra.Command {
	var (
		base   string
		byHost bool
		store  bool
	)

	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "List the distinct canonical links of an HTML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			extracted, err := process.ExtractLinks(f, base)
			if err != nil {
				return err
			}

			set := linkset.New(a.opts)
			for _, link := range extracted.Outlinks {
				if _, _, err := set.Add(link, base); err != nil {
					slog.Warn("couldn't normalize outlink", slog.String("url", link), slog.Any("err", err))
				}
			}

			slog.Info("extract complete",
				slog.String("title", extracted.Title),
				slog.Int("outlinks", len(extracted.Outlinks)),
				slog.Int("unique", set.Len()),
			)

			if store {
				if err := storeSet(cmd, a, set); err != nil {
					return err
				}
			}

			return writeSet(cmd, a.output, set, byHost)
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "URL the document was fetched from")
	cmd.Flags().BoolVar(&byHost, "by-host", false, "Group the output by host")
	cmd.Flags().BoolVar(&store, "store", false, "Persist the links to the configured database")
	_ = cmd.MarkFlagRequired("base")
	return cmd
}
