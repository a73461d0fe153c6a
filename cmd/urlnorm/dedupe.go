package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devraulu/urlnorm/pkg/linkset"
)

type hostGroup struct {
	Host  string         `json:"host" yaml:"host"`
	Links []linkset.Link `json:"links" yaml:"links"`
}

func newDedupeCommand(a *app) *cobra.Command {
	var (
		byHost bool
		store  bool
	)

	cmd := &cobra.Command{
		Use:   "dedupe FILE",
		Short: "Collapse a list of URLs to one entry per canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set := linkset.New(a.opts)
			if err := loadSet(cmd, args[0], set); err != nil {
				return err
			}

			if store {
				if err := storeSet(cmd, a, set); err != nil {
					return err
				}
			}

			slog.Info("dedupe complete", slog.Int("unique", set.Len()), slog.Int("duplicates", set.Duplicates()))
			return writeSet(cmd, a.output, set, byHost)
		},
	}

	cmd.Flags().BoolVar(&byHost, "by-host", false, "Group the output by host")
	cmd.Flags().BoolVar(&store, "store", false, "Persist the links to the configured database")
	return cmd
}

// loadSet reads path into set, or the command's stdin for "-".
func loadSet(cmd *cobra.Command, path string, set *linkset.Set) error {
	if path != "-" {
		return linkset.LoadFile(path, set)
	}
	return linkset.Load(cmd.InOrStdin(), set)
}

func storeSet(cmd *cobra.Command, a *app, set *linkset.Set) error {
	s, err := openStore(cmd.Context(), a.cfg.DSN)
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = saveLinks(cmd.Context(), s, set.Links())
	return err
}

func writeSet(cmd *cobra.Command, format string, set *linkset.Set, byHost bool) error {
	enc := newEncoder(format, cmd.OutOrStdout())

	if !byHost {
		links := set.Links()
		if format != "text" {
			if err := enc.encode(links, ""); err != nil {
				return err
			}
			return enc.close()
		}
		for _, l := range links {
			if err := enc.encode(nil, l.Normalized); err != nil {
				return err
			}
		}
		return nil
	}

	var groups []hostGroup
	for _, h := range set.Hosts() {
		groups = append(groups, hostGroup{Host: h, Links: set.ByHost(h)})
	}

	if format != "text" {
		if err := enc.encode(groups, ""); err != nil {
			return err
		}
		return enc.close()
	}
	for _, g := range groups {
		host := g.Host
		if host == "" {
			host = "(no host)"
		}
		if err := enc.encode(nil, host); err != nil {
			return err
		}
		for _, l := range g.Links {
			if err := enc.encode(nil, "  "+l.Normalized); err != nil {
				return err
			}
		}
	}
	return nil
}
