package main

import (
	"github.com/spf13/cobra"

	"github.com/devraulu/urlnorm/pkg/storage"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context(), a.cfg.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if len(args) == 1 && args[0] == "down" {
				return storage.RollbackMigrations(db)
			}
			return storage.RunMigrations(db)
		},
	}
}
