package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"eventhub/db"
	"eventhub/db/migrations"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|redo|version|reset]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status", "redo", "version", "reset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Store != "postgres" {
				return errors.New("migrations need --store=postgres")
			}
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}
			dbConn, err := db.Connect(cmd.Context(), a.cfg.PostgresConn)
			if err != nil {
				return err
			}
			defer dbConn.Close()
			return migrations.Run(cmd.Context(), dbConn.DB, command)
		},
	}
}
