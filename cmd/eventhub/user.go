package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"eventhub/db"
	"eventhub/models"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the identities shown on proposals",
	}

	var ident models.Identity
	var id string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create or update a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Store != "postgres" {
				return errors.New("users are stored in postgres; use --store=postgres")
			}
			ident.ID = uuid.New()
			if id != "" {
				parsed, err := uuid.Parse(id)
				if err != nil {
					return errors.Wrap(err, "invalid --id")
				}
				ident.ID = parsed
			}
			dbConn, err := db.Connect(cmd.Context(), a.cfg.PostgresConn)
			if err != nil {
				return err
			}
			defer dbConn.Close()
			if err := db.NewStorage(dbConn).UpsertIdentity(cmd.Context(), ident); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ident.ID)
			return nil
		},
	}
	add.Flags().StringVar(&id, "id", "", "user id (generated when empty)")
	add.Flags().StringVar(&ident.Name, "name", "", "display name")
	add.Flags().StringVar(&ident.Email, "email", "", "email address")
	add.Flags().StringVar(&ident.Role, "role", "student", "role: student, club, advisor, oca")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("email")

	cmd.AddCommand(add)
	return cmd
}
