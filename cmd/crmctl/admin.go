package main

import (
	"context"
	"fmt"

	"github.com/Bu1gur/challenger-crm/internal/user"

	"github.com/spf13/cobra"
)

func newCreateAdminCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the first admin account if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, database, err := connect()
			if err != nil {
				return err
			}
			defer database.Close()

			svc := user.NewService(user.NewRepository(database), cfg.JWTSecret)
			created, err := svc.EnsureAdmin(context.Background(), name, email, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "account %s already exists\n", email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password (min 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
