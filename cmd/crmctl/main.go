// Command crmctl runs maintenance tasks against the Challenger CRM database.
package main

import (
	"fmt"
	"os"

	"github.com/Bu1gur/challenger-crm/internal/config"
	"github.com/Bu1gur/challenger-crm/internal/db"
	"github.com/Bu1gur/challenger-crm/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

func main() {
	logger.Init()
	defer logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "Challenger CRM maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd(), newQuoteCmd(), newCreateAdminCmd())
	return root
}

// connect loads the config and opens the database.
func connect() (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return cfg, database, nil
}
