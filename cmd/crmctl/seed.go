package main

import (
	"context"
	"fmt"

	"github.com/Bu1gur/challenger-crm/internal/cache"
	"github.com/Bu1gur/challenger-crm/internal/reference"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace reference data (periods, payments, groups, freeze policy) with a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, database, err := connect()
			if err != nil {
				return err
			}
			defer database.Close()

			if file == "" {
				file = cfg.SeedFile
			}
			snap, err := reference.LoadSeed(file)
			if err != nil {
				return err
			}

			// The API caches the snapshot; drop it so the new data shows at once.
			var store cache.Cache = cache.Nop{}
			if rdb, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword); err == nil {
				defer rdb.Close()
				store = cache.NewRedisCache(rdb, cfg.CatalogTTL)
			}

			svc := reference.NewService(reference.NewRepository(database), store)
			if err := svc.Seed(context.Background(), snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d periods, %d payment methods, %d groups from %s\n",
				len(snap.Periods), len(snap.Payments), len(snap.Groups), file)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (defaults to SEED_FILE)")
	return cmd
}
