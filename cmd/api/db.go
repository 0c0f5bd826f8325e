package main

import (
	"time"

	"festival-media-center/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the catalog and wishes tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := database.Open(cfg.Database, log)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info("Migration complete")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the gallery catalog and sample wishes",
	Long: `Migrates, then upserts the embedded gallery catalog and inserts the sample
wishes when the feed is empty. Running it twice is harmless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := database.Open(cfg.Database, log)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return err
		}
		seed, err := database.DefaultSeed()
		if err != nil {
			return err
		}
		if err := seed.Apply(cmd.Context(), db, time.Now()); err != nil {
			return err
		}
		log.Info("Seed complete")
		return nil
	},
}
