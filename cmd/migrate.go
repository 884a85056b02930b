package main

import (
	"github.com/eerojala/My-video-game-collection/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		conn, err := db.OpenAndMigrate(cfg)
		if err != nil {
			return err
		}
		defer db.Close(conn)

		log.WithField("driver", cfg.DBDriver).Info("Database migrated")
		return nil
	},
}
