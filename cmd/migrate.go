package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ugandalearn/learn-service/pkg"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		db, err := pkg.InitDatabase(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()

		if err := pkg.AutoMigrate(db); err != nil {
			return err
		}
		logger.Info("Schema migrated", "tables", len(pkg.Models()))
		return nil
	},
}
