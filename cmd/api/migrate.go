package main

import (
	"Local_Market/internal/config"
	"Local_Market/internal/repository/mysql"

	"github.com/spf13/cobra"
)

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log)
			db, err := mysql.Open(cfg.MySQL.DSN)
			if err != nil {
				return err
			}
			if err := mysql.AutoMigrate(db); err != nil {
				return err
			}
			logger.Info("migration finished")
			return nil
		},
	}
}
