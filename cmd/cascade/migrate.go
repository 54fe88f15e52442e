package main

import (
	"github.com/spf13/cobra"

	"github.com/cascadehq/cascade/internal/config"
	"github.com/cascadehq/cascade/internal/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			gdb, err := db.Connect(cfg.DB)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(gdb); err != nil {
				return err
			}
			cmd.Println("Schema is up to date.")
			return nil
		},
	}
}
