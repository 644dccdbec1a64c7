package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStorage()
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Migrate(cmd.Context())
	},
}
