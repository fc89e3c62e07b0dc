package main

import (
	"fmt"

	"research-library-be/pkg/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the library tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		if err := database.MigrateLibrary(db); err != nil {
			return err
		}
		fmt.Println("Library tables are up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
