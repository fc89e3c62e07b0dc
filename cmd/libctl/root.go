package main

import (
	"errors"
	"fmt"
	"os"

	"research-library-be/internal/config"
	"research-library-be/pkg/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "libctl",
	Short: "Operations tooling for the research library backend",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDatabase() (*gorm.DB, error) {
	if cfg.Database.Connection == "" {
		return nil, errors.New("DB_CONNECTION_STRING is not set")
	}
	return database.NewGormDB(database.GormConfig{
		DSN:             cfg.Database.Connection,
		MaxIdleConns:    2,
		MaxOpenConns:    4,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		SlowThreshold:   cfg.Database.SlowQuery,
		Verbose:         verbose,
	})
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log SQL statements")
}
