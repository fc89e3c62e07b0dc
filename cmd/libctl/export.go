package main

import (
	"context"
	"errors"
	"fmt"

	"research-library-be/internal/entity"
	"research-library-be/internal/repository/local"
	"research-library-be/internal/repository/unitofwork"
	"research-library-be/pkg/database"
	"research-library-be/pkg/export"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	exportUser  string
	exportGuest string
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a library to markdown files with YAML front matter",
	Example: `  libctl export --user 3f0c... --out ./backup
  libctl export --guest 9a1b... --out ./guest-backup`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (exportUser == "") == (exportGuest == "") {
			return errors.New("exactly one of --user or --guest is required")
		}

		var (
			uow   unitofwork.UnitOfWork
			owner uuid.UUID
			err   error
		)
		ctx := context.Background()

		if exportUser != "" {
			if owner, err = uuid.Parse(exportUser); err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			db, err := openDatabase()
			if err != nil {
				return err
			}
			uow = unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)
		} else {
			if owner, err = uuid.Parse(exportGuest); err != nil {
				return fmt.Errorf("invalid --guest: %w", err)
			}
			if cfg.Library.LocalStorePath == "" {
				return errors.New("LIBRARY_LOCAL_STORE_PATH is not set")
			}
			kv, err := database.OpenBadger(database.BadgerConfig{Path: cfg.Library.LocalStorePath})
			if err != nil {
				return err
			}
			defer kv.Close()
			uow = local.NewRepositoryFactory(kv).NewUnitOfWork(ctx)
		}

		counts, err := export.Library(ctx, uow, owner, exportOut)
		if err != nil {
			return err
		}
		for _, kind := range entity.Kinds {
			fmt.Printf("%-11s %d\n", kind, counts[kind])
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportUser, "user", "", "user id (hosted database)")
	exportCmd.Flags().StringVar(&exportGuest, "guest", "", "guest id (local store)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "export", "output directory")
	rootCmd.AddCommand(exportCmd)
}
