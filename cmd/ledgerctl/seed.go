package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"faithledger/internal/services"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default income and expense categories",
		Long:  "Create any missing default categories and sub-categories. Existing rows are kept, so the command can be run repeatedly.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(mgr)

			if err := mgr.RunMigrations(); err != nil {
				return err
			}
			return seed(cmd.OutOrStdout(), mgr.DB())
		},
	}
}

func seed(out io.Writer, db *gorm.DB) error {
	result, err := services.SeedDefaults(db)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	fmt.Fprintf(out, "Seeded %d categories and %d sub-categories\n", result.Categories, result.SubCategories)
	return nil
}
