package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"faithledger/internal/database"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or roll back the SQL migrations embedded in the binary.

Postgres databases are migrated with the SQL files. SQLite databases are
synchronised from the models by "migrate up" and do not track versions.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
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
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [N]",
		Short: "Roll back the last N migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := stepCount(args)
			if err != nil {
				return err
			}
			return withMigrator(func(m *migrate.Migrate) error {
				if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return fmt.Errorf("migration down failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s)\n", steps)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *migrate.Migrate) error {
				version, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					fmt.Fprintln(cmd.OutOrStdout(), "No migrations applied")
					return nil
				}
				if err != nil {
					return fmt.Errorf("failed to get version: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Version: %d, Dirty: %v\n", version, dirty)
				return nil
			})
		},
	})

	return cmd
}

// stepCount parses the optional step argument of "migrate down".
func stepCount(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps < 1 {
		return 0, fmt.Errorf("invalid step count %q", args[0])
	}
	return steps, nil
}

func withMigrator(fn func(m *migrate.Migrate) error) error {
	mgr, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDatabase(mgr)

	m, err := mgr.Migrator()
	if err != nil {
		return err
	}
	defer database.CloseMigrator(m)
	return fn(m)
}
