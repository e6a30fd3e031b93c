// Command ledgerctl runs FaithLedger maintenance tasks: schema migrations,
// seeding the default categories and creating accounts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"faithledger/internal/config"
	"faithledger/internal/database"
	"faithledger/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "FaithLedger maintenance commands",
	Long:          "ledgerctl manages the FaithLedger database. It reads the same environment and .env file as the server.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(createUserCmd())
}

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openDatabase loads the configuration and connects to the configured
// database. Callers must Close the manager.
func openDatabase() (*database.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	mgr, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return mgr, nil
}

func closeDatabase(mgr *database.Manager) {
	if err := mgr.Close(); err != nil {
		logger.Get().Warnf("failed to close database: %v", err)
	}
}
