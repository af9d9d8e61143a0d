// Command scxctl administers a SupplyChainX deployment: schema migrations,
// bootstrap accounts, refresh-token maintenance and health probes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"supplychainx.org/internal/config"
	"supplychainx.org/internal/store/pg"
)

var Version = "dev"

var dsn string

func main() {
	rootCmd := &cobra.Command{
		Use:           "scxctl",
		Short:         "SupplyChainX administration tool",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "PostgreSQL URL (default $SCX_DATABASE_URL)")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(tokensCmd())
	rootCmd.AddCommand(hashPasswordCmd())
	rootCmd.AddCommand(healthCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "scxctl:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if dsn != "" {
		cfg.DatabaseURL = dsn
	}
	if cfg.DatabaseURL == "" {
		return config.Config{}, fmt.Errorf("missing database URL: provide --dsn or SCX_DATABASE_URL")
	}
	return cfg, nil
}

func openStore() (*pg.Store, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	st, err := pg.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("open db: %w", err)
	}
	return st, cfg, nil
}
