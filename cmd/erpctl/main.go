// Command erpctl is the operator CLI: it applies migrations, loads catalog
// seed files and mints development tokens.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stemsi/unierp-backend/internal/config"
	"github.com/stemsi/unierp-backend/internal/logger"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "erpctl",
		Short:        "Operate the UniERP backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection string (default from DATABASE_URL)")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")

	root.AddCommand(
		newMigrateCmd(cfg),
		newSeedCmd(cfg),
		newTokenCmd(cfg),
	)
	return root
}

// cliLogger writes to stderr so command output on stdout stays pipeable.
func cliLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat, term.IsTerminal(int(os.Stderr.Fd())))
}

func main() {
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}
