package cmd

import (
	"log/slog"
	"os"

	"github.com/simonvc/simplebalance/internal/config"
	"github.com/spf13/cobra"
)

var (
	v      = config.New()
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "simplebalance",
	Short:         "Personal account balances and transactions",
	Long:          "A small personal ledger: accounts, their transactions newest first, and running balances.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v)
		if err != nil {
			return err
		}
		logger = cfg.Logger(os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("server", "http://localhost:8888", "Server address")
	flags.String("db", "simplebalance.db", "SQLite path, :memory: or postgres:// URL")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")

	v.BindPFlag(config.KeyServer, flags.Lookup("server"))
	v.BindPFlag(config.KeyDB, flags.Lookup("db"))
	v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
}

func Execute() error {
	return rootCmd.Execute()
}
