package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/simonvc/simplebalance/internal/config"
	"github.com/simonvc/simplebalance/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		b, closeBook, err := openBook(ctx, logger)
		if err != nil {
			return err
		}
		defer closeBook()

		srv := server.New(b, cfg.Addr, logger)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8888", "Listen address")
	serveCmd.Flags().String("save-timeout", "10s", "Timeout for each ledger write")
	v.BindPFlag(config.KeyAddr, serveCmd.Flags().Lookup("addr"))
	v.BindPFlag(config.KeySaveTimeout, serveCmd.Flags().Lookup("save-timeout"))
	rootCmd.AddCommand(serveCmd)
}
