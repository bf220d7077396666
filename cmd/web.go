package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/simonvc/simplebalance/internal/web"
	"github.com/spf13/cobra"
)

var (
	webPort int
	webHost string
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Launch the TUI in a browser terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		apiAddr := cfg.Server
		if !cmd.Flags().Changed("server") {
			addr, stopEmbedded, err := startEmbedded(ctx, logger)
			if err != nil {
				return err
			}
			defer stopEmbedded()
			apiAddr = addr
		}

		listenAddr := net.JoinHostPort(webHost, fmt.Sprintf("%d", webPort))
		fmt.Printf("simplebalance web UI: http://%s\n", listenAddr)

		webSrv := web.NewServer(listenAddr, apiAddr, logger)
		return webSrv.ListenAndServe(ctx)
	},
}

func init() {
	webCmd.Flags().IntVar(&webPort, "port", 8833, "HTTP port for web terminal")
	webCmd.Flags().StringVar(&webHost, "host", "localhost", "HTTP host for web terminal")
	rootCmd.AddCommand(webCmd)
}
