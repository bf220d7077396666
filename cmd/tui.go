package cmd

import (
	"context"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/simonvc/simplebalance/internal/client"
	"github.com/simonvc/simplebalance/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverAddr := cfg.Server

		if !cmd.Flags().Changed("server") {
			// Log lines would tear the alt screen.
			quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			addr, stop, err := startEmbedded(ctx, quiet)
			if err != nil {
				return err
			}
			defer stop()
			serverAddr = addr
		}

		app := tui.NewApp(client.New(serverAddr))
		p := tea.NewProgram(app, tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
