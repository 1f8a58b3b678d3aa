package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sargunv/jvl/internal/lspserver"
	"github.com/sargunv/jvl/internal/rpc"
)

func newLSPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run the JSON Schema language server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLSP(cmd)
		},
	}
}

func runLSP(cmd *cobra.Command) error {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	conn := rpc.NewConn(os.Stdin, os.Stdout)
	server := lspserver.NewServer(conn, logger)

	if err := server.Run(); err != nil {
		return &exitError{code: 2, msg: err.Error()}
	}
	return nil
}
