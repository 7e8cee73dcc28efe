package main

import (
	"github.com/spf13/cobra"

	"lexiguard-backend/internal/bootstrap"
	"lexiguard-backend/internal/mcpserver"
	"lexiguard-backend/internal/shared/config"
	"lexiguard-backend/internal/shared/telemetry"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve analyze_document and ask_document as MCP tools over stdio",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, _ []string) error {
	// stdout carries the protocol; logs would corrupt it.
	telemetry.SetOutput(cmd.ErrOrStderr())

	cfg := config.Load()
	core, closeFn, err := bootstrap.OpenCore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := mcpserver.NewServer(version, core.Pipeline, core.Chat)
	srv.MaxFileBytes = cfg.MaxUploadBytes
	return srv.Run(cmd.Context())
}
