package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/FreightFlow/FreightFlow/internal/audit"
	"github.com/FreightFlow/FreightFlow/internal/config"
	"github.com/FreightFlow/FreightFlow/internal/guard"
	"github.com/FreightFlow/FreightFlow/internal/mcpserver"
	"github.com/FreightFlow/FreightFlow/internal/tools"
	"github.com/FreightFlow/FreightFlow/internal/workflow"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the booking tools over the Model Context Protocol (stdio)",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol, so logs go to stderr as JSON.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	auditLog := audit.NewLog(cfg.Guard.AuditLogPath)
	g := guard.New(cfg.Guard, auditLog)
	registry := tools.NewDefaultRegistry(cfg.Booking, tools.DefaultDecider)

	ms := mcpserver.NewMCPServer(version, cfg, registry, g, workflow.NewTracker())
	slog.Info("MCP server starting", "version", version)
	return ms.Serve()
}
