package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/FreightFlow/FreightFlow/internal/agent"
	"github.com/FreightFlow/FreightFlow/internal/audit"
	"github.com/FreightFlow/FreightFlow/internal/bus"
	"github.com/FreightFlow/FreightFlow/internal/channels"
	"github.com/FreightFlow/FreightFlow/internal/config"
	"github.com/FreightFlow/FreightFlow/internal/guard"
	"github.com/FreightFlow/FreightFlow/internal/pipeline"
	"github.com/FreightFlow/FreightFlow/internal/tools"
	"github.com/FreightFlow/FreightFlow/internal/workflow"
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the booking gateway (Telegram)",
	Run:   runGateway,
}

func runGateway(cmd *cobra.Command, args []string) {
	printHeader("🌐 FreightFlow Gateway")
	fmt.Println("Starting FreightFlow Gateway...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	auditLog := audit.NewLog(cfg.Guard.AuditLogPath)
	g := guard.New(cfg.Guard, auditLog)
	tracker := workflow.NewTracker()
	registry := tools.NewDefaultRegistry(cfg.Booking, tools.DefaultDecider)
	messageBus := bus.NewMessageBus()

	loop := agent.NewLoop(agent.LoopOptions{
		Bus:          messageBus,
		Guard:        g,
		Tracker:      tracker,
		Pipeline:     pipeline.Default(registry, g),
		AllowFrom:    cfg.Telegram.AllowFrom,
		HistoryLimit: cfg.Workflow.HistoryLimit,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var active []channels.Channel
	if cfg.Telegram.Enabled {
		telegram := channels.NewTelegramChannel(cfg.Telegram, messageBus)
		if err := telegram.Start(ctx); err != nil {
			fmt.Printf("Telegram channel error: %v\n", err)
			os.Exit(1)
		}
		active = append(active, telegram)
		fmt.Println("Telegram: ✓ Listening")
	} else {
		fmt.Println("Telegram: ✗ Disabled (set FREIGHTFLOW_TELEGRAM_ENABLED=true)")
	}

	go messageBus.DispatchOutbound(ctx)
	go loop.Run(ctx)

	fmt.Println("Gateway running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	loop.Stop()
	cancel()
	for _, ch := range active {
		if err := ch.Stop(); err != nil {
			slog.Error("Channel stop failed", "channel", ch.Name(), "error", err)
		}
	}
}
