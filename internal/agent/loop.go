// Package agent runs the gateway loop between chat channels and the
// booking pipeline.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/FreightFlow/FreightFlow/internal/bus"
	"github.com/FreightFlow/FreightFlow/internal/channels"
	"github.com/FreightFlow/FreightFlow/internal/guard"
	"github.com/FreightFlow/FreightFlow/internal/pipeline"
	"github.com/FreightFlow/FreightFlow/internal/workflow"
)

const unsafeContentReply = "Message contains potentially unsafe content and was not processed."

// LoopOptions configures the agent loop.
type LoopOptions struct {
	Bus          *bus.MessageBus
	Guard        *guard.Guard
	Tracker      *workflow.Tracker
	Pipeline     *pipeline.Pipeline
	AllowFrom    []string
	HistoryLimit int
}

// Loop consumes inbound messages, runs the pipeline, and publishes
// replies.
type Loop struct {
	bus          *bus.MessageBus
	guard        *guard.Guard
	tracker      *workflow.Tracker
	pipeline     *pipeline.Pipeline
	allowFrom    []string
	historyLimit int
	running      atomic.Bool
	wg           sync.WaitGroup
}

// NewLoop creates a new agent loop.
func NewLoop(opts LoopOptions) *Loop {
	return &Loop{
		bus:          opts.Bus,
		guard:        opts.Guard,
		tracker:      opts.Tracker,
		pipeline:     opts.Pipeline,
		allowFrom:    opts.AllowFrom,
		historyLimit: opts.HistoryLimit,
	}
}

// Run consumes inbound messages until the context is cancelled. Each
// message is handled on its own goroutine so slow bookings never block
// the queue.
func (l *Loop) Run(ctx context.Context) error {
	l.running.Store(true)
	slog.Info("Agent loop started")

	for l.running.Load() {
		msg, err := l.bus.ConsumeInbound(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.wg.Wait()
				return nil // Context cancelled, normal shutdown
			}
			slog.Error("Failed to consume message", "error", err)
			continue
		}

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.handle(ctx, msg)
		}()
	}
	l.wg.Wait()
	return nil
}

// Stop signals the agent loop to stop.
func (l *Loop) Stop() {
	l.running.Store(false)
}

func (l *Loop) handle(ctx context.Context, msg *bus.InboundMessage) {
	reply, workflowID := l.process(ctx, msg)
	if reply == "" {
		return
	}
	l.bus.PublishOutbound(&bus.OutboundMessage{
		Channel:    msg.Channel,
		ChatID:     msg.ChatID,
		TraceID:    msg.TraceID,
		WorkflowID: workflowID,
		Content:    reply,
	})
}

// process returns the reply text and, when the message started a
// workflow, its id.
func (l *Loop) process(ctx context.Context, msg *bus.InboundMessage) (string, string) {
	if !channels.Authorized(msg.SenderID, l.allowFrom) {
		l.guard.LogUnauthorized(msg.SenderID, msg.Content)
		return "You are not authorized to use this service.", ""
	}

	if reply, handled := l.handleCommand(msg); handled {
		return reply, ""
	}

	if !l.guard.Validate(msg.Content) {
		return unsafeContentReply, ""
	}

	workflowID := l.tracker.Create(msg.SenderID, msg.Content, msg.Timestamp)

	task := &pipeline.Task{
		WorkflowID: workflowID,
		UserID:     msg.SenderID,
		Message:    l.guard.Sanitize(msg.Content),
	}
	result, err := l.pipeline.Execute(ctx, task)
	if err != nil {
		if markErr := l.tracker.MarkFailed(workflowID, err.Error()); markErr != nil {
			slog.Error("Failed to mark workflow failed", "workflow_id", workflowID, "error", markErr)
		}
		return fmt.Sprintf("Sorry, something went wrong processing your request (workflow %s).", workflowID), workflowID
	}

	if err := l.tracker.MarkCompleted(workflowID, result); err != nil {
		slog.Error("Failed to mark workflow completed", "workflow_id", workflowID, "error", err)
	}
	for _, step := range task.Findings {
		if err := l.tracker.AppendStep(workflowID, "finding", step); err != nil {
			break
		}
	}
	return FormatResult(workflowID, result), workflowID
}

func (l *Loop) handleCommand(msg *bus.InboundMessage) (string, bool) {
	command := strings.Fields(strings.TrimSpace(msg.Content))
	if len(command) == 0 || !strings.HasPrefix(command[0], "/") {
		return "", false
	}
	switch command[0] {
	case "/start":
		return "Welcome to FreightFlow! Describe your trip, e.g. " +
			"\"Book a truck to Miami from 2026-09-01 to 2026-09-05\".", true
	case "/help":
		return "Commands:\n" +
			"/start - introduction\n" +
			"/status - agent component health\n" +
			"/history - your recent workflows\n" +
			"Anything else is treated as a booking request.", true
	case "/status":
		return FormatStatus(workflow.Health(l.pipeline.HealthProbes()), l.tracker.ActiveCount()), true
	case "/history":
		return FormatHistory(l.tracker.HistoryFor(msg.SenderID, l.historyLimit)), true
	default:
		return fmt.Sprintf("Unknown command %s. Try /help.", command[0]), true
	}
}
