package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/FreightFlow/FreightFlow/internal/guard"
)

// SendNotificationTool delivers a notification through a named channel.
// Delivery is simulated; recipients are masked before they reach logs or
// results.
type SendNotificationTool struct{}

func NewSendNotificationTool() *SendNotificationTool { return &SendNotificationTool{} }

func (t *SendNotificationTool) Name() string { return "send_notification" }

func (t *SendNotificationTool) Description() string {
	return "Send a notification via email, slack, sms, or webhook"
}

func (t *SendNotificationTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"channel":   map[string]any{"type": "string", "description": "Notification channel (email, slack, sms, webhook)"},
			"recipient": map[string]any{"type": "string", "description": "Recipient identifier"},
			"message":   map[string]any{"type": "string", "description": "Notification body"},
			"subject":   map[string]any{"type": "string", "description": "Subject line for email"},
			"priority":  map[string]any{"type": "string", "description": "Priority (low, normal, high, urgent)"},
		},
		"required": []string{"channel", "recipient", "message"},
	}
}

func (t *SendNotificationTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	channel := GetString(params, "channel", "")
	recipient := GetString(params, "recipient", "")
	message := GetString(params, "message", "")
	if channel == "" || recipient == "" || message == "" {
		return errorResult("channel, recipient, and message are required"), nil
	}

	now := time.Now()
	masked := guard.Mask(recipient)
	result := map[string]any{
		"success":    true,
		"channel":    channel,
		"recipient":  masked,
		"message_id": fmt.Sprintf("msg_%s", now.Format("20060102_150405")),
		"timestamp":  now.Format(time.RFC3339),
		"priority":   GetString(params, "priority", "normal"),
	}

	switch channel {
	case "email":
		result["subject"] = GetString(params, "subject", "Workflow Notification")
	case "slack":
		result["workspace"] = "simulated_workspace"
	case "sms":
		result["carrier"] = "simulated_carrier"
	case "webhook":
		result["endpoint"] = masked
		result["http_method"] = "POST"
	default:
		return errorResult(fmt.Sprintf("Unsupported channel: %s", channel)), nil
	}

	slog.Info("Notification sent", "channel", channel, "recipient", masked)

	out, _ := json.Marshal(result)
	return string(out), nil
}
