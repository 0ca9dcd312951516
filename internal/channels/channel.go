package channels

import (
	"context"
	"strings"

	"github.com/FreightFlow/FreightFlow/internal/bus"
)

// Channel defines the interface for chat platforms (Telegram, etc).
type Channel interface {
	// Name returns the channel name (e.g. "telegram").
	Name() string
	// Start starts the channel listener.
	Start(ctx context.Context) error
	// Stop stops the channel listener.
	Stop() error
	// Send sends a message to a specific chat.
	Send(ctx context.Context, msg *bus.OutboundMessage) error
}

// BaseChannel provides common functionality for channels.
type BaseChannel struct {
	Bus *bus.MessageBus
}

// Authorized reports whether a sender may use the channel. An empty
// allowlist admits everyone.
func Authorized(senderID string, allowFrom []string) bool {
	if len(allowFrom) == 0 {
		return true
	}
	senderID = strings.TrimSpace(senderID)
	for _, allowed := range allowFrom {
		if strings.TrimSpace(allowed) == senderID {
			return true
		}
	}
	return false
}
