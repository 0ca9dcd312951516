package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FreightFlow/FreightFlow/internal/bus"
	"github.com/FreightFlow/FreightFlow/internal/config"
)

const defaultTelegramAPIBase = "https://api.telegram.org"

// TelegramChannel is a Telegram Bot API transport using long polling.
type TelegramChannel struct {
	BaseChannel
	config config.TelegramConfig
	client *http.Client
	cancel context.CancelFunc
	offset int64
}

type telegramUpdate struct {
	UpdateID int64            `json:"update_id"`
	Message  *telegramMessage `json:"message"`
}

type telegramMessage struct {
	MessageID int64         `json:"message_id"`
	From      *telegramUser `json:"from"`
	Chat      *telegramChat `json:"chat"`
	Date      int64         `json:"date"`
	Text      string        `json:"text"`
}

type telegramUser struct {
	ID int64 `json:"id"`
}

type telegramChat struct {
	ID int64 `json:"id"`
}

type telegramResponse struct {
	OK          bool             `json:"ok"`
	Result      []telegramUpdate `json:"result"`
	Description string           `json:"description"`
}

func NewTelegramChannel(cfg config.TelegramConfig, messageBus *bus.MessageBus) *TelegramChannel {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultTelegramAPIBase
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 30 * time.Second
	}
	return &TelegramChannel{
		BaseChannel: BaseChannel{Bus: messageBus},
		config:      cfg,
		client:      &http.Client{Timeout: cfg.PollTimeout + 10*time.Second},
	}
}

func (c *TelegramChannel) Name() string { return "telegram" }

// Start subscribes for outbound delivery and begins long polling.
func (c *TelegramChannel) Start(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}
	if strings.TrimSpace(c.config.Token) == "" {
		return fmt.Errorf("telegram: bot token is not configured")
	}

	pollCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.Bus.Subscribe(c.Name(), func(msg *bus.OutboundMessage) {
		if err := c.Send(pollCtx, msg); err != nil {
			slog.Error("Telegram send failed", "chat_id", msg.ChatID, "error", err)
		}
	})

	go c.pollLoop(pollCtx)
	slog.Info("Telegram channel started", "poll_timeout", c.config.PollTimeout)
	return nil
}

func (c *TelegramChannel) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

// Send delivers a message through the Bot API sendMessage method.
func (c *TelegramChannel) Send(ctx context.Context, msg *bus.OutboundMessage) error {
	body, _ := json.Marshal(map[string]any{
		"chat_id": msg.ChatID,
		"text":    msg.Content,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telegram sendMessage status: %d", resp.StatusCode)
	}
	return nil
}

func (c *TelegramChannel) pollLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		updates, err := c.getUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("Telegram poll failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}
		for _, update := range updates {
			if update.UpdateID >= c.offset {
				c.offset = update.UpdateID + 1
			}
			c.handleUpdate(update)
		}
	}
}

func (c *TelegramChannel) getUpdates(ctx context.Context) ([]telegramUpdate, error) {
	url := fmt.Sprintf("%s?offset=%d&timeout=%d", c.methodURL("getUpdates"), c.offset, int(c.config.PollTimeout.Seconds()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var parsed telegramResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("telegram getUpdates decode: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram getUpdates: %s", parsed.Description)
	}
	return parsed.Result, nil
}

func (c *TelegramChannel) handleUpdate(update telegramUpdate) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}
	c.Bus.PublishInbound(&bus.InboundMessage{
		Channel:   c.Name(),
		SenderID:  strconv.FormatInt(msg.From.ID, 10),
		ChatID:    strconv.FormatInt(msg.Chat.ID, 10),
		TraceID:   uuid.NewString(),
		Content:   msg.Text,
		Timestamp: time.Unix(msg.Date, 0),
	})
}

func (c *TelegramChannel) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", strings.TrimRight(c.config.APIBase, "/"), c.config.Token, method)
}
