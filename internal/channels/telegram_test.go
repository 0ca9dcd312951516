package channels

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FreightFlow/FreightFlow/internal/bus"
	"github.com/FreightFlow/FreightFlow/internal/config"
)

func TestAuthorized(t *testing.T) {
	cases := []struct {
		name      string
		senderID  string
		allowFrom []string
		want      bool
	}{
		{"empty allowlist admits everyone", "12345", nil, true},
		{"listed sender", "12345", []string{"12345", "67890"}, true},
		{"unlisted sender", "99999", []string{"12345"}, false},
		{"allowlist entries are trimmed", "12345", []string{" 12345 "}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Authorized(tc.senderID, tc.allowFrom); got != tc.want {
				t.Fatalf("Authorized(%q, %v) = %v, want %v", tc.senderID, tc.allowFrom, got, tc.want)
			}
		})
	}
}

func TestTelegramSend(t *testing.T) {
	var gotPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["chat_id"] != "42" || payload["text"] != "Trip booked" {
			t.Errorf("unexpected payload: %v", payload)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewTelegramChannel(config.TelegramConfig{
		Enabled: true,
		Token:   "test-token",
		APIBase: srv.URL,
	}, bus.NewMessageBus())

	err := c.Send(context.Background(), &bus.OutboundMessage{ChatID: "42", Content: "Trip booked"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if path, _ := gotPath.Load().(string); !strings.HasSuffix(path, "/bottest-token/sendMessage") {
		t.Fatalf("request path = %q", path)
	}
}

func TestTelegramSendReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewTelegramChannel(config.TelegramConfig{Token: "bad", APIBase: srv.URL}, bus.NewMessageBus())
	if err := c.Send(context.Background(), &bus.OutboundMessage{ChatID: "1", Content: "x"}); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestTelegramPollPublishesInbound(t *testing.T) {
	var served atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/getUpdates") {
			w.Write([]byte(`{"ok":true}`))
			return
		}
		if served.Swap(true) {
			// Hold subsequent polls open so the test sees one update.
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{"ok":true,"result":[]}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"message_id":1,"from":{"id":42},"chat":{"id":42},"date":1767000000,"text":"book a truck to Miami"}}]}`))
	}))
	defer srv.Close()

	b := bus.NewMessageBus()
	c := NewTelegramChannel(config.TelegramConfig{
		Enabled:     true,
		Token:       "test-token",
		APIBase:     srv.URL,
		PollTimeout: time.Second,
	}, b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Stop()

	consumeCtx, consumeCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer consumeCancel()
	msg, err := b.ConsumeInbound(consumeCtx)
	if err != nil {
		t.Fatalf("ConsumeInbound: %v", err)
	}
	if msg.Channel != "telegram" || msg.SenderID != "42" || msg.Content != "book a truck to Miami" {
		t.Fatalf("unexpected inbound message: %+v", msg)
	}
	if msg.TraceID == "" {
		t.Fatal("expected trace id on inbound message")
	}
}

func TestTelegramStartRequiresToken(t *testing.T) {
	c := NewTelegramChannel(config.TelegramConfig{Enabled: true}, bus.NewMessageBus())
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected error when token is missing")
	}
}

func TestTelegramStartDisabledIsNoop(t *testing.T) {
	c := NewTelegramChannel(config.TelegramConfig{}, bus.NewMessageBus())
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start on disabled channel: %v", err)
	}
}
