// Package config provides configuration types and loading for freightflow.
package config

import "time"

// Config is the root configuration struct.
// Top-level groups: Telegram, Guard, Workflow, Booking.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Guard    GuardConfig    `json:"guard"`
	Workflow WorkflowConfig `json:"workflow"`
	Booking  BookingConfig  `json:"booking"`
}

// ---------------------------------------------------------------------------
// Telegram – chat transport
// ---------------------------------------------------------------------------

// TelegramConfig configures the Telegram channel.
type TelegramConfig struct {
	Enabled     bool          `json:"enabled" envconfig:"ENABLED"`
	Token       string        `json:"token" envconfig:"TOKEN"`
	AllowFrom   []string      `json:"allowFrom" envconfig:"ALLOW_FROM"`
	APIBase     string        `json:"apiBase,omitempty" envconfig:"API_BASE"`
	PollTimeout time.Duration `json:"pollTimeout" envconfig:"POLL_TIMEOUT"`
}

// ---------------------------------------------------------------------------
// Guard – input validation and audit
// ---------------------------------------------------------------------------

// GuardConfig contains input guard limits and the audit log location.
type GuardConfig struct {
	MaxMessageLength   int      `json:"maxMessageLength" envconfig:"MAX_MESSAGE_LENGTH"`
	MaxSanitizedLength int      `json:"maxSanitizedLength" envconfig:"MAX_SANITIZED_LENGTH"`
	MaxNestingDepth    int      `json:"maxNestingDepth" envconfig:"MAX_NESTING_DEPTH"`
	AuditLogPath       string   `json:"auditLogPath" envconfig:"AUDIT_LOG_PATH"`
	AllowedDomains     []string `json:"allowedDomains" envconfig:"ALLOWED_DOMAINS"`
}

// ---------------------------------------------------------------------------
// Workflow – run tracking
// ---------------------------------------------------------------------------

// WorkflowConfig contains workflow tracker settings.
type WorkflowConfig struct {
	HistoryLimit int `json:"historyLimit" envconfig:"HISTORY_LIMIT"`
}

// ---------------------------------------------------------------------------
// Booking – trip booking integration
// ---------------------------------------------------------------------------

// BookingConfig contains trip booking settings. When the API URL is empty
// the booking tools run in simulated mode.
type BookingConfig struct {
	TripAPIURL string `json:"tripApiUrl" envconfig:"TRIP_API_URL"`
	AuthToken  string `json:"authToken" envconfig:"AUTH_TOKEN"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			PollTimeout: 30 * time.Second,
		},
		Guard: GuardConfig{
			MaxMessageLength:   10000,
			MaxSanitizedLength: 5000,
			MaxNestingDepth:    10,
			AuditLogPath:       "logs/security_audit.log",
			AllowedDomains: []string{
				"github.com",
				"docs.python.org",
				"stackoverflow.com",
				"google.com",
				"microsoft.com",
				"openai.com",
			},
		},
		Workflow: WorkflowConfig{
			HistoryLimit: 10,
		},
	}
}
