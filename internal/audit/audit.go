// Package audit provides the append-only security event log.
//
// Events are written as one JSON object per line to a configured file.
// Appends are best-effort: a failed write is reported to slog and
// swallowed, so a caller's validation verdict never depends on audit
// durability.
package audit

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event types recorded by the input guard and the transports.
const (
	EventDangerousPattern   = "dangerous_pattern_detected"
	EventUnauthorizedAccess = "unauthorized_access"
	EventSuspiciousURL      = "suspicious_url"
	EventMessageTooLong     = "message_too_long"
	EventExcessiveNesting   = "excessive_nesting"
	EventCodeInjection      = "code_injection_attempt"
)

// Severity levels. Severity is derived from the event type, never chosen
// by the caller.
const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
)

// Event is one immutable audit record.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	EventType string         `json:"event_type"`
	Severity  string         `json:"severity"`
	Details   map[string]any `json:"details,omitempty"`
}

// SeverityFor maps an event type to its severity. Pure function: the same
// type always yields the same severity.
func SeverityFor(eventType string) string {
	switch eventType {
	case EventDangerousPattern, EventUnauthorizedAccess, EventSuspiciousURL, EventCodeInjection:
		return SeverityHigh
	}
	return SeverityMedium
}

// Log appends security events to a JSONL file. Each event is written with
// a single O_APPEND write under a mutex, so concurrent recorders never
// interleave partial lines. Existing content is never truncated.
type Log struct {
	path  string
	clock func() time.Time
	mu    sync.Mutex
}

// NewLog creates a log that appends to the given path. The parent
// directory is created on first write if absent.
func NewLog(path string) *Log {
	return &Log{path: path, clock: time.Now}
}

// Record stamps and appends one event. Write failures are logged and
// swallowed.
func (l *Log) Record(eventType string, details map[string]any) {
	ev := Event{
		Timestamp: l.clock().UTC(),
		EventType: eventType,
		Severity:  SeverityFor(eventType),
		Details:   details,
	}
	line, err := json.Marshal(ev)
	if err != nil {
		slog.Error("Audit event marshal failed", "event_type", eventType, "error", err)
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if dir := filepath.Dir(l.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("Audit log directory create failed", "dir", dir, "error", err)
			return
		}
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Error("Audit log open failed", "path", l.path, "error", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(line); err != nil {
		slog.Error("Audit log write failed", "path", l.path, "error", err)
		return
	}
	slog.Warn("Security event", "event_type", eventType, "severity", ev.Severity)
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// reportWindow bounds the suffix of the log that Report summarizes.
const reportWindow = 100

// Summary aggregates the audit log for reporting.
type Summary struct {
	TotalEvents  int            `json:"total_events"`
	RecentEvents int            `json:"recent_events"`
	HighSeverity int            `json:"high_severity_events"`
	EventTypes   map[string]int `json:"event_types"`
	GeneratedAt  time.Time      `json:"report_generated"`
}

// Report reads the log and summarizes the most recent events. Malformed
// lines are skipped rather than failing the whole call; a missing log
// file yields an empty summary.
func (l *Log) Report() (Summary, error) {
	sum := Summary{EventTypes: map[string]int{}, GeneratedAt: l.clock().UTC()}

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return sum, nil
		}
		return sum, err
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return sum, err
	}

	sum.TotalEvents = len(events)
	recent := events
	if len(recent) > reportWindow {
		recent = recent[len(recent)-reportWindow:]
	}
	sum.RecentEvents = len(recent)
	for _, ev := range recent {
		typ := ev.EventType
		if typ == "" {
			typ = "unknown"
		}
		sum.EventTypes[typ]++
		if ev.Severity == SeverityHigh {
			sum.HighSeverity++
		}
	}
	return sum, nil
}
