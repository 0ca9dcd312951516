// Package guard validates and sanitizes inbound free-text before it is
// handed to the agent pipeline or tools. Every rejection emits exactly
// one audit event naming the specific reason; the verdict itself never
// depends on whether the event could be written.
package guard

import (
	"regexp"
	"strings"

	"github.com/FreightFlow/FreightFlow/internal/audit"
	"github.com/FreightFlow/FreightFlow/internal/config"
)

// riskPatterns is the fixed denylist of constructs considered unsafe to
// forward to automated tooling: shell injection, privilege escalation,
// code evaluation, and piped download-and-execute idioms.
var riskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)rm\s+-rf`),
	regexp.MustCompile(`(?i)sudo\s+`),
	regexp.MustCompile(`(?i)curl.*\|.*sh`),
	regexp.MustCompile(`(?i)wget.*\|.*sh`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)exec\s*\(`),
	regexp.MustCompile(`(?i)__import__`),
	regexp.MustCompile(`(?i)subprocess`),
	regexp.MustCompile(`(?i)os\.system`),
	regexp.MustCompile(`(?i)shell=true`),
}

var (
	urlPattern    = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)
	domainPattern = regexp.MustCompile(`https?://([^/]+)`)
	controlChars  = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f-\x9f]`)
	excerptMaxLen = 100
)

// Guard is the input guard. It is stateless apart from the audit log it
// emits to, so a single instance is safe for concurrent use.
type Guard struct {
	maxMessageLen   int
	maxSanitizedLen int
	maxDepth        int
	allowedDomains  []string
	audit           *audit.Log
}

// New builds a guard from config. Zero-valued limits fall back to the
// documented defaults (10000 / 5000 / 10).
func New(cfg config.GuardConfig, log *audit.Log) *Guard {
	g := &Guard{
		maxMessageLen:   cfg.MaxMessageLength,
		maxSanitizedLen: cfg.MaxSanitizedLength,
		maxDepth:        cfg.MaxNestingDepth,
		allowedDomains:  cfg.AllowedDomains,
		audit:           log,
	}
	defaults := config.DefaultConfig().Guard
	if g.maxMessageLen <= 0 {
		g.maxMessageLen = defaults.MaxMessageLength
	}
	if g.maxSanitizedLen <= 0 {
		g.maxSanitizedLen = defaults.MaxSanitizedLength
	}
	if g.maxDepth <= 0 {
		g.maxDepth = defaults.MaxNestingDepth
	}
	if len(g.allowedDomains) == 0 {
		g.allowedDomains = defaults.AllowedDomains
	}
	return g
}

// Validate reports whether a message is safe to hand downstream. Each
// rejection emits one audit event for the specific reason; empty or
// whitespace-only input is rejected silently.
func (g *Guard) Validate(message string) bool {
	if strings.TrimSpace(message) == "" {
		return false
	}

	if len(message) > g.maxMessageLen {
		g.audit.Record(audit.EventMessageTooLong, map[string]any{
			"length": len(message),
		})
		return false
	}

	for _, re := range riskPatterns {
		if re.MatchString(message) {
			g.audit.Record(audit.EventDangerousPattern, map[string]any{
				"pattern": re.String(),
				"message": excerpt(message),
			})
			return false
		}
	}

	for _, url := range urlPattern.FindAllString(message, -1) {
		if !g.safeURL(url) {
			g.audit.Record(audit.EventSuspiciousURL, map[string]any{
				"url": excerpt(url),
			})
			return false
		}
	}

	return true
}

// safeURL checks the URL's domain against the fixed allow-list.
func (g *Guard) safeURL(url string) bool {
	m := domainPattern.FindStringSubmatch(url)
	if m == nil {
		return false
	}
	domain := strings.ToLower(m[1])
	for _, safe := range g.allowedDomains {
		if strings.Contains(domain, strings.ToLower(safe)) {
			return true
		}
	}
	return false
}

// Sanitize strips ASCII control characters (keeping tab, LF and CR),
// truncates to the configured maximum, and trims surrounding whitespace.
// Pure function; idempotent.
func (g *Guard) Sanitize(input string) string {
	if input == "" {
		return ""
	}
	sanitized := controlChars.ReplaceAllString(input, "")
	if runes := []rune(sanitized); len(runes) > g.maxSanitizedLen {
		sanitized = string(runes[:g.maxSanitizedLen])
	}
	return strings.TrimSpace(sanitized)
}

// ValidateParams validates a structured parameter mapping: it rejects
// mappings nested deeper than the configured maximum and any string leaf
// that fails Validate.
func (g *Guard) ValidateParams(params map[string]any) bool {
	if d := depthOf(params, 0); d > g.maxDepth {
		g.audit.Record(audit.EventExcessiveNesting, map[string]any{
			"depth": d,
		})
		return false
	}
	return g.validateLeaves(params)
}

func (g *Guard) validateLeaves(params map[string]any) bool {
	for _, v := range params {
		switch val := v.(type) {
		case string:
			if !g.Validate(val) {
				return false
			}
		case map[string]any:
			if !g.validateLeaves(val) {
				return false
			}
		}
	}
	return true
}

// depthOf measures the maximum nesting depth of a value. The depth of a
// non-mapping value is the depth of its container; an empty mapping
// terminates at its own level.
func depthOf(v any, level int) int {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return level
	}
	max := level
	for _, child := range m {
		if d := depthOf(child, level+1); d > max {
			max = d
		}
	}
	return max
}

// LogUnauthorized records an unauthorized access attempt.
func (g *Guard) LogUnauthorized(userID, message string) {
	g.audit.Record(audit.EventUnauthorizedAccess, map[string]any{
		"user_id": userID,
		"message": excerpt(message),
	})
}

// Report summarizes the audit log backing this guard.
func (g *Guard) Report() (audit.Summary, error) {
	return g.audit.Report()
}

// excerpt truncates a message for inclusion in audit details.
func excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= excerptMaxLen {
		return s
	}
	return string(runes[:excerptMaxLen]) + "..."
}
