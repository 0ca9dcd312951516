package guard

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	tokenPattern = regexp.MustCompile(`\b[A-Za-z0-9]{20,}\b`)
	phonePattern = regexp.MustCompile(`\b\d{3}-?\d{3}-?\d{4}\b`)
)

// Mask irreversibly redacts sensitive substrings for safe display in
// logs and responses: emails keep their first 3 characters, long
// alphanumeric tokens keep their first and last 4, phone-like numbers
// are replaced wholesale. The passes run email, token, phone; the
// replacement characters are chosen so no later pass re-matches text an
// earlier pass already redacted.
func Mask(data string) string {
	data = emailPattern.ReplaceAllStringFunc(data, func(m string) string {
		return m[:3] + "***@***.***"
	})
	data = tokenPattern.ReplaceAllStringFunc(data, func(m string) string {
		return m[:4] + strings.Repeat("*", len(m)-8) + m[len(m)-4:]
	})
	return phonePattern.ReplaceAllString(data, "***-***-****")
}
