// Package redact removes credentials and personal data from strings before
// they reach logs. Bearer tokens, signed JWTs, connection-string passwords,
// password-like key/value pairs, email addresses and goroutine dumps are
// replaced with fixed placeholders.
package redact

import "regexp"

// Placeholders written in place of redacted content.
const (
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	JWTPlaceholder        = "[REDACTED_JWT]"
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	StackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules run in order; earlier rules may consume text later rules would match.
var rules = []rule{
	{
		pattern:     regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-._~+/]+=*`),
		replacement: "Bearer " + TokenPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		replacement: JWTPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(postgres|postgresql|redis|rediss|mysql)://[^@\s]+@`),
		replacement: "$1://" + CredentialPlaceholder + "@",
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(password|passwd|pwd|secret)\s*[=:]\s*\S+`),
		replacement: "$1=" + CredentialPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		replacement: EmailPlaceholder,
	},
}

var stackRule = rule{
	pattern:     regexp.MustCompile(`goroutine \d+ \[[^\]]*\]:[\s\S]*`),
	replacement: StackPlaceholder,
}

// String redacts sensitive information from s.
func String(s string) string {
	if s == "" {
		return s
	}
	return stackRule.pattern.ReplaceAllString(credentials(s), stackRule.replacement)
}

// Stack redacts credentials from a goroutine dump while keeping the frames.
// Use it for stacks that are logged on purpose.
func Stack(s string) string {
	if s == "" {
		return s
	}
	return credentials(s)
}

func credentials(s string) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error redacts sensitive information from err.Error(). A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
