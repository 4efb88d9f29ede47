package logging

import (
	"net/url"
	"regexp"
	"strings"
)

// Query parameter names whose values never reach a log line or the screen.
var sensitiveFields = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"apikey",
	"api-key",
	"authorization",
	"credential",
	"signature",
	"session",
	"access_key",
	"accesskey",
}

// Patterns for secrets pasted into message text.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(ghp_[a-zA-Z0-9]{36})`),                     // GitHub PAT
	regexp.MustCompile(`(?i)(gho_[a-zA-Z0-9]{36})`),                     // GitHub OAuth
	regexp.MustCompile(`(?i)(github_pat_[a-zA-Z0-9]{22}_[a-zA-Z0-9]+)`), // GitHub fine-grained PAT
	regexp.MustCompile(`(?i)(xox[abpr]-[a-zA-Z0-9-]{10,})`),             // Slack
	regexp.MustCompile(`(?i)bearer\s+([a-zA-Z0-9._-]{20,})`),
	regexp.MustCompile(`(?i)(key|token|secret|password|auth)[=:]["']?([a-zA-Z0-9+/=_-]{32,})["']?`),
}

// RedactedValue is the replacement for sensitive values.
const RedactedValue = "[REDACTED]"

// Redact replaces secret-looking substrings of s.
func Redact(s string) string {
	for _, pattern := range secretPatterns {
		s = pattern.ReplaceAllString(s, RedactedValue)
	}
	return s
}

// RedactURL blanks sensitive query parameters and userinfo passwords of a
// link. Anything that does not parse as a URL goes through Redact.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Redact(raw)
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), RedactedValue)
	}
	if u.RawQuery != "" {
		q := u.Query()
		for key, values := range q {
			if IsSensitiveField(key) {
				for i := range values {
					values[i] = RedactedValue
				}
				continue
			}
			for i, v := range values {
				values[i] = Redact(v)
			}
		}
		u.RawQuery = q.Encode()
	}
	// Encoding escapes the brackets; the marker reads better as is.
	out := strings.ReplaceAll(u.String(), url.QueryEscape(RedactedValue), RedactedValue)
	return strings.ReplaceAll(out, url.PathEscape(RedactedValue), RedactedValue)
}

// IsSensitiveField checks if a field name is considered sensitive.
func IsSensitiveField(name string) bool {
	lowerName := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lowerName, field) {
			return true
		}
	}
	return false
}
