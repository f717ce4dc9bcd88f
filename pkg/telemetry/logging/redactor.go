package logging

import (
	"regexp"
	"strings"
)

// Redactor masks credentials in log fields. Rule pack repositories may be
// configured with tokens or SSH passphrases, and clone URLs may embed them.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternURLCredentials = "url_credentials"
	PatternBearerToken    = "bearer_token"
	PatternPassword       = "password"
)

var defaultPatterns = []*redactPattern{
	{
		name:        PatternURLCredentials,
		regex:       regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9+.-]*://)[^/@\s:]+(:[^/@\s]*)?@`),
		replacement: "${1}***@",
	},
	{
		name:        PatternBearerToken,
		regex:       regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
		replacement: "Bearer ***",
	},
	{
		name:        PatternPassword,
		regex:       regexp.MustCompile(`(password|passwd|passphrase|token)[:=]\s*[^\s&]+`),
		replacement: "$1=***",
	},
}

var sensitiveKeys = []string{
	"password", "passwd", "passphrase",
	"secret", "token", "authorization",
	"private_key", "privatekey",
}

// NewRedactor creates a Redactor with the built-in patterns.
func NewRedactor() *Redactor {
	return &Redactor{patterns: defaultPatterns}
}

// RedactString masks credentials embedded in a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactArgs redacts variadic log arguments of the form key1, value1, ...
// Values under sensitive keys are replaced entirely.
func (r *Redactor) RedactArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		if key, ok := redacted[i-1].(string); ok && isSensitiveKey(key) {
			redacted[i] = "***"
			continue
		}
		if str, ok := redacted[i].(string); ok {
			redacted[i] = r.RedactString(str)
		}
	}

	return redacted
}

func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}
