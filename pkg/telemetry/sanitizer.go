package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// PromptLogLevel controls how much prompt text reaches logs and spans.
type PromptLogLevel string

const (
	// PromptLogNone redacts prompts entirely
	PromptLogNone PromptLogLevel = "none"
	// PromptLogHashed keeps prompt text but hashes embedded PII
	PromptLogHashed PromptLogLevel = "hashed"
	// PromptLogFull logs prompts unchanged
	PromptLogFull PromptLogLevel = "full"
)

// maxPromptRunes bounds logged prompt length.
const maxPromptRunes = 200

// Sanitizer scrubs prompts and credentials before they are logged.
type Sanitizer struct {
	level PromptLogLevel
	salt  string

	emailPattern *regexp.Regexp
	phonePattern *regexp.Regexp
	ipv4Pattern  *regexp.Regexp
}

// NewSanitizer creates a sanitizer. salt is mixed into every hash.
func NewSanitizer(level PromptLogLevel, salt string) *Sanitizer {
	return &Sanitizer{
		level:        level,
		salt:         salt,
		emailPattern: regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		phonePattern: regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		ipv4Pattern:  regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
	}
}

// SanitizePrompt returns the loggable form of a prompt.
func (s *Sanitizer) SanitizePrompt(input string) string {
	switch s.level {
	case PromptLogNone:
		return "[REDACTED]"
	case PromptLogFull:
		return truncate(input)
	default:
		return truncate(s.hashPII(input))
	}
}

// SanitizeToken masks a bearer token down to its last four characters.
func (s *Sanitizer) SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

func (s *Sanitizer) hashPII(input string) string {
	result := s.emailPattern.ReplaceAllStringFunc(input, func(match string) string {
		return fmt.Sprintf("[EMAIL:%s]", s.hash(match))
	})
	result = s.phonePattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[PHONE:%s]", s.hash(match))
	})
	result = s.ipv4Pattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[IP:%s]", s.hash(match))
	})
	return result
}

func (s *Sanitizer) hash(data string) string {
	h := sha256.Sum256([]byte(data + s.salt))
	return hex.EncodeToString(h[:])[:8]
}

func truncate(input string) string {
	if utf8.RuneCountInString(input) <= maxPromptRunes {
		return input
	}
	runes := []rune(input)
	return string(runes[:maxPromptRunes]) + "..."
}
