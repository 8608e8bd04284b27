package telemetry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSanitizer(t *testing.T) {
	tests := []struct {
		name  string
		level PromptLogLevel
		salt  string
	}{
		{"none level", PromptLogNone, "salt-1"},
		{"hashed level", PromptLogHashed, "salt-2"},
		{"full level", PromptLogFull, "salt-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSanitizer(tt.level, tt.salt)
			require.NotNil(t, s)
			assert.Equal(t, tt.level, s.level)
			assert.Equal(t, tt.salt, s.salt)
		})
	}
}

func TestSanitizePrompt_None(t *testing.T) {
	s := NewSanitizer(PromptLogNone, "")
	assert.Equal(t, "[REDACTED]", s.SanitizePrompt("1girl, contact me at john@example.com"))
}

func TestSanitizePrompt_Full(t *testing.T) {
	s := NewSanitizer(PromptLogFull, "")
	input := "1girl, contact me at john@example.com"
	assert.Equal(t, input, s.SanitizePrompt(input))
}

func TestSanitizePrompt_HashedKeepsTagsAndHidesPII(t *testing.T) {
	s := NewSanitizer(PromptLogHashed, "salt")

	tests := []struct {
		name   string
		input  string
		hidden string
		marker string
		keeps  string
	}{
		{"email", "1girl, signed by john.doe@example.com", "john.doe@example.com", "[EMAIL:", "1girl"},
		{"phone", "poster, call 555-123-4567", "555-123-4567", "[PHONE:", "poster"},
		{"ipv4", "screen showing 192.168.1.20", "192.168.1.20", "[IP:", "screen showing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.SanitizePrompt(tt.input)
			assert.NotContains(t, result, tt.hidden)
			assert.Contains(t, result, tt.marker)
			assert.Contains(t, result, tt.keeps)
		})
	}
}

func TestSanitizePrompt_HashIsStablePerSalt(t *testing.T) {
	a := NewSanitizer(PromptLogHashed, "salt-a")
	b := NewSanitizer(PromptLogHashed, "salt-b")
	input := "mail john@example.com"

	assert.Equal(t, a.SanitizePrompt(input), a.SanitizePrompt(input))
	assert.NotEqual(t, a.SanitizePrompt(input), b.SanitizePrompt(input))
}

func TestSanitizePrompt_Truncates(t *testing.T) {
	s := NewSanitizer(PromptLogFull, "")
	input := strings.Repeat("あ", maxPromptRunes+10)

	result := s.SanitizePrompt(input)
	assert.True(t, strings.HasSuffix(result, "..."))
	assert.Equal(t, strings.Repeat("あ", maxPromptRunes)+"...", result)
}

func TestSanitizeToken(t *testing.T) {
	s := NewSanitizer(PromptLogFull, "")

	assert.Equal(t, "", s.SanitizeToken(""))
	assert.Equal(t, "****", s.SanitizeToken("short"))
	assert.Equal(t, "****wxyz", s.SanitizeToken("pst-abcdefghijklmnopqrstuvwxyz"))
}
