package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"email", "Contact Jane.Doe@example.com please", "contact [email] please"},
		{"url", "see https://lxp.example/course?id=9", "see [url]"},
		{"long_number", "my staff id is 1234567", "my staff id is [number]"},
		{"short_number_kept", "week 2 module 34", "week 2 module 34"},
		{"uuid", "ref 123e4567-e89b-12d3-a456-426614174000 here", "ref [id] here"},
		{"whitespace_collapsed", "  hello   world  ", "hello world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, anonymizeText(tt.input))
		})
	}
}

func TestCanonicalizeQuestion(t *testing.T) {
	assert.Equal(t, "what s left in week 2",
		canonicalizeQuestion("What's left in Week-2?"))
	assert.Equal(t, "email me at [email]",
		canonicalizeQuestion("Email me at jane@example.com!"))
}

func TestHashQuestion(t *testing.T) {
	assert.Equal(t, "", hashQuestion(""))

	h1 := hashQuestion("what s left in week 2")
	h2 := hashQuestion("what s left in week 2")
	h3 := hashQuestion("something else")
	assert.Len(t, h1, 16)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab", truncateRunes("abcd", 2))
	assert.Equal(t, "héл", truncateRunes("héлло", 3))
}
