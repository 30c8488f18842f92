package handlers

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

// Logged query text is anonymized before it leaves the process: emails,
// URLs, long numbers and UUID-like identifiers are masked, never stored.
var (
	emailPattern  = regexp.MustCompile(`[\w.%+-]+@[\w.-]+\.[a-z]{2,}`)
	urlPattern    = regexp.MustCompile(`https?://\S+`)
	numberPattern = regexp.MustCompile(`\b\d{6,}\b`)
	idPattern     = regexp.MustCompile(`\b[0-9a-f]{8}-[0-9a-f-]{27,}\b`)

	nonCanonicalPattern = regexp.MustCompile(`[^a-z0-9\[\]\s]`)
)

// anonymizeText lowercases and masks personal identifiers in free text.
func anonymizeText(input string) string {
	s := strings.ToLower(input)
	s = emailPattern.ReplaceAllString(s, "[email]")
	s = urlPattern.ReplaceAllString(s, "[url]")
	s = numberPattern.ReplaceAllString(s, "[number]")
	s = idPattern.ReplaceAllString(s, "[id]")
	return strings.Join(strings.Fields(s), " ")
}

// canonicalizeQuestion reduces an anonymized question to a stable form
// suitable for hashing and aggregation.
func canonicalizeQuestion(input string) string {
	s := anonymizeText(input)
	s = nonCanonicalPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// hashQuestion returns a short stable digest of the canonical question.
func hashQuestion(value string) string {
	if value == "" {
		return ""
	}
	sum := sha1.Sum([]byte(value))
	return hex.EncodeToString(sum[:])[:16]
}

// truncateRunes bounds a string to max runes without splitting one.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
