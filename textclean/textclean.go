// Package textclean normalizes extracted page text before NLP processing.
// Clean is pure and idempotent: cleaning already-clean text is a no-op.
package textclean

import (
	"regexp"
	"strings"
)

var (
	urlPattern   = regexp.MustCompile(`https?://[^\s]+`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	// Everything outside letters, digits, whitespace and basic punctuation.
	// Strips emoji, stray markup entities and symbol noise.
	specialChars = regexp.MustCompile(`[^\p{L}\p{N}\s.,!?;:'"-]`)
	whitespace   = regexp.MustCompile(`\s+`)

	sentenceSplit = regexp.MustCompile(`[.!?]+`)
)

// Clean strips URLs, email addresses and special characters, then collapses
// all whitespace runs to single spaces and trims the result.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = urlPattern.ReplaceAllString(text, "")
	text = emailPattern.ReplaceAllString(text, "")
	text = specialChars.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// Sentences splits text on terminal punctuation, dropping fragments shorter
// than minLen characters (navigation crumbs, list stubs).
func Sentences(text string, minLen int) []string {
	parts := sentenceSplit.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) >= minLen {
			out = append(out, p)
		}
	}
	return out
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
