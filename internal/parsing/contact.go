package parsing

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultEmailWindow is how many leading characters count as the resume header.
const DefaultEmailWindow = 500

var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// ignoredEmailPatterns mark role accounts and profile links rather than personal addresses.
var ignoredEmailPatterns = []string{"support@", "info@", "admin@", "noreply@", "github.com", "linkedin.com"}

var emailTextReplacer = strings.NewReplacer("\u200b", "", "\u00a0", " ")

// ResolveEmail returns the most plausible personal email in text, lowercased.
// See ResolveEmailWithin.
func ResolveEmail(text string) (string, bool) {
	return ResolveEmailWithin(text, DefaultEmailWindow)
}

// ResolveEmailWithin prefers the first non-ignored address lying entirely in
// the first window characters, then the first non-ignored address anywhere.
func ResolveEmailWithin(text string, window int) (string, bool) {
	text = strings.TrimSpace(emailTextReplacer.Replace(text))

	var first string
	for _, loc := range emailRe.FindAllStringIndex(text, -1) {
		email := text[loc[0]:loc[1]]
		if isIgnoredEmail(email) {
			continue
		}
		if utf8.RuneCountInString(text[:loc[1]]) <= window {
			return strings.ToLower(email), true
		}
		if first == "" {
			first = email
		}
	}

	if first == "" {
		return "", false
	}
	return strings.ToLower(first), true
}

func isIgnoredEmail(email string) bool {
	lower := strings.ToLower(email)
	for _, p := range ignoredEmailPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
