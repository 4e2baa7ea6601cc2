package ingestion

import (
	"regexp"
	"strings"
)

var (
	inlineSpaceRe = regexp.MustCompile(`[ \t\f\v]+`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
)

// invisibleReplacer maps characters that PDF and Word exports leave behind.
var invisibleReplacer = strings.NewReplacer(
	"\u200b", "", // zero-width space
	"\ufeff", "", // byte-order mark
	"\u00a0", " ", // non-breaking space
	"\r\n", "\n",
	"\r", "\n",
)

// CleanText normalizes extracted resume text while keeping one entry per line.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = invisibleReplacer.Replace(content)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := strings.Join(lines, "\n")
	result = blankRunRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine collapses runs of inline whitespace and trims both ends.
func cleanLine(line string) string {
	return strings.TrimSpace(inlineSpaceRe.ReplaceAllString(line, " "))
}

// NonEmptyLines splits text into trimmed, non-empty lines.
func NonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
