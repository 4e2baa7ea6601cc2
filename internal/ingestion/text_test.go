package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \n  \n  ", ""},
		{"zero-width space removed", "jane\u200b.doe@gmail.com", "jane.doe@gmail.com"},
		{"non-breaking space", "Jane\u00a0Doe", "Jane Doe"},
		{"byte-order mark", "\ufeffJane Doe", "Jane Doe"},
		{"line endings", "a\r\nb\rc", "a\nb\nc"},
		{"inline runs collapsed", "Python,\t\tReact,   AWS", "Python, React, AWS"},
		{"blank runs capped", "a\n\n\n\n\nb", "a\n\nb"},
		{"lines trimmed", "   Jane Doe   \n  Skills ", "Jane Doe\nSkills"},
		{"unicode kept", "Zoë Müller • Go", "Zoë Müller • Go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCleanText_Deterministic(t *testing.T) {
	input := "Jane   Doe\n\n\n\nSkills\u00a0: Go"
	assert.Equal(t, CleanText(input), CleanText(CleanText(input)))
}

func TestNonEmptyLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, NonEmptyLines("\n  a  \n\n b c \n"))
	assert.Empty(t, NonEmptyLines(""))
}
