package parsing

import (
	"github.com/jonathan/careerpilot/internal/ingestion"
	"github.com/jonathan/careerpilot/internal/types"
)

// UnknownName is used when no line looks like a person's name.
const UnknownName = "Unknown"

// ParseResume builds a structured profile from raw resume text.
// It never fails; empty input yields the default profile.
func ParseResume(text string) types.ParsedResume {
	lines := ingestion.NonEmptyLines(text)

	return types.ParsedResume{
		Name:       ExtractName(lines),
		Education:  extractEducation(lines),
		Skills:     ExtractSkills(ExtractSection(lines, SkillsSection)),
		Projects:   ExtractSection(lines, ProjectSection),
		Experience: ExtractSection(lines, ExperienceSection),
		GitHub:     ExtractGitHubURLs(text),
	}
}
