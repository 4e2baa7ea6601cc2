// Package parsing extracts a structured candidate profile from resume text
// using keyword-bounded line scanning.
package parsing

import (
	"regexp"
	"strings"
)

// Section describes a resume section by its header keyword and the keywords
// of the sections that end it. Matching is a case-insensitive substring test.
type Section struct {
	Keyword string
	Stop    []string
}

var (
	EducationSection  = Section{Keyword: "education", Stop: []string{"skills", "projects", "experience"}}
	SkillsSection     = Section{Keyword: "skills", Stop: []string{"education", "projects", "experience"}}
	ProjectSection    = Section{Keyword: "project", Stop: []string{"education", "skills", "experience"}}
	ExperienceSection = Section{Keyword: "experience", Stop: []string{"education", "skills", "projects"}}
)

// educationKeywords select education lines when no education header exists.
var educationKeywords = []string{"education", "school", "academic", "degree", "bachelor", "master", "university"}

var (
	nameRe       = regexp.MustCompile(`^[A-Za-z\s\-]{2,50}$`)
	digitRe      = regexp.MustCompile(`\d`)
	skillSplitRe = regexp.MustCompile(`[,;•\-]`)
)

// ExtractSection returns the lines captured under section.
//
// A line containing a stop keyword closes capture; a line containing the
// section keyword opens it and is itself skipped. A repeated header reopens
// capture, so scattered sections are concatenated.
func ExtractSection(lines []string, section Section) []string {
	keyword := strings.ToLower(section.Keyword)
	results := []string{}
	capture := false

	for _, line := range lines {
		lower := strings.ToLower(line)
		if containsAny(lower, section.Stop) {
			capture = false
		}

		if strings.Contains(lower, keyword) {
			capture = true
			continue
		}

		if trimmed := strings.TrimSpace(line); capture && trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

// ExtractName returns the first plausible name among the first four lines, or "Unknown".
func ExtractName(lines []string) string {
	for i, line := range lines {
		if i >= 4 {
			break
		}
		if digitRe.MatchString(line) || strings.Contains(line, "@") || strings.Contains(strings.ToLower(line), "http") {
			continue
		}
		if nameRe.MatchString(line) {
			return strings.TrimSpace(line)
		}
	}
	return UnknownName
}

// ExtractSkills splits skills-section lines into unique tokens in first-seen order.
func ExtractSkills(lines []string) []string {
	skills := []string{}
	seen := make(map[string]bool)
	for _, line := range lines {
		for _, part := range skillSplitRe.Split(line, -1) {
			token := strings.TrimSpace(part)
			if token == "" || seen[token] {
				continue
			}
			seen[token] = true
			skills = append(skills, token)
		}
	}
	return skills
}

// extractEducation falls back to keyword lines when no education header was found.
func extractEducation(lines []string) []string {
	if education := ExtractSection(lines, EducationSection); len(education) > 0 {
		return education
	}

	education := []string{}
	for _, line := range lines {
		if containsAny(strings.ToLower(line), educationKeywords) {
			education = append(education, line)
		}
	}
	return education
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
