package parsing

import (
	"strings"

	"github.com/jonathan/careerpilot/internal/types"
)

const summaryLimit = 3

// Summarize condenses a parsed resume: the first three education and
// experience lines (text before the first "|"), one line per project,
// and the full skill and GitHub lists.
func Summarize(p types.ParsedResume) types.ResumeSummary {
	name := p.Name
	if name == "" {
		name = UnknownName
	}

	projects := []string{}
	for _, entry := range groupProjects(p.Projects) {
		if s := SummarizeProject(entry); s != "" {
			projects = append(projects, s)
		}
	}

	return types.ResumeSummary{
		Name:       name,
		Education:  headColumns(p.Education, summaryLimit),
		Projects:   projects,
		Experience: headColumns(p.Experience, summaryLimit),
		Skills:     nonNil(p.Skills),
		GitHub:     nonNil(p.GitHub),
	}
}

// SummarizeProject renders a multi-line project entry as "title. detail",
// where detail is the first bullet or, failing that, the second line.
func SummarizeProject(entry string) string {
	var lines []string
	for _, line := range strings.Split(entry, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return ""
	}

	title := lines[0]
	detail := ""
	for _, line := range lines[1:] {
		if isBullet(line) {
			detail = stripBullet(line)
			break
		}
	}
	if detail == "" && len(lines) > 1 {
		detail = lines[1]
	}

	if detail == "" {
		return title
	}
	return title + ". " + detail
}

// groupProjects joins bullet lines onto the preceding title line.
func groupProjects(lines []string) []string {
	var entries []string
	for _, line := range lines {
		if isBullet(line) && len(entries) > 0 {
			entries[len(entries)-1] += "\n" + line
			continue
		}
		if isBullet(line) {
			line = stripBullet(line)
		}
		entries = append(entries, line)
	}
	return entries
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "•") || strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*")
}

func stripBullet(line string) string {
	return strings.TrimSpace(strings.TrimLeft(line, "•-* "))
}

func headColumns(lines []string, n int) []string {
	out := []string{}
	for i, line := range lines {
		if i >= n {
			break
		}
		head, _, _ := strings.Cut(line, "|")
		out = append(out, strings.TrimSpace(head))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
