package parsing

import "regexp"

var (
	githubURLRe      = regexp.MustCompile(`(?:https?://)?github\.com/[^\s•]+`)
	githubUsernameRe = regexp.MustCompile(`github\.com/([^/\s•?#]+)`)
)

// ExtractGitHubURLs returns every GitHub URL in text, in document order.
func ExtractGitHubURLs(text string) []string {
	urls := githubURLRe.FindAllString(text, -1)
	if urls == nil {
		return []string{}
	}
	return urls
}

// GitHubUsername returns the account segment of a GitHub URL.
func GitHubUsername(url string) (string, bool) {
	m := githubUsernameRe.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}
