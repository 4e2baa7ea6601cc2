package types

// ParsedResume is the structured profile extracted from resume text.
type ParsedResume struct {
	Name       string   `json:"name"`
	Education  []string `json:"education"`
	Skills     []string `json:"skills"`
	Projects   []string `json:"projects"`
	Experience []string `json:"work_experience"`
	GitHub     []string `json:"github"`
}

// ResumeSummary condenses a ParsedResume for display and invite context.
type ResumeSummary struct {
	Name       string   `json:"name"`
	Education  []string `json:"education_summary"`
	Projects   []string `json:"projects_summary"`
	Experience []string `json:"work_experience_summary"`
	Skills     []string `json:"skills"`
	GitHub     []string `json:"github"`
}

// GitHubSummary describes a candidate's public GitHub presence.
type GitHubSummary struct {
	Username string        `json:"username"`
	Profile  GitHubProfile `json:"profile"`
	Repos    []GitHubRepo  `json:"top_repos"`
}

// GitHubProfile holds the public profile fields used in summaries.
type GitHubProfile struct {
	Name        string `json:"name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

// GitHubRepo is one repository entry in a GitHubSummary.
type GitHubRepo struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Stars         int      `json:"stars"`
	Language      string   `json:"language,omitempty"`
	Topics        []string `json:"topics"`
	ReadmeExcerpt string   `json:"readme_excerpt"`
}

// ResumeAnalysis is the response body of a self-service resume analysis.
type ResumeAnalysis struct {
	Filename      string         `json:"filename"`
	SizeKB        float64        `json:"size_kb"`
	ParsedData    ParsedResume   `json:"parsed_data"`
	Summary       ResumeSummary  `json:"summary"`
	Domain        string         `json:"domain"`
	GitHubSummary *GitHubSummary `json:"github_summary"`
}
