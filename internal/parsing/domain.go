package parsing

import "strings"

// Domain labels, in classification priority order.
const (
	DomainSoftware = "Software Engineering"
	DomainDataML   = "Data Science / ML"
	DomainElecMech = "Electrical/Mechanical"
	DomainDevOps   = "DevOps"
	DomainSecurity = "Cybersecurity"
	DomainDesign   = "Design"
	DomainOther    = "Other"
)

type domainRule struct {
	domain   string
	keywords []string
}

var domainRules = []domainRule{
	{DomainSoftware, []string{"python", "java", "c++", "javascript", "fastapi", "django", "react"}},
	{DomainDataML, []string{"pytorch", "tensorflow", "scikit-learn", "ml", "data"}},
	{DomainElecMech, []string{"matlab", "circuit", "mechanical", "electrical"}},
	{DomainDevOps, []string{"docker", "aws", "kubernetes", "ci/cd"}},
	{DomainSecurity, []string{"security", "cybersecurity", "pentest"}},
	{DomainDesign, []string{"ui", "ux", "design", "figma", "adobe"}},
}

// DetectDomain classifies a skill list. A rule matches when any skill equals
// one of its keywords ignoring case; the first matching rule wins.
func DetectDomain(skills []string) string {
	have := make(map[string]bool, len(skills))
	for _, s := range skills {
		have[strings.ToLower(strings.TrimSpace(s))] = true
	}

	for _, rule := range domainRules {
		for _, k := range rule.keywords {
			if have[k] {
				return rule.domain
			}
		}
	}
	return DomainOther
}
