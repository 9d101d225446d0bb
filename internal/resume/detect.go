package resume

import "strings"

const GeneralProfessional = "General Professional"

var detectRules = [...]struct {
	keywords []string
	role     string
}{
	{keywords: []string{"software", "developer", "engineer", "programming"}, role: "Software Engineer"},
	{keywords: []string{"product", "manager", "pm"}, role: "Product Manager"},
	{keywords: []string{"data", "scientist", "analyst", "analytics"}, role: "Data Scientist"},
	{keywords: []string{"design", "ux", "ui"}, role: "Designer"},
	{keywords: []string{"marketing", "sales", "business"}, role: "Marketing Manager"},
}

// DetectRole guesses the role a resume was written for from its text and file name.
func DetectRole(content, fileName string) string {
	haystack := strings.ToLower(content) + " " + strings.ToLower(fileName)
	for _, rule := range detectRules {
		for _, k := range rule.keywords {
			if strings.Contains(haystack, k) {
				return rule.role
			}
		}
	}
	return GeneralProfessional
}
