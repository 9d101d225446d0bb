package roles

import "strings"

type InterviewType string

const (
	TypeTechnical  InterviewType = "Technical"
	TypeBehavioral InterviewType = "Behavioral"
	TypeCaseStudy  InterviewType = "Case Study"
	TypeHR         InterviewType = "HR"
)

type Difficulty string

const (
	Beginner Difficulty = "Beginner"
	Medium   Difficulty = "Medium"
	Hard     Difficulty = "Hard"
)

var typeRules = [...]struct {
	keywords []string
	kind     InterviewType
}{
	{keywords: []string{"engineer", "developer", "programmer"}, kind: TypeTechnical},
	{keywords: []string{"manager", "lead", "director"}, kind: TypeBehavioral},
	{keywords: []string{"designer", "ux", "ui"}, kind: TypeCaseStudy},
	{keywords: []string{"data", "analyst"}, kind: TypeTechnical},
}

var (
	seniorKeywords = []string{"senior", "lead", "principal", "staff"}
	juniorKeywords = []string{"junior", "entry", "intern"}
)

var rounds = map[string][]string{
	"Software Engineer": {"Technical Screening", "Coding Challenge", "System Design", "Behavioral", "Final Round"},
	"Product Manager":   {"Product Sense", "Analytical", "Technical Understanding", "Leadership", "Final Round"},
	"Data Scientist":    {"Technical Screening", "Statistics & ML", "Coding", "Case Study", "Final Round"},
	"Designer":          {"Portfolio Review", "Design Challenge", "Collaboration", "Presentation", "Final Round"},
	"Marketing Manager": {"Strategy", "Analytics", "Campaign Planning", "Behavioral", "Final Round"},
}

// SuggestInterviewType picks an interview type for the role, defaulting to HR.
func SuggestInterviewType(role string) InterviewType {
	normalized := normalize(role)
	for _, rule := range typeRules {
		if containsAny(normalized, rule.keywords) {
			return rule.kind
		}
	}
	return TypeHR
}

// SuggestDifficulty picks a difficulty from seniority markers in the role.
func SuggestDifficulty(role string) Difficulty {
	normalized := normalize(role)
	switch {
	case containsAny(normalized, seniorKeywords):
		return Hard
	case containsAny(normalized, juniorKeywords):
		return Beginner
	default:
		return Medium
	}
}

// Rounds returns the interview rounds for well-known roles. The role must match
// exactly; unknown roles get nil.
func Rounds(role string) []string {
	r, ok := rounds[strings.TrimSpace(role)]
	if !ok {
		return nil
	}
	return append([]string(nil), r...)
}

// AutoConfig is the interview setup derived from a role string.
type AutoConfig struct {
	Category      Category
	InterviewType InterviewType
	Difficulty    Difficulty
	Rounds        []string
}

func Configure(role string) AutoConfig {
	return AutoConfig{
		Category:      Classify(role),
		InterviewType: SuggestInterviewType(role),
		Difficulty:    SuggestDifficulty(role),
		Rounds:        Rounds(role),
	}
}
