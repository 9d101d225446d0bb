package livemock

const (
	DefaultQuestionCount = 5
	MaxQuestionCount     = 10
)

// Question is a spoken interview prompt with the concepts a good answer covers.
type Question struct {
	Text              string
	ExpectedKeywords  []string
	RecommendedAnswer string
}

var bank = [MaxQuestionCount]Question{
	{
		Text:              "Tell me about yourself and your background.",
		ExpectedKeywords:  []string{"experience", "education", "skills", "background", "work", "career"},
		RecommendedAnswer: "A good answer should include your professional background, relevant experience, education, and key skills that make you suitable for the role.",
	},
	{
		Text:              "Why are you interested in this position?",
		ExpectedKeywords:  []string{"interest", "passion", "company", "role", "opportunity", "growth", "align"},
		RecommendedAnswer: "Explain your genuine interest in the role, how it aligns with your career goals, and what attracts you to the company.",
	},
	{
		Text:              "What are your greatest strengths?",
		ExpectedKeywords:  []string{"strength", "skill", "ability", "expertise", "proficient", "excel"},
		RecommendedAnswer: "Highlight 2-3 key strengths with specific examples demonstrating how you've applied them successfully in your work.",
	},
	{
		Text:              "Describe a challenging project you worked on.",
		ExpectedKeywords:  []string{"challenge", "project", "problem", "solution", "result", "overcome", "team"},
		RecommendedAnswer: "Use the STAR method: describe the Situation, Task, Action you took, and the positive Result achieved.",
	},
	{
		Text:              "Where do you see yourself in 5 years?",
		ExpectedKeywords:  []string{"future", "goal", "growth", "develop", "career", "aspiration", "plan"},
		RecommendedAnswer: "Discuss your career aspirations, how this role fits into your long-term goals, and your commitment to professional growth.",
	},
	{
		Text:              "How do you handle stress and pressure?",
		ExpectedKeywords:  []string{"stress", "pressure", "manage", "cope", "prioritize", "deadline", "balance"},
		RecommendedAnswer: "Describe specific strategies you use to manage stress, prioritize tasks, and maintain productivity under pressure.",
	},
	{
		Text:              "Tell me about a time you failed and what you learned.",
		ExpectedKeywords:  []string{"failure", "mistake", "learn", "improve", "growth", "lesson", "overcome"},
		RecommendedAnswer: "Share a genuine failure, focus on what you learned, and how you applied those lessons to improve and succeed later.",
	},
	{
		Text:              "Why should we hire you?",
		ExpectedKeywords:  []string{"value", "contribution", "skills", "experience", "fit", "unique", "benefit"},
		RecommendedAnswer: "Highlight your unique value proposition, relevant skills, and how you can contribute to the company's success.",
	},
	{
		Text:              "Describe your ideal work environment.",
		ExpectedKeywords:  []string{"environment", "culture", "team", "collaboration", "communication", "values", "work"},
		RecommendedAnswer: "Describe an environment that aligns with the company culture while highlighting your adaptability and teamwork skills.",
	},
	{
		Text:              "What questions do you have for us?",
		ExpectedKeywords:  []string{"question", "curious", "learn", "team", "company", "role", "growth", "culture"},
		RecommendedAnswer: "Ask thoughtful questions about the role, team dynamics, company culture, growth opportunities, or current challenges.",
	},
}

// ClampCount keeps a requested question count within 1..10, defaulting to 5.
func ClampCount(n int) int {
	switch {
	case n <= 0:
		return DefaultQuestionCount
	case n > MaxQuestionCount:
		return MaxQuestionCount
	default:
		return n
	}
}

// Questions returns the first n questions of the bank.
func Questions(n int) []Question {
	n = ClampCount(n)
	out := make([]Question, n)
	for i := range out {
		q := bank[i]
		q.ExpectedKeywords = append([]string(nil), q.ExpectedKeywords...)
		out[i] = q
	}
	return out
}
