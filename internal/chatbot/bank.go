package chatbot

import "github.com/spigell/interview-coach/internal/roles"

var bank = map[roles.InterviewType]map[roles.Difficulty][]string{
	roles.TypeTechnical: {
		roles.Beginner: {
			"Can you explain what a variable is in programming?",
			"What is the difference between a class and an object?",
			"How would you explain recursion to someone new to programming?",
		},
		roles.Medium: {
			"Explain the difference between synchronous and asynchronous programming.",
			"What are the key principles of object-oriented programming?",
			"How would you optimize a slow database query?",
		},
		roles.Hard: {
			"Design a distributed caching system for a high-traffic application.",
			"Explain how you would implement a rate limiter for an API.",
			"Describe the trade-offs between different database indexing strategies.",
		},
	},
	roles.TypeBehavioral: {
		roles.Beginner: {
			"Tell me about a time when you worked on a team project.",
			"Describe a challenge you faced and how you overcame it.",
			"What motivates you in your work?",
		},
		roles.Medium: {
			"Tell me about a time when you had to deal with a difficult team member.",
			"Describe a situation where you had to make a decision with incomplete information.",
			"How do you handle conflicting priorities?",
		},
		roles.Hard: {
			"Tell me about a time when you had to influence others without authority.",
			"Describe a situation where you failed and what you learned from it.",
			"How have you handled a situation where your team disagreed with your approach?",
		},
	},
	roles.TypeHR: {
		roles.Beginner: {
			"Why are you interested in this position?",
			"What are your greatest strengths?",
			"Where do you see yourself in 5 years?",
		},
		roles.Medium: {
			"Why should we hire you over other candidates?",
			"What is your expected salary range?",
			"How do you handle work-life balance?",
		},
		roles.Hard: {
			"What would you do if you disagreed with a company policy?",
			"Tell me about a time when you had to make an ethical decision at work.",
			"How would you handle a situation where you were asked to do something you felt was wrong?",
		},
	},
}

// Questions returns the ordered question list for an interview type and
// difficulty. Unknown combinations get the beginner technical set.
func Questions(kind roles.InterviewType, difficulty roles.Difficulty) []string {
	qs, ok := bank[kind][difficulty]
	if !ok {
		qs = bank[roles.TypeTechnical][roles.Beginner]
	}
	return append([]string(nil), qs...)
}
