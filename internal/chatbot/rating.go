package chatbot

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	MinRating = 1
	MaxRating = 5

	detailedLength = 200
	conciseLength  = 100
)

const (
	feedbackDetailed    = "Your answer was comprehensive and detailed."
	feedbackConcise     = "Your answer was clear and concise."
	feedbackElaborate   = "Your answer could benefit from more elaboration."
	feedbackExamples    = "Great job providing specific examples to support your points."
	feedbackNoExamples  = "Consider adding concrete examples to strengthen your response."
	feedbackStructured  = "Your response was well-structured and easy to follow."
	exampleMarker       = "example"
	forInstanceMarker   = "for instance"
	sentenceSeparator   = "."
	minStructuredSplits = 3
)

// Assessment is the heuristic feedback for one answer.
type Assessment struct {
	Feedback string
	Rating   int
}

// Rate scores an answer on 1..5 from its length, example markers and structure.
func Rate(answer string) Assessment {
	length := utf8.RuneCountInString(strings.TrimSpace(answer))
	lower := strings.ToLower(answer)
	hasExamples := strings.Contains(lower, exampleMarker) || strings.Contains(lower, forInstanceMarker)
	hasStructure := strings.Contains(answer, "\n") || len(strings.Split(answer, sentenceSeparator)) >= minStructuredSplits

	rating := 3.0
	parts := make([]string, 0, 3)

	switch {
	case length > detailedLength:
		parts = append(parts, feedbackDetailed)
		rating++
	case length > conciseLength:
		parts = append(parts, feedbackConcise)
	default:
		parts = append(parts, feedbackElaborate)
		rating--
	}

	if hasExamples {
		parts = append(parts, feedbackExamples)
		rating++
	} else {
		parts = append(parts, feedbackNoExamples)
	}

	if hasStructure {
		parts = append(parts, feedbackStructured)
		rating += 0.5
	}

	return Assessment{
		Feedback: strings.Join(parts, " "),
		Rating:   clampRating(int(math.Floor(rating + 0.5))),
	}
}

func clampRating(r int) int {
	return max(MinRating, min(MaxRating, r))
}
