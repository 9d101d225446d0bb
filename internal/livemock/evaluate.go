package livemock

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/interview-coach/internal/store"
)

const (
	keywordWeight = 0.7
	lengthWeight  = 0.3
	minFullWords  = 20
	briefWords    = 15
	verboseWords  = 150

	aggregateRecommendation = "Review each question's recommended answer for best practices."
)

var (
	confidenceWords = []string{"definitely", "certainly", "absolutely", "confident", "sure", "believe", "know"}
	enthusiasmWords = []string{"excited", "passionate", "love", "amazing", "great", "excellent", "wonderful", "fantastic"}
)

// EvaluateAnswer scores a spoken answer against the question's expected keywords.
func EvaluateAnswer(transcript string, q Question) store.SpokenAnswerFeedback {
	lower := strings.ToLower(transcript)
	wordCount := len(strings.Fields(lower))

	var missing []string
	matched := 0
	for _, k := range q.ExpectedKeywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			matched++
		} else {
			missing = append(missing, k)
		}
	}

	keywordScore := 0.0
	if len(q.ExpectedKeywords) > 0 {
		keywordScore = float64(matched) / float64(len(q.ExpectedKeywords)) * 100
	}
	lengthScore := 100.0
	if wordCount < minFullWords {
		lengthScore = float64(wordCount) / minFullWords * 100
	}

	rating := roundHalfUp(keywordScore*keywordWeight + lengthScore*lengthWeight)

	var b strings.Builder
	switch {
	case rating >= 80:
		b.WriteString("Excellent answer! You covered the key points effectively. To further improve, consider adding more specific examples or quantifiable achievements.")
	case rating >= 60:
		fmt.Fprintf(&b, "Good start! To strengthen your answer, try to incorporate these key concepts: %s. ", firstN(missing, 3))
		if wordCount < 30 {
			b.WriteString("Also, provide more detailed explanations and specific examples to demonstrate your points.")
		}
	case rating >= 40:
		fmt.Fprintf(&b, "Your answer needs more development. Focus on addressing: %s. ", firstN(missing, 4))
		b.WriteString("Structure your response using the STAR method (Situation, Task, Action, Result) for better clarity.")
	default:
		fmt.Fprintf(&b, "Your answer is incomplete. Make sure to address the core question by discussing: %s. ", firstN(missing, 5))
		b.WriteString("Take time to think through your response and provide concrete examples from your experience.")
	}

	switch {
	case wordCount < briefWords:
		b.WriteString(" Your answer is too brief. Aim for at least 30-50 words to provide sufficient detail.")
	case wordCount > verboseWords:
		b.WriteString(" Consider being more concise. Focus on the most relevant points to keep the interviewer engaged.")
	}

	return store.SpokenAnswerFeedback{
		Transcript:            transcript,
		CorrectnessRating:     rating,
		SuggestedImprovements: b.String(),
		RecommendedAnswer:     q.RecommendedAnswer,
	}
}

// Tone is the voice analysis of one recognized utterance.
type Tone struct {
	Confidence int
	Clarity    int
	Enthusiasm int
}

func AnalyzeTone(text string) Tone {
	words := strings.Split(strings.ToLower(text), " ")

	clarity := 60
	if len(text) > 50 {
		clarity = 80
	}

	return Tone{
		Confidence: min(100, 70+10*countWords(words, confidenceWords)),
		Clarity:    clarity,
		Enthusiasm: min(100, 65+10*countWords(words, enthusiasmWords)),
	}
}

// Scores are the 0..100 sub-scores of a live mock session.
type Scores struct {
	BodyLanguage     int
	EyeContact       int
	FacialExpression int
	Confidence       int
	Attentiveness    int
	Clarity          int
	Tone             int
	Styling          int
}

// Overall is the rounded mean of the six scores shown to the candidate.
func (s Scores) Overall() int {
	sum := s.BodyLanguage + s.EyeContact + s.Confidence + s.Clarity + s.Tone + s.Styling
	return roundHalfUp(float64(sum) / 6)
}

func AppearanceFeedback(score int) string {
	switch {
	case score >= 85:
		return "Excellent professional appearance! Your attire is appropriate and well-presented. You project a polished, professional image that would make a strong impression in an interview setting."
	case score >= 70:
		return "Good professional appearance. Your attire is generally appropriate. Consider: ensuring clothes are well-fitted, choosing solid colors or subtle patterns, and paying attention to grooming details."
	default:
		return "Your appearance could be improved for a professional interview. Recommendations: wear business professional attire, ensure clothes are clean and pressed, maintain good grooming, and choose conservative colors."
	}
}

// ComprehensiveFeedback summarizes a finished session.
func ComprehensiveFeedback(s Scores, correctness float64, questions int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Overall Performance: %d/100\n", s.Overall())
	fmt.Fprintf(&b, "Answer Quality: %d/100\n", roundHalfUp(correctness))
	fmt.Fprintf(&b, "Questions Completed: %d\n\n", questions)

	fmt.Fprintf(&b, "Voice Analysis: Your vocal tone showed %s confidence and clarity. ",
		tier(s.Tone, 80, 70, "excellent", "good", "moderate"))
	b.WriteString("Continue to speak with enthusiasm and maintain a steady pace.\n\n")

	b.WriteString("Answer Evaluation: ")
	switch {
	case correctness >= 80:
		b.WriteString("Your answers were comprehensive and well-structured. You effectively addressed the key points in each question.\n\n")
	case correctness >= 60:
		b.WriteString("Your answers were generally good but could be improved by including more specific examples and addressing all key concepts.\n\n")
	default:
		b.WriteString("Your answers need more development. Focus on understanding the question fully and providing detailed, relevant responses.\n\n")
	}

	fmt.Fprintf(&b, "Professional Presentation: %s professional appearance. ",
		tier(s.Styling, 85, 70, "Outstanding", "Good", "Needs improvement"))
	b.WriteString("Your attire and grooming contribute significantly to first impressions.\n\n")

	body := "Moderate"
	if s.BodyLanguage >= 80 {
		body = "Strong"
	}
	eye := "good"
	if s.EyeContact >= 80 {
		eye = "excellent"
	}
	fmt.Fprintf(&b, "Body Language: %s body language with %s eye contact. ", body, eye)
	b.WriteString("Keep practicing to maintain natural, confident posture throughout the interview.")

	return b.String()
}

// AverageCorrectness is the plain mean of the per-answer ratings.
func AverageCorrectness(feedbacks []store.SpokenAnswerFeedback) float64 {
	if len(feedbacks) == 0 {
		return 0
	}
	sum := 0
	for _, f := range feedbacks {
		sum += f.CorrectnessRating
	}
	return float64(sum) / float64(len(feedbacks))
}

func AggregatedImprovements(feedbacks []store.SpokenAnswerFeedback) string {
	avg := AverageCorrectness(feedbacks)

	var b strings.Builder
	fmt.Fprintf(&b, "Overall Answer Quality: %d/100\n\n", roundHalfUp(avg))

	switch {
	case avg >= 80:
		b.WriteString("Your answers were consistently strong across all questions. Continue practicing to maintain this level of performance.")
	case avg >= 60:
		b.WriteString("You provided good answers overall, but there's room for improvement. Focus on:\n")
		b.WriteString("• Including more specific examples and quantifiable results\n")
		b.WriteString("• Addressing all key aspects of each question\n")
		b.WriteString("• Structuring responses using frameworks like STAR method")
	default:
		b.WriteString("Your answers need significant improvement. Key areas to work on:\n")
		b.WriteString("• Thoroughly understand the question before answering\n")
		b.WriteString("• Include relevant keywords and concepts in your responses\n")
		b.WriteString("• Provide concrete examples from your experience\n")
		b.WriteString("• Practice common interview questions to build confidence")
	}

	return b.String()
}

// Aggregate folds per-answer feedback into the record level summary. It
// returns nil when nothing was answered.
func Aggregate(feedbacks []store.SpokenAnswerFeedback) *store.SpokenAnswerFeedback {
	if len(feedbacks) == 0 {
		return nil
	}

	transcripts := make([]string, len(feedbacks))
	for i, f := range feedbacks {
		transcripts[i] = f.Transcript
	}

	return &store.SpokenAnswerFeedback{
		Transcript:            strings.Join(transcripts, "\n\n"),
		CorrectnessRating:     roundHalfUp(AverageCorrectness(feedbacks)),
		SuggestedImprovements: AggregatedImprovements(feedbacks),
		RecommendedAnswer:     aggregateRecommendation,
	}
}

func tier(score, high, mid int, top, middle, low string) string {
	switch {
	case score >= high:
		return top
	case score >= mid:
		return middle
	default:
		return low
	}
}

func countWords(words, vocabulary []string) int {
	n := 0
	for _, w := range words {
		for _, v := range vocabulary {
			if w == v {
				n++
				break
			}
		}
	}
	return n
}

func firstN(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
