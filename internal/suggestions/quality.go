package suggestions

// QualityFeedback returns the free-text summary shown next to a resume quality score.
func QualityFeedback(score int) string {
	switch {
	case score >= 90:
		return "Excellent resume! Your content is well-structured with strong action verbs and quantifiable achievements. Consider adding more specific metrics to further strengthen your impact statements."
	case score >= 75:
		return "Good resume overall. Strengthen your bullet points with more quantifiable results. Add specific technologies and tools you've used. Consider reorganizing sections for better flow."
	default:
		return "Your resume needs improvement. Focus on: 1) Adding quantifiable achievements, 2) Using stronger action verbs, 3) Highlighting relevant skills, 4) Improving formatting and consistency, 5) Tailoring content to target roles."
	}
}
