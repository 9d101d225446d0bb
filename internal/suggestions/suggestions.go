package suggestions

import "github.com/spigell/interview-coach/internal/roles"

// MaxItems bounds the number of suggestions returned by Generate.
const MaxItems = 8

// Suggestion is a single resume improvement item. Priority 1 is the highest.
type Suggestion struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Priority           int      `json:"priority"`
	ImplementationTips []string `json:"implementationTips"`
}

var byCategory = map[roles.Category][]Suggestion{
	roles.Technical: {
		{
			Title:       "Highlight Technical Skills and Technologies",
			Description: "Ensure your resume prominently features programming languages, frameworks, and tools relevant to the role. Include specific versions and proficiency levels.",
			Priority:    1,
			ImplementationTips: []string{
				`Create a dedicated "Technical Skills" section near the top of your resume`,
				"List technologies in order of proficiency and relevance to the target role",
				"Include both frontend and backend technologies if applying for full-stack positions",
				"Mention cloud platforms (AWS, Azure, GCP) and DevOps tools if applicable",
			},
		},
		{
			Title:       "Quantify Your Technical Achievements",
			Description: "Add measurable outcomes to your project descriptions, such as performance improvements, user growth, or system reliability metrics.",
			Priority:    1,
			ImplementationTips: []string{
				`Use metrics like "Improved API response time by 40%"`,
				`Include scale indicators: "Built system handling 1M+ daily requests"`,
				`Mention code quality improvements: "Reduced bug rate by 30%"`,
				`Highlight team impact: "Mentored 3 junior developers"`,
			},
		},
		{
			Title:       "Showcase System Design Experience",
			Description: "Demonstrate your ability to architect scalable systems and make technical trade-off decisions.",
			Priority:    2,
			ImplementationTips: []string{
				"Describe architecture decisions you made and why",
				"Mention scalability challenges you solved",
				"Include experience with microservices, databases, or distributed systems",
				"Reference design patterns and best practices you follow",
			},
		},
	},
	roles.Managerial: {
		{
			Title:       "Emphasize Product Strategy and Vision",
			Description: "Highlight your experience defining product roadmaps, conducting market research, and aligning product strategy with business goals.",
			Priority:    1,
			ImplementationTips: []string{
				"Describe products you launched from concept to market",
				"Include market research and competitive analysis experience",
				"Mention stakeholder management and cross-functional collaboration",
				"Highlight strategic decisions that drove business outcomes",
			},
		},
		{
			Title:       "Demonstrate Data-Driven Decision Making",
			Description: "Show how you use analytics, A/B testing, and user feedback to inform product decisions and measure success.",
			Priority:    1,
			ImplementationTips: []string{
				"Include specific metrics you tracked and improved",
				"Mention A/B tests you designed and their outcomes",
				"Reference analytics tools you use (Google Analytics, Mixpanel, etc.)",
				"Show how data influenced your product decisions",
			},
		},
		{
			Title:       "Highlight Leadership and Communication Skills",
			Description: "Showcase your ability to lead teams, influence stakeholders, and communicate product vision effectively.",
			Priority:    2,
			ImplementationTips: []string{
				"Describe teams you led or collaborated with",
				"Mention presentations to executives or stakeholders",
				"Include examples of resolving conflicts or aligning teams",
				"Highlight your role in agile ceremonies and sprint planning",
			},
		},
	},
	roles.Data: {
		{
			Title:       "Showcase Statistical and ML Expertise",
			Description: "Highlight your proficiency in statistical analysis, machine learning algorithms, and data modeling techniques.",
			Priority:    1,
			ImplementationTips: []string{
				"List ML frameworks (TensorFlow, PyTorch, scikit-learn)",
				"Mention specific algorithms you've implemented",
				"Include statistical methods and hypothesis testing experience",
				"Reference model performance metrics and improvements",
			},
		},
		{
			Title:       "Demonstrate Business Impact of Your Analysis",
			Description: "Show how your data insights led to actionable business decisions and measurable outcomes.",
			Priority:    1,
			ImplementationTips: []string{
				`Quantify business impact: "Analysis led to 15% revenue increase"`,
				"Describe insights that changed business strategy",
				"Mention cost savings or efficiency improvements from your work",
				"Include examples of predictive models in production",
			},
		},
		{
			Title:       "Highlight Data Engineering and Pipeline Skills",
			Description: "Demonstrate your ability to work with large datasets, build data pipelines, and ensure data quality.",
			Priority:    2,
			ImplementationTips: []string{
				"Mention experience with SQL, Python, R, and data tools",
				"Include ETL pipeline development experience",
				"Reference big data technologies (Spark, Hadoop, etc.)",
				"Describe data quality and validation processes you implemented",
			},
		},
	},
}

var common = []Suggestion{
	{
		Title:       "Use Strong Action Verbs",
		Description: "Begin each bullet point with powerful action verbs that demonstrate your impact and initiative.",
		Priority:    2,
		ImplementationTips: []string{
			`Replace weak verbs: "Responsible for" → "Led", "Managed", "Drove"`,
			`Use achievement-focused verbs: "Achieved", "Delivered", "Optimized"`,
			"Vary your verb choices to avoid repetition",
			"Match verb tense: past tense for previous roles, present for current",
		},
	},
	{
		Title:       "Tailor Content to Job Description",
		Description: "Align your resume content with the specific requirements and keywords from the target job posting.",
		Priority:    1,
		ImplementationTips: []string{
			"Mirror keywords from the job description naturally",
			"Prioritize relevant experience over less relevant roles",
			"Adjust your summary to match the role requirements",
			"Highlight transferable skills that match the position",
		},
	},
	{
		Title:       "Improve Resume Formatting and Readability",
		Description: "Ensure your resume is well-organized, easy to scan, and professionally formatted.",
		Priority:    3,
		ImplementationTips: []string{
			"Use consistent formatting for dates, locations, and titles",
			"Keep bullet points concise (1-2 lines each)",
			"Use white space effectively to improve readability",
			"Ensure font sizes and styles are professional and consistent",
		},
	},
	{
		Title:       "Add Relevant Certifications and Education",
		Description: "Include certifications, courses, and educational achievements that strengthen your candidacy for this role.",
		Priority:    3,
		ImplementationTips: []string{
			"List relevant certifications prominently",
			"Include online courses from reputable platforms",
			"Mention relevant academic projects or research",
			"Add professional development and continuous learning activities",
		},
	},
}

// Generate returns the improvement list for the target role: role-specific items
// first, then the common items, capped at MaxItems. The second argument is the
// resume quality score; it does not change the selection. Every call returns
// fresh copies.
func Generate(targetRole string, _ int) []Suggestion {
	specific := byCategory[roles.Classify(targetRole)]
	result := make([]Suggestion, 0, len(specific)+len(common))
	for _, s := range specific {
		result = append(result, s.clone())
	}
	for _, s := range common {
		result = append(result, s.clone())
	}

	if len(result) > MaxItems {
		result = result[:MaxItems]
	}
	return result
}

func (s Suggestion) clone() Suggestion {
	s.ImplementationTips = append([]string(nil), s.ImplementationTips...)
	return s
}
