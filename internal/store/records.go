package store

import (
	"time"

	"github.com/spigell/interview-coach/internal/suggestions"
)

const (
	DefaultCurrentRole     = "Not specified"
	DefaultExperienceLevel = "Beginner"
	DefaultInterviewType   = "Technical"
	DefaultDifficulty      = "Beginner"
)

type UserProfile struct {
	UserID                 string    `json:"userId" gorm:"primaryKey;type:varchar(128)" validate:"required"`
	FullName               string    `json:"fullName" validate:"required"`
	Email                  string    `json:"email" validate:"required,email"`
	CurrentRole            string    `json:"currentRole"`
	ExperienceLevel        string    `json:"experienceLevel"`
	PreferredInterviewType string    `json:"preferredInterviewType"`
	PreferredDifficulty    string    `json:"preferredDifficulty"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// WithDefaults fills optional profile fields left empty by the user.
func (p UserProfile) WithDefaults() UserProfile {
	if p.CurrentRole == "" {
		p.CurrentRole = DefaultCurrentRole
	}
	if p.ExperienceLevel == "" {
		p.ExperienceLevel = DefaultExperienceLevel
	}
	if p.PreferredInterviewType == "" {
		p.PreferredInterviewType = DefaultInterviewType
	}
	if p.PreferredDifficulty == "" {
		p.PreferredDifficulty = DefaultDifficulty
	}
	return p
}

type InterviewSettings struct {
	UserID        string `json:"userId" gorm:"primaryKey;type:varchar(128)" validate:"required"`
	TargetRole    string `json:"targetRole"`
	InterviewType string `json:"interviewType"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"questionCount" validate:"gte=1,lte=10"`
}

type Resume struct {
	ID                     string                   `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Owner                  string                   `json:"owner" gorm:"index" validate:"required"`
	FileName               string                   `json:"fileName"`
	ContentType            string                   `json:"contentType"`
	BlobKey                string                   `json:"blobKey,omitempty"`
	ParsedContent          string                   `json:"parsedContent"`
	UploadedAt             time.Time                `json:"uploadedAt" gorm:"index"`
	QualityScore           int                      `json:"qualityScore" validate:"gte=0,lte=100"`
	ImprovementSuggestions string                   `json:"improvementSuggestions"`
	TargetRole             string                   `json:"targetRole"`
	Verified               bool                     `json:"verified"`
	ImprovementDetails     []suggestions.Suggestion `json:"improvementDetails,omitempty" gorm:"serializer:json"`
	SuggestedRole          string                   `json:"suggestedRole"`
}

// InterviewQuestion is one answered chatbot question.
type InterviewQuestion struct {
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	Feedback      string `json:"feedback"`
	Rating        int    `json:"rating,omitempty"`
	Difficulty    string `json:"difficulty"`
	InterviewType string `json:"interviewType"`
	Role          string `json:"role"`
}

type InterviewSession struct {
	ID                string              `json:"id" gorm:"primaryKey;type:varchar(64)"`
	User              string              `json:"user" gorm:"index" validate:"required"`
	Role              string              `json:"role"`
	InterviewType     string              `json:"interviewType"`
	Difficulty        string              `json:"difficulty"`
	Questions         []InterviewQuestion `json:"questions" gorm:"serializer:json"`
	StartTime         time.Time           `json:"startTime"`
	EndTime           time.Time           `json:"endTime"`
	OverallFeedback   string              `json:"overallFeedback"`
	AverageRating     float64             `json:"averageRating"`
	NumberOfQuestions int                 `json:"numberOfQuestions" validate:"gte=0"`
}

type InterviewResponse struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	User      string    `json:"user" gorm:"index" validate:"required"`
	Answer    string    `json:"answer"`
	Feedback  string    `json:"feedback"`
	Rating    int       `json:"rating" validate:"gte=1,lte=5"`
	CreatedAt time.Time `json:"createdAt"`
}

type SpokenAnswerFeedback struct {
	Transcript            string `json:"transcript"`
	CorrectnessRating     int    `json:"correctnessRating"`
	SuggestedImprovements string `json:"suggestedImprovements"`
	RecommendedAnswer     string `json:"recommendedAnswer"`
}

type LiveMockRecord struct {
	ID                    string                `json:"id" gorm:"primaryKey;type:varchar(64)"`
	User                  string                `json:"user" gorm:"index" validate:"required"`
	SessionID             string                `json:"sessionId"`
	VideoKey              string                `json:"videoKey,omitempty"`
	BodyLanguageScore     int                   `json:"bodyLanguageScore" validate:"gte=0,lte=100"`
	EyeContactScore       int                   `json:"eyeContactScore" validate:"gte=0,lte=100"`
	FacialExpressionScore int                   `json:"facialExpressionScore" validate:"gte=0,lte=100"`
	ConfidenceScore       int                   `json:"confidenceScore" validate:"gte=0,lte=100"`
	AttentivenessScore    int                   `json:"attentivenessScore" validate:"gte=0,lte=100"`
	ClarityScore          int                   `json:"clarityScore" validate:"gte=0,lte=100"`
	ToneScore             int                   `json:"toneScore" validate:"gte=0,lte=100"`
	StylingScore          int                   `json:"stylingScore" validate:"gte=0,lte=100"`
	AppearanceFeedback    string                `json:"appearanceFeedback"`
	Feedback              string                `json:"feedback"`
	SpokenAnswerFeedback  *SpokenAnswerFeedback `json:"spokenAnswerFeedback,omitempty" gorm:"serializer:json"`
	RecordedAt            time.Time             `json:"recordedAt"`
	NumberOfQuestions     int                   `json:"numberOfQuestions" validate:"gte=0,lte=10"`
	SessionStarted        bool                  `json:"sessionStarted"`
}

type QuizResult struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	User        string    `json:"user" gorm:"index" validate:"required"`
	Role        string    `json:"role" validate:"required"`
	Score       int       `json:"score" validate:"gte=0"`
	Total       int       `json:"total" validate:"gte=0"`
	CompletedAt time.Time `json:"completedAt"`
}

type CandidateReview struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	User            string    `json:"user" gorm:"index" validate:"required"`
	ChatBotScores   []int     `json:"chatBotScores" gorm:"serializer:json"`
	LiveMockScores  []int     `json:"liveMockScores" gorm:"serializer:json"`
	ResumeScore     int       `json:"resumeScore,omitempty"`
	OverallRating   int       `json:"overallRating" validate:"gte=0,lte=100"`
	Strengths       string    `json:"strengths"`
	Weaknesses      string    `json:"weaknesses"`
	Recommendations string    `json:"recommendations"`
	CreatedAt       time.Time `json:"createdAt"`
}
