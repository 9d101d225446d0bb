// Package review combines chatbot, live mock and resume results into an
// overall candidate review.
package review

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/interview-coach/internal/clock"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/scoring"
	"github.com/spigell/interview-coach/internal/store"
)

const (
	chatbotWeight  = 0.35
	liveMockWeight = 0.45
	resumeWeight   = 0.20

	ratingScale = 20
)

const (
	defaultStrength = "Complete more practice sessions to identify strengths"
	defaultWeakness = "Complete more practice sessions to identify areas for improvement"
)

// Summary is a computed review before it is turned into a record.
type Summary struct {
	ChatBotAvg      int
	LiveMockAvg     int
	ResumeScore     int
	OverallRating   int
	Strengths       []string
	Weaknesses      []string
	Recommendations []string

	sessions  int
	liveMocks int
}

// Label names the readiness band of an overall rating.
func Label(rating int) string {
	switch {
	case rating >= 90:
		return "Excellent"
	case rating >= 80:
		return "Very Good"
	case rating >= 70:
		return "Good"
	case rating >= 60:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

func (s Summary) Label() string {
	return Label(s.OverallRating)
}

// Compute derives the review from the user's history. Unrated chatbot
// questions take a score from the strategy.
func Compute(sessions []store.InterviewSession, mocks []store.LiveMockRecord, resumes []store.Resume, scores scoring.Strategy) Summary {
	if scores == nil {
		scores = scoring.Fixed(scoring.Baseline)
	}

	s := Summary{
		ChatBotAvg:  chatbotAverage(sessions, scores),
		LiveMockAvg: liveMockAverage(mocks),
		sessions:    len(sessions),
		liveMocks:   len(mocks),
	}
	if latest := store.Latest(resumes); latest != nil {
		s.ResumeScore = latest.QualityScore
	}

	s.OverallRating = round(float64(s.ChatBotAvg)*chatbotWeight +
		float64(s.LiveMockAvg)*liveMockWeight +
		float64(s.ResumeScore)*resumeWeight)

	anyTone := func(pred func(int) bool) bool {
		for _, m := range mocks {
			if m.ToneScore > 0 && pred(m.ToneScore) {
				return true
			}
		}
		return false
	}
	anyStyling := func(pred func(int) bool) bool {
		for _, m := range mocks {
			if m.StylingScore > 0 && pred(m.StylingScore) {
				return true
			}
		}
		return false
	}
	high := func(v int) bool { return v >= 80 }
	low := func(v int) bool { return v < 70 }

	if s.ChatBotAvg >= 80 {
		s.Strengths = append(s.Strengths, "Strong verbal communication and articulation")
	}
	if s.LiveMockAvg >= 80 {
		s.Strengths = append(s.Strengths, "Excellent non-verbal communication and presentation")
	}
	if s.ResumeScore >= 85 {
		s.Strengths = append(s.Strengths, "Well-crafted resume with clear achievements")
	}
	if anyTone(high) {
		s.Strengths = append(s.Strengths, "Confident and enthusiastic vocal delivery")
	}
	if anyStyling(high) {
		s.Strengths = append(s.Strengths, "Professional appearance and presentation")
	}

	if s.ChatBotAvg < 70 {
		s.Weaknesses = append(s.Weaknesses, "Need to improve response clarity and structure")
	}
	if s.LiveMockAvg < 70 {
		s.Weaknesses = append(s.Weaknesses, "Work on body language and eye contact")
	}
	if s.ResumeScore < 70 {
		s.Weaknesses = append(s.Weaknesses, "Resume needs better formatting and quantifiable achievements")
	}
	if anyTone(low) {
		s.Weaknesses = append(s.Weaknesses, "Vocal tone could be more confident and engaging")
	}
	if anyStyling(low) {
		s.Weaknesses = append(s.Weaknesses, "Professional appearance needs improvement")
	}

	if s.ChatBotAvg < 80 {
		s.Recommendations = append(s.Recommendations, "Practice answering common interview questions with structured responses (STAR method)")
	}
	if s.LiveMockAvg < 80 {
		s.Recommendations = append(s.Recommendations, "Record yourself and practice maintaining eye contact and confident posture")
	}
	if s.ResumeScore < 85 {
		s.Recommendations = append(s.Recommendations, "Revise resume to include more quantifiable achievements and action verbs")
	}
	s.Recommendations = append(s.Recommendations,
		"Continue practicing with both chatbot and live mock interviews regularly",
		"Review feedback from each session and focus on areas needing improvement",
	)

	if len(s.Strengths) == 0 {
		s.Strengths = []string{defaultStrength}
	}
	if len(s.Weaknesses) == 0 {
		s.Weaknesses = []string{defaultWeakness}
	}

	return s
}

// Record turns the summary into a persistable review.
func (s Summary) Record(user string, now time.Time) store.CandidateReview {
	chatbot := make([]int, s.sessions)
	for i := range chatbot {
		chatbot[i] = s.ChatBotAvg
	}
	live := make([]int, s.liveMocks)
	for i := range live {
		live[i] = s.LiveMockAvg
	}

	return store.CandidateReview{
		ID:              store.NewID("review"),
		User:            user,
		ChatBotScores:   chatbot,
		LiveMockScores:  live,
		ResumeScore:     s.ResumeScore,
		OverallRating:   s.OverallRating,
		Strengths:       strings.Join(s.Strengths, "\n"),
		Weaknesses:      strings.Join(s.Weaknesses, "\n"),
		Recommendations: strings.Join(s.Recommendations, "\n"),
		CreatedAt:       now,
	}
}

// chatbotAverage is the mean over every recorded question, rating scaled to 0..100.
func chatbotAverage(sessions []store.InterviewSession, scores scoring.Strategy) int {
	sum, n := 0, 0
	for _, session := range sessions {
		for _, q := range session.Questions {
			if q.Rating > 0 {
				sum += scoring.Clamp(q.Rating * ratingScale)
			} else {
				sum += scores.Fallback()
			}
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return round(float64(sum) / float64(n))
}

// liveMockAverage averages each record's mean of its non-zero sub-scores.
func liveMockAverage(mocks []store.LiveMockRecord) int {
	var total float64
	n := 0
	for _, m := range mocks {
		sum, count := 0, 0
		for _, v := range []int{m.BodyLanguageScore, m.EyeContactScore, m.ConfidenceScore, m.ClarityScore, m.ToneScore, m.StylingScore} {
			if v > 0 {
				sum += v
				count++
			}
		}
		if count == 0 {
			continue
		}
		total += float64(sum) / float64(count)
		n++
	}
	if n == 0 {
		return 0
	}
	return round(total / float64(n))
}

func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Source reads the history a review is built from.
type Source interface {
	InterviewSessions(ctx context.Context, user string) ([]store.InterviewSession, error)
	LiveMocks(ctx context.Context, user string) ([]store.LiveMockRecord, error)
	Resumes(ctx context.Context, user string) ([]store.Resume, error)
}

type Saver interface {
	SaveCandidateReview(ctx context.Context, r store.CandidateReview) error
}

type Deps struct {
	Source Source
	Saver  Saver
	Scores scoring.Strategy
	Clock  clock.Clock
	Logger *zap.Logger
}

// Builder fetches a user's history and produces candidate reviews.
type Builder struct {
	source Source
	saver  Saver
	scores scoring.Strategy
	clock  clock.Clock
	logger *zap.Logger
}

func NewBuilder(deps Deps) *Builder {
	c := deps.Clock
	if c == nil {
		c = clock.Real()
	}
	l := deps.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &Builder{
		source: deps.Source,
		saver:  deps.Saver,
		scores: deps.Scores,
		clock:  c,
		logger: l,
	}
}

// Build loads the user's sessions, live mocks and resumes concurrently and
// computes the review.
func (b *Builder) Build(ctx context.Context, user string) (Summary, store.CandidateReview, error) {
	var (
		sessions []store.InterviewSession
		mocks    []store.LiveMockRecord
		resumes  []store.Resume
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = b.source.InterviewSessions(gctx, user)
		if err != nil {
			return fmt.Errorf("list interview sessions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		mocks, err = b.source.LiveMocks(gctx, user)
		if err != nil {
			return fmt.Errorf("list live mocks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		resumes, err = b.source.Resumes(gctx, user)
		if err != nil {
			return fmt.Errorf("list resumes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, store.CandidateReview{}, err
	}

	summary := Compute(sessions, mocks, resumes, b.scores)
	record := summary.Record(user, b.clock.Now())

	b.logger.Info("candidate review built",
		zap.String(logger.FieldUser, user),
		zap.Int("overall_rating", summary.OverallRating),
		zap.Int("chatbot_avg", summary.ChatBotAvg),
		zap.Int("live_mock_avg", summary.LiveMockAvg),
		zap.Int("resume_score", summary.ResumeScore),
	)

	return summary, record, nil
}

// BuildAndSave builds the review and persists it.
func (b *Builder) BuildAndSave(ctx context.Context, user string) (Summary, store.CandidateReview, error) {
	summary, record, err := b.Build(ctx, user)
	if err != nil {
		return summary, record, err
	}
	if b.saver == nil {
		return summary, record, nil
	}
	if err := b.saver.SaveCandidateReview(ctx, record); err != nil {
		return summary, record, fmt.Errorf("save candidate review: %w", store.Classify(err))
	}
	return summary, record, nil
}
