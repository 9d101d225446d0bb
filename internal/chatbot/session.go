// Package chatbot runs the scripted text interview.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/clock"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/roles"
	"github.com/spigell/interview-coach/internal/store"
)

const (
	// DefaultInactivity is how long a non-empty draft may sit before it is submitted.
	DefaultInactivity = 30 * time.Second
	// DefaultTransition is the pause before the next question is asked.
	DefaultTransition = time.Second
	// Sentinel typed on its own submits the current draft.
	Sentinel = "enough"

	OverallFeedback = "Good performance overall. Continue practicing to improve your interview skills."

	msgIntro = "Hello! I'm your AI interviewer. Today we'll be conducting a %s level %s interview for the %s position. " +
		"I'll ask you %d questions and provide feedback after each response. Let's begin!\n\n%s"
	msgNext  = "Great! Let's move on to the next question:\n\n%s"
	msgFinal = "Excellent work! You've completed the interview. Your average rating was %.1f/5. " +
		"Overall, you demonstrated good understanding and communication skills. " +
		"Keep practicing to further improve your interview performance!"
)

var (
	ErrNotStarted = errors.New("interview not started")
	ErrFinished   = errors.New("interview already finished")
)

type Speaker string

const (
	SpeakerInterviewer Speaker = "ai"
	SpeakerCandidate   Speaker = "user"
)

// Message is one entry of the interview transcript.
type Message struct {
	Speaker  Speaker
	Text     string
	Feedback string
	Rating   int
}

// Turn is the outcome of one submitted answer.
type Turn struct {
	Index    int
	Question string
	Answer   string
	Assessment
	// Next is the following question, empty after the last one.
	Next    string
	Final   bool
	Average float64
}

type ResponseSink interface {
	AddInterviewResponse(ctx context.Context, r store.InterviewResponse) error
}

type SessionSaver interface {
	SaveInterviewSession(ctx context.Context, s store.InterviewSession) error
}

type Config struct {
	User          string
	Role          string
	InterviewType roles.InterviewType
	Difficulty    roles.Difficulty
	// QuestionCount caps the number of questions asked; zero asks the whole set.
	QuestionCount int
	Inactivity    time.Duration
	Transition    time.Duration
}

type Deps struct {
	Clock     clock.Clock
	Logger    *zap.Logger
	Responses ResponseSink
	Sessions  SessionSaver
	// Emit receives transcript messages. It is called without internal locks held.
	Emit func(Message)
}

type Session struct {
	cfg       Config
	questions []string
	clock     clock.Clock
	logger    *zap.Logger
	responses ResponseSink
	sessions  SessionSaver
	emit      func(Message)

	mu         sync.Mutex
	started    bool
	index      int
	draft      string
	draftGen   uint64
	timer      clock.Timer
	processing bool
	done       bool
	answered   []store.InterviewQuestion
	startedAt  time.Time
	record     *store.InterviewSession
}

func New(cfg Config, deps Deps) *Session {
	if cfg.Inactivity <= 0 {
		cfg.Inactivity = DefaultInactivity
	}

	questions := Questions(cfg.InterviewType, cfg.Difficulty)
	if cfg.QuestionCount > 0 && cfg.QuestionCount < len(questions) {
		questions = questions[:cfg.QuestionCount]
	}

	c := deps.Clock
	if c == nil {
		c = clock.Real()
	}
	emit := deps.Emit
	if emit == nil {
		emit = func(Message) {}
	}

	return &Session{
		cfg:       cfg,
		questions: questions,
		clock:     c,
		logger:    logger.WithSession(deps.Logger, cfg.User, cfg.Role),
		responses: deps.Responses,
		sessions:  deps.Sessions,
		emit:      emit,
	}
}

// Questions returns the questions this session asks, in order.
func (s *Session) Questions() []string {
	return append([]string(nil), s.questions...)
}

// Start asks the first question. Calling it again is a no-op.
func (s *Session) Start() Message {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return Message{}
	}
	s.started = true
	s.startedAt = s.clock.Now()
	s.mu.Unlock()

	msg := Message{
		Speaker: SpeakerInterviewer,
		Text: fmt.Sprintf(msgIntro,
			s.cfg.Difficulty, s.cfg.InterviewType, s.cfg.Role, len(s.questions), s.questions[0]),
	}
	s.logger.Info("chatbot interview started",
		zap.String("interview_type", string(s.cfg.InterviewType)),
		zap.String("difficulty", string(s.cfg.Difficulty)),
		zap.Int("questions", len(s.questions)),
	)
	s.emit(msg)

	return msg
}

// Input replaces the current answer draft. Typing the sentinel on its own
// submits the draft typed so far instead of being recorded as an answer.
func (s *Session) Input(ctx context.Context, text string) (*Turn, error) {
	if strings.EqualFold(strings.TrimSpace(text), Sentinel) {
		return s.Submit(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acceptingLocked(); err != nil {
		return nil, err
	}

	s.draft = text
	s.draftGen++
	s.stopTimerLocked()

	if strings.TrimSpace(text) != "" {
		gen := s.draftGen
		s.timer = s.clock.AfterFunc(s.cfg.Inactivity, func() { s.inactive(gen) })
	}

	return nil, nil
}

// Submit rates the current draft and advances to the next question. It returns
// a nil turn when there is nothing to submit.
func (s *Session) Submit(ctx context.Context) (*Turn, error) {
	s.mu.Lock()
	if err := s.acceptingLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.processing || strings.TrimSpace(s.draft) == "" {
		s.mu.Unlock()
		return nil, nil
	}

	s.processing = true
	s.stopTimerLocked()

	answer := s.draft
	s.draft = ""
	s.draftGen++

	assessment := Rate(answer)
	turn := &Turn{
		Index:      s.index,
		Question:   s.questions[s.index],
		Answer:     answer,
		Assessment: assessment,
	}
	s.answered = append(s.answered, store.InterviewQuestion{
		Question:      turn.Question,
		Answer:        answer,
		Feedback:      assessment.Feedback,
		Rating:        assessment.Rating,
		Difficulty:    string(s.cfg.Difficulty),
		InterviewType: string(s.cfg.InterviewType),
		Role:          s.cfg.Role,
	})
	s.mu.Unlock()

	s.pushResponse(ctx, answer, assessment)

	s.emit(Message{Speaker: SpeakerCandidate, Text: answer})
	s.emit(Message{
		Speaker:  SpeakerInterviewer,
		Text:     assessment.Feedback,
		Feedback: assessment.Feedback,
		Rating:   assessment.Rating,
	})

	if err := clock.Wait(ctx, s.clock, s.cfg.Transition); err != nil {
		s.mu.Lock()
		s.processing = false
		s.mu.Unlock()
		return turn, err
	}

	s.mu.Lock()
	s.processing = false
	if s.index < len(s.questions)-1 {
		s.index++
		turn.Next = s.questions[s.index]
		s.mu.Unlock()

		s.emit(Message{Speaker: SpeakerInterviewer, Text: fmt.Sprintf(msgNext, turn.Next)})
		return turn, nil
	}

	s.done = true
	record := s.buildRecordLocked()
	s.record = &record
	s.mu.Unlock()

	turn.Final = true
	turn.Average = record.AverageRating

	s.emit(Message{Speaker: SpeakerInterviewer, Text: fmt.Sprintf(msgFinal, record.AverageRating)})
	s.logger.Info("chatbot interview completed",
		zap.Float64("average_rating", record.AverageRating),
		zap.Int("questions", len(record.Questions)),
	)

	if err := s.save(ctx, record); err != nil {
		return turn, err
	}

	return turn, nil
}

// Done reports whether the last question has been answered.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Record returns the completed session record, or nil while in progress.
func (s *Session) Record() *store.InterviewSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.record == nil {
		return nil
	}
	c := *s.record
	c.Questions = append([]store.InterviewQuestion(nil), s.record.Questions...)
	return &c
}

// Close stops the inactivity timer.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
}

// Average is the mean of the recorded ratings rounded to one decimal.
func Average(questions []store.InterviewQuestion) float64 {
	if len(questions) == 0 {
		return 0
	}

	sum := 0
	for _, q := range questions {
		sum += q.Rating
	}
	return math.Round(float64(sum)/float64(len(questions))*10) / 10
}

func (s *Session) inactive(gen uint64) {
	s.mu.Lock()
	current := gen == s.draftGen
	s.mu.Unlock()

	if !current {
		return
	}

	s.logger.Debug("inactivity timeout, submitting answer")
	if _, err := s.Submit(context.Background()); err != nil {
		s.logger.Warn("auto-submit failed", zap.Error(err))
	}
}

func (s *Session) acceptingLocked() error {
	switch {
	case !s.started:
		return ErrNotStarted
	case s.done:
		return ErrFinished
	default:
		return nil
	}
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) buildRecordLocked() store.InterviewSession {
	questions := append([]store.InterviewQuestion(nil), s.answered...)
	return store.InterviewSession{
		ID:                store.NewID("session"),
		User:              s.cfg.User,
		Role:              s.cfg.Role,
		InterviewType:     string(s.cfg.InterviewType),
		Difficulty:        string(s.cfg.Difficulty),
		Questions:         questions,
		StartTime:         s.startedAt,
		EndTime:           s.clock.Now(),
		OverallFeedback:   OverallFeedback,
		AverageRating:     Average(questions),
		NumberOfQuestions: len(s.questions),
	}
}

func (s *Session) pushResponse(ctx context.Context, answer string, a Assessment) {
	if s.responses == nil {
		return
	}

	err := s.responses.AddInterviewResponse(ctx, store.InterviewResponse{
		User:      s.cfg.User,
		Answer:    answer,
		Feedback:  a.Feedback,
		Rating:    a.Rating,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		s.logger.Warn("saving interview response failed", zap.Error(err))
	}
}

func (s *Session) save(ctx context.Context, record store.InterviewSession) error {
	if s.sessions == nil {
		return nil
	}

	if err := s.sessions.SaveInterviewSession(ctx, record); err != nil {
		return fmt.Errorf("save interview session: %w", store.Classify(err))
	}

	s.logger.Info("interview session saved", zap.String(logger.FieldSession, record.ID))
	return nil
}
