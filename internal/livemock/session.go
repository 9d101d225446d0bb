// Package livemock runs spoken mock interviews against a camera and a speech
// recognizer and aggregates them into a single scored record.
package livemock

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/blob"
	"github.com/spigell/interview-coach/internal/clock"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/media"
	"github.com/spigell/interview-coach/internal/scoring"
	"github.com/spigell/interview-coach/internal/speech"
	"github.com/spigell/interview-coach/internal/store"
)

// DefaultFrameDelay is how long after recording starts the still frame is taken.
const DefaultFrameDelay = 2 * time.Second

var (
	ErrNotOpen      = errors.New("live mock device not open")
	ErrRecording    = errors.New("recording already in progress")
	ErrNotRecording = errors.New("not recording")
	ErrNoAnswer     = errors.New("no answer recorded")
	ErrCompleted    = errors.New("live mock already completed")
)

type Saver interface {
	SaveLiveMock(ctx context.Context, r store.LiveMockRecord) error
}

type Config struct {
	User          string
	SessionID     string
	QuestionCount int
	FrameDelay    time.Duration
}

type Deps struct {
	Device     media.Device
	Recognizer speech.Recognizer
	Blobs      blob.Store
	Scores     scoring.Strategy
	Saver      Saver
	Clock      clock.Clock
	Logger     *zap.Logger
	// Notify receives user facing messages such as microphone denial.
	Notify func(string)
}

type Session struct {
	cfg        Config
	questions  []Question
	device     media.Device
	recognizer speech.Recognizer
	blobs      blob.Store
	scores     scoring.Strategy
	saver      Saver
	clock      clock.Clock
	logger     *zap.Logger
	notify     func(string)

	mu         sync.Mutex
	open       bool
	index      int
	stream     speech.Stream
	consumed   chan struct{}
	frameTimer clock.Timer
	final      []string
	interim    string
	tone       *Tone
	deniedSent bool
	videoKey   string
	feedbacks  []store.SpokenAnswerFeedback
	answered   map[int]bool
	record     *store.LiveMockRecord
}

func New(cfg Config, deps Deps) *Session {
	cfg.QuestionCount = ClampCount(cfg.QuestionCount)
	if cfg.FrameDelay <= 0 {
		cfg.FrameDelay = DefaultFrameDelay
	}
	if cfg.SessionID == "" {
		cfg.SessionID = store.NewID("livemock")
	}

	c := deps.Clock
	if c == nil {
		c = clock.Real()
	}
	scores := deps.Scores
	if scores == nil {
		scores = scoring.Fixed(scoring.Baseline)
	}
	notify := deps.Notify
	if notify == nil {
		notify = func(string) {}
	}
	l := deps.Logger
	if l == nil {
		l = zap.NewNop()
	}

	return &Session{
		cfg:        cfg,
		questions:  Questions(cfg.QuestionCount),
		device:     deps.Device,
		recognizer: deps.Recognizer,
		blobs:      deps.Blobs,
		scores:     scores,
		saver:      deps.Saver,
		clock:      c,
		logger:     l.With(zap.String(logger.FieldUser, cfg.User), zap.String(logger.FieldSession, cfg.SessionID)),
		notify:     notify,
		answered:   make(map[int]bool),
	}
}

// Open acquires the camera. Failures are returned as *media.Error so callers
// can show media.Message and offer a retry.
func (s *Session) Open(ctx context.Context) error {
	if s.device == nil {
		return &media.Error{Kind: media.NotFound, Err: errors.New("no video device configured")}
	}

	if err := s.device.Open(ctx); err != nil {
		merr := media.Classify(err)
		s.logger.Warn("opening media device failed", zap.String("kind", string(merr.Kind)), zap.Error(err))
		return merr
	}

	s.mu.Lock()
	s.open = true
	s.mu.Unlock()

	s.logger.Info("live mock started", zap.Int("questions", len(s.questions)))
	return nil
}

// Retry closes the device and opens it again.
func (s *Session) Retry(ctx context.Context) error {
	if s.device != nil {
		_ = s.device.Close()
	}
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()

	return s.Open(ctx)
}

// Questions returns the questions of this session in order.
func (s *Session) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Current returns the index and text of the question being answered.
func (s *Session) Current() (int, Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index, s.questions[s.index]
}

// StartRecording opens a recognition stream for the current question and
// schedules the still frame capture.
func (s *Session) StartRecording(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.record != nil:
		s.mu.Unlock()
		return ErrCompleted
	case !s.open:
		s.mu.Unlock()
		return ErrNotOpen
	case s.stream != nil:
		s.mu.Unlock()
		return ErrRecording
	case s.recognizer == nil:
		s.mu.Unlock()
		return speech.ErrNoRecognizer
	}
	s.mu.Unlock()

	stream, err := s.recognizer.Listen(ctx)
	if err != nil {
		if speech.IsNotAllowed(err) {
			s.denied()
		}
		return fmt.Errorf("start recognition: %w", err)
	}

	consumed := make(chan struct{})

	s.mu.Lock()
	s.stream = stream
	s.consumed = consumed
	s.final = nil
	s.interim = ""
	if s.videoKey == "" {
		captureCtx := context.WithoutCancel(ctx)
		s.frameTimer = s.clock.AfterFunc(s.cfg.FrameDelay, func() { s.captureFrame(captureCtx) })
	}
	index := s.index
	s.mu.Unlock()

	go s.consume(stream, consumed)

	s.logger.Debug("recording started", zap.Int("question", index+1))
	return nil
}

// Transcript returns the final text recognized so far plus any interim tail.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcriptLocked(true)
}

// StopRecording ends the recognition stream and evaluates the answer to the
// current question.
func (s *Session) StopRecording(ctx context.Context) (store.SpokenAnswerFeedback, error) {
	s.mu.Lock()
	stream, consumed := s.stream, s.consumed
	if stream == nil {
		s.mu.Unlock()
		return store.SpokenAnswerFeedback{}, ErrNotRecording
	}
	s.mu.Unlock()

	_ = stream.Close()
	select {
	case <-consumed:
	case <-ctx.Done():
		return store.SpokenAnswerFeedback{}, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stream = nil
	s.consumed = nil

	transcript := s.transcriptLocked(false)
	if transcript == "" {
		return store.SpokenAnswerFeedback{}, ErrNoAnswer
	}

	feedback := EvaluateAnswer(transcript, s.questions[s.index])
	if s.answered[s.index] {
		s.feedbacks[len(s.feedbacks)-1] = feedback
	} else {
		s.feedbacks = append(s.feedbacks, feedback)
		s.answered[s.index] = true
	}

	s.logger.Info("answer evaluated",
		zap.Int("question", s.index+1),
		zap.Int("correctness_rating", feedback.CorrectnessRating),
	)
	return feedback, nil
}

// Next moves to the following question. It reports false on the last one.
func (s *Session) Next() (Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil || s.index >= len(s.questions)-1 {
		return Question{}, false
	}
	s.index++
	return s.questions[s.index], true
}

// Complete aggregates the answers into a record and saves it.
func (s *Session) Complete(ctx context.Context) (store.LiveMockRecord, error) {
	s.mu.Lock()
	if s.record != nil {
		s.mu.Unlock()
		return store.LiveMockRecord{}, ErrCompleted
	}
	if s.stream != nil {
		s.mu.Unlock()
		if _, err := s.StopRecording(ctx); err != nil && !errors.Is(err, ErrNoAnswer) {
			return store.LiveMockRecord{}, err
		}
		s.mu.Lock()
	}
	s.stopFrameLocked()

	record := s.buildRecordLocked()
	s.record = &record
	s.mu.Unlock()

	s.logger.Info("live mock completed",
		zap.Int("answered", len(s.feedbacks)),
		zap.Int("overall", scoresOf(record).Overall()),
	)

	if s.saver != nil {
		if err := s.saver.SaveLiveMock(ctx, record); err != nil {
			return record, fmt.Errorf("save live mock: %w", store.Classify(err))
		}
		s.logger.Info("live mock saved", zap.String("record_id", record.ID))
	}

	return record, nil
}

// Close stops any recording and releases the device.
func (s *Session) Close() error {
	s.mu.Lock()
	stream := s.stream
	s.stream = nil
	s.stopFrameLocked()
	s.open = false
	s.mu.Unlock()

	if stream != nil {
		_ = stream.Close()
	}
	if s.device != nil {
		return s.device.Close()
	}
	return nil
}

func (s *Session) consume(stream speech.Stream, done chan struct{}) {
	defer close(done)

	segments, errs := stream.Segments(), stream.Errors()
	for segments != nil || errs != nil {
		select {
		case seg, ok := <-segments:
			if !ok {
				segments = nil
				continue
			}
			s.addSegment(seg)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			switch {
			case speech.IsTransient(err):
				s.logger.Debug("transient recognition error", zap.Error(err))
			case speech.IsNotAllowed(err):
				s.denied()
				_ = stream.Close()
			default:
				s.logger.Warn("speech recognition error", zap.Error(err))
			}
		}
	}
}

func (s *Session) addSegment(seg speech.Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := strings.TrimSpace(seg.Text)
	if !seg.Final {
		s.interim = text
		return
	}

	s.interim = ""
	if text == "" {
		return
	}
	s.final = append(s.final, text)
	t := AnalyzeTone(text)
	s.tone = &t
}

func (s *Session) denied() {
	s.mu.Lock()
	first := !s.deniedSent
	s.deniedSent = true
	s.mu.Unlock()

	if first {
		s.logger.Warn("microphone access denied")
		s.notify(speech.MessageNotAllowed)
	}
}

func (s *Session) captureFrame(ctx context.Context) {
	s.mu.Lock()
	s.frameTimer = nil
	open := s.open
	s.mu.Unlock()

	if !open || s.device == nil || s.blobs == nil {
		return
	}

	frame, err := s.device.Capture(ctx)
	if err != nil {
		s.logger.Warn("capturing still frame failed", zap.Error(err))
		return
	}

	key := blob.NewKey("livemock", s.cfg.User, "frame.yuv")
	if err := s.blobs.Put(ctx, key, frame, "application/octet-stream"); err != nil {
		s.logger.Warn("storing still frame failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.videoKey = key
	s.mu.Unlock()

	s.logger.Debug("still frame stored", zap.String("key", key), zap.Int("bytes", len(frame)))
}

func (s *Session) stopFrameLocked() {
	if s.frameTimer != nil {
		s.frameTimer.Stop()
		s.frameTimer = nil
	}
}

func (s *Session) transcriptLocked(withInterim bool) string {
	parts := append([]string(nil), s.final...)
	if withInterim && s.interim != "" {
		parts = append(parts, s.interim)
	}
	return strings.Join(parts, " ")
}

func (s *Session) buildRecordLocked() store.LiveMockRecord {
	var scores Scores

	styling := s.scores.Fallback()
	if s.videoKey != "" {
		styling = s.scores.Quality()
	}
	scores.Styling = scoring.Clamp(styling)

	if s.tone != nil {
		scores.Confidence = s.tone.Confidence
		scores.Clarity = s.tone.Clarity
		scores.Tone = int(math.Floor(float64(s.tone.Confidence+s.tone.Enthusiasm) / 2))
	} else {
		scores.Confidence = s.scores.Fallback()
		scores.Clarity = s.scores.Fallback()
		scores.Tone = s.scores.Fallback()
	}
	scores.BodyLanguage = s.scores.Fallback()
	scores.EyeContact = s.scores.Fallback()
	scores.FacialExpression = s.scores.Fallback()
	scores.Attentiveness = s.scores.Fallback()

	feedbacks := append([]store.SpokenAnswerFeedback(nil), s.feedbacks...)

	return store.LiveMockRecord{
		ID:                    store.NewID("livemock"),
		User:                  s.cfg.User,
		SessionID:             s.cfg.SessionID,
		VideoKey:              s.videoKey,
		BodyLanguageScore:     scores.BodyLanguage,
		EyeContactScore:       scores.EyeContact,
		FacialExpressionScore: scores.FacialExpression,
		ConfidenceScore:       scores.Confidence,
		AttentivenessScore:    scores.Attentiveness,
		ClarityScore:          scores.Clarity,
		ToneScore:             scores.Tone,
		StylingScore:          scores.Styling,
		AppearanceFeedback:    AppearanceFeedback(scores.Styling),
		Feedback:              ComprehensiveFeedback(scores, AverageCorrectness(feedbacks), len(feedbacks)),
		SpokenAnswerFeedback:  Aggregate(feedbacks),
		RecordedAt:            s.clock.Now(),
		NumberOfQuestions:     len(s.questions),
		SessionStarted:        true,
	}
}

func scoresOf(r store.LiveMockRecord) Scores {
	return Scores{
		BodyLanguage:     r.BodyLanguageScore,
		EyeContact:       r.EyeContactScore,
		FacialExpression: r.FacialExpressionScore,
		Confidence:       r.ConfidenceScore,
		Attentiveness:    r.AttentivenessScore,
		Clarity:          r.ClarityScore,
		Tone:             r.ToneScore,
		Styling:          r.StylingScore,
	}
}
