package chatbot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spigell/interview-coach/internal/clock/clocktest"
	"github.com/spigell/interview-coach/internal/roles"
	"github.com/spigell/interview-coach/internal/store"
)

func TestRate(t *testing.T) {
	long := strings.Repeat("I designed the service carefully ", 8)

	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{name: "maximum is clamped", answer: long + "for instance we sharded the cache\nand measured it", want: 5},
		{name: "short answer", answer: "yes", want: 2},
		{name: "medium answer", answer: strings.Repeat("a", 150), want: 3},
		{name: "short with example", answer: "for example, a queue", want: 3},
		{name: "short structured rounds half up", answer: "First. Then. Done", want: 3},
		{name: "long without examples", answer: strings.Repeat("b", 250), want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rate(tt.answer).Rating; got != tt.want {
				t.Fatalf("expected rating %d, got %d", tt.want, got)
			}
		})
	}
}

func TestRateFeedbackText(t *testing.T) {
	a := Rate("Short answer.")
	want := feedbackElaborate + " " + feedbackNoExamples
	if a.Feedback != want {
		t.Fatalf("unexpected feedback %q", a.Feedback)
	}
}

func TestQuestionsFallback(t *testing.T) {
	got := Questions(roles.TypeCaseStudy, roles.Hard)
	want := Questions(roles.TypeTechnical, roles.Beginner)
	if len(got) != 3 || got[0] != want[0] {
		t.Fatalf("expected technical beginner fallback, got %v", got)
	}

	got[0] = "mutated"
	if Questions(roles.TypeTechnical, roles.Beginner)[0] == "mutated" {
		t.Fatalf("question bank must not be mutable through returned slices")
	}
}

func TestAverage(t *testing.T) {
	qs := []store.InterviewQuestion{{Rating: 2}, {Rating: 3}, {Rating: 5}}
	if got := Average(qs); got != 3.3 {
		t.Fatalf("expected 3.3, got %v", got)
	}
	if got := Average(nil); got != 0 {
		t.Fatalf("expected 0 for no ratings, got %v", got)
	}
}

type recorder struct {
	mu        sync.Mutex
	responses []store.InterviewResponse
	sessions  []store.InterviewSession
	saveErr   error
}

func (r *recorder) AddInterviewResponse(ctx context.Context, resp store.InterviewResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, resp)
	return nil
}

func (r *recorder) SaveInterviewSession(ctx context.Context, s store.InterviewSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.sessions = append(r.sessions, s)
	return nil
}

func (r *recorder) responseCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.responses)
}

func newTestSession(t *testing.T, rec *recorder) (*Session, *clocktest.Manual, *[]Message) {
	t.Helper()

	clk := clocktest.New(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	var messages []Message
	s := New(Config{
		User:          "u-1",
		Role:          "Software Engineer",
		InterviewType: roles.TypeTechnical,
		Difficulty:    roles.Medium,
	}, Deps{
		Clock:     clk,
		Responses: rec,
		Sessions:  rec,
		Emit:      func(m Message) { messages = append(messages, m) },
	})
	t.Cleanup(s.Close)

	return s, clk, &messages
}

func TestSessionIntro(t *testing.T) {
	s, _, _ := newTestSession(t, &recorder{})

	msg := s.Start()
	want := "Hello! I'm your AI interviewer. Today we'll be conducting a Medium level Technical interview for the Software Engineer position."
	if !strings.HasPrefix(msg.Text, want) {
		t.Fatalf("unexpected intro: %q", msg.Text)
	}
	if !strings.HasSuffix(msg.Text, s.Questions()[0]) {
		t.Fatalf("intro must end with the first question: %q", msg.Text)
	}
}

func TestSentinelSubmitsImmediately(t *testing.T) {
	rec := &recorder{}
	s, clk, _ := newTestSession(t, rec)
	ctx := context.Background()
	s.Start()

	if _, err := s.Input(ctx, "Asynchronous code does not block the caller."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	turn, err := s.Input(ctx, "  Enough ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if turn == nil || turn.Index != 0 {
		t.Fatalf("expected first question to be submitted, got %+v", turn)
	}
	if turn.Answer != "Asynchronous code does not block the caller." {
		t.Fatalf("sentinel must not replace the answer, got %q", turn.Answer)
	}
	if turn.Next != s.Questions()[1] {
		t.Fatalf("expected second question next, got %q", turn.Next)
	}

	// The armed inactivity timer was cancelled by the submit.
	clk.Advance(time.Minute)
	if rec.responseCount() != 1 {
		t.Fatalf("expected exactly one response, got %d", rec.responseCount())
	}
}

func TestInactivityAutoSubmits(t *testing.T) {
	rec := &recorder{}
	s, clk, _ := newTestSession(t, rec)
	ctx := context.Background()
	s.Start()

	s.Input(ctx, "A class is a blueprint")
	clk.Advance(20 * time.Second)
	s.Input(ctx, "A class is a blueprint, an object is an instance")

	clk.Advance(29 * time.Second)
	if rec.responseCount() != 0 {
		t.Fatalf("expected no submission before the inactivity timeout")
	}

	clk.Advance(time.Second)
	if rec.responseCount() != 1 {
		t.Fatalf("expected auto-submission, got %d responses", rec.responseCount())
	}
	if got := rec.responses[0].Answer; got != "A class is a blueprint, an object is an instance" {
		t.Fatalf("unexpected submitted answer %q", got)
	}
}

func TestEmptyDraftIsNotSubmitted(t *testing.T) {
	rec := &recorder{}
	s, clk, _ := newTestSession(t, rec)
	s.Start()

	turn, err := s.Submit(context.Background())
	if err != nil || turn != nil {
		t.Fatalf("expected nothing to submit, got %+v %v", turn, err)
	}

	s.Input(context.Background(), "   ")
	clk.Advance(time.Minute)
	if rec.responseCount() != 0 {
		t.Fatalf("blank drafts must not be auto-submitted")
	}
}

func TestCompleteSessionRecord(t *testing.T) {
	rec := &recorder{}
	s, _, messages := newTestSession(t, rec)
	ctx := context.Background()

	if _, err := s.Input(ctx, "too early"); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}

	s.Start()
	answers := []string{
		"yes",
		strings.Repeat("c", 150),
		strings.Repeat("I tuned the indexes ", 12) + "for example the orders table.\nThen we cached.",
	}

	var last *Turn
	for _, a := range answers {
		s.Input(ctx, a)
		turn, err := s.Submit(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		last = turn
	}

	if !last.Final || !s.Done() {
		t.Fatalf("expected session to be complete")
	}
	// Ratings 2, 3 and 5.
	if last.Average != 3.3 {
		t.Fatalf("expected average 3.3, got %v", last.Average)
	}

	if len(rec.sessions) != 1 {
		t.Fatalf("expected session to be saved once, got %d", len(rec.sessions))
	}
	saved := rec.sessions[0]
	if saved.OverallFeedback != OverallFeedback || saved.NumberOfQuestions != 3 || len(saved.Questions) != 3 {
		t.Fatalf("unexpected record: %+v", saved)
	}
	if saved.Questions[2].Rating != 5 || saved.Questions[0].Role != "Software Engineer" {
		t.Fatalf("unexpected question records: %+v", saved.Questions)
	}
	if len(rec.responses) != 3 {
		t.Fatalf("expected one response per answer, got %d", len(rec.responses))
	}

	final := (*messages)[len(*messages)-1].Text
	if !strings.HasPrefix(final, "Excellent work! You've completed the interview. Your average rating was 3.3/5.") {
		t.Fatalf("unexpected final message %q", final)
	}

	if _, err := s.Input(ctx, "more"); !errors.Is(err, ErrFinished) {
		t.Fatalf("expected ErrFinished, got %v", err)
	}
}

func TestSaveErrorIsClassified(t *testing.T) {
	rec := &recorder{saveErr: errors.New("bad status 422: Target role not verified")}
	clk := clocktest.New(time.Unix(0, 0))
	s := New(Config{User: "u-1", Role: "Designer", QuestionCount: 1}, Deps{Clock: clk, Responses: rec, Sessions: rec})
	s.Start()

	s.Input(context.Background(), "I iterate on prototypes with users.")
	turn, err := s.Submit(context.Background())
	if !errors.Is(err, store.ErrRoleNotVerified) {
		t.Fatalf("expected ErrRoleNotVerified, got %v", err)
	}
	if turn == nil || !turn.Final {
		t.Fatalf("expected final turn alongside the save error")
	}
	if s.Record() == nil {
		t.Fatalf("record must be available even when saving failed")
	}
}
