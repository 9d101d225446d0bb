package quiz

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/interview-coach/internal/clock/clocktest"
	"github.com/spigell/interview-coach/internal/store"
)

func TestQuestions(t *testing.T) {
	roles := Roles()
	if len(roles) != 3 || roles[0] != "Data Scientist" {
		t.Fatalf("unexpected roles %v", roles)
	}
	for _, role := range roles {
		qs, err := Questions(role)
		if err != nil || len(qs) != 5 {
			t.Fatalf("expected five questions for %s, got %d (%v)", role, len(qs), err)
		}
	}

	if _, err := Questions("Astronaut"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		score, total int
		want         string
	}{
		{5, 5, "Perfect Score!"},
		{4, 5, "Great Job!"},
		{3, 5, "Keep Practicing!"},
		{0, 5, "Keep Practicing!"},
	}
	for _, tt := range tests {
		if got := Label(tt.score, tt.total); got != tt.want {
			t.Fatalf("Label(%d, %d) = %q, want %q", tt.score, tt.total, got, tt.want)
		}
	}
	if Percent(3, 5) != 60 || Percent(2, 3) != 67 || Percent(1, 0) != 0 {
		t.Fatalf("unexpected percentages")
	}
}

func newQuiz(t *testing.T, clk *clocktest.Manual, saver Saver, onComplete func(store.QuizResult, error)) *Quiz {
	t.Helper()

	q, err := New(Config{User: "u1", Role: "Software Engineer"}, Deps{Clock: clk, Saver: saver, OnComplete: onComplete})
	if err != nil {
		t.Fatalf("new quiz: %v", err)
	}
	return q
}

func TestAnswerAllQuestions(t *testing.T) {
	ctx := context.Background()
	clk := clocktest.New(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	mem := store.NewMemory()

	var completed []store.QuizResult
	q := newQuiz(t, clk, mem, func(r store.QuizResult, err error) {
		if err != nil {
			t.Errorf("unexpected completion error: %v", err)
		}
		completed = append(completed, r)
	})

	if _, err := q.Answer(ctx, 0, 1); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}

	q.Start()
	choices := []int{1, 1, 0, 2, 2}
	for i, choice := range choices {
		clk.Advance(5 * time.Second)
		out, err := q.Answer(ctx, i, choice)
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if out.Done != (i == len(choices)-1) {
			t.Fatalf("unexpected done flag at %d", i)
		}
		if i == 2 && (out.Correct || out.CorrectIndex != 1) {
			t.Fatalf("expected a wrong answer with the right index revealed: %+v", out)
		}
	}

	if _, err := q.Answer(ctx, 0, 1); !errors.Is(err, ErrFinished) {
		t.Fatalf("expected ErrFinished, got %v", err)
	}

	result, ok := q.Result()
	if !ok || result.Score != 4 || result.Total != 5 || result.Role != "Software Engineer" {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(completed) != 1 || completed[0].ID != result.ID {
		t.Fatalf("expected a single completion callback, got %v", completed)
	}
	if clk.Pending() != 0 || q.Remaining() != 0 {
		t.Fatalf("time limit must be disarmed after completion")
	}

	saved, _ := mem.QuizResults(ctx, "u1")
	if len(saved) != 1 || saved[0].Score != 4 {
		t.Fatalf("expected saved result, got %+v", saved)
	}

	select {
	case <-q.Done():
	default:
		t.Fatalf("done channel must be closed")
	}
}

func TestAnswerOnce(t *testing.T) {
	ctx := context.Background()
	q := newQuiz(t, clocktest.New(time.Unix(0, 0)), nil, nil)
	q.Start()

	if _, err := q.Answer(ctx, 0, 9); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
	if _, err := q.Answer(ctx, 0, 1); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := q.Answer(ctx, 0, 0); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
	if _, err := q.Answer(ctx, 3, 0); err == nil {
		t.Fatalf("expected an error when skipping ahead")
	}
}

func TestTimeUpCompletesQuiz(t *testing.T) {
	ctx := context.Background()
	clk := clocktest.New(time.Unix(0, 0))
	core, logs := observer.New(zap.InfoLevel)

	var completed int
	q, err := New(Config{User: "u1", Role: "Data Scientist"}, Deps{
		Clock:      clk,
		Saver:      store.NewMemory(),
		Logger:     zap.New(core),
		OnComplete: func(store.QuizResult, error) { completed++ },
	})
	if err != nil {
		t.Fatalf("new quiz: %v", err)
	}

	q.Start()
	if _, err := q.Answer(ctx, 0, 1); err != nil {
		t.Fatalf("answer: %v", err)
	}

	clk.Advance(30 * time.Second)
	if q.Remaining() != 30*time.Second {
		t.Fatalf("unexpected remaining time %s", q.Remaining())
	}

	clk.Advance(30 * time.Second)
	result, ok := q.Result()
	if !ok || result.Score != 1 || result.Total != 5 {
		t.Fatalf("expected the quiz to complete on time-up, got %+v", result)
	}
	if completed != 1 {
		t.Fatalf("expected one completion, got %d", completed)
	}
	if _, err := q.Answer(ctx, 1, 2); !errors.Is(err, ErrFinished) {
		t.Fatalf("expected ErrFinished after time-up, got %v", err)
	}

	entries := logs.FilterMessage("quiz time is up").All()
	if len(entries) != 1 || entries[0].ContextMap()["answered"] != int64(1) {
		t.Fatalf("expected a time-up log entry, got %v", entries)
	}
}
