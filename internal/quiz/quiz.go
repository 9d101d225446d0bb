// Package quiz runs timed multiple choice quizzes per target role.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/clock"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/store"
)

// TimeLimit is the time allowed for a whole quiz.
const TimeLimit = 60 * time.Second

var (
	ErrUnknownRole     = errors.New("no quiz for role")
	ErrNotStarted      = errors.New("quiz not started")
	ErrFinished        = errors.New("quiz already finished")
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrInvalidOption   = errors.New("invalid option")
)

type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Correct int      `json:"correctAnswer"`
}

var banks = map[string][]Question{
	"Software Engineer": {
		{Text: "What is the time complexity of binary search?", Options: []string{"O(n)", "O(log n)", "O(n²)", "O(1)"}, Correct: 1},
		{Text: "Which data structure uses LIFO principle?", Options: []string{"Queue", "Stack", "Array", "Tree"}, Correct: 1},
		{Text: "What does REST stand for?", Options: []string{"Remote State Transfer", "Representational State Transfer", "Resource State Transfer", "Relational State Transfer"}, Correct: 1},
		{Text: "Which sorting algorithm has the best average case time complexity?", Options: []string{"Bubble Sort", "Insertion Sort", "Quick Sort", "Selection Sort"}, Correct: 2},
		{Text: "What is polymorphism in OOP?", Options: []string{"Multiple inheritance", "Method overloading", "Ability to take multiple forms", "Data encapsulation"}, Correct: 2},
	},
	"Product Manager": {
		{Text: "What is a product roadmap?", Options: []string{"A list of bugs", "Strategic plan for product development", "Marketing strategy", "Sales forecast"}, Correct: 1},
		{Text: "What does MVP stand for?", Options: []string{"Most Valuable Player", "Minimum Viable Product", "Maximum Value Proposition", "Market Validation Process"}, Correct: 1},
		{Text: "Which metric measures user engagement?", Options: []string{"Revenue", "DAU/MAU ratio", "Cost per acquisition", "Profit margin"}, Correct: 1},
		{Text: "What is A/B testing?", Options: []string{"Testing two products", "Comparing two versions", "Alpha and Beta testing", "Automated testing"}, Correct: 1},
		{Text: "What is product-market fit?", Options: []string{"Product pricing", "Product matching market needs", "Market size", "Product features"}, Correct: 1},
	},
	"Data Scientist": {
		{Text: "What is overfitting in machine learning?", Options: []string{"Model too simple", "Model too complex", "Perfect model", "Underfitting"}, Correct: 1},
		{Text: "Which algorithm is used for classification?", Options: []string{"Linear Regression", "K-Means", "Decision Tree", "PCA"}, Correct: 2},
		{Text: "What is the purpose of cross-validation?", Options: []string{"Data cleaning", "Model evaluation", "Feature selection", "Data visualization"}, Correct: 1},
		{Text: "What does ROC curve measure?", Options: []string{"Model accuracy", "True positive vs false positive rate", "Training time", "Data quality"}, Correct: 1},
		{Text: "What is feature engineering?", Options: []string{"Creating new features", "Removing features", "Scaling features", "All of the above"}, Correct: 3},
	},
}

// Roles lists the roles that have a quiz, sorted.
func Roles() []string {
	out := make([]string, 0, len(banks))
	for role := range banks {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

// Questions returns a copy of the quiz for role.
func Questions(role string) ([]Question, error) {
	bank, ok := banks[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	out := make([]Question, len(bank))
	for i, q := range bank {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out, nil
}

// Label is the verdict shown with a final score.
func Label(score, total int) string {
	switch {
	case total > 0 && score == total:
		return "Perfect Score!"
	case float64(score) >= float64(total)*0.7:
		return "Great Job!"
	default:
		return "Keep Practicing!"
	}
}

// Percent is the score as a rounded percentage.
func Percent(score, total int) int {
	if total == 0 {
		return 0
	}
	return (score*100 + total/2) / total
}

type Saver interface {
	SaveQuizResult(ctx context.Context, r store.QuizResult) error
}

type Config struct {
	User      string
	Role      string
	TimeLimit time.Duration
}

type Deps struct {
	Clock  clock.Clock
	Saver  Saver
	Logger *zap.Logger
	// OnComplete is called once with the final result, also when time runs out.
	OnComplete func(store.QuizResult, error)
}

// Outcome is the result of one answer.
type Outcome struct {
	Correct      bool
	CorrectIndex int
	Score        int
	Done         bool
}

type Quiz struct {
	cfg        Config
	questions  []Question
	clock      clock.Clock
	saver      Saver
	logger     *zap.Logger
	onComplete func(store.QuizResult, error)

	mu        sync.Mutex
	started   bool
	startedAt time.Time
	index     int
	score     int
	answers   []bool
	timer     clock.Timer
	result    *store.QuizResult
	done      chan struct{}
}

func New(cfg Config, deps Deps) (*Quiz, error) {
	questions, err := Questions(cfg.Role)
	if err != nil {
		return nil, err
	}
	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = TimeLimit
	}

	c := deps.Clock
	if c == nil {
		c = clock.Real()
	}
	l := deps.Logger
	if l == nil {
		l = zap.NewNop()
	}

	return &Quiz{
		cfg:        cfg,
		questions:  questions,
		clock:      c,
		saver:      deps.Saver,
		logger:     logger.WithSession(l, cfg.User, cfg.Role),
		onComplete: deps.OnComplete,
		done:       make(chan struct{}),
	}, nil
}

// Start arms the time limit and returns the first question.
func (q *Quiz) Start() Question {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.started {
		q.started = true
		q.startedAt = q.clock.Now()
		q.timer = q.clock.AfterFunc(q.cfg.TimeLimit, q.timeUp)
		q.logger.Info("quiz started", zap.Int("questions", len(q.questions)))
	}
	return q.questions[q.index]
}

// Current returns the index of the question awaiting an answer and the question.
func (q *Quiz) Current() (int, Question) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index, q.questions[q.index]
}

// Remaining reports how much of the time limit is left.
func (q *Quiz) Remaining() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.started {
		return q.cfg.TimeLimit
	}
	if q.result != nil {
		return 0
	}
	left := q.cfg.TimeLimit - q.clock.Now().Sub(q.startedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Answer records the choice for question index. Every question can be
// answered once; the last answer completes the quiz.
func (q *Quiz) Answer(ctx context.Context, index, choice int) (Outcome, error) {
	q.mu.Lock()
	switch {
	case !q.started:
		q.mu.Unlock()
		return Outcome{}, ErrNotStarted
	case q.result != nil:
		q.mu.Unlock()
		return Outcome{}, ErrFinished
	case index >= 0 && index < q.index:
		q.mu.Unlock()
		return Outcome{}, ErrAlreadyAnswered
	case index != q.index:
		q.mu.Unlock()
		return Outcome{}, fmt.Errorf("question %d is not the current question", index)
	}

	question := q.questions[q.index]
	if choice < 0 || choice >= len(question.Options) {
		q.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: %d", ErrInvalidOption, choice)
	}

	correct := choice == question.Correct
	q.answers = append(q.answers, correct)
	if correct {
		q.score++
	}
	out := Outcome{Correct: correct, CorrectIndex: question.Correct, Score: q.score}

	if q.index < len(q.questions)-1 {
		q.index++
		q.mu.Unlock()
		return out, nil
	}

	out.Done = true
	result := q.finishLocked()
	q.mu.Unlock()

	return out, q.complete(ctx, result)
}

// Done is closed when the quiz completes.
func (q *Quiz) Done() <-chan struct{} {
	return q.done
}

// Result returns the final result once the quiz has completed.
func (q *Quiz) Result() (store.QuizResult, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.result == nil {
		return store.QuizResult{}, false
	}
	return *q.result, true
}

// Close stops the time limit without completing the quiz.
func (q *Quiz) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

func (q *Quiz) timeUp() {
	q.mu.Lock()
	if q.result != nil {
		q.mu.Unlock()
		return
	}
	q.timer = nil
	answered := len(q.answers)
	result := q.finishLocked()
	q.mu.Unlock()

	q.logger.Info("quiz time is up", zap.Int("answered", answered))
	if err := q.complete(context.Background(), result); err != nil {
		q.logger.Warn("saving quiz result failed", zap.Error(err))
	}
}

func (q *Quiz) finishLocked() store.QuizResult {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}

	result := store.QuizResult{
		ID:          store.NewID("quiz"),
		User:        q.cfg.User,
		Role:        q.cfg.Role,
		Score:       q.score,
		Total:       len(q.questions),
		CompletedAt: q.clock.Now(),
	}
	q.result = &result
	close(q.done)
	return result
}

func (q *Quiz) complete(ctx context.Context, result store.QuizResult) error {
	var err error
	if q.saver != nil {
		if serr := q.saver.SaveQuizResult(ctx, result); serr != nil {
			err = fmt.Errorf("save quiz result: %w", store.Classify(serr))
		}
	}

	q.logger.Info("quiz completed",
		zap.Int("score", result.Score),
		zap.Int("total", result.Total),
		zap.String("verdict", Label(result.Score, result.Total)),
	)

	if q.onComplete != nil {
		q.onComplete(result, err)
	}
	return err
}
