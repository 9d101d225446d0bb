package verification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/interview-coach/internal/clock/clocktest"
	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/roles"
	"github.com/spigell/interview-coach/internal/scoring"
)

type stubExtractor struct {
	mu      sync.Mutex
	calls   int
	signals resume.Signals
	err     error
}

func (s *stubExtractor) Extract(ctx context.Context, in resume.Input) (resume.Signals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return resume.Signals{}, s.err
	}
	return s.signals, nil
}

func (s *stubExtractor) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// blockingExtractor holds its first call until release is closed.
type blockingExtractor struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	next    resume.Signals
	first   resume.Signals
}

func (b *blockingExtractor) Extract(ctx context.Context, in resume.Input) (resume.Signals, error) {
	blocked := false
	b.once.Do(func() { blocked = true })
	if !blocked {
		return b.next, nil
	}
	close(b.entered)
	<-b.release
	return b.first, nil
}

type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *noticeLog) add(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *noticeLog) has(msg string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, notice := range n.notices {
		if notice.Message == msg {
			return true
		}
	}
	return false
}

func signalsFor(role string) resume.Signals {
	return resume.Signals{Category: roles.Classify(role), DetectedRole: role, QualityScore: 80}
}

func newTestOrchestrator(t *testing.T, ext Extractor) (*Orchestrator, *clocktest.Manual, *noticeLog) {
	t.Helper()

	clk := clocktest.New(time.Unix(1_700_000_000, 0))
	notices := &noticeLog{}
	o := New(Config{}, Deps{
		Pipeline: NewPipeline(ext),
		Clock:    clk,
		Notify:   notices.add,
	})
	t.Cleanup(o.Close)

	return o, clk, notices
}

func engineerResume() *resume.Input {
	return &resume.Input{ID: "r-1", FileName: "software_engineer_cv.pdf"}
}

func TestRapidEditsCoalesceIntoOneEvaluation(t *testing.T) {
	ext := &stubExtractor{signals: signalsFor("Software Engineer")}
	o, clk, _ := newTestOrchestrator(t, ext)

	o.SetResume(engineerResume())
	o.SetRole("Software")
	clk.Advance(time.Second)
	o.SetRole("Software Engineer")

	if got := o.State().Gate; got != Pending {
		t.Fatalf("expected pending gate, got %s", got)
	}

	clk.Advance(time.Second)
	if ext.Calls() != 0 {
		t.Fatalf("expected no evaluation before the debounce elapsed, got %d", ext.Calls())
	}

	clk.Advance(time.Second)
	if ext.Calls() != 1 {
		t.Fatalf("expected exactly one evaluation, got %d", ext.Calls())
	}
	if got := o.State().Gate; got != Passable {
		t.Fatalf("expected passable gate, got %s", got)
	}
}

func TestUnchangedRoleDoesNotReset(t *testing.T) {
	ext := &stubExtractor{signals: signalsFor("Software Engineer")}
	o, clk, _ := newTestOrchestrator(t, ext)

	o.SetResume(engineerResume())
	o.SetRole("Software Engineer")
	clk.Advance(2 * time.Second)

	o.SetRole("Software Engineer")
	o.SetResume(engineerResume())

	if got := o.State().Gate; got != Passable {
		t.Fatalf("expected passable gate to survive no-op edits, got %s", got)
	}
	if ext.Calls() != 1 {
		t.Fatalf("expected a single evaluation, got %d", ext.Calls())
	}
}

func TestMatchingResumeBecomesPassable(t *testing.T) {
	ext := &stubExtractor{signals: signalsFor("Software Engineer")}
	o, clk, notices := newTestOrchestrator(t, ext)

	o.SetResume(engineerResume())
	cfg := o.SetRole("Software Engineer")
	if cfg.InterviewType != roles.TypeTechnical {
		t.Fatalf("expected technical interview type, got %s", cfg.InterviewType)
	}

	clk.Advance(DefaultDebounce)

	state := o.State()
	if state.Gate != Passable {
		t.Fatalf("expected passable gate, got %s", state.Gate)
	}
	if state.Result == nil || state.Result.Mismatch {
		t.Fatalf("expected matching result, got %+v", state.Result)
	}
	if len(state.Result.Suggestions) < 3 {
		t.Fatalf("expected at least three suggestions, got %d", len(state.Result.Suggestions))
	}
	if !notices.has(msgApplicable) {
		t.Fatalf("expected applicable notice")
	}
	if !notices.has("Auto-configured: Technical interview at Medium level") {
		t.Fatalf("expected auto-configuration notice, got %+v", notices.notices)
	}
}

func TestMismatchBlocksAndAbandonsStart(t *testing.T) {
	ext := &stubExtractor{signals: signalsFor("Software Engineer")}
	o, clk, notices := newTestOrchestrator(t, ext)

	o.SetResume(engineerResume())
	o.SetRole("Product Manager")
	clk.Advance(DefaultDebounce)

	state := o.State()
	if state.Gate != Blocked {
		t.Fatalf("expected blocked gate, got %s", state.Gate)
	}
	if len(state.Result.Suggestions) != 0 {
		t.Fatalf("expected no suggestions on mismatch, got %d", len(state.Result.Suggestions))
	}
	if !notices.has(msgNotApplicable) {
		t.Fatalf("expected not applicable notice")
	}

	decision, err := o.RequestStart(context.Background(), ModeChatbot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Outcome != Abandoned {
		t.Fatalf("expected abandoned start, got %s", decision.Outcome)
	}

	if _, ok := o.Acknowledge(); ok {
		t.Fatalf("blocked gate must not be acknowledged")
	}
}

func TestEditWhileBlockedResetsGate(t *testing.T) {
	ext := &stubExtractor{signals: signalsFor("Software Engineer")}
	o, clk, _ := newTestOrchestrator(t, ext)

	o.SetResume(engineerResume())
	o.SetRole("Product Manager")
	clk.Advance(DefaultDebounce)

	o.SetRole("Software Engineer")
	state := o.State()
	if state.Gate != Pending {
		t.Fatalf("expected pending gate after edit, got %s", state.Gate)
	}
	if state.Result != nil {
		t.Fatalf("expected result to be cleared")
	}

	clk.Advance(DefaultDebounce)
	if got := o.State().Gate; got != Passable {
		t.Fatalf("expected passable gate, got %s", got)
	}
}

func TestStartWithoutResumeIsRejected(t *testing.T) {
	ext := &stubExtractor{signals: signalsFor("Software Engineer")}
	o, clk, notices := newTestOrchestrator(t, ext)

	o.SetRole("Software Engineer")
	if got := o.State().Gate; got != Idle {
		t.Fatalf("expected idle gate without resume, got %s", got)
	}

	decision, err := o.RequestStart(context.Background(), ModeLive)
	if !errors.Is(err, ErrResumeRequired) {
		t.Fatalf("expected ErrResumeRequired, got %v", err)
	}
	if decision.Outcome != Rejected {
		t.Fatalf("expected rejected outcome, got %s", decision.Outcome)
	}
	if decision.State.Gate != Idle {
		t.Fatalf("gate must be untouched, got %s", decision.State.Gate)
	}
	if !notices.has(msgResumeRequired) {
		t.Fatalf("expected resume required notice")
	}

	clk.Advance(10 * time.Second)
	if ext.Calls() != 0 {
		t.Fatalf("expected no evaluation without resume, got %d", ext.Calls())
	}
}

func TestForcedStartQueuesUntilAcknowledged(t *testing.T) {
	ext := &stubExtractor{signals: signalsFor("Software Engineer")}
	o, clk, notices := newTestOrchestrator(t, ext)

	o.SetResume(engineerResume())
	o.SetRole("Software Engineer")

	decision, err := o.RequestStart(context.Background(), ModeLive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Outcome != Queued {
		t.Fatalf("expected queued outcome, got %s", decision.Outcome)
	}
	if decision.State.Gate != Passable || decision.State.Queued != ModeLive {
		t.Fatalf("unexpected state: %+v", decision.State)
	}

	// The forced evaluation cancelled the debounce timer.
	clk.Advance(DefaultDebounce)
	if ext.Calls() != 1 {
		t.Fatalf("expected a single evaluation, got %d", ext.Calls())
	}

	mode, ok := o.Acknowledge()
	if !ok || mode != ModeLive {
		t.Fatalf("expected queued live mode to resume, got %q %v", mode, ok)
	}
	if !notices.has(msgComplete) {
		t.Fatalf("expected completion notice")
	}

	decision, err = o.RequestStart(context.Background(), ModeChatbot)
	if err != nil || decision.Outcome != Proceed {
		t.Fatalf("expected proceed after acknowledgement, got %s %v", decision.Outcome, err)
	}
}

func TestAcknowledgeWithoutQueuedStart(t *testing.T) {
	ext := &stubExtractor{signals: signalsFor("Data Scientist")}
	o, clk, _ := newTestOrchestrator(t, ext)

	o.SetResume(&resume.Input{ID: "r-2", FileName: "data_cv.pdf"})
	o.SetRole("Data Analyst")
	clk.Advance(DefaultDebounce)

	mode, ok := o.Acknowledge()
	if ok || mode != "" {
		t.Fatalf("expected no queued mode, got %q", mode)
	}
	if got := o.State().Gate; got != Passed {
		t.Fatalf("expected passed gate, got %s", got)
	}
}

func TestRoleChangeInvalidatesPassedGate(t *testing.T) {
	ext := &stubExtractor{signals: signalsFor("Software Engineer")}
	o, clk, _ := newTestOrchestrator(t, ext)

	o.SetResume(engineerResume())
	o.SetRole("Software Engineer")
	clk.Advance(DefaultDebounce)
	o.Acknowledge()

	o.SetRole("Product Manager")
	if got := o.State().Gate; got != Pending {
		t.Fatalf("expected pending gate after role change, got %s", got)
	}

	decision, err := o.RequestStart(context.Background(), ModeChatbot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Outcome != Abandoned {
		t.Fatalf("expected abandoned start, got %s", decision.Outcome)
	}
}

func TestBlurAndEnterEvaluateImmediately(t *testing.T) {
	ext := &stubExtractor{signals: signalsFor("Software Engineer")}
	o, clk, _ := newTestOrchestrator(t, ext)

	o.SetResume(engineerResume())
	o.SetRole("Software Engineer")

	snap := o.Blur(context.Background())
	if snap.Gate != Passable {
		t.Fatalf("expected passable gate after blur, got %s", snap.Gate)
	}

	// A second fast path on a decided gate is a no-op.
	snap = o.Enter(context.Background())
	if snap.Gate != Passable {
		t.Fatalf("expected gate unchanged after enter, got %s", snap.Gate)
	}

	clk.Advance(DefaultDebounce)
	if ext.Calls() != 1 {
		t.Fatalf("expected one evaluation, got %d", ext.Calls())
	}
	if clk.Pending() != 0 {
		t.Fatalf("expected no armed timers, got %d", clk.Pending())
	}
}

func TestEnterWithoutPrerequisitesIsNoop(t *testing.T) {
	ext := &stubExtractor{signals: signalsFor("Software Engineer")}
	o, _, _ := newTestOrchestrator(t, ext)

	snap := o.Enter(context.Background())
	if snap.Gate != Idle {
		t.Fatalf("expected idle gate, got %s", snap.Gate)
	}
	if ext.Calls() != 0 {
		t.Fatalf("expected no evaluation, got %d", ext.Calls())
	}
}

func TestStaleResultIsDiscarded(t *testing.T) {
	ext := &blockingExtractor{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		first:   signalsFor("Software Engineer"),
		next:    signalsFor("Data Scientist"),
	}
	o, clk, _ := newTestOrchestrator(t, ext)

	o.SetResume(engineerResume())
	o.SetRole("Software Engineer")

	done := make(chan Snapshot)
	go func() {
		done <- o.Blur(context.Background())
	}()

	<-ext.entered
	if got := o.State().Gate; got != Checking {
		t.Fatalf("expected checking gate while pipeline runs, got %s", got)
	}

	o.SetRole("Data Scientist")
	close(ext.release)

	snap := <-done
	if snap.Result != nil {
		t.Fatalf("stale result must not be applied, got %+v", snap.Result)
	}
	if snap.Gate != Pending {
		t.Fatalf("expected pending gate after superseding edit, got %s", snap.Gate)
	}

	clk.Advance(DefaultDebounce)
	state := o.State()
	if state.Gate != Passable {
		t.Fatalf("expected passable gate, got %s", state.Gate)
	}
	if state.Result.Role != "Data Scientist" {
		t.Fatalf("expected result for the current role, got %q", state.Result.Role)
	}
}

func TestStartDuringSupersededRun(t *testing.T) {
	ext := &blockingExtractor{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		first:   signalsFor("Software Engineer"),
		next:    signalsFor("Software Engineer"),
	}
	o, clk, notices := newTestOrchestrator(t, ext)

	o.SetResume(engineerResume())
	o.SetRole("Software Engineer")

	done := make(chan Snapshot)
	go func() {
		done <- o.Enter(context.Background())
	}()
	<-ext.entered

	o.SetRole("Product Manager")

	decision, err := o.RequestStart(context.Background(), ModeChatbot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Outcome != Queued {
		t.Fatalf("expected queued start while the superseded run resolves, got %s", decision.Outcome)
	}
	if decision.State.Gate != Pending || decision.State.Queued != ModeChatbot {
		t.Fatalf("expected pending gate with queued chatbot start, got %s %q", decision.State.Gate, decision.State.Queued)
	}

	close(ext.release)
	snap := <-done

	if snap.Gate != Blocked {
		t.Fatalf("expected the rerun to block the mismatched role, got %s", snap.Gate)
	}
	if snap.Queued != "" {
		t.Fatalf("queued start must be abandoned on mismatch, got %q", snap.Queued)
	}
	if snap.Result == nil || snap.Result.Role != "Product Manager" {
		t.Fatalf("expected the rerun result for the current role, got %+v", snap.Result)
	}
	if !notices.has(msgNotApplicable) {
		t.Fatalf("expected a not applicable notice")
	}
	if clk.Pending() != 0 {
		t.Fatalf("expected the debounce timer to be stopped by the rerun, got %d pending", clk.Pending())
	}

	decision, err = o.RequestStart(context.Background(), ModeChatbot)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Outcome != Abandoned {
		t.Fatalf("expected abandoned start on a blocked gate, got %s", decision.Outcome)
	}
}

func TestPipelineFailureReturnsToIdle(t *testing.T) {
	ext := &stubExtractor{err: context.Canceled}
	core, logs := observer.New(zapcore.WarnLevel)

	clk := clocktest.New(time.Unix(0, 0))
	notices := &noticeLog{}
	o := New(Config{Debounce: time.Second}, Deps{
		Pipeline: NewPipeline(ext),
		Clock:    clk,
		Logger:   zap.New(core),
		Notify:   notices.add,
	})
	defer o.Close()

	o.SetResume(engineerResume())
	o.SetRole("Software Engineer")
	clk.Advance(time.Second)

	if got := o.State().Gate; got != Idle {
		t.Fatalf("expected idle gate after failure, got %s", got)
	}
	if !notices.has(msgVerifyFailed) {
		t.Fatalf("expected failure notice")
	}
	if logs.FilterMessage("verification failed").Len() != 1 {
		t.Fatalf("expected failure to be logged")
	}
}

func TestEscapeActions(t *testing.T) {
	ext := &stubExtractor{signals: signalsFor("Software Engineer")}
	o, clk, notices := newTestOrchestrator(t, ext)

	o.SetResume(engineerResume())
	o.SetRole("Product Manager")
	clk.Advance(DefaultDebounce)

	o.ChangeRole()
	state := o.State()
	if state.Gate != Idle || state.Result != nil {
		t.Fatalf("expected cleared idle state, got %+v", state)
	}
	if !notices.has(msgChangeRole) {
		t.Fatalf("expected change role notice")
	}

	o.UploadNewResume()
	state = o.State()
	if state.ResumeID != "" {
		t.Fatalf("expected resume to be dropped, got %q", state.ResumeID)
	}
	if !notices.has(msgUploadNew) {
		t.Fatalf("expected upload notice")
	}

	o.SetResume(&resume.Input{ID: "r-3", FileName: "pm.pdf", SuggestedRole: "Product Manager"})
	if got := o.State().Gate; got != Pending {
		t.Fatalf("expected pending gate after new resume, got %s", got)
	}
}

func TestWithResumeExtractor(t *testing.T) {
	ext := resume.NewExtractor(scoring.Fixed(88), nil)
	o, clk, _ := newTestOrchestrator(t, ext)

	o.SetResume(&resume.Input{ID: "r-4", FileName: "cv.pdf", Text: "Senior software engineer, Go and Kubernetes"})
	o.SetRole("Backend Developer")
	clk.Advance(DefaultDebounce)

	state := o.State()
	if state.Gate != Passable {
		t.Fatalf("expected passable gate, got %s (result %+v)", state.Gate, state.Result)
	}
	if state.Result.Signals.QualityScore != 88 {
		t.Fatalf("expected injected quality score, got %d", state.Result.Signals.QualityScore)
	}
}
