package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/clock"
	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/roles"
)

// DefaultDebounce is the delay between the last input edit and the pipeline run.
const DefaultDebounce = 1500 * time.Millisecond

// ErrResumeRequired is returned for a start request without both a role and a resume.
var ErrResumeRequired = errors.New("resume upload required")

const (
	msgAutoConfigured = "Auto-configured: %s interview at %s level"
	msgApplicable     = "You're applicable for this job!"
	msgNotApplicable  = "You're not applicable. Please change your role or upload a matching resume."
	msgVerifyFailed   = "Failed to verify resume. Please try again."
	msgComplete       = "Verification complete! You can now start your interview."
	msgFinishFirst    = "Please complete the verification process to continue"
	msgResumeRequired = "Resume upload required. Please upload your resume before continuing."
	msgChangeRole     = "Please update your target role to match your resume"
	msgUploadNew      = "Please upload a new resume that matches your target role"
)

type Config struct {
	Debounce time.Duration
}

type Deps struct {
	Pipeline *Pipeline
	Clock    clock.Clock
	Logger   *zap.Logger
	// Notify receives user notifications. It is called without internal locks held.
	Notify func(Notice)
}

// Orchestrator owns the verification state for one user setting up an interview.
// All mutations go through its methods; it is safe for concurrent use.
type Orchestrator struct {
	pipeline *Pipeline
	clock    clock.Clock
	debounce time.Duration
	logger   *zap.Logger
	notify   func(Notice)

	mu         sync.Mutex
	role       string
	resume     *resume.Input
	gate       Gate
	generation uint64
	timer      clock.Timer
	result     *Result
	queued     Mode
	inFlight   bool
	rerun      bool
}

func New(cfg Config, deps Deps) *Orchestrator {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	c := deps.Clock
	if c == nil {
		c = clock.Real()
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	notify := deps.Notify
	if notify == nil {
		notify = func(Notice) {}
	}

	return &Orchestrator{
		pipeline: deps.Pipeline,
		clock:    c,
		debounce: debounce,
		logger:   logger,
		notify:   notify,
		gate:     Idle,
	}
}

// SetRole records an edit of the role field. Any change resets the gate and
// re-arms the debounce timer when both role and resume are present.
func (o *Orchestrator) SetRole(role string) roles.AutoConfig {
	cfg := roles.Configure(role)

	o.mu.Lock()
	if role == o.role {
		o.mu.Unlock()
		return cfg
	}
	o.role = role
	o.resetLocked("role changed")
	o.mu.Unlock()

	if strings.TrimSpace(role) != "" {
		o.notify(Notice{
			Level:   LevelSuccess,
			Message: fmt.Sprintf(msgAutoConfigured, cfg.InterviewType, cfg.Difficulty),
		})
	}

	return cfg
}

// SetResume records a resume selection or replacement. A nil input clears it.
func (o *Orchestrator) SetResume(in *resume.Input) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if in != nil && o.resume != nil && in.ID != "" && in.ID == o.resume.ID {
		return
	}
	if in == nil && o.resume == nil {
		return
	}

	if in != nil {
		c := *in
		o.resume = &c
	} else {
		o.resume = nil
	}
	o.resetLocked("resume changed")
}

// Blur is the focus-loss fast path.
func (o *Orchestrator) Blur(ctx context.Context) Snapshot {
	return o.EvaluateNow(ctx, TriggerBlur)
}

// Enter is the Enter-key fast path.
func (o *Orchestrator) Enter(ctx context.Context) Snapshot {
	return o.EvaluateNow(ctx, TriggerEnter)
}

// EvaluateNow is the single entry point for all triggers. It runs the pipeline
// immediately when prerequisites are met and the gate is Idle or Pending.
// Otherwise it returns the current state unchanged.
func (o *Orchestrator) EvaluateNow(ctx context.Context, trigger Trigger) Snapshot {
	var notices []Notice

	o.mu.Lock()
	if !o.canEvaluateLocked() {
		snap := o.snapshotLocked()
		o.mu.Unlock()
		return snap
	}
	if o.inFlight {
		// A superseded run is still resolving; evaluate again once it returns.
		o.rerun = true
		snap := o.snapshotLocked()
		o.mu.Unlock()
		return snap
	}

	for {
		o.stopTimerLocked()
		o.gate = Checking
		o.inFlight = true
		gen, role, in := o.generation, o.role, *o.resume
		o.mu.Unlock()

		o.logger.Debug("running verification pipeline",
			zap.String("trigger", string(trigger)),
			zap.String("target_role", role),
			zap.String("resume_id", in.ID),
		)

		result, err := o.pipeline.Run(ctx, role, in)

		o.mu.Lock()
		o.inFlight = false

		if gen != o.generation {
			o.logger.Debug("discarding stale verification result",
				zap.Uint64("generation", gen),
				zap.Uint64("current_generation", o.generation),
			)
			if o.rerun && o.canEvaluateLocked() {
				o.rerun = false
				trigger = TriggerTimer
				continue
			}
			o.rerun = false
			break
		}

		o.rerun = false
		notices = o.applyLocked(result, err)
		break
	}

	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.emit(notices)
	return snap
}

// RequestStart asks to start a session of the given mode. Without both role and
// resume it is rejected with ErrResumeRequired and the gate is left untouched.
// Before the gate is passed it forces an evaluation and either abandons the
// request on mismatch or queues it until Acknowledge.
func (o *Orchestrator) RequestStart(ctx context.Context, mode Mode) (Decision, error) {
	o.mu.Lock()
	if !o.readyLocked() {
		snap := o.snapshotLocked()
		hasResume := o.resume != nil
		o.mu.Unlock()

		o.logger.Info("session start rejected",
			zap.String("mode", string(mode)),
			zap.Bool("has_role", strings.TrimSpace(snap.Role) != ""),
			zap.Bool("has_resume", hasResume),
		)
		o.notify(Notice{Level: LevelError, Message: msgResumeRequired})
		return Decision{Outcome: Rejected, Mode: mode, State: snap}, ErrResumeRequired
	}

	switch o.gate {
	case Passed:
		snap := o.snapshotLocked()
		o.mu.Unlock()
		return Decision{Outcome: Proceed, Mode: mode, State: snap}, nil
	case Blocked:
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.notify(Notice{Level: LevelError, Message: msgNotApplicable})
		return Decision{Outcome: Abandoned, Mode: mode, State: snap}, nil
	case Passable, Checking:
		o.queued = mode
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.notify(Notice{Level: LevelInfo, Message: msgFinishFirst})
		return Decision{Outcome: Queued, Mode: mode, State: snap}, nil
	}

	o.queued = mode
	o.mu.Unlock()

	snap := o.EvaluateNow(ctx, TriggerStart)

	switch {
	case snap.Gate == Passed:
		return Decision{Outcome: Proceed, Mode: mode, State: snap}, nil
	case snap.Gate == Blocked, snap.Queued != mode:
		return Decision{Outcome: Abandoned, Mode: mode, State: snap}, nil
	default:
		return Decision{Outcome: Queued, Mode: mode, State: snap}, nil
	}
}

// Acknowledge moves a Passable gate to Passed. It returns the queued session
// mode, if a start request was waiting for the acknowledgement.
func (o *Orchestrator) Acknowledge() (Mode, bool) {
	o.mu.Lock()
	if o.gate != Passable {
		o.mu.Unlock()
		return "", false
	}

	o.gate = Passed
	mode := o.queued
	o.queued = ""
	o.mu.Unlock()

	o.logger.Info("verification acknowledged", zap.String("resumed_mode", string(mode)))
	o.notify(Notice{Level: LevelSuccess, Message: msgComplete})

	return mode, mode != ""
}

// ChangeRole is the "change role" escape action. It clears the analysis and
// waits for the next role edit.
func (o *Orchestrator) ChangeRole() {
	o.mu.Lock()
	o.clearLocked()
	o.mu.Unlock()

	o.notify(Notice{Level: LevelInfo, Message: msgChangeRole})
}

// UploadNewResume is the "upload new resume" escape action. It drops the
// current resume along with the analysis.
func (o *Orchestrator) UploadNewResume() {
	o.mu.Lock()
	o.resume = nil
	o.clearLocked()
	o.mu.Unlock()

	o.notify(Notice{Level: LevelInfo, Message: msgUploadNew})
}

// State returns a copy of the current state.
func (o *Orchestrator) State() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Close stops a pending debounce timer.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopTimerLocked()
}

func (o *Orchestrator) fire(gen uint64) {
	o.mu.Lock()
	current := gen == o.generation && o.gate == Pending
	o.mu.Unlock()

	if !current {
		return
	}

	o.EvaluateNow(context.Background(), TriggerTimer)
}

func (o *Orchestrator) resetLocked(reason string) {
	o.clearLocked()

	if !o.readyLocked() {
		return
	}

	gen := o.generation
	o.timer = o.clock.AfterFunc(o.debounce, func() { o.fire(gen) })
	o.gate = Pending

	o.logger.Debug("verification debounce armed",
		zap.String("reason", reason),
		zap.Duration("delay", o.debounce),
	)
}

func (o *Orchestrator) clearLocked() {
	o.generation++
	o.stopTimerLocked()
	o.result = nil
	o.queued = ""
	o.gate = Idle
}

func (o *Orchestrator) applyLocked(result Result, err error) []Notice {
	if err != nil {
		o.logger.Warn("verification failed", zap.Error(err))
		o.gate = Idle
		o.queued = ""
		return []Notice{{Level: LevelError, Message: msgVerifyFailed}}
	}

	o.result = &result

	if result.Mismatch {
		o.gate = Blocked
		if o.queued != "" {
			o.logger.Info("queued session start abandoned", zap.String("mode", string(o.queued)))
			o.queued = ""
		}
		o.logger.Info("resume does not match target role",
			zap.String("target_role", result.Role),
			zap.String("detected_role", result.Signals.DetectedRole),
		)
		return []Notice{{Level: LevelError, Message: msgNotApplicable}}
	}

	o.gate = Passable
	o.logger.Info("resume matches target role",
		zap.String("target_role", result.Role),
		zap.String("detected_role", result.Signals.DetectedRole),
		zap.Int("suggestions", len(result.Suggestions)),
	)
	return []Notice{{Level: LevelSuccess, Message: msgApplicable}}
}

func (o *Orchestrator) readyLocked() bool {
	return strings.TrimSpace(o.role) != "" && o.resume != nil
}

func (o *Orchestrator) canEvaluateLocked() bool {
	return o.readyLocked() && (o.gate == Idle || o.gate == Pending)
}

func (o *Orchestrator) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	snap := Snapshot{
		Gate:   o.gate,
		Role:   o.role,
		Result: o.result.clone(),
		Queued: o.queued,
	}
	if o.resume != nil {
		snap.ResumeID = o.resume.ID
	}
	return snap
}

func (o *Orchestrator) emit(notices []Notice) {
	for _, n := range notices {
		o.notify(n)
	}
}
