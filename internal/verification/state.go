package verification

import (
	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/roles"
	"github.com/spigell/interview-coach/internal/suggestions"
)

// Gate is the orchestrator's decision about whether a session may start.
type Gate string

const (
	Idle     Gate = "idle"
	Pending  Gate = "pending"
	Checking Gate = "checking"
	Blocked  Gate = "blocked"
	Passable Gate = "passable"
	Passed   Gate = "passed"
)

// Mode is the kind of interview session a start request is for.
type Mode string

const (
	ModeChatbot Mode = "chatbot"
	ModeLive    Mode = "live"
)

// Trigger names what caused a pipeline evaluation.
type Trigger string

const (
	TriggerTimer Trigger = "debounce"
	TriggerBlur  Trigger = "blur"
	TriggerEnter Trigger = "enter"
	TriggerStart Trigger = "start"
)

type NoticeLevel string

const (
	LevelInfo    NoticeLevel = "info"
	LevelSuccess NoticeLevel = "success"
	LevelError   NoticeLevel = "error"
)

// Notice is a non-blocking user notification.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Result is the outcome of one pipeline evaluation.
type Result struct {
	Role        string                   `json:"role"`
	Category    roles.Category           `json:"category"`
	Signals     resume.Signals           `json:"signals"`
	Mismatch    bool                     `json:"mismatch"`
	Suggestions []suggestions.Suggestion `json:"suggestions,omitempty"`
	Config      roles.AutoConfig         `json:"config"`
}

func (r *Result) clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	c.Suggestions = append([]suggestions.Suggestion(nil), r.Suggestions...)
	c.Config.Rounds = append([]string(nil), r.Config.Rounds...)
	return &c
}

// Snapshot is a read-only copy of the orchestrator state.
type Snapshot struct {
	Gate     Gate
	Role     string
	ResumeID string
	Result   *Result
	// Queued is the session mode waiting for acknowledgement, if any.
	Queued Mode
}

// Outcome of a session start request.
type Outcome string

const (
	// Proceed means the gate is passed and the session may start now.
	Proceed Outcome = "proceed"
	// Queued means the start resumes automatically on acknowledgement.
	Queued Outcome = "queued"
	// Abandoned means verification ended in a mismatch.
	Abandoned Outcome = "abandoned"
	// Rejected means role or resume prerequisites are missing.
	Rejected Outcome = "rejected"
)

type Decision struct {
	Outcome Outcome
	Mode    Mode
	State   Snapshot
}
