// Package store holds the persisted records and the contract every persistence
// backend implements.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrResumeRequired  = errors.New("resume upload required")
	ErrRoleNotVerified = errors.New("target role not verified")
	ErrNotFound        = errors.New("record not found")
	ErrInvalid         = errors.New("invalid record")
)

const (
	MessageResumeRequired  = "Resume upload required"
	MessageRoleNotVerified = "Target role not verified"
)

// Gateway persists records keyed by user identity.
type Gateway interface {
	SaveProfile(ctx context.Context, p UserProfile) error
	Profile(ctx context.Context, user string) (*UserProfile, error)

	SaveSettings(ctx context.Context, s InterviewSettings) error
	Settings(ctx context.Context, user string) (*InterviewSettings, error)

	UploadResume(ctx context.Context, r Resume) error
	Resumes(ctx context.Context, user string) ([]Resume, error)
	LatestResume(ctx context.Context, user string) (*Resume, error)

	SaveInterviewSession(ctx context.Context, s InterviewSession) error
	InterviewSessions(ctx context.Context, user string) ([]InterviewSession, error)

	AddInterviewResponse(ctx context.Context, r InterviewResponse) error
	InterviewResponses(ctx context.Context, user string) ([]InterviewResponse, error)

	SaveLiveMock(ctx context.Context, r LiveMockRecord) error
	LiveMocks(ctx context.Context, user string) ([]LiveMockRecord, error)

	SaveQuizResult(ctx context.Context, r QuizResult) error
	QuizResults(ctx context.Context, user string) ([]QuizResult, error)

	SaveCandidateReview(ctx context.Context, r CandidateReview) error
	CandidateReviews(ctx context.Context, user string) ([]CandidateReview, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags on a record. Failures wrap ErrInvalid.
func Validate(record any) error {
	if err := validate.Struct(record); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	return nil
}

// CheckSession applies the interview session save rules against the user's
// latest resume. An empty role skips the verification check.
func CheckSession(latest *Resume, s InterviewSession) error {
	if latest == nil {
		return ErrResumeRequired
	}
	if s.Role == "" {
		return nil
	}
	if !latest.Verified || latest.TargetRole != s.Role {
		return ErrRoleNotVerified
	}
	return nil
}

// CheckLiveMock applies the live mock save rules.
func CheckLiveMock(latest *Resume) error {
	if latest == nil {
		return ErrResumeRequired
	}
	return nil
}

// Latest returns the resume with the greatest upload time.
func Latest(resumes []Resume) *Resume {
	var latest *Resume
	for i := range resumes {
		if latest == nil || resumes[i].UploadedAt.After(latest.UploadedAt) {
			latest = &resumes[i]
		}
	}
	if latest == nil {
		return nil
	}
	c := *latest
	return &c
}

// NewID returns a prefixed unique record id.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Classify maps a remote error message back onto the gateway sentinels.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrResumeRequired, ErrRoleNotVerified, ErrNotFound, ErrInvalid} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, strings.ToLower(MessageResumeRequired)):
		return ErrResumeRequired
	case strings.Contains(msg, strings.ToLower(MessageRoleNotVerified)):
		return ErrRoleNotVerified
	default:
		return err
	}
}

// Message returns the user facing text for a validation error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrResumeRequired):
		return MessageResumeRequired
	case errors.Is(err, ErrRoleNotVerified):
		return MessageRoleNotVerified
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}
