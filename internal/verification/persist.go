package verification

import (
	"context"
	"fmt"

	"github.com/spigell/interview-coach/internal/store"
	"github.com/spigell/interview-coach/internal/suggestions"
)

// SessionQuestionCount is the number of chatbot questions saved with the
// settings when a session starts.
const SessionQuestionCount = 5

// StampResume applies a verification result to the resume record saved when
// a session starts. Improvement details are kept only for verified resumes.
func StampResume(r store.Resume, res Result) store.Resume {
	r.Verified = !res.Mismatch
	r.TargetRole = res.Role
	r.SuggestedRole = res.Signals.DetectedRole
	if r.QualityScore == 0 {
		r.QualityScore = res.Signals.QualityScore
	}
	r.ImprovementSuggestions = suggestions.QualityFeedback(r.QualityScore)

	r.ImprovementDetails = nil
	if r.Verified {
		r.ImprovementDetails = append([]suggestions.Suggestion(nil), res.Suggestions...)
	}
	return r
}

// SessionSettings are the interview settings saved alongside a started session.
func SessionSettings(user string, res Result) store.InterviewSettings {
	return store.InterviewSettings{
		UserID:        user,
		TargetRole:    res.Role,
		InterviewType: string(res.Config.InterviewType),
		Difficulty:    string(res.Config.Difficulty),
		QuestionCount: SessionQuestionCount,
	}
}

type startStore interface {
	UploadResume(ctx context.Context, r store.Resume) error
	SaveSettings(ctx context.Context, s store.InterviewSettings) error
}

// PersistStart saves the stamped resume and the settings for a session that
// is about to start.
func PersistStart(ctx context.Context, gw startStore, base store.Resume, res Result) (store.Resume, error) {
	stamped := StampResume(base, res)
	if err := gw.UploadResume(ctx, stamped); err != nil {
		return stamped, fmt.Errorf("save verified resume: %w", store.Classify(err))
	}
	if err := gw.SaveSettings(ctx, SessionSettings(base.Owner, res)); err != nil {
		return stamped, fmt.Errorf("save interview settings: %w", store.Classify(err))
	}
	return stamped, nil
}
