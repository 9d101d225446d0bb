package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/store"
)

func TestPersistStartVerifiedResume(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	res, err := NewPipeline(&stubExtractor{signals: signalsFor("Software Engineer")}).
		Run(ctx, "Backend Developer", resume.Input{ID: "r1"})
	if err != nil {
		t.Fatalf("run pipeline: %v", err)
	}

	stamped, err := PersistStart(ctx, mem, store.Resume{ID: "r1", Owner: "u1", FileName: "cv.pdf"}, res)
	if err != nil {
		t.Fatalf("persist start: %v", err)
	}
	if !stamped.Verified || stamped.TargetRole != "Backend Developer" || stamped.SuggestedRole != "Software Engineer" {
		t.Fatalf("unexpected stamped resume %+v", stamped)
	}
	if len(stamped.ImprovementDetails) == 0 || stamped.ImprovementSuggestions == "" {
		t.Fatalf("verified resume must carry improvement details")
	}

	settings, err := mem.Settings(ctx, "u1")
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if settings.QuestionCount != SessionQuestionCount || settings.TargetRole != "Backend Developer" ||
		settings.InterviewType != "Technical" {
		t.Fatalf("unexpected settings %+v", settings)
	}

	session := store.InterviewSession{User: "u1", Role: "Backend Developer"}
	if err := mem.SaveInterviewSession(ctx, session); err != nil {
		t.Fatalf("a verified role must allow saving the session: %v", err)
	}
	session.Role = "Data Scientist"
	if err := mem.SaveInterviewSession(ctx, session); !errors.Is(err, store.ErrRoleNotVerified) {
		t.Fatalf("expected ErrRoleNotVerified for another role, got %v", err)
	}
}

func TestStampResumeMismatch(t *testing.T) {
	res := Result{Role: "Product Manager", Mismatch: true, Signals: resume.Signals{DetectedRole: "Software Engineer", QualityScore: 91}}

	stamped := StampResume(store.Resume{Owner: "u1", ImprovementDetails: nil}, res)
	if stamped.Verified || stamped.ImprovementDetails != nil {
		t.Fatalf("mismatched resume must not be verified: %+v", stamped)
	}
	if stamped.QualityScore != 91 {
		t.Fatalf("expected quality from signals, got %d", stamped.QualityScore)
	}
}
