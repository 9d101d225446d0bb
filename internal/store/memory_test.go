package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestProfileDefaultsAndValidation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.SaveProfile(ctx, UserProfile{UserID: "u1", FullName: "Ada"})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected invalid profile without email, got %v", err)
	}

	if err := m.SaveProfile(ctx, UserProfile{UserID: "u1", FullName: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := m.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.CurrentRole != DefaultCurrentRole || p.ExperienceLevel != "Beginner" ||
		p.PreferredInterviewType != "Technical" || p.PreferredDifficulty != "Beginner" {
		t.Fatalf("defaults not applied: %+v", p)
	}

	if _, err := m.Profile(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestResumeByUploadTime(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, offset := range []time.Duration{time.Hour, 3 * time.Hour, 2 * time.Hour} {
		r := Resume{ID: fmt.Sprintf("r%d", i), Owner: "u1", UploadedAt: base.Add(offset), QualityScore: 80}
		if err := m.UploadResume(ctx, r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	latest, err := m.LatestResume(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.ID != "r1" {
		t.Fatalf("expected r1 as latest, got %s", latest.ID)
	}

	list, _ := m.Resumes(ctx, "u1")
	if len(list) != 3 || list[0].ID != "r1" {
		t.Fatalf("expected newest first, got %+v", list)
	}
}

func TestSaveInterviewSessionRules(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		resume  *Resume
		role    string
		wantErr error
	}{
		{name: "no resume", role: "Software Engineer", wantErr: ErrResumeRequired},
		{name: "no resume legacy", wantErr: ErrResumeRequired},
		{name: "unverified", resume: &Resume{Owner: "u1", TargetRole: "Software Engineer"}, role: "Software Engineer", wantErr: ErrRoleNotVerified},
		{name: "other role", resume: &Resume{Owner: "u1", TargetRole: "Designer", Verified: true}, role: "Software Engineer", wantErr: ErrRoleNotVerified},
		{name: "verified", resume: &Resume{Owner: "u1", TargetRole: "Software Engineer", Verified: true}, role: "Software Engineer"},
		{name: "legacy empty role", resume: &Resume{Owner: "u1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory()
			if tt.resume != nil {
				if err := m.UploadResume(ctx, *tt.resume); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			err := m.SaveInterviewSession(ctx, InterviewSession{User: "u1", Role: tt.role})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			sessions, _ := m.InterviewSessions(ctx, "u1")
			if wantSaved := tt.wantErr == nil; (len(sessions) == 1) != wantSaved {
				t.Fatalf("unexpected stored sessions: %d", len(sessions))
			}
		})
	}
}

func TestSaveLiveMockRequiresResume(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.SaveLiveMock(ctx, LiveMockRecord{User: "u1"}); !errors.Is(err, ErrResumeRequired) {
		t.Fatalf("expected ErrResumeRequired, got %v", err)
	}

	if err := m.UploadResume(ctx, Resume{Owner: "u1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.SaveLiveMock(ctx, LiveMockRecord{User: "u1", BodyLanguageScore: 80}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, _ := m.LiveMocks(ctx, "u1")
	if len(records) != 1 || records[0].ID == "" || records[0].RecordedAt.IsZero() {
		t.Fatalf("expected stored record with id and time, got %+v", records)
	}
}

func TestResponseRatingRange(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.AddInterviewResponse(ctx, InterviewResponse{User: "u1", Rating: 6}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected invalid rating, got %v", err)
	}
	if err := m.AddInterviewResponse(ctx, InterviewResponse{User: "u1", Rating: 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{err: errors.New("bad status 422: Resume upload required"), want: ErrResumeRequired},
		{err: errors.New("Target role not verified"), want: ErrRoleNotVerified},
		{err: fmt.Errorf("save: %w", ErrNotFound), want: ErrNotFound},
	}

	for _, tt := range tests {
		if got := Classify(tt.err); !errors.Is(got, tt.want) {
			t.Fatalf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}

	other := errors.New("boom")
	if got := Classify(other); got != other {
		t.Fatalf("expected unknown errors to pass through, got %v", got)
	}
	if Message(ErrRoleNotVerified) != MessageRoleNotVerified {
		t.Fatalf("unexpected message")
	}
}
