package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Gateway used by the CLI and tests.
type Memory struct {
	mu        sync.RWMutex
	now       func() time.Time
	profiles  map[string]UserProfile
	settings  map[string]InterviewSettings
	resumes   map[string][]Resume
	sessions  map[string][]InterviewSession
	responses map[string][]InterviewResponse
	liveMocks map[string][]LiveMockRecord
	quizzes   map[string][]QuizResult
	reviews   map[string][]CandidateReview
}

var _ Gateway = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		now:       time.Now,
		profiles:  make(map[string]UserProfile),
		settings:  make(map[string]InterviewSettings),
		resumes:   make(map[string][]Resume),
		sessions:  make(map[string][]InterviewSession),
		responses: make(map[string][]InterviewResponse),
		liveMocks: make(map[string][]LiveMockRecord),
		quizzes:   make(map[string][]QuizResult),
		reviews:   make(map[string][]CandidateReview),
	}
}

func (m *Memory) SaveProfile(ctx context.Context, p UserProfile) error {
	p = p.WithDefaults()
	if err := Validate(p); err != nil {
		return err
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = m.now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
	return nil
}

func (m *Memory) Profile(ctx context.Context, user string) (*UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[user]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) SaveSettings(ctx context.Context, s InterviewSettings) error {
	if err := Validate(s); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.UserID] = s
	return nil
}

func (m *Memory) Settings(ctx context.Context, user string) (*InterviewSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.settings[user]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *Memory) UploadResume(ctx context.Context, r Resume) error {
	if err := Validate(r); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = NewID("resume")
	}
	if r.UploadedAt.IsZero() {
		r.UploadedAt = m.now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumes[r.Owner] = append(m.resumes[r.Owner], r)
	return nil
}

func (m *Memory) Resumes(ctx context.Context, user string) ([]Resume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := append([]Resume(nil), m.resumes[user]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (m *Memory) LatestResume(ctx context.Context, user string) (*Resume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := Latest(m.resumes[user])
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (m *Memory) SaveInterviewSession(ctx context.Context, s InterviewSession) error {
	if err := Validate(s); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = NewID("session")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := CheckSession(Latest(m.resumes[s.User]), s); err != nil {
		return err
	}
	m.sessions[s.User] = append(m.sessions[s.User], s)
	return nil
}

func (m *Memory) InterviewSessions(ctx context.Context, user string) ([]InterviewSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]InterviewSession(nil), m.sessions[user]...), nil
}

func (m *Memory) AddInterviewResponse(ctx context.Context, r InterviewResponse) error {
	if err := Validate(r); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = NewID("response")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[r.User] = append(m.responses[r.User], r)
	return nil
}

func (m *Memory) InterviewResponses(ctx context.Context, user string) ([]InterviewResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]InterviewResponse(nil), m.responses[user]...), nil
}

func (m *Memory) SaveLiveMock(ctx context.Context, r LiveMockRecord) error {
	if err := Validate(r); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = NewID("live")
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = m.now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := CheckLiveMock(Latest(m.resumes[r.User])); err != nil {
		return err
	}
	m.liveMocks[r.User] = append(m.liveMocks[r.User], r)
	return nil
}

func (m *Memory) LiveMocks(ctx context.Context, user string) ([]LiveMockRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]LiveMockRecord(nil), m.liveMocks[user]...), nil
}

func (m *Memory) SaveQuizResult(ctx context.Context, r QuizResult) error {
	if err := Validate(r); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = NewID("quiz")
	}
	if r.CompletedAt.IsZero() {
		r.CompletedAt = m.now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[r.User] = append(m.quizzes[r.User], r)
	return nil
}

func (m *Memory) QuizResults(ctx context.Context, user string) ([]QuizResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]QuizResult(nil), m.quizzes[user]...), nil
}

func (m *Memory) SaveCandidateReview(ctx context.Context, r CandidateReview) error {
	if err := Validate(r); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = NewID("review")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews[r.User] = append(m.reviews[r.User], r)
	return nil
}

func (m *Memory) CandidateReviews(ctx context.Context, user string) ([]CandidateReview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]CandidateReview(nil), m.reviews[user]...), nil
}
