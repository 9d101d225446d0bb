// Package postgres is the gorm backed store.Gateway.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/spigell/interview-coach/internal/store"
)

type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ store.Gateway = (*Store)(nil)

// Open connects to PostgreSQL and migrates the schema.
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	s := New(db, logger)
	if err := s.Migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

func New(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&store.UserProfile{},
		&store.InterviewSettings{},
		&store.Resume{},
		&store.InterviewSession{},
		&store.InterviewResponse{},
		&store.LiveMockRecord{},
		&store.QuizResult{},
		&store.CandidateReview{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) SaveProfile(ctx context.Context, p store.UserProfile) error {
	p = p.WithDefaults()
	if err := store.Validate(p); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()

	return s.upsert(ctx, &p, "save profile")
}

func (s *Store) Profile(ctx context.Context, user string) (*store.UserProfile, error) {
	var p store.UserProfile
	if err := s.first(ctx, &p, "user_id = ?", user); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings store.InterviewSettings) error {
	if err := store.Validate(settings); err != nil {
		return err
	}
	return s.upsert(ctx, &settings, "save settings")
}

func (s *Store) Settings(ctx context.Context, user string) (*store.InterviewSettings, error) {
	var settings store.InterviewSettings
	if err := s.first(ctx, &settings, "user_id = ?", user); err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &settings, nil
}

func (s *Store) UploadResume(ctx context.Context, r store.Resume) error {
	if err := store.Validate(r); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = store.NewID("resume")
	}
	if r.UploadedAt.IsZero() {
		r.UploadedAt = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return fmt.Errorf("upload resume: %w", err)
	}
	return nil
}

func (s *Store) Resumes(ctx context.Context, user string) ([]store.Resume, error) {
	var resumes []store.Resume
	err := s.db.WithContext(ctx).Where("owner = ?", user).Order("uploaded_at DESC").Find(&resumes).Error
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return resumes, nil
}

func (s *Store) LatestResume(ctx context.Context, user string) (*store.Resume, error) {
	return s.latestResume(s.db.WithContext(ctx), user)
}

func (s *Store) SaveInterviewSession(ctx context.Context, session store.InterviewSession) error {
	if err := store.Validate(session); err != nil {
		return err
	}
	if session.ID == "" {
		session.ID = store.NewID("session")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		latest, err := s.latestResume(tx, session.User)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := store.CheckSession(latest, session); err != nil {
			s.logger.Info("interview session rejected",
				zap.String("user_id", session.User),
				zap.String("target_role", session.Role),
				zap.Error(err),
			)
			return err
		}
		if err := tx.Create(&session).Error; err != nil {
			return fmt.Errorf("save interview session: %w", err)
		}
		return nil
	})
}

func (s *Store) InterviewSessions(ctx context.Context, user string) ([]store.InterviewSession, error) {
	var sessions []store.InterviewSession
	if err := s.listByUser(ctx, &sessions, user, "start_time"); err != nil {
		return nil, fmt.Errorf("list interview sessions: %w", err)
	}
	return sessions, nil
}

func (s *Store) AddInterviewResponse(ctx context.Context, r store.InterviewResponse) error {
	if err := store.Validate(r); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = store.NewID("response")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return fmt.Errorf("add interview response: %w", err)
	}
	return nil
}

func (s *Store) InterviewResponses(ctx context.Context, user string) ([]store.InterviewResponse, error) {
	var responses []store.InterviewResponse
	if err := s.listByUser(ctx, &responses, user, "created_at"); err != nil {
		return nil, fmt.Errorf("list interview responses: %w", err)
	}
	return responses, nil
}

func (s *Store) SaveLiveMock(ctx context.Context, r store.LiveMockRecord) error {
	if err := store.Validate(r); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = store.NewID("live")
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		latest, err := s.latestResume(tx, r.User)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := store.CheckLiveMock(latest); err != nil {
			return err
		}
		if err := tx.Create(&r).Error; err != nil {
			return fmt.Errorf("save live mock: %w", err)
		}
		return nil
	})
}

func (s *Store) LiveMocks(ctx context.Context, user string) ([]store.LiveMockRecord, error) {
	var records []store.LiveMockRecord
	if err := s.listByUser(ctx, &records, user, "recorded_at"); err != nil {
		return nil, fmt.Errorf("list live mocks: %w", err)
	}
	return records, nil
}

func (s *Store) SaveQuizResult(ctx context.Context, r store.QuizResult) error {
	if err := store.Validate(r); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = store.NewID("quiz")
	}
	if r.CompletedAt.IsZero() {
		r.CompletedAt = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return fmt.Errorf("save quiz result: %w", err)
	}
	return nil
}

func (s *Store) QuizResults(ctx context.Context, user string) ([]store.QuizResult, error) {
	var results []store.QuizResult
	if err := s.listByUser(ctx, &results, user, "completed_at"); err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}
	return results, nil
}

func (s *Store) SaveCandidateReview(ctx context.Context, r store.CandidateReview) error {
	if err := store.Validate(r); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = store.NewID("review")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return fmt.Errorf("save candidate review: %w", err)
	}
	return nil
}

func (s *Store) CandidateReviews(ctx context.Context, user string) ([]store.CandidateReview, error) {
	var reviews []store.CandidateReview
	if err := s.listByUser(ctx, &reviews, user, "created_at"); err != nil {
		return nil, fmt.Errorf("list candidate reviews: %w", err)
	}
	return reviews, nil
}

func (s *Store) latestResume(db *gorm.DB, user string) (*store.Resume, error) {
	var r store.Resume
	err := db.Where("owner = ?", user).Order("uploaded_at DESC").First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest resume: %w", err)
	}
	return &r, nil
}

func (s *Store) upsert(ctx context.Context, record any, op string) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) first(ctx context.Context, dest any, query string, args ...any) error {
	err := s.db.WithContext(ctx).Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) listByUser(ctx context.Context, dest any, user, orderColumn string) error {
	return s.db.WithContext(ctx).Where(`"user" = ?`, user).Order(orderColumn + " ASC").Find(dest).Error
}
