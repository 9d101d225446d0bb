package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/blob"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/quiz"
	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/roles"
	"github.com/spigell/interview-coach/internal/store"
	"github.com/spigell/interview-coach/internal/suggestions"
	"github.com/spigell/interview-coach/internal/verification"
)

func (s *Server) routes(api *gin.RouterGroup) {
	api.POST("/verify", s.verify)

	api.GET("/profile", s.getProfile)
	api.PUT("/profile", s.putProfile)
	api.GET("/settings", s.getSettings)
	api.PUT("/settings", s.putSettings)

	api.POST("/resumes", s.uploadResume)
	api.POST("/resumes/records", s.saveResume)
	api.GET("/resumes", list(s, s.gateway.Resumes))
	api.GET("/resumes/latest", s.latestResume)

	api.POST("/sessions", s.saveSession)
	api.GET("/sessions", list(s, s.gateway.InterviewSessions))
	api.POST("/responses", s.addResponse)
	api.GET("/responses", list(s, s.gateway.InterviewResponses))
	api.POST("/livemocks", s.saveLiveMock)
	api.GET("/livemocks", list(s, s.gateway.LiveMocks))
	api.POST("/quiz-results", s.saveQuizResult)
	api.GET("/quiz-results", list(s, s.gateway.QuizResults))
	api.GET("/quiz/:role", s.getQuiz)
	api.POST("/reviews", s.buildReview)
	api.POST("/reviews/records", s.saveReview)
	api.GET("/reviews", list(s, s.gateway.CandidateReviews))
}

func list[T any](s *Server, fetch func(ctx context.Context, user string) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := fetch(c.Request.Context(), userID(c))
		if err != nil {
			s.fail(c, err)
			return
		}
		success(c, paginate(c, items))
	}
}

type verifyRequest struct {
	Role     string `json:"role" binding:"required"`
	ResumeID string `json:"resumeId"`
	// Start persists the verified resume and the session settings.
	Start bool `json:"start"`
}

type verifyResponse struct {
	Category      roles.Category           `json:"category"`
	DetectedRole  string                   `json:"detectedRole"`
	Mismatch      bool                     `json:"mismatch"`
	Suggestions   []suggestions.Suggestion `json:"suggestions"`
	InterviewType roles.InterviewType      `json:"interviewType"`
	Difficulty    roles.Difficulty         `json:"difficulty"`
	Rounds        []string                 `json:"rounds,omitempty"`
	QualityScore  int                      `json:"qualityScore"`
	Resume        *store.Resume            `json:"resume,omitempty"`
}

func (s *Server) verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "role is required")
		return
	}

	ctx := c.Request.Context()
	user := userID(c)

	rec, err := s.findResume(ctx, user, req.ResumeID)
	if err != nil {
		s.fail(c, err)
		return
	}

	res, err := s.pipeline.Run(ctx, req.Role, resume.Input{
		ID:            rec.ID,
		FileName:      rec.FileName,
		Text:          rec.ParsedContent,
		SuggestedRole: rec.SuggestedRole,
		Quality:       rec.QualityScore,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.verified(res.Mismatch)

	out := verifyResponse{
		Category:      res.Category,
		DetectedRole:  res.Signals.DetectedRole,
		Mismatch:      res.Mismatch,
		Suggestions:   res.Suggestions,
		InterviewType: res.Config.InterviewType,
		Difficulty:    res.Config.Difficulty,
		Rounds:        res.Config.Rounds,
		QualityScore:  res.Signals.QualityScore,
	}

	if req.Start && !res.Mismatch {
		base := *rec
		base.ID = store.NewID("resume")
		base.UploadedAt = s.clock.Now()
		stamped, err := verification.PersistStart(ctx, s.gateway, base, res)
		if err != nil {
			s.fail(c, err)
			return
		}
		out.Resume = &stamped
	}

	s.logger.Info("verification served",
		zap.String(logger.FieldUser, user),
		zap.String(logger.FieldTargetRole, req.Role),
		zap.String("detected_role", res.Signals.DetectedRole),
		zap.Bool("mismatch", res.Mismatch),
	)
	success(c, out)
}

func (s *Server) findResume(ctx context.Context, user, id string) (*store.Resume, error) {
	if id == "" {
		rec, err := s.gateway.LatestResume(ctx, user)
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrResumeRequired
		}
		return rec, err
	}

	resumes, err := s.gateway.Resumes(ctx, user)
	if err != nil {
		return nil, err
	}
	for i := range resumes {
		if resumes[i].ID == id {
			return &resumes[i], nil
		}
	}
	return nil, fmt.Errorf("resume %s: %w", id, store.ErrNotFound)
}

func (s *Server) getProfile(c *gin.Context) {
	p, err := s.gateway.Profile(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, p)
}

func (s *Server) putProfile(c *gin.Context) {
	var p store.UserProfile
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid profile")
		return
	}
	p.UserID = userID(c)
	p.UpdatedAt = s.clock.Now()
	p = p.WithDefaults()

	if err := s.gateway.SaveProfile(c.Request.Context(), p); err != nil {
		s.fail(c, err)
		return
	}
	success(c, p)
}

func (s *Server) getSettings(c *gin.Context) {
	settings, err := s.gateway.Settings(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, settings)
}

func (s *Server) putSettings(c *gin.Context) {
	var settings store.InterviewSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		badRequest(c, "invalid settings")
		return
	}
	settings.UserID = userID(c)

	if err := s.gateway.SaveSettings(c.Request.Context(), settings); err != nil {
		s.fail(c, err)
		return
	}
	success(c, settings)
}

func (s *Server) uploadResume(c *gin.Context) {
	ctx := c.Request.Context()
	user := userID(c)

	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if header.Size > resume.MaxSize {
		s.fail(c, resume.ErrTooLarge)
		return
	}

	f, err := header.Open()
	if err != nil {
		s.fail(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, resume.MaxSize+1))
	if err != nil {
		s.fail(c, fmt.Errorf("read upload: %w", err))
		return
	}

	upload := resume.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	if err := upload.Validate(); err != nil {
		s.fail(c, err)
		return
	}

	text, err := resume.ExtractText(upload)
	if err != nil {
		s.logger.Warn("extracting resume text failed",
			zap.String(logger.FieldUser, user),
			zap.String("file_name", upload.FileName),
			zap.Error(err),
		)
	}

	var key string
	if s.blobs != nil {
		key = blob.NewKey("resumes", user, upload.FileName)
		if err := s.blobs.Put(ctx, key, upload.Data, upload.Kind()); err != nil {
			s.fail(c, fmt.Errorf("store resume file: %w", err))
			return
		}
	}

	role := strings.TrimSpace(c.PostForm("role"))
	detected := resume.DetectRole(text, upload.FileName)
	quality := s.scores.Quality()

	rec := store.Resume{
		ID:                     store.NewID("resume"),
		Owner:                  user,
		FileName:               upload.FileName,
		ContentType:            upload.Kind(),
		BlobKey:                key,
		ParsedContent:          text,
		UploadedAt:             s.clock.Now(),
		QualityScore:           quality,
		ImprovementSuggestions: suggestions.QualityFeedback(quality),
		TargetRole:             role,
		SuggestedRole:          detected,
	}
	if role != "" && !roles.Mismatched(detected, role) {
		rec.Verified = true
		rec.ImprovementDetails = suggestions.Generate(role, quality)
	}

	if err := s.gateway.UploadResume(ctx, rec); err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info("resume uploaded",
		zap.String(logger.FieldUser, user),
		zap.String("resume_id", rec.ID),
		zap.String("detected_role", detected),
		zap.Bool("verified", rec.Verified),
	)
	created(c, rec)
}

// saveResume stores a resume record built by a client. Verification fields
// are never taken from the client: the record is run through the pipeline
// against its target role and stamped here.
func (s *Server) saveResume(c *gin.Context) {
	var rec store.Resume
	if err := c.ShouldBindJSON(&rec); err != nil {
		badRequest(c, "invalid resume record")
		return
	}

	ctx := c.Request.Context()
	rec.Owner = userID(c)
	if rec.ID == "" {
		rec.ID = store.NewID("resume")
	}
	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = s.clock.Now()
	}

	rec, err := s.stampRecord(ctx, rec)
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.gateway.UploadResume(ctx, rec); err != nil {
		s.fail(c, err)
		return
	}
	created(c, rec)
}

func (s *Server) stampRecord(ctx context.Context, rec store.Resume) (store.Resume, error) {
	rec.Verified = false
	rec.ImprovementDetails = nil

	in := resume.Input{
		ID:       rec.ID,
		FileName: rec.FileName,
		Text:     rec.ParsedContent,
		Quality:  rec.QualityScore,
	}
	if strings.TrimSpace(rec.TargetRole) == "" {
		rec.SuggestedRole = resume.DetectRole(in.Text, in.FileName)
		return rec, nil
	}

	res, err := s.pipeline.Run(ctx, rec.TargetRole, in)
	if err != nil {
		return rec, err
	}
	s.metrics.verified(res.Mismatch)

	if res.Mismatch {
		s.logger.Info("resume record not verified for target role",
			zap.String(logger.FieldUser, rec.Owner),
			zap.String(logger.FieldTargetRole, rec.TargetRole),
			zap.String("detected_role", res.Signals.DetectedRole),
		)
	}
	return verification.StampResume(rec, res), nil
}

func (s *Server) latestResume(c *gin.Context) {
	rec, err := s.gateway.LatestResume(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, rec)
}

func (s *Server) saveSession(c *gin.Context) {
	var session store.InterviewSession
	if err := c.ShouldBindJSON(&session); err != nil {
		badRequest(c, "invalid interview session")
		return
	}
	session.User = userID(c)
	if session.ID == "" {
		session.ID = store.NewID("session")
	}

	if err := s.gateway.SaveInterviewSession(c.Request.Context(), session); err != nil {
		s.fail(c, err)
		return
	}
	created(c, session)
}

func (s *Server) addResponse(c *gin.Context) {
	var r store.InterviewResponse
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, "invalid interview response")
		return
	}
	r.User = userID(c)
	if r.ID == "" {
		r.ID = store.NewID("response")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.clock.Now()
	}

	if err := s.gateway.AddInterviewResponse(c.Request.Context(), r); err != nil {
		s.fail(c, err)
		return
	}
	created(c, r)
}

func (s *Server) saveLiveMock(c *gin.Context) {
	var r store.LiveMockRecord
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, "invalid live mock record")
		return
	}
	r.User = userID(c)
	if r.ID == "" {
		r.ID = store.NewID("livemock")
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = s.clock.Now()
	}

	if err := s.gateway.SaveLiveMock(c.Request.Context(), r); err != nil {
		s.fail(c, err)
		return
	}
	created(c, r)
}

func (s *Server) saveQuizResult(c *gin.Context) {
	var r store.QuizResult
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, "invalid quiz result")
		return
	}
	r.User = userID(c)
	if r.ID == "" {
		r.ID = store.NewID("quiz")
	}
	if r.CompletedAt.IsZero() {
		r.CompletedAt = s.clock.Now()
	}

	if err := s.gateway.SaveQuizResult(c.Request.Context(), r); err != nil {
		s.fail(c, err)
		return
	}
	created(c, r)
}

func (s *Server) getQuiz(c *gin.Context) {
	questions, err := quiz.Questions(c.Param("role"))
	if err != nil {
		s.fail(c, err)
		return
	}
	success(c, gin.H{
		"role":             c.Param("role"),
		"timeLimitSeconds": int(quiz.TimeLimit.Seconds()),
		"questions":        questions,
	})
}

type reviewResponse struct {
	Review      store.CandidateReview `json:"review"`
	Label       string                `json:"label"`
	ChatBotAvg  int                   `json:"chatBotAvg"`
	LiveMockAvg int                   `json:"liveMockAvg"`
}

func (s *Server) buildReview(c *gin.Context) {
	summary, rec, err := s.reviews.BuildAndSave(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data: reviewResponse{
			Review:      rec,
			Label:       summary.Label(),
			ChatBotAvg:  summary.ChatBotAvg,
			LiveMockAvg: summary.LiveMockAvg,
		},
	})
}

func (s *Server) saveReview(c *gin.Context) {
	var r store.CandidateReview
	if err := c.ShouldBindJSON(&r); err != nil {
		badRequest(c, "invalid candidate review")
		return
	}
	r.User = userID(c)
	if r.ID == "" {
		r.ID = store.NewID("review")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.clock.Now()
	}

	if err := s.gateway.SaveCandidateReview(c.Request.Context(), r); err != nil {
		s.fail(c, err)
		return
	}
	created(c, r)
}
