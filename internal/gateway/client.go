// Package gateway is a store.Gateway backed by a remote interview coach API.
//
// The remote identity comes from the bearer token, so user arguments are not
// sent. The server stamps its own user onto every saved record.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/store"
)

const (
	apiPrefix   = "/api/v1"
	contentType = "application/json"
	userAgent   = "spigell/interview-coach"
	// Max value for list endpoints per page.
	perPage = "100"

	defaultTimeout = 10 * time.Second
)

type Config struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"-"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

var _ store.Gateway = (*Client)(nil)

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("gateway url is empty")
	}
	if cfg.Token == "" {
		return nil, errors.New("gateway token is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")+apiPrefix).
		SetAuthToken(cfg.Token).
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout)

	return &Client{http: client, logger: logger}, nil
}

func (c *Client) SaveProfile(ctx context.Context, p store.UserProfile) error {
	if err := c.send(ctx, http.MethodPut, "/profile", p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (c *Client) Profile(ctx context.Context, user string) (*store.UserProfile, error) {
	var p store.UserProfile
	if err := c.getJSON(ctx, "/profile", &p); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (c *Client) SaveSettings(ctx context.Context, s store.InterviewSettings) error {
	if err := c.send(ctx, http.MethodPut, "/settings", s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (c *Client) Settings(ctx context.Context, user string) (*store.InterviewSettings, error) {
	var s store.InterviewSettings
	if err := c.getJSON(ctx, "/settings", &s); err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

// UploadResume saves an already analysed resume record. Raw files go through
// the multipart endpoint instead.
func (c *Client) UploadResume(ctx context.Context, r store.Resume) error {
	if err := c.send(ctx, http.MethodPost, "/resumes/records", r); err != nil {
		return fmt.Errorf("save resume: %w", err)
	}
	return nil
}

func (c *Client) Resumes(ctx context.Context, user string) ([]store.Resume, error) {
	return list[store.Resume](ctx, c, "/resumes")
}

func (c *Client) LatestResume(ctx context.Context, user string) (*store.Resume, error) {
	var r store.Resume
	if err := c.getJSON(ctx, "/resumes/latest", &r); err != nil {
		return nil, fmt.Errorf("get latest resume: %w", err)
	}
	return &r, nil
}

func (c *Client) SaveInterviewSession(ctx context.Context, s store.InterviewSession) error {
	if err := c.send(ctx, http.MethodPost, "/sessions", s); err != nil {
		return fmt.Errorf("save interview session: %w", err)
	}
	return nil
}

func (c *Client) InterviewSessions(ctx context.Context, user string) ([]store.InterviewSession, error) {
	return list[store.InterviewSession](ctx, c, "/sessions")
}

func (c *Client) AddInterviewResponse(ctx context.Context, r store.InterviewResponse) error {
	if err := c.send(ctx, http.MethodPost, "/responses", r); err != nil {
		return fmt.Errorf("save interview response: %w", err)
	}
	return nil
}

func (c *Client) InterviewResponses(ctx context.Context, user string) ([]store.InterviewResponse, error) {
	return list[store.InterviewResponse](ctx, c, "/responses")
}

func (c *Client) SaveLiveMock(ctx context.Context, r store.LiveMockRecord) error {
	if err := c.send(ctx, http.MethodPost, "/livemocks", r); err != nil {
		return fmt.Errorf("save live mock: %w", err)
	}
	return nil
}

func (c *Client) LiveMocks(ctx context.Context, user string) ([]store.LiveMockRecord, error) {
	return list[store.LiveMockRecord](ctx, c, "/livemocks")
}

func (c *Client) SaveQuizResult(ctx context.Context, r store.QuizResult) error {
	if err := c.send(ctx, http.MethodPost, "/quiz-results", r); err != nil {
		return fmt.Errorf("save quiz result: %w", err)
	}
	return nil
}

func (c *Client) QuizResults(ctx context.Context, user string) ([]store.QuizResult, error) {
	return list[store.QuizResult](ctx, c, "/quiz-results")
}

func (c *Client) SaveCandidateReview(ctx context.Context, r store.CandidateReview) error {
	if err := c.send(ctx, http.MethodPost, "/reviews/records", r); err != nil {
		return fmt.Errorf("save candidate review: %w", err)
	}
	return nil
}

func (c *Client) CandidateReviews(ctx context.Context, user string) ([]store.CandidateReview, error) {
	return list[store.CandidateReview](ctx, c, "/reviews")
}

func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	items, err := c.GetItems(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", strings.TrimPrefix(path, "/"), err)
	}

	out := make([]T, 0, len(items))
	if err := decodeItems(items, &out); err != nil {
		return nil, fmt.Errorf("list %s: %w", strings.TrimPrefix(path, "/"), err)
	}
	return out, nil
}
