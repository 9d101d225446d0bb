package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/roles"
	"github.com/spigell/interview-coach/internal/suggestions"
)

// Extractor derives resume signals. *resume.Extractor implements it.
type Extractor interface {
	Extract(ctx context.Context, in resume.Input) (resume.Signals, error)
}

// Pipeline runs the classifier, extractor and compatibility check for one
// role/resume pair. It holds no state between runs.
type Pipeline struct {
	extractor Extractor
}

func NewPipeline(extractor Extractor) *Pipeline {
	return &Pipeline{extractor: extractor}
}

func (p *Pipeline) Run(ctx context.Context, role string, in resume.Input) (Result, error) {
	if p == nil || p.extractor == nil {
		return Result{}, errors.New("verification pipeline has no extractor")
	}

	signals, err := p.extractor.Extract(ctx, in)
	if err != nil {
		return Result{}, fmt.Errorf("extract resume signals: %w", err)
	}

	result := Result{
		Role:     role,
		Category: roles.Classify(role),
		Signals:  signals,
		Mismatch: roles.Mismatched(signals.DetectedRole, role),
		Config:   roles.Configure(role),
	}

	if !result.Mismatch {
		result.Suggestions = suggestions.Generate(role, signals.QualityScore)
	}

	return result, nil
}
