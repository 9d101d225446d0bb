package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/roles"
)

func TestPipelineRun(t *testing.T) {
	tests := []struct {
		name            string
		role            string
		detected        string
		wantMismatch    bool
		wantSuggestions bool
	}{
		{name: "exact match", role: "Software Engineer", detected: "Software Engineer", wantSuggestions: true},
		{name: "same group", role: "Backend Developer", detected: "Software Engineer", wantSuggestions: true},
		{name: "data group", role: "Data Analyst", detected: "Data Scientist", wantSuggestions: true},
		{name: "cross group", role: "Product Manager", detected: "Software Engineer", wantMismatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(&stubExtractor{signals: signalsFor(tt.detected)})

			result, err := p.Run(context.Background(), tt.role, resume.Input{ID: "r"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Mismatch != tt.wantMismatch {
				t.Fatalf("expected mismatch=%v, got %v", tt.wantMismatch, result.Mismatch)
			}
			if (len(result.Suggestions) > 0) != tt.wantSuggestions {
				t.Fatalf("unexpected suggestions: %d", len(result.Suggestions))
			}
			if result.Category != roles.Classify(tt.role) {
				t.Fatalf("unexpected category %s", result.Category)
			}
		})
	}
}

func TestPipelineWrapsExtractorError(t *testing.T) {
	p := NewPipeline(&stubExtractor{err: context.DeadlineExceeded})

	_, err := p.Run(context.Background(), "Designer", resume.Input{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped deadline error, got %v", err)
	}
}

func TestPipelineWithoutExtractor(t *testing.T) {
	if _, err := NewPipeline(nil).Run(context.Background(), "Designer", resume.Input{}); err == nil {
		t.Fatalf("expected error without extractor")
	}
}
