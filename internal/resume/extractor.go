package resume

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/roles"
	"github.com/spigell/interview-coach/internal/scoring"
)

const maxLogLength = 120

// Input carries whatever is known about a resume at verification time.
type Input struct {
	ID       string
	FileName string
	Text     string
	// Upload is used to extract Text when it is empty.
	Upload *Upload
	// SuggestedRole is the role detected by an earlier analysis. It wins over detection.
	SuggestedRole string
	// Quality is a previously computed score; zero means unknown.
	Quality int
}

// Signals are the coarse facts derived from a resume.
type Signals struct {
	Category     roles.Category `json:"category"`
	DetectedRole string         `json:"detectedRole"`
	QualityScore int            `json:"qualityScore"`
}

type Extractor struct {
	strategy scoring.Strategy
	logger   *zap.Logger
}

func NewExtractor(strategy scoring.Strategy, logger *zap.Logger) *Extractor {
	if strategy == nil {
		strategy = scoring.Fixed(scoring.Baseline)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{strategy: strategy, logger: logger}
}

// Extract derives resume signals. Text extraction failures degrade to detection
// by file name; only context cancellation is returned as an error.
func (e *Extractor) Extract(ctx context.Context, in Input) (Signals, error) {
	if err := ctx.Err(); err != nil {
		return Signals{}, err
	}

	text := in.Text
	if text == "" && in.Upload != nil {
		extracted, err := ExtractText(*in.Upload)
		if err != nil {
			e.logger.Warn("extracting resume text failed, using file name only",
				zap.String("resume_id", in.ID),
				zap.String("file_name", in.FileName),
				zap.Error(err),
			)
		} else {
			text = extracted
		}
	}

	signals := Signals{QualityScore: in.Quality}

	if in.SuggestedRole != "" {
		signals.DetectedRole = in.SuggestedRole
		signals.Category = roles.Classify(in.SuggestedRole)
	} else {
		signals.DetectedRole = DetectRole(text, in.FileName)
		signals.Category = roles.Classify(text + " " + in.FileName)
	}

	if signals.QualityScore <= 0 {
		signals.QualityScore = scoring.Clamp(e.strategy.Quality())
	}

	e.logger.Debug("resume signals extracted",
		zap.String("resume_id", in.ID),
		zap.String("detected_role", signals.DetectedRole),
		zap.String("category", string(signals.Category)),
		zap.Int("quality_score", signals.QualityScore),
		zap.String("text_preview", logger.Truncate(text, maxLogLength)),
	)

	return signals, nil
}
