package resume

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/interview-coach/internal/roles"
	"github.com/spigell/interview-coach/internal/scoring"
)

func TestUploadValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		upload Upload
		expect error
	}{
		{
			name:   "pdf by content type",
			upload: Upload{FileName: "cv", ContentType: ContentTypePDF, Data: []byte("x")},
		},
		{
			name:   "docx by extension",
			upload: Upload{FileName: "cv.DOCX", ContentType: "application/octet-stream", Data: []byte("x")},
		},
		{
			name:   "content type with parameters",
			upload: Upload{FileName: "cv", ContentType: "application/pdf; charset=binary", Data: []byte("x")},
		},
		{
			name:   "plain text rejected",
			upload: Upload{FileName: "cv.txt", ContentType: "text/plain", Data: []byte("x")},
			expect: ErrUnsupportedType,
		},
		{
			name:   "too large",
			upload: Upload{FileName: "cv.pdf", ContentType: ContentTypePDF, Data: make([]byte, MaxSize+1)},
			expect: ErrTooLarge,
		},
		{
			name:   "exactly max size accepted",
			upload: Upload{FileName: "cv.pdf", ContentType: ContentTypePDF, Data: make([]byte, MaxSize)},
		},
		{
			name:   "empty",
			upload: Upload{FileName: "cv.pdf", ContentType: ContentTypePDF},
			expect: ErrEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.upload.Validate()
			if tt.expect == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.expect != nil && !errors.Is(err, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, err)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	if got := Message(ErrUnsupportedType); got != "Please upload a PDF or DOCX file" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := Message(ErrTooLarge); got != "File size must be less than 10MB" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestDetectRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		content  string
		fileName string
		expect   string
	}{
		{content: "Built programming tools", expect: "Software Engineer"},
		{fileName: "jane-developer.pdf", expect: "Software Engineer"},
		{content: "Owned the product roadmap", expect: "Product Manager"},
		{content: "Statistics and analytics", expect: "Data Scientist"},
		{content: "Figma and UX research", expect: "Designer"},
		{content: "Closed sales deals", expect: "Marketing Manager"},
		{content: "Chef", fileName: "cv.doc", expect: GeneralProfessional},
	}

	for _, tt := range tests {
		if got := DetectRole(tt.content, tt.fileName); got != tt.expect {
			t.Fatalf("DetectRole(%q, %q): expected %q, got %q", tt.content, tt.fileName, tt.expect, got)
		}
	}
}

func TestExtractTextDOCX(t *testing.T) {
	data := buildDOCX(t, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
<w:p><w:r><w:t>Senior</w:t></w:r><w:r><w:tab/><w:t>Software Engineer</w:t></w:r></w:p>
</w:body>
</w:document>`)

	text, err := ExtractText(Upload{FileName: "cv.docx", Data: data})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Jane Doe") || !strings.Contains(text, "Senior\tSoftware Engineer") {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractTextDOCXWithoutBody(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	if _, err := w.Create("other.xml"); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if _, err := ExtractText(Upload{FileName: "cv.docx", Data: buf.Bytes()}); err == nil {
		t.Fatalf("expected error for docx without document body")
	}
}

func TestExtractTextRejectsBrokenPDF(t *testing.T) {
	if _, err := ExtractText(Upload{FileName: "cv.pdf", Data: []byte("not a pdf")}); err == nil {
		t.Fatalf("expected error for broken pdf")
	}
}

func TestExtractorUsesSuggestedRoleAndQuality(t *testing.T) {
	e := NewExtractor(scoring.Fixed(40), nil)

	signals, err := e.Extract(context.Background(), Input{
		ID:            "r1",
		FileName:      "cv.pdf",
		Text:          "Closed sales deals",
		SuggestedRole: "Data Scientist",
		Quality:       88,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if signals.DetectedRole != "Data Scientist" || signals.Category != roles.Data {
		t.Fatalf("expected suggested role to win, got %+v", signals)
	}
	if signals.QualityScore != 88 {
		t.Fatalf("expected stored quality 88, got %d", signals.QualityScore)
	}
}

func TestExtractorDetectsAndDrawsQuality(t *testing.T) {
	e := NewExtractor(scoring.Fixed(71), nil)

	signals, err := e.Extract(context.Background(), Input{FileName: "backend-engineer.pdf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if signals.DetectedRole != "Software Engineer" || signals.Category != roles.Technical {
		t.Fatalf("unexpected signals: %+v", signals)
	}
	if signals.QualityScore != 71 {
		t.Fatalf("expected strategy quality 71, got %d", signals.QualityScore)
	}
}

func TestExtractorFallsBackToFileNameOnBrokenUpload(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	e := NewExtractor(nil, zap.New(core))

	signals, err := e.Extract(context.Background(), Input{
		ID:       "r2",
		FileName: "designer.pdf",
		Upload:   &Upload{FileName: "designer.pdf", ContentType: ContentTypePDF, Data: []byte("broken")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if signals.DetectedRole != "Designer" {
		t.Fatalf("expected detection from file name, got %q", signals.DetectedRole)
	}
	if signals.QualityScore != scoring.Baseline {
		t.Fatalf("expected baseline quality, got %d", signals.QualityScore)
	}

	entries := observed.All()
	if len(entries) != 1 || entries[0].ContextMap()["resume_id"] != "r2" {
		t.Fatalf("expected a single warning with resume id, got %+v", entries)
	}
}

func TestExtractorHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewExtractor(nil, nil).Extract(ctx, Input{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create(docxBody)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := f.Write([]byte(body)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}
