package resume

import (
	"errors"
	"path/filepath"
	"strings"
)

const (
	// MaxSize is the largest accepted resume upload in bytes.
	MaxSize = 10 * 1024 * 1024

	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	ErrUnsupportedType = errors.New("unsupported resume file type")
	ErrTooLarge        = errors.New("resume file exceeds 10MB")
	ErrEmpty           = errors.New("resume file is empty")
)

// Message returns the user-facing notice for an upload validation error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedType):
		return "Please upload a PDF or DOCX file"
	case errors.Is(err, ErrTooLarge):
		return "File size must be less than 10MB"
	case errors.Is(err, ErrEmpty):
		return "The selected file is empty"
	default:
		return "Failed to upload resume. Please try again."
	}
}

// Upload is a resume file as received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Kind resolves the content type of the upload, falling back to the file
// extension when the client sent a generic type.
func (u Upload) Kind() string {
	ct := strings.ToLower(strings.TrimSpace(u.ContentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}

	switch ct {
	case ContentTypePDF, ContentTypeDOCX:
		return ct
	case "", "application/octet-stream":
		switch strings.ToLower(filepath.Ext(u.FileName)) {
		case ".pdf":
			return ContentTypePDF
		case ".docx":
			return ContentTypeDOCX
		}
	}
	return ct
}

// Validate checks the upload type and size.
func (u Upload) Validate() error {
	kind := u.Kind()
	if kind != ContentTypePDF && kind != ContentTypeDOCX {
		return ErrUnsupportedType
	}
	if len(u.Data) > MaxSize {
		return ErrTooLarge
	}
	if len(u.Data) == 0 {
		return ErrEmpty
	}
	return nil
}
