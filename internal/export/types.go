// Package export renders generated drafts as downloadable files.
package export

import (
	"errors"
	"time"
)

type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
)

// ParseFormat maps a query value to a Format. Empty selects markdown.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatHTML, FormatPDF, FormatDOCX:
		return Format(raw), nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Draft is one stored draft version ready for export.
type Draft struct {
	Topic     string
	Content   string
	Version   int
	CreatedAt time.Time
}

type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	ErrUnsupportedFormat = errors.New("export format not supported")
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrDOCXDependencyMissing indicates DOCX export runtime dependencies are unavailable.
	ErrDOCXDependencyMissing = errors.New("export docx dependency missing")
)
