package export

import (
	"context"
	"fmt"
	"time"
)

// Service renders drafts. PDF goes through headless Chrome and DOCX through
// pandoc; both report a dependency error when the binary is absent.
type Service struct {
	timeout time.Duration
}

func NewService(timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{timeout: timeout}
}

func (s *Service) Export(ctx context.Context, draft Draft, format Format) (*Result, error) {
	name := fmt.Sprintf("%s-v%d", sanitizeFilename(Title(draft.Content, draft.Topic)), draft.Version)

	if format == FormatMarkdown {
		return &Result{
			Data:     []byte(draft.Content),
			Filename: name + ".md",
			MimeType: "text/markdown; charset=utf-8",
		}, nil
	}

	page, err := RenderDraftHTML(draft)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	switch format {
	case FormatHTML:
		return &Result{
			Data:     []byte(page),
			Filename: name + ".html",
			MimeType: "text/html; charset=utf-8",
		}, nil
	case FormatPDF:
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return exportPDF(ctx, page, name)
	case FormatDOCX:
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return exportDOCX(ctx, page, name)
	default:
		return nil, ErrUnsupportedFormat
	}
}
