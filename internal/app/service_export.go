package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/alswp006/blog-writer/internal/export"
	"github.com/alswp006/blog-writer/internal/store"
)

// ExportDraft renders one draft version of an owned writing request. Version
// zero selects the latest draft.
func (s *Service) ExportDraft(ctx context.Context, userID, requestID string, version int, format string) (*export.Result, error) {
	parsed, err := export.ParseFormat(format)
	if err != nil {
		return nil, validationError("format must be one of md, html, pdf, docx", map[string]any{"format": format})
	}
	if s.exporter == nil {
		return nil, domainError(http.StatusNotImplemented, CodeExportUnavailable, "Export is not available", nil)
	}

	request, err := s.ownedRequest(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}
	drafts, err := s.store.ListDrafts(ctx, request.ID, userID)
	if err != nil {
		return nil, internalError("Failed to list drafts", err)
	}
	draft := pickDraft(drafts, version)
	if draft == nil {
		return nil, notFound("Draft")
	}

	result, err := s.exporter.Export(ctx, export.Draft{
		Topic:     request.Topic,
		Content:   draft.Content,
		Version:   draft.Version,
		CreatedAt: draft.CreatedAt,
	}, parsed)
	switch {
	case errors.Is(err, export.ErrPDFDependencyMissing), errors.Is(err, export.ErrDOCXDependencyMissing):
		return nil, &DomainError{
			Status:  http.StatusNotImplemented,
			Code:    CodeExportUnavailable,
			Message: "Export format is not available on this server",
			Details: map[string]any{"format": string(parsed)},
			Cause:   err,
		}
	case err != nil:
		return nil, internalError("Failed to export draft", err)
	}
	s.log.Info("draft exported", "user_id", userID, "writing_request_id", request.ID, "version", draft.Version, "format", parsed)
	return result, nil
}

func pickDraft(drafts []store.GeneratedDraft, version int) *store.GeneratedDraft {
	for i := range drafts {
		if (version == 0 && drafts[i].IsLatest) || (version > 0 && drafts[i].Version == version) {
			return &drafts[i]
		}
	}
	return nil
}
