package app

import (
	"context"
	"strings"

	"github.com/alswp006/blog-writer/internal/search"
	"github.com/alswp006/blog-writer/internal/store"
	"github.com/alswp006/blog-writer/internal/writing"
)

type CreateWritingRequestInput struct {
	Topic       string  `json:"topic"`
	TitleHint   *string `json:"titleHint"`
	KeyPoints   *string `json:"keyPoints"`
	Constraints *string `json:"constraints"`
}

type WritingRequestResult struct {
	WritingRequest store.WritingRequest  `json:"writingRequest"`
	LatestDraft    *store.GeneratedDraft `json:"latestDraft"`
}

// CreateWritingRequest records the request and generates its first draft.
// Without a ready style profile nothing is created.
func (s *Service) CreateWritingRequest(ctx context.Context, userID string, input CreateWritingRequestInput) (WritingRequestResult, error) {
	topic := strings.TrimSpace(input.Topic)
	if topic == "" {
		return WritingRequestResult{}, validationError("topic is required", nil)
	}
	profile, err := s.readyProfile(ctx, userID)
	if err != nil {
		return WritingRequestResult{}, err
	}

	request, err := s.store.CreateWritingRequest(ctx, userID, store.WritingRequestInput{
		Topic:       topic,
		TitleHint:   optionalText(input.TitleHint),
		KeyPoints:   optionalText(input.KeyPoints),
		Constraints: optionalText(input.Constraints),
	})
	if err != nil {
		return WritingRequestResult{}, internalError("Failed to create writing request", err)
	}
	return s.generate(ctx, request, profile)
}

// RegenerateDraft stores a fresh draft as the request's new latest version.
func (s *Service) RegenerateDraft(ctx context.Context, userID, requestID string) (WritingRequestResult, error) {
	request, err := s.ownedRequest(ctx, userID, requestID)
	if err != nil {
		return WritingRequestResult{}, err
	}
	profile, err := s.readyProfile(ctx, userID)
	if err != nil {
		return WritingRequestResult{}, err
	}

	generating, err := s.store.UpdateWritingRequest(ctx, request.ID, store.WritingRequestUpdate{Status: store.RequestGenerating})
	if err != nil {
		return WritingRequestResult{}, internalError("Failed to update writing request", err)
	}
	if generating != nil {
		request = *generating
	}
	return s.generate(ctx, request, profile)
}

// generate renders, stores and indexes a draft, then completes the request.
// A storage failure marks the request failed.
func (s *Service) generate(ctx context.Context, request store.WritingRequest, profile store.StyleProfile) (WritingRequestResult, error) {
	content := writing.GenerateDraft(writing.DraftInput{
		Topic:        request.Topic,
		TitleHint:    request.TitleHint,
		KeyPoints:    request.KeyPoints,
		Constraints:  request.Constraints,
		StyleSummary: profile.StyleSummary,
	})

	ctx = context.WithoutCancel(ctx)
	log := s.log.With("user_id", request.UserID, "writing_request_id", request.ID)

	draft, err := s.store.CreateDraftAsLatest(ctx, request.ID, request.UserID, content)
	if err != nil {
		log.Error("draft storage failed", "error", err)
		if _, updateErr := s.store.UpdateWritingRequest(ctx, request.ID, store.WritingRequestUpdate{
			Status:    store.RequestFailed,
			LastError: store.Set("draft could not be stored"),
		}); updateErr != nil {
			log.Error("mark writing request failed", "error", updateErr)
		}
		return WritingRequestResult{}, internalError("Failed to store draft", err)
	}

	completion := store.WritingRequestUpdate{
		Status:    store.RequestCompleted,
		LastError: store.SetNull[string](),
	}
	updated, err := s.store.UpdateWritingRequest(ctx, request.ID, completion)
	if err != nil {
		return WritingRequestResult{}, internalError("Failed to update writing request", err)
	}
	completed := store.ApplyWritingRequestUpdate(request, completion)
	if updated != nil {
		completed = *updated
	}

	if s.search != nil {
		s.search.IndexDraft(search.DraftRecord{
			ID:      completed.ID,
			DraftID: draft.ID,
			UserID:  completed.UserID,
			Topic:   completed.Topic,
			Content: draft.Content,
			Version: draft.Version,
		})
	}
	log.Info("draft generated", "version", draft.Version, "content_len", len(draft.Content))
	return WritingRequestResult{WritingRequest: completed, LatestDraft: &draft}, nil
}

func (s *Service) GetWritingRequest(ctx context.Context, userID, requestID string) (WritingRequestResult, error) {
	request, err := s.ownedRequest(ctx, userID, requestID)
	if err != nil {
		return WritingRequestResult{}, err
	}
	latest, err := s.store.GetLatestDraftForUser(ctx, request.ID, userID)
	if err != nil {
		return WritingRequestResult{}, internalError("Failed to load draft", err)
	}
	return WritingRequestResult{WritingRequest: request, LatestDraft: latest}, nil
}

func (s *Service) ListWritingRequests(ctx context.Context, userID string, limit int) ([]store.WritingRequest, error) {
	items, err := s.store.ListWritingRequests(ctx, userID, limit)
	if err != nil {
		return nil, internalError("Failed to list writing requests", err)
	}
	return items, nil
}

func (s *Service) ListDrafts(ctx context.Context, userID, requestID string) ([]store.GeneratedDraft, error) {
	request, err := s.ownedRequest(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}
	drafts, err := s.store.ListDrafts(ctx, request.ID, userID)
	if err != nil {
		return nil, internalError("Failed to list drafts", err)
	}
	return drafts, nil
}

func (s *Service) SearchDrafts(ctx context.Context, userID, text string, limit, offset int) (search.Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return search.Response{}, validationError("q is required", nil)
	}
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: text}, nil
	}
	return s.search.Search(ctx, search.Query{Text: text, UserID: userID, Limit: limit, Offset: offset}), nil
}

func (s *Service) ownedRequest(ctx context.Context, userID, requestID string) (store.WritingRequest, error) {
	if strings.TrimSpace(requestID) == "" {
		return store.WritingRequest{}, notFound("Writing request")
	}
	request, err := s.store.GetWritingRequestForUser(ctx, requestID, userID)
	if err != nil {
		return store.WritingRequest{}, internalError("Failed to load writing request", err)
	}
	if request == nil {
		return store.WritingRequest{}, notFound("Writing request")
	}
	return *request, nil
}

func (s *Service) readyProfile(ctx context.Context, userID string) (store.StyleProfile, error) {
	profile, err := s.store.GetStyleProfile(ctx, userID)
	if err != nil {
		return store.StyleProfile{}, internalError("Failed to load style profile", err)
	}
	if profile == nil || profile.Status != store.ProfileReady {
		return store.StyleProfile{}, styleProfileNotReady()
	}
	return *profile, nil
}

// optionalText maps blank strings to NULL.
func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	if strings.TrimSpace(*value) == "" {
		return nil
	}
	text := *value
	return &text
}
