package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/alswp006/blog-writer/internal/logger"
	"github.com/alswp006/blog-writer/internal/store"
	"github.com/alswp006/blog-writer/internal/training"
)

// ErrInsufficientTrainingText is recorded as a profile's lastError when a
// crawled page yields too little text.
const ErrInsufficientTrainingText = "INSUFFICIENT_TRAINING_TEXT"

type TrainURLResult struct {
	StyleProfile store.StyleProfile `json:"styleProfile"`
	CrawlAttempt store.CrawlAttempt `json:"crawlAttempt"`
}

func (s *Service) GetStyleProfile(ctx context.Context, userID string) (*store.StyleProfile, error) {
	profile, err := s.store.GetStyleProfile(ctx, userID)
	if err != nil {
		return nil, internalError("Failed to load style profile", err)
	}
	return profile, nil
}

func (s *Service) ListCrawlAttempts(ctx context.Context, userID string, limit int) ([]store.CrawlAttempt, error) {
	attempts, err := s.store.ListCrawlAttempts(ctx, userID, limit)
	if err != nil {
		return nil, internalError("Failed to list crawl attempts", err)
	}
	return attempts, nil
}

// TrainFromPaste trains the profile from pasted text. Text below the minimum
// is rejected without touching the stored profile.
func (s *Service) TrainFromPaste(ctx context.Context, userID, text string) (store.StyleProfile, error) {
	if strings.TrimSpace(text) == "" {
		return store.StyleProfile{}, validationError("text is required", nil)
	}
	if n := training.Len(text); n < training.MinTrainingTextLen {
		return store.StyleProfile{}, validationError(
			fmt.Sprintf("text must be at least %d characters", training.MinTrainingTextLen),
			map[string]any{"minLength": training.MinTrainingTextLen, "length": n},
		)
	}

	trainingText := training.Truncate(text, training.MaxTrainingTextLen)
	summary := s.summarizer.Summarize(trainingText)
	profile, err := s.store.UpsertStyleProfile(ctx, userID, store.StyleProfileUpsert{
		SourceType:   store.SourcePaste,
		TrainingText: store.Set(trainingText),
		StyleSummary: &summary,
		Status:       store.ProfileReady,
		LastError:    store.SetNull[string](),
	})
	if err != nil {
		return store.StyleProfile{}, internalError("Failed to save style profile", err)
	}
	s.log.Info("style profile trained", "user_id", userID, "source", store.SourcePaste, "text_len", training.Len(trainingText))
	return profile, nil
}

// TrainFromURL crawls url and trains the profile from its text. The crawl
// attempt is terminal before this returns, whatever the outcome.
func (s *Service) TrainFromURL(ctx context.Context, userID, rawURL string) (TrainURLResult, error) {
	url := strings.TrimSpace(rawURL)
	if !training.ValidURL(url) {
		return TrainURLResult{}, validationError("url must start with http:// or https://", nil)
	}

	attempt, err := s.store.CreateCrawlAttempt(ctx, userID, url)
	if err != nil {
		return TrainURLResult{}, internalError("Failed to record crawl attempt", err)
	}
	log := s.log.With("user_id", userID, "crawl_attempt_id", attempt.ID)

	page, fetchErr := s.fetcher.Fetch(ctx, url)

	// Outcome writes must land even if the client has gone away.
	ctx = context.WithoutCancel(ctx)

	if fetchErr != nil {
		log.Warn("crawl failed", "url", url, "error", fetchErr)
		if _, err := s.store.UpdateCrawlAttempt(ctx, attempt.ID, store.CrawlAttemptUpdate{
			Status:       store.CrawlFailed,
			ErrorMessage: store.Set(fetchErr.Error()),
		}); err != nil {
			return TrainURLResult{}, internalError("Failed to record crawl attempt", err)
		}
		if _, err := s.store.UpsertStyleProfile(ctx, userID, store.StyleProfileUpsert{
			SourceType: store.SourceURL,
			SourceURL:  &url,
			Status:     store.ProfileFailed,
			LastError:  store.Set(fetchErr.Error()),
		}); err != nil {
			return TrainURLResult{}, internalError("Failed to save style profile", err)
		}
		return TrainURLResult{}, &DomainError{
			Status:  http.StatusInternalServerError,
			Code:    CodeInternal,
			Message: "Failed to fetch or process URL",
			Details: map[string]any{"crawlAttemptId": attempt.ID},
			Cause:   fetchErr,
		}
	}

	s.saveSnapshot(ctx, log, userID, attempt.ID, page.HTML)

	text := training.ExtractPlainText(page.HTML)
	if training.Len(text) < training.MinTrainingTextLen {
		log.Info("crawl yielded insufficient text", "http_status", page.HTTPStatus, "text_len", training.Len(text))
		updated, err := s.finishAttempt(ctx, attempt, store.CrawlAttemptUpdate{
			Status:        store.CrawlFailed,
			HTTPStatus:    store.Set(page.HTTPStatus),
			ExtractedText: store.Set(text),
		})
		if err != nil {
			return TrainURLResult{}, err
		}
		profile, err := s.store.UpsertStyleProfile(ctx, userID, store.StyleProfileUpsert{
			SourceType:   store.SourceURL,
			SourceURL:    &url,
			TrainingText: store.Set(text),
			Status:       store.ProfileFailed,
			LastError:    store.Set(ErrInsufficientTrainingText),
		})
		if err != nil {
			return TrainURLResult{}, internalError("Failed to save style profile", err)
		}
		return TrainURLResult{StyleProfile: profile, CrawlAttempt: updated}, nil
	}

	trainingText := training.Truncate(text, training.MaxTrainingTextLen)
	summary := s.summarizer.Summarize(trainingText)
	profile, err := s.store.UpsertStyleProfile(ctx, userID, store.StyleProfileUpsert{
		SourceType:   store.SourceURL,
		SourceURL:    &url,
		TrainingText: store.Set(trainingText),
		StyleSummary: &summary,
		Status:       store.ProfileReady,
		LastError:    store.SetNull[string](),
	})
	if err != nil {
		// the attempt still ends terminal
		_, _ = s.store.UpdateCrawlAttempt(ctx, attempt.ID, store.CrawlAttemptUpdate{
			Status:       store.CrawlFailed,
			HTTPStatus:   store.Set(page.HTTPStatus),
			ErrorMessage: store.Set("style profile could not be saved"),
		})
		return TrainURLResult{}, internalError("Failed to save style profile", err)
	}
	updated, err := s.finishAttempt(ctx, attempt, store.CrawlAttemptUpdate{
		Status:        store.CrawlSuccess,
		HTTPStatus:    store.Set(page.HTTPStatus),
		ExtractedText: store.Set(trainingText),
	})
	if err != nil {
		return TrainURLResult{}, err
	}
	log.Info("style profile trained", "source", store.SourceURL, "http_status", page.HTTPStatus, "text_len", training.Len(trainingText))
	return TrainURLResult{StyleProfile: profile, CrawlAttempt: updated}, nil
}

func (s *Service) finishAttempt(ctx context.Context, attempt store.CrawlAttempt, update store.CrawlAttemptUpdate) (store.CrawlAttempt, error) {
	updated, err := s.store.UpdateCrawlAttempt(ctx, attempt.ID, update)
	if err != nil {
		return store.CrawlAttempt{}, internalError("Failed to record crawl attempt", err)
	}
	if updated == nil {
		return store.ApplyCrawlAttemptUpdate(attempt, update), nil
	}
	return *updated, nil
}

func (s *Service) saveSnapshot(ctx context.Context, log *logger.Logger, userID, attemptID, html string) {
	if s.snapshots == nil || html == "" {
		return
	}
	if _, err := s.snapshots.SaveSnapshot(ctx, userID, attemptID, html); err != nil {
		log.Warn("snapshot upload failed", "error", err)
	}
}
