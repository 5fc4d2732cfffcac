package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alswp006/blog-writer/internal/util"
)

const crawlAttemptColumns = `id, user_id, url, status, http_status, extracted_text, error_message, created_at`

func scanCrawlAttempt(row rowScanner) (CrawlAttempt, error) {
	var item CrawlAttempt
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.URL,
		&item.Status,
		&item.HTTPStatus,
		&item.ExtractedText,
		&item.ErrorMessage,
		&item.CreatedAt,
	)
	return item, err
}

func (s *PostgresStore) CreateCrawlAttempt(ctx context.Context, userID, url string) (CrawlAttempt, error) {
	item, err := scanCrawlAttempt(s.db.QueryRowContext(ctx, `
		INSERT INTO crawl_attempts (id, user_id, url, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+crawlAttemptColumns,
		util.NewID("ca"), userID, url, CrawlPending, s.now(),
	))
	if err != nil {
		return CrawlAttempt{}, fmt.Errorf("insert crawl attempt: %w", err)
	}
	return item, nil
}

// UpdateCrawlAttempt applies input over the stored attempt. A missing id
// yields (nil, nil).
func (s *PostgresStore) UpdateCrawlAttempt(ctx context.Context, id string, input CrawlAttemptUpdate) (*CrawlAttempt, error) {
	var result *CrawlAttempt
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := scanCrawlAttempt(tx.QueryRowContext(ctx, `
			SELECT `+crawlAttemptColumns+`
			FROM crawl_attempts
			WHERE id=$1
			FOR UPDATE
		`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock crawl attempt: %w", err)
		}

		merged := ApplyCrawlAttemptUpdate(current, input)
		updated, err := scanCrawlAttempt(tx.QueryRowContext(ctx, `
			UPDATE crawl_attempts
			SET status=$2, http_status=$3, extracted_text=$4, error_message=$5
			WHERE id=$1
			RETURNING `+crawlAttemptColumns,
			merged.ID, merged.Status, merged.HTTPStatus, merged.ExtractedText, merged.ErrorMessage,
		))
		if err != nil {
			return fmt.Errorf("update crawl attempt: %w", err)
		}
		result = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func ApplyCrawlAttemptUpdate(current CrawlAttempt, input CrawlAttemptUpdate) CrawlAttempt {
	merged := current
	if input.Status != "" {
		merged.Status = input.Status
	}
	merged.HTTPStatus = input.HTTPStatus.Apply(current.HTTPStatus)
	merged.ExtractedText = input.ExtractedText.Apply(current.ExtractedText)
	merged.ErrorMessage = input.ErrorMessage.Apply(current.ErrorMessage)
	return merged
}

func (s *PostgresStore) ListCrawlAttempts(ctx context.Context, userID string, limit int) ([]CrawlAttempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+crawlAttemptColumns+`
		FROM crawl_attempts
		WHERE user_id=$1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list crawl attempts: %w", err)
	}
	defer rows.Close()

	items := make([]CrawlAttempt, 0)
	for rows.Next() {
		item, err := scanCrawlAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan crawl attempt: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crawl attempts: %w", err)
	}
	return items, nil
}
