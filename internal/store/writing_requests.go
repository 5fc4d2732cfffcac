package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alswp006/blog-writer/internal/util"
)

const writingRequestColumns = `id, user_id, topic, title_hint, key_points, constraints, status, last_error, created_at, updated_at`

func scanWritingRequest(row rowScanner) (WritingRequest, error) {
	var item WritingRequest
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.Topic,
		&item.TitleHint,
		&item.KeyPoints,
		&item.Constraints,
		&item.Status,
		&item.LastError,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

func (s *PostgresStore) CreateWritingRequest(ctx context.Context, userID string, input WritingRequestInput) (WritingRequest, error) {
	now := s.now()
	item, err := scanWritingRequest(s.db.QueryRowContext(ctx, `
		INSERT INTO writing_requests (id, user_id, topic, title_hint, key_points, constraints, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING `+writingRequestColumns,
		util.NewID("wr"), userID, input.Topic, input.TitleHint, input.KeyPoints, input.Constraints, RequestQueued, now,
	))
	if err != nil {
		return WritingRequest{}, fmt.Errorf("insert writing request: %w", err)
	}
	return item, nil
}

// UpdateWritingRequest applies input over the stored request and refreshes
// updated_at. A missing id yields (nil, nil).
func (s *PostgresStore) UpdateWritingRequest(ctx context.Context, id string, input WritingRequestUpdate) (*WritingRequest, error) {
	var result *WritingRequest
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := scanWritingRequest(tx.QueryRowContext(ctx, `
			SELECT `+writingRequestColumns+`
			FROM writing_requests
			WHERE id=$1
			FOR UPDATE
		`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock writing request: %w", err)
		}

		merged := ApplyWritingRequestUpdate(current, input)
		merged.UpdatedAt = s.now()
		updated, err := scanWritingRequest(tx.QueryRowContext(ctx, `
			UPDATE writing_requests
			SET topic=$2, title_hint=$3, key_points=$4, constraints=$5, status=$6, last_error=$7, updated_at=$8
			WHERE id=$1
			RETURNING `+writingRequestColumns,
			merged.ID,
			merged.Topic,
			merged.TitleHint,
			merged.KeyPoints,
			merged.Constraints,
			merged.Status,
			merged.LastError,
			merged.UpdatedAt,
		))
		if err != nil {
			return fmt.Errorf("update writing request: %w", err)
		}
		result = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func ApplyWritingRequestUpdate(current WritingRequest, input WritingRequestUpdate) WritingRequest {
	merged := current
	if input.Topic != "" {
		merged.Topic = input.Topic
	}
	merged.TitleHint = input.TitleHint.Apply(current.TitleHint)
	merged.KeyPoints = input.KeyPoints.Apply(current.KeyPoints)
	merged.Constraints = input.Constraints.Apply(current.Constraints)
	if input.Status != "" {
		merged.Status = input.Status
	}
	merged.LastError = input.LastError.Apply(current.LastError)
	return merged
}

// GetWritingRequestForUser only returns the request when userID owns it.
func (s *PostgresStore) GetWritingRequestForUser(ctx context.Context, id, userID string) (*WritingRequest, error) {
	item, err := scanWritingRequest(s.db.QueryRowContext(ctx, `
		SELECT `+writingRequestColumns+`
		FROM writing_requests
		WHERE id=$1 AND user_id=$2
	`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get writing request: %w", err)
	}
	return &item, nil
}

func (s *PostgresStore) ListWritingRequests(ctx context.Context, userID string, limit int) ([]WritingRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+writingRequestColumns+`
		FROM writing_requests
		WHERE user_id=$1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list writing requests: %w", err)
	}
	defer rows.Close()

	items := make([]WritingRequest, 0)
	for rows.Next() {
		item, err := scanWritingRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan writing request: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate writing requests: %w", err)
	}
	return items, nil
}
