package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alswp006/blog-writer/internal/util"
)

const styleProfileColumns = `id, user_id, source_type, source_url, training_text, style_summary, status, last_error, created_at, updated_at`

func scanStyleProfile(row rowScanner) (StyleProfile, error) {
	var item StyleProfile
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.SourceType,
		&item.SourceURL,
		&item.TrainingText,
		&item.StyleSummary,
		&item.Status,
		&item.LastError,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

func (s *PostgresStore) GetStyleProfile(ctx context.Context, userID string) (*StyleProfile, error) {
	item, err := scanStyleProfile(s.db.QueryRowContext(ctx, `
		SELECT `+styleProfileColumns+`
		FROM style_profiles
		WHERE user_id=$1
	`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get style profile: %w", err)
	}
	return &item, nil
}

// UpsertStyleProfile creates the user's profile with defaults when it is
// absent, then applies input over the stored row. The unique user_id
// constraint arbitrates concurrent first writes and the row lock serializes
// the merge.
func (s *PostgresStore) UpsertStyleProfile(ctx context.Context, userID string, input StyleProfileUpsert) (StyleProfile, error) {
	if input.SourceType != SourceURL && input.SourceType != SourcePaste {
		return StyleProfile{}, fmt.Errorf("upsert style profile: invalid source type %q", input.SourceType)
	}

	var result StyleProfile
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.now()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO style_profiles (id, user_id, source_type, style_summary, status, created_at, updated_at)
			VALUES ($1, $2, $3, '', $4, $5, $5)
			ON CONFLICT (user_id) DO NOTHING
		`, util.NewID("sp"), userID, input.SourceType, ProfileUntrained, now); err != nil {
			return fmt.Errorf("insert style profile: %w", err)
		}

		current, err := scanStyleProfile(tx.QueryRowContext(ctx, `
			SELECT `+styleProfileColumns+`
			FROM style_profiles
			WHERE user_id=$1
			FOR UPDATE
		`, userID))
		if err != nil {
			return fmt.Errorf("lock style profile: %w", err)
		}

		merged := ApplyStyleProfileUpsert(current, input)
		merged.UpdatedAt = now

		result, err = scanStyleProfile(tx.QueryRowContext(ctx, `
			UPDATE style_profiles
			SET source_type=$2, source_url=$3, training_text=$4, style_summary=$5,
				status=$6, last_error=$7, updated_at=$8
			WHERE id=$1
			RETURNING `+styleProfileColumns,
			merged.ID,
			merged.SourceType,
			merged.SourceURL,
			merged.TrainingText,
			merged.StyleSummary,
			merged.Status,
			merged.LastError,
			merged.UpdatedAt,
		))
		if err != nil {
			return fmt.Errorf("update style profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return StyleProfile{}, err
	}
	return result, nil
}

// ApplyStyleProfileUpsert returns current with input applied. Identity,
// ownership and timestamps are left to the caller.
func ApplyStyleProfileUpsert(current StyleProfile, input StyleProfileUpsert) StyleProfile {
	merged := current
	merged.SourceType = input.SourceType
	merged.SourceURL = nil
	if input.SourceType == SourceURL && input.SourceURL != nil {
		url := *input.SourceURL
		merged.SourceURL = &url
	}
	merged.TrainingText = input.TrainingText.Apply(current.TrainingText)
	if input.StyleSummary != nil {
		merged.StyleSummary = *input.StyleSummary
	}
	if input.Status != "" {
		merged.Status = input.Status
	}
	merged.LastError = input.LastError.Apply(current.LastError)
	return merged
}
