package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alswp006/blog-writer/internal/util"
)

// ErrWritingRequestNotFound is returned when a draft is written for a request
// that does not exist.
var ErrWritingRequestNotFound = errors.New("writing request not found")

const generatedDraftColumns = `id, writing_request_id, user_id, content, version, is_latest, created_at`

func scanGeneratedDraft(row rowScanner) (GeneratedDraft, error) {
	var item GeneratedDraft
	err := row.Scan(
		&item.ID,
		&item.WritingRequestID,
		&item.UserID,
		&item.Content,
		&item.Version,
		&item.IsLatest,
		&item.CreatedAt,
	)
	return item, err
}

// CreateDraftAsLatest stores content as the newest version of the request's
// draft. The request must belong to userID. Locking the parent writing_requests row serializes writers of the
// same request, so the demote, max(version) and insert steps never interleave;
// writers of other requests take other locks.
func (s *PostgresStore) CreateDraftAsLatest(ctx context.Context, writingRequestID, userID, content string) (GeneratedDraft, error) {
	var result GeneratedDraft
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var locked string
		err := tx.QueryRowContext(ctx, `SELECT id FROM writing_requests WHERE id=$1 AND user_id=$2 FOR UPDATE`, writingRequestID, userID).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWritingRequestNotFound
		}
		if err != nil {
			return fmt.Errorf("lock writing request: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE generated_drafts SET is_latest=FALSE
			WHERE writing_request_id=$1 AND is_latest
		`, writingRequestID); err != nil {
			return fmt.Errorf("demote drafts: %w", err)
		}

		var nextVersion int
		if err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(version), 0) + 1 FROM generated_drafts WHERE writing_request_id=$1
		`, writingRequestID).Scan(&nextVersion); err != nil {
			return fmt.Errorf("next draft version: %w", err)
		}

		result, err = scanGeneratedDraft(tx.QueryRowContext(ctx, `
			INSERT INTO generated_drafts (id, writing_request_id, user_id, content, version, is_latest, created_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6)
			RETURNING `+generatedDraftColumns,
			util.NewID("gd"), writingRequestID, userID, content, nextVersion, s.now(),
		))
		if err != nil {
			return fmt.Errorf("insert draft: %w", err)
		}
		return nil
	})
	if err != nil {
		return GeneratedDraft{}, err
	}
	return result, nil
}

func (s *PostgresStore) GetLatestDraftForUser(ctx context.Context, writingRequestID, userID string) (*GeneratedDraft, error) {
	item, err := scanGeneratedDraft(s.db.QueryRowContext(ctx, `
		SELECT `+generatedDraftColumns+`
		FROM generated_drafts
		WHERE writing_request_id=$1 AND user_id=$2 AND is_latest
	`, writingRequestID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest draft: %w", err)
	}
	return &item, nil
}

// ListDrafts returns every version of the request's draft, oldest first.
func (s *PostgresStore) ListDrafts(ctx context.Context, writingRequestID, userID string) ([]GeneratedDraft, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+generatedDraftColumns+`
		FROM generated_drafts
		WHERE writing_request_id=$1 AND user_id=$2
		ORDER BY version ASC
	`, writingRequestID, userID)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	items := make([]GeneratedDraft, 0)
	for rows.Next() {
		item, err := scanGeneratedDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}
	return items, nil
}
