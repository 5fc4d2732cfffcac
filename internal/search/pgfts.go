package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PgFTS implements Searcher with PostgreSQL full-text search over the latest
// draft of each writing request.
type PgFTS struct {
	db *sql.DB
}

func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true; without Postgres nothing else works either.
func (p *PgFTS) Healthy() bool {
	return true
}

const draftDocument = `to_tsvector('english', wr.topic || ' ' || gd.content)`

func (p *PgFTS) Search(ctx context.Context, q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}
	if q.UserID == "" {
		return nil, 0, errors.New("search requires a user")
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	where := fmt.Sprintf(`gd.is_latest AND gd.user_id = $2 AND %s @@ plainto_tsquery('english', $1)`, draftDocument)
	from := `FROM generated_drafts gd JOIN writing_requests wr ON wr.id = gd.writing_request_id`

	var total int
	if err := p.db.QueryRowContext(ctx, `SELECT count(*) `+from+` WHERE `+where, q.Text, q.UserID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT wr.id, gd.id, wr.topic,
			ts_headline('english', gd.content, plainto_tsquery('english', $1), 'MaxFragments=1,MaxWords=30'),
			gd.version
		%s
		WHERE %s
		ORDER BY ts_rank(%s, plainto_tsquery('english', $1)) DESC, gd.created_at DESC
		LIMIT %d OFFSET %d`, from, where, draftDocument, normalizeLimit(q.Limit), offset),
		q.Text, q.UserID)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.WritingRequestID, &r.DraftID, &r.Topic, &r.Snippet, &r.Version); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		results = append(results, r)
	}
	return results, total, rows.Err()
}

// LoadLatestDrafts returns every latest draft for a full reindex.
func (p *PgFTS) LoadLatestDrafts(ctx context.Context) ([]DraftRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT wr.id, gd.id, gd.user_id, wr.topic, gd.content, gd.version
		FROM generated_drafts gd
		JOIN writing_requests wr ON wr.id = gd.writing_request_id
		WHERE gd.is_latest
	`)
	if err != nil {
		return nil, fmt.Errorf("load drafts: %w", err)
	}
	defer rows.Close()

	drafts := make([]DraftRecord, 0)
	for rows.Next() {
		var d DraftRecord
		if err := rows.Scan(&d.ID, &d.DraftID, &d.UserID, &d.Topic, &d.Content, &d.Version); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}
	return drafts, nil
}

// Reindex loads every latest draft from Postgres and pushes it to Meilisearch.
func Reindex(ctx context.Context, m *Meili, p *PgFTS) (int, error) {
	drafts, err := p.LoadLatestDrafts(ctx)
	if err != nil {
		return 0, err
	}
	if err := m.IndexDrafts(drafts); err != nil {
		return 0, fmt.Errorf("index drafts: %w", err)
	}
	return len(drafts), nil
}
