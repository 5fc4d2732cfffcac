// Package search finds a user's drafts by topic and content.
package search

import "context"

// Result is a single search hit returned to the caller.
type Result struct {
	WritingRequestID string `json:"writingRequestId"`
	DraftID          string `json:"draftId"`
	Topic            string `json:"topic"`
	Snippet          string `json:"snippet"`
	Version          int    `json:"version"`
}

// Query describes a search request. UserID is mandatory; results never cross
// users.
type Query struct {
	Text   string
	UserID string
	Limit  int
	Offset int
}

type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push drafts into a search index.
type Indexer interface {
	IndexDraft(d DraftRecord) error
}

// DraftRecord is the latest draft of one writing request. The writing request
// id is the primary key, so indexing a new version replaces the old one.
type DraftRecord struct {
	ID      string `json:"id"`
	DraftID string `json:"draftId"`
	UserID  string `json:"userId"`
	Topic   string `json:"topic"`
	Content string `json:"content"`
	Version int    `json:"version"`
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
