package search

import (
	"context"
	"sync"

	"github.com/alswp006/blog-writer/internal/logger"
)

type draftIndex interface {
	Searcher
	Indexer
}

// Service is the facade that tries Meilisearch first and falls back to PG FTS.
type Service struct {
	index    draftIndex
	fallback Searcher
	log      *logger.Logger

	mu      sync.Mutex
	latest  map[string]int // highest version dispatched per writing request
	writeMu sync.Mutex
}

// NewService creates a search service. index may be nil when Meilisearch is
// not configured.
func NewService(index draftIndex, fallback Searcher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{index: index, fallback: fallback, log: log, latest: make(map[string]int)}
}

func (s *Service) Search(ctx context.Context, q Query) Response {
	if s.index != nil && s.index.Healthy() {
		results, total, err := s.index.Search(ctx, q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		s.log.Warn("meilisearch error, falling back to pgfts", "error", err)
	}

	results, total, err := s.fallback.Search(ctx, q)
	if err != nil {
		s.log.Error("pgfts search failed", "error", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexDraft pushes the draft to Meilisearch without waiting. Failures are
// logged; the PG fallback always sees the stored draft. A version older than
// one already dispatched for the same writing request is dropped.
func (s *Service) IndexDraft(d DraftRecord) {
	if s.index == nil || !s.index.Healthy() {
		return
	}
	if !s.claim(d) {
		return
	}
	go func() {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		if !s.current(d) {
			return
		}
		if err := s.index.IndexDraft(d); err != nil {
			s.log.Warn("index draft", "writing_request_id", d.ID, "error", err)
		}
	}()
}

func (s *Service) claim(d DraftRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.latest[d.ID]; ok && v >= d.Version {
		return false
	}
	s.latest[d.ID] = d.Version
	return true
}

func (s *Service) current(d DraftRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[d.ID] == d.Version
}

func nonNil(results []Result) []Result {
	if results == nil {
		return []Result{}
	}
	return results
}
