package search

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeIndex struct {
	healthy bool
	results []Result
	err     error
	indexed chan DraftRecord
	queries []Query
}

func (f *fakeIndex) Search(_ context.Context, q Query) ([]Result, int, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.results, len(f.results), nil
}

func (f *fakeIndex) Healthy() bool { return f.healthy }

func (f *fakeIndex) IndexDraft(d DraftRecord) error {
	f.indexed <- d
	return nil
}

type fakeFallback struct {
	results []Result
	err     error
	calls   int
}

func (f *fakeFallback) Search(_ context.Context, q Query) ([]Result, int, error) {
	f.calls++
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.results, len(f.results), nil
}

func (f *fakeFallback) Healthy() bool { return true }

func TestSearchPrefersHealthyIndex(t *testing.T) {
	index := &fakeIndex{healthy: true, results: []Result{{WritingRequestID: "wr_1"}}}
	fallback := &fakeFallback{}
	resp := NewService(index, fallback, nil).Search(context.Background(), Query{Text: "go", UserID: "usr_1"})

	if resp.Total != 1 || resp.Results[0].WritingRequestID != "wr_1" || resp.Query != "go" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback should not run when the index answers")
	}
	if index.queries[0].UserID != "usr_1" {
		t.Fatalf("user scope not forwarded: %+v", index.queries[0])
	}
}

func TestSearchFallsBack(t *testing.T) {
	cases := map[string]*fakeIndex{
		"unhealthy": {healthy: false},
		"errors":    {healthy: true, err: errors.New("boom")},
	}
	for name, index := range cases {
		t.Run(name, func(t *testing.T) {
			fallback := &fakeFallback{results: []Result{{WritingRequestID: "wr_pg"}}}
			resp := NewService(index, fallback, nil).Search(context.Background(), Query{Text: "go", UserID: "u"})
			if fallback.calls != 1 || resp.Total != 1 || resp.Results[0].WritingRequestID != "wr_pg" {
				t.Fatalf("expected fallback results, got %+v", resp)
			}
		})
	}
}

func TestSearchWithoutIndexAndFailingFallback(t *testing.T) {
	resp := NewService(nil, &fakeFallback{err: errors.New("db down")}, nil).Search(context.Background(), Query{Text: "x", UserID: "u"})
	if resp.Results == nil || len(resp.Results) != 0 || resp.Total != 0 {
		t.Fatalf("expected empty non-nil results, got %+v", resp)
	}
}

func TestIndexDraftIsAsync(t *testing.T) {
	index := &fakeIndex{healthy: true, indexed: make(chan DraftRecord, 1)}
	NewService(index, &fakeFallback{}, nil).IndexDraft(DraftRecord{ID: "wr_1", Version: 2})

	select {
	case got := <-index.indexed:
		if got.ID != "wr_1" || got.Version != 2 {
			t.Fatalf("unexpected record: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("draft was not indexed")
	}
}

func TestIndexDraftSkipsUnhealthyIndex(t *testing.T) {
	index := &fakeIndex{healthy: false, indexed: make(chan DraftRecord, 1)}
	NewService(index, &fakeFallback{}, nil).IndexDraft(DraftRecord{ID: "wr_1"})
	select {
	case <-index.indexed:
		t.Fatal("unhealthy index should not receive drafts")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestIndexDraftDropsStaleVersion(t *testing.T) {
	index := &fakeIndex{healthy: true, indexed: make(chan DraftRecord, 2)}
	svc := NewService(index, &fakeFallback{}, nil)
	svc.IndexDraft(DraftRecord{ID: "wr_1", Version: 2})
	svc.IndexDraft(DraftRecord{ID: "wr_1", Version: 1})

	select {
	case got := <-index.indexed:
		if got.Version != 2 {
			t.Fatalf("expected version 2, got %d", got.Version)
		}
	case <-time.After(time.Second):
		t.Fatal("draft was not indexed")
	}
	select {
	case got := <-index.indexed:
		t.Fatalf("stale version indexed: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestIndexDraftNewestVersionWins(t *testing.T) {
	index := &fakeIndex{healthy: true, indexed: make(chan DraftRecord, 10)}
	svc := NewService(index, &fakeFallback{}, nil)
	for v := 1; v <= 5; v++ {
		svc.IndexDraft(DraftRecord{ID: "wr_1", Version: v})
	}
	svc.IndexDraft(DraftRecord{ID: "wr_2", Version: 1})

	last := map[string]int{}
	deadline := time.After(time.Second)
	for last["wr_1"] != 5 || last["wr_2"] != 1 {
		select {
		case got := <-index.indexed:
			if got.Version < last[got.ID] {
				t.Fatalf("version %d of %s indexed after %d", got.Version, got.ID, last[got.ID])
			}
			last[got.ID] = got.Version
		case <-deadline:
			t.Fatalf("newest versions not indexed, got %v", last)
		}
	}
	select {
	case got := <-index.indexed:
		t.Fatalf("unexpected write after newest: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNormalizeLimit(t *testing.T) {
	for in, want := range map[int]int{0: 20, -1: 20, 5: 5, 500: 100} {
		if got := normalizeLimit(in); got != want {
			t.Fatalf("normalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
