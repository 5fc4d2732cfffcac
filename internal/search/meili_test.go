package search

import (
	"encoding/json"
	"testing"

	meili "github.com/meilisearch/meilisearch-go"
)

func TestHitToResultPrefersFormatted(t *testing.T) {
	hit := meili.Hit{
		"id":         json.RawMessage(`"wr_1"`),
		"draftId":    json.RawMessage(`"gd_3"`),
		"topic":      json.RawMessage(`"Go testing"`),
		"content":    json.RawMessage(`"# Go testing\n\nlong body"`),
		"version":    json.RawMessage(`3`),
		"_formatted": json.RawMessage(`{"topic":"<mark>Go</mark> testing","content":"…long body…","version":"3"}`),
	}
	got := hitToResult(hit)
	want := Result{WritingRequestID: "wr_1", DraftID: "gd_3", Topic: "<mark>Go</mark> testing", Snippet: "…long body…", Version: 3}
	if got != want {
		t.Fatalf("hitToResult() = %+v, want %+v", got, want)
	}
}

func TestHitToResultWithoutFormatted(t *testing.T) {
	hit := meili.Hit{
		"id":    json.RawMessage(`"wr_2"`),
		"topic": json.RawMessage(`"Plain"`),
	}
	got := hitToResult(hit)
	if got.WritingRequestID != "wr_2" || got.Topic != "Plain" || got.Snippet != "" || got.Version != 0 {
		t.Fatalf("unexpected result: %+v", got)
	}
}
