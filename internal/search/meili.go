package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"

	"github.com/alswp006/blog-writer/internal/logger"
)

const idxDrafts = "blogwriter_drafts"

// Meili implements Searcher and Indexer via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	log     *logger.Logger
	healthy atomic.Bool
	done    chan struct{}
	// onRecover runs after the index is reconfigured following an outage.
	onRecover func()
}

// NewMeili creates a Meilisearch client and configures the drafts index. An
// unreachable server is not an error; the health loop keeps probing.
func NewMeili(url, apiKey string, log *logger.Logger) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		log:    log,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Warn("meilisearch unavailable", "url", url, "error", err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

// OnRecover registers fn to run whenever Meilisearch comes back after being
// unreachable.
func (m *Meili) OnRecover(fn func()) {
	m.onRecover = fn
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxDrafts,
		PrimaryKey: "id",
	}); err != nil {
		m.log.Debug("create index (may already exist)", "index", idxDrafts, "error", err)
	}

	index := m.client.Index(idxDrafts)
	filterable := []interface{}{"userId"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		m.log.Warn("update filterable attributes", "index", idxDrafts, "error", err)
	}
	searchable := []string{"topic", "content"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		m.log.Warn("update searchable attributes", "index", idxDrafts, "error", err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				m.log.Info("meilisearch recovered, reconfiguring index")
				m.configureIndex()
				if m.onRecover != nil {
					m.onRecover()
				}
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

func (m *Meili) Search(_ context.Context, q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, errors.New("meilisearch unhealthy")
	}
	if q.UserID == "" {
		return nil, 0, errors.New("search requires a user")
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{
		Queries: []*meili.SearchRequest{{
			IndexUID:              idxDrafts,
			Query:                 q.Text,
			Limit:                 int64(normalizeLimit(q.Limit)),
			Offset:                int64(q.Offset),
			Filter:                fmt.Sprintf("userId = %q", q.UserID),
			AttributesToHighlight: []string{"topic"},
			AttributesToCrop:      []string{"content"},
			CropLength:            30,
			HighlightPreTag:       "<mark>",
			HighlightPostTag:      "</mark>",
		}},
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	var results []Result
	total := 0
	for _, sr := range resp.Results {
		total += int(sr.EstimatedTotalHits)
		for _, hit := range sr.Hits {
			results = append(results, hitToResult(hit))
		}
	}
	return results, total, nil
}

func hitToResult(hit meili.Hit) Result {
	r := Result{
		WritingRequestID: decodeString(hit, "id"),
		DraftID:          decodeString(hit, "draftId"),
	}
	r.Topic = firstNonBlank(decodeFormattedString(hit, "topic"), decodeString(hit, "topic"))
	r.Snippet = firstNonBlank(decodeFormattedString(hit, "content"), decodeString(hit, "content"))
	if raw, ok := hit["version"]; ok {
		_ = json.Unmarshal(raw, &r.Version)
	}
	return r
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]json.RawMessage
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	return strings.TrimSpace(decodeString(formatted, key))
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func (m *Meili) IndexDraft(d DraftRecord) error {
	_, err := m.client.Index(idxDrafts).AddDocuments([]DraftRecord{d}, nil)
	return err
}

func (m *Meili) IndexDrafts(drafts []DraftRecord) error {
	if len(drafts) == 0 {
		return nil
	}
	_, err := m.client.Index(idxDrafts).AddDocuments(drafts, nil)
	return err
}
