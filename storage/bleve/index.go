// Package bleve implements storage.TextIndex on a Bleve full-text index.
package bleve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/poiesic/noesis/core"
	"github.com/poiesic/noesis/storage"
)

// Indexed field names.
const (
	fieldText       = "text"
	fieldUser       = "user"
	fieldStatus     = "status"
	fieldType       = "type"
	fieldCategories = "categories"
	fieldPriority   = "priority"
	fieldCreatedAt  = "created_at"
)

// document is the indexed projection of a thought.
type document struct {
	Text       string    `json:"text"`
	User       string    `json:"user"`
	Status     string    `json:"status"`
	Type       string    `json:"type"`
	Categories []string  `json:"categories"`
	Priority   float64   `json:"priority"`
	CreatedAt  time.Time `json:"created_at"`
}

// Index implements storage.TextIndex using Bleve.
type Index struct {
	index  bleve.Index
	logger *slog.Logger
}

var _ storage.TextIndex = (*Index)(nil)

// Open creates or opens a Bleve index at path.
// If you change the index mapping in code, remove the index directory to force a full re-index.
func Open(path string) (storage.TextIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return newIndex(index), nil
	}

	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return newIndex(index), nil
}

// NewMemOnly creates an in-memory index for tests.
func NewMemOnly() (storage.TextIndex, error) {
	index, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return newIndex(index), nil
}

func newIndex(index bleve.Index) *Index {
	return &Index{
		index:  index,
		logger: slog.Default().With("component", "bleve-index"),
	}
}

func newMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.Dynamic = false

	// Standard analyzer lowercases and tokenizes without stemming, which keeps
	// Czech and English transcripts on equal footing.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	textFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(fieldText, textFieldMapping)

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	keywordFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(fieldUser, keywordFieldMapping)
	docMapping.AddFieldMappingsAt(fieldStatus, keywordFieldMapping)
	docMapping.AddFieldMappingsAt(fieldType, keywordFieldMapping)
	docMapping.AddFieldMappingsAt(fieldCategories, keywordFieldMapping)

	numericFieldMapping := bleve.NewNumericFieldMapping()
	numericFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(fieldPriority, numericFieldMapping)

	dateFieldMapping := bleve.NewDateTimeFieldMapping()
	dateFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(fieldCreatedAt, dateFieldMapping)

	im.DefaultMapping = docMapping
	return im
}

// docID renders ids zero-padded so Bleve's lexicographic _id sort matches
// numeric order.
func docID(id core.ID) string {
	return fmt.Sprintf("%020d", uint64(id))
}

func parseDocID(s string) (core.ID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	return core.ID(id), err
}

// searchableText joins the distinct non-empty text fields of a thought.
func searchableText(t *core.Thought) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{t.RawTranscript, t.CleanedText, t.Summary} {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		dup := false
		for _, p := range parts {
			if p == s {
				dup = true
				break
			}
		}
		if !dup {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// Index adds or replaces the document for a thought.
func (i *Index) Index(ctx context.Context, t *core.Thought) error {
	doc := document{
		Text:       searchableText(t),
		User:       t.UserID,
		Status:     string(t.Status),
		Type:       string(t.Type),
		Categories: t.Categories,
		Priority:   float64(t.Priority),
		CreatedAt:  t.CreatedAt.UTC(),
	}
	return i.index.Index(docID(t.ID), doc)
}

// Delete removes a thought from the index.
func (i *Index) Delete(ctx context.Context, id core.ID) error {
	return i.index.Delete(docID(id))
}

// Search returns the user's matching, non-archived thoughts. Every query
// term must match.
func (i *Index) Search(ctx context.Context, userID, query string, filters *core.SearchFilters, limit int) ([]storage.TextHit, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}
	if strings.TrimSpace(query) == "" {
		return []storage.TextHit{}, nil
	}

	req := bleve.NewSearchRequestOptions(buildQuery(userID, query, filters), limit, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	results, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	hits := make([]storage.TextHit, 0, len(results.Hits))
	for _, hit := range results.Hits {
		id, err := parseDocID(hit.ID)
		if err != nil {
			i.logger.Warn("skipping hit with malformed id", "id", hit.ID, "err", err)
			continue
		}
		hits = append(hits, storage.TextHit{ID: id, Score: hit.Score})
	}
	return hits, nil
}

// Close closes the Bleve index.
func (i *Index) Close() error {
	return i.index.Close()
}

func buildQuery(userID, text string, filters *core.SearchFilters) blevequery.Query {
	match := bleve.NewMatchQuery(text)
	match.SetField(fieldText)
	match.SetOperator(blevequery.MatchQueryOperatorAnd)

	q := bleve.NewBooleanQuery()
	q.AddMust(match, termQuery(fieldUser, userID))
	q.AddMustNot(termQuery(fieldStatus, string(core.StatusArchived)))

	if filters == nil {
		return q
	}
	if filters.Type != "" {
		q.AddMust(termQuery(fieldType, string(filters.Type)))
	}
	if filters.Category != "" {
		q.AddMust(termQuery(fieldCategories, filters.Category))
	}
	if filters.Status != "" {
		q.AddMust(termQuery(fieldStatus, string(filters.Status)))
	}
	if filters.Priority != 0 {
		p := float64(filters.Priority)
		inclusive := true
		pq := bleve.NewNumericRangeInclusiveQuery(&p, &p, &inclusive, &inclusive)
		pq.SetField(fieldPriority)
		q.AddMust(pq)
	}
	if !filters.From.IsZero() || !filters.To.IsZero() {
		inclusive := true
		dq := bleve.NewDateRangeInclusiveQuery(filters.From.UTC(), filters.To.UTC(), &inclusive, &inclusive)
		dq.SetField(fieldCreatedAt)
		q.AddMust(dq)
	}
	return q
}

func termQuery(field, term string) blevequery.Query {
	tq := bleve.NewTermQuery(term)
	tq.SetField(field)
	return tq
}
