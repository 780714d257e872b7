package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is the storage identifier of a record.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// UserKey returns the fixed-width key used to scope per-user indexes.
func UserKey(userID string) ID {
	return IDFromContent("user:" + userID)
}

// ThoughtType categorizes a thought.
type ThoughtType string

const (
	ThoughtTypeTask     ThoughtType = "task"
	ThoughtTypeIdea     ThoughtType = "idea"
	ThoughtTypeNote     ThoughtType = "note"
	ThoughtTypeReminder ThoughtType = "reminder"
	ThoughtTypeJournal  ThoughtType = "journal"
)

// ThoughtTypes lists every valid ThoughtType.
var ThoughtTypes = []ThoughtType{
	ThoughtTypeTask,
	ThoughtTypeIdea,
	ThoughtTypeNote,
	ThoughtTypeReminder,
	ThoughtTypeJournal,
}

// Status is the lifecycle state of a thought. Transitions are driven by
// callers outside the ingestion pipeline.
type Status string

const (
	StatusActive   Status = "active"
	StatusDone     Status = "done"
	StatusSnoozed  Status = "snoozed"
	StatusArchived Status = "archived"
)

// Statuses lists every valid Status.
var Statuses = []Status{StatusActive, StatusDone, StatusSnoozed, StatusArchived}

// ConnectionType tags the kind of relationship a Connection represents.
type ConnectionType string

// ConnectionTypeSemantic marks edges discovered through embedding similarity.
const ConnectionTypeSemantic ConnectionType = "semantic"

const (
	// DefaultPriority is assigned to thoughts without an extracted priority.
	DefaultPriority = 3
	// MinPriority is the lowest valid priority.
	MinPriority = 1
	// MaxPriority is the highest valid priority.
	MaxPriority = 5
	// DefaultLanguage is used when no language hint is supplied.
	DefaultLanguage = "cs"
	// SourceVoice marks thoughts captured through transcript ingestion.
	SourceVoice = "voice"
	// SourceImport marks thoughts created by the importer.
	SourceImport = "import"
)

// Entities maps entity kinds to the names mentioned in a thought.
type Entities struct {
	People   []string
	Places   []string
	Projects []string
}

// IsEmpty reports whether no entities are present.
func (e Entities) IsEmpty() bool {
	return len(e.People) == 0 && len(e.Places) == 0 && len(e.Projects) == 0
}

// Thought is a captured unit of user input, enriched by classification and
// embedding.
type Thought struct {
	ID            ID
	UserID        string
	RawTranscript string
	CleanedText   string
	Summary       string // empty when absent
	Type          ThoughtType
	Priority      int
	Categories    []string
	Sentiment     *float64
	Entities      Entities
	ActionItems   []string
	Deadline      *time.Time
	Status        Status
	Embedding     []float32 // nil until the embedder succeeds
	Language      string
	Source        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasEmbedding reports whether the thought carries a vector.
func (t *Thought) HasEmbedding() bool {
	return len(t.Embedding) > 0
}

// HasCategory reports whether label is one of the thought's categories.
func (t *Thought) HasCategory(label string) bool {
	for _, c := range t.Categories {
		if c == label {
			return true
		}
	}
	return false
}

// Extraction is the structured attribute set produced by classification.
type Extraction struct {
	Type        ThoughtType
	Priority    int
	Categories  []string
	Entities    Entities
	Deadline    *time.Time
	Sentiment   float64
	ActionItems []string
	Summary     string
}

// Connection is an undirected similarity edge between two thoughts of the
// same user. ThoughtA is always the lower id.
type Connection struct {
	ThoughtA   ID
	ThoughtB   ID
	UserID     string
	Similarity float64
	Type       ConnectionType
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Other returns the endpoint opposite to id.
func (c *Connection) Other(id ID) ID {
	if c.ThoughtA == id {
		return c.ThoughtB
	}
	return c.ThoughtA
}

// CanonicalPair orders two thought ids so the lower one comes first.
func CanonicalPair(a, b ID) (ID, ID) {
	if b < a {
		return b, a
	}
	return a, b
}

// SearchFilters restricts lexical and semantic searches. Zero values mean
// "no restriction".
type SearchFilters struct {
	Type     ThoughtType
	Priority int
	Category string
	Status   Status
	From     time.Time // inclusive lower bound on CreatedAt
	To       time.Time // inclusive upper bound on CreatedAt
}

// Matches reports whether t satisfies every set filter.
func (f *SearchFilters) Matches(t *Thought) bool {
	if f == nil {
		return true
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Priority != 0 && t.Priority != f.Priority {
		return false
	}
	if f.Category != "" && !t.HasCategory(f.Category) {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && t.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.CreatedAt.After(f.To) {
		return false
	}
	return true
}

// ScoredThought is a single row returned by a ranked store query.
type ScoredThought struct {
	Thought *Thought
	// Score is the native text relevance for lexical queries and the cosine
	// similarity for vector queries.
	Score float64
	// Distance is the cosine distance for vector queries, zero otherwise.
	Distance float64
}

// SearchResult is a fused hybrid search hit.
type SearchResult struct {
	Thought *Thought
	Score   float64
	// SemanticRank and TextRank are 1-based; 0 means the thought did not
	// appear in that list.
	SemanticRank int
	TextRank     int
}
