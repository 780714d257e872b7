package importer

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/poiesic/noesis/core"
)

// Item is one thought read from an export. Zero values mean "not given".
type Item struct {
	// Row is the 1-based position of the item in its source.
	Row           int
	RawTranscript string
	CleanedText   string
	Summary       string
	Type          string
	// Priority is nil when absent. A value that is not a number is kept
	// as NaN so validation can reject it.
	Priority    *float64
	Categories  []string
	Sentiment   *float64
	Entities    core.Entities
	ActionItems []string
	Deadline    string
	Language    string
	Source      string
}

// jsonItem mirrors the export format. Loosely typed fields accept what
// hand-edited files tend to contain.
type jsonItem struct {
	RawTranscript string          `json:"rawTranscript"`
	CleanedText   string          `json:"cleanedText"`
	Text          string          `json:"text"`
	Summary       string          `json:"summary"`
	Type          string          `json:"type"`
	Priority      looseNumber     `json:"priority"`
	Categories    looseStrings    `json:"categories"`
	Sentiment     looseNumber     `json:"sentiment"`
	Entities      json.RawMessage `json:"entities"`
	ActionItems   looseStrings    `json:"actionItems"`
	Deadline      string          `json:"deadline"`
	Language      string          `json:"language"`
	Source        string          `json:"source"`
}

func (j *jsonItem) item(row int) *Item {
	return &Item{
		Row:           row,
		RawTranscript: firstNonEmpty(j.RawTranscript, j.CleanedText, j.Text),
		CleanedText:   j.CleanedText,
		Summary:       j.Summary,
		Type:          j.Type,
		Priority:      j.Priority.value,
		Categories:    j.Categories,
		Sentiment:     j.Sentiment.value,
		Entities:      parseEntities(j.Entities),
		ActionItems:   j.ActionItems,
		Deadline:      j.Deadline,
		Language:      j.Language,
		Source:        j.Source,
	}
}

// looseNumber accepts a JSON number or a numeric string.
type looseNumber struct {
	value *float64
}

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		n.value = &f
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		nan := math.NaN()
		n.value = &nan
		return nil
	}
	n.value = parseLooseNumber(s)
	return nil
}

// parseLooseNumber returns nil for blank input and NaN for garbage.
func parseLooseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f = math.NaN()
	}
	return &f
}

// looseStrings keeps the string elements of an array and ignores anything
// that is not an array.
type looseStrings []string

func (l *looseStrings) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = nil
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

type jsonEntities struct {
	People   looseStrings `json:"people"`
	Places   looseStrings `json:"places"`
	Projects looseStrings `json:"projects"`
}

// parseEntities decodes an entity object. Malformed input yields no entities.
func parseEntities(data []byte) core.Entities {
	if len(bytes.TrimSpace(data)) == 0 {
		return core.Entities{}
	}
	var raw jsonEntities
	if err := json.Unmarshal(data, &raw); err != nil {
		return core.Entities{}
	}
	return core.Entities{
		People:   core.NormalizeLabels(raw.People),
		Places:   core.NormalizeLabels(raw.Places),
		Projects: core.NormalizeLabels(raw.Projects),
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
